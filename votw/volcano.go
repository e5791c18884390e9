package votw

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// metersToFeet converts elevation from meters to feet.
const metersToFeet = 3.28084

// ErrInvalidUnit reports an elevation unit other than meters or feet.
var ErrInvalidUnit = errors.New(`elevation unit must be "m" or "ft"`)

// volcanoColumns are the upstream CSV columns coerced into typed Volcano
// fields. Anything else lands in Extra.
var volcanoColumns = []string{
	"VolcanoNumber",
	"VolcanoName",
	"VolcanoType",
	"Country",
	"Region",
	"Subregion",
	"Latitude",
	"Longitude",
	"Elevation",
	"LastEruptionYear",
	"GeologicEpoch",
	"TectonicSetting",
	"MajorRockType",
	"EvidenceCategory",
	"GeologicalSummary",
	"LastUpdateDate",
	"Remarks",
}

var knownVolcanoColumn = columnSet(volcanoColumns)

func columnSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Volcano is one record from a Volcanoes of the World volcano dataset.
// Numeric fields are nil when the source value was missing or malformed.
// Records are immutable after construction.
type Volcano struct {
	Number            *int
	Name              string
	VolcanoType       string
	Country           string
	Region            string
	Subregion         string
	Latitude          *float64
	Longitude         *float64
	Elevation         *float64 // meters
	LastEruptionYear  *float64
	GeologicEpoch     string
	TectonicSetting   string
	MajorRockType     string
	EvidenceCategory  string
	GeologicalSummary string
	LastUpdateDate    string
	Remarks           string

	// Extra holds columns not covered by the typed fields, passed through
	// verbatim.
	Extra map[string]string
}

// ParseVolcano builds a Volcano from a raw field mapping. Malformed numeric
// values degrade to nil rather than failing the record.
func ParseVolcano(fields map[string]string) Volcano {
	name := strings.TrimSpace(fields["VolcanoName"])
	if strings.EqualFold(name, "unnamed") {
		if num := strings.TrimSpace(fields["VolcanoNumber"]); num != "" {
			name = "Unnamed-" + num
		} else {
			name = "Unnamed"
		}
	}

	v := Volcano{
		Number:            parseIntField(fields["VolcanoNumber"]),
		Name:              name,
		VolcanoType:       fields["VolcanoType"],
		Country:           fields["Country"],
		Region:            fields["Region"],
		Subregion:         fields["Subregion"],
		Latitude:          parseFloatField(fields["Latitude"]),
		Longitude:         parseFloatField(fields["Longitude"]),
		Elevation:         parseFloatField(fields["Elevation"]),
		LastEruptionYear:  parseFloatField(fields["LastEruptionYear"]),
		GeologicEpoch:     fields["GeologicEpoch"],
		TectonicSetting:   fields["TectonicSetting"],
		MajorRockType:     fields["MajorRockType"],
		EvidenceCategory:  fields["EvidenceCategory"],
		GeologicalSummary: fields["GeologicalSummary"],
		LastUpdateDate:    fields["LastUpdateDate"],
		Remarks:           fields["Remarks"],
	}

	for key, value := range fields {
		if knownVolcanoColumn[key] {
			continue
		}
		if v.Extra == nil {
			v.Extra = make(map[string]string)
		}
		v.Extra[key] = value
	}
	return v
}

// parseFloatField parses a string as float64, returning nil for empty or
// malformed values.
func parseFloatField(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseIntField parses a string as int, returning nil for empty or malformed
// values.
func parseIntField(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// Coordinates returns the record's position, with ok false when either
// coordinate is unknown.
func (v Volcano) Coordinates() (lat, lon float64, ok bool) {
	if v.Latitude == nil || v.Longitude == nil {
		return 0, 0, false
	}
	return *v.Latitude, *v.Longitude, true
}

// ElevationIn returns the elevation converted to the requested unit ("m",
// "ft", or "feet", case-insensitive). Unknown elevation yields (nil, nil).
// Any other unit is a usage error.
func (v Volcano) ElevationIn(unit string) (*float64, error) {
	if v.Elevation == nil {
		return nil, nil
	}
	switch strings.ToLower(unit) {
	case "m":
		m := *v.Elevation
		return &m, nil
	case "ft", "feet":
		ft := *v.Elevation * metersToFeet
		return &ft, nil
	default:
		return nil, fmt.Errorf("%w, got %q", ErrInvalidUnit, unit)
	}
}

func (v Volcano) String() string {
	elev := "Unknown"
	if v.Elevation != nil {
		elev = fmt.Sprintf("%.0fm", *v.Elevation)
	}
	return fmt.Sprintf("Volcano (%s, %s, %s)", v.Name, v.Country, elev)
}
