package votw

import "fmt"

// eruptionColumns are the upstream CSV columns coerced into typed Eruption
// fields.
var eruptionColumns = []string{
	"VolcanoNumber",
	"VolcanoName",
	"EruptionNumber",
	"EruptionCategory",
	"VEI",
	"StartYear",
	"EndYear",
	"Latitude",
	"Longitude",
}

var knownEruptionColumn = columnSet(eruptionColumns)

// Eruption is one record from a Volcanoes of the World eruption dataset.
// Numeric fields are nil when the source value was missing or malformed.
// Records are immutable after construction.
type Eruption struct {
	VolcanoNumber  *int
	VolcanoName    string
	EruptionNumber *int
	Category       string
	VEI            *float64
	StartYear      *float64
	EndYear        *float64
	Latitude       *float64
	Longitude      *float64

	// Extra holds columns not covered by the typed fields, passed through
	// verbatim.
	Extra map[string]string
}

// ParseEruption builds an Eruption from a raw field mapping. Malformed
// numeric values degrade to nil rather than failing the record.
func ParseEruption(fields map[string]string) Eruption {
	e := Eruption{
		VolcanoNumber:  parseIntField(fields["VolcanoNumber"]),
		VolcanoName:    fields["VolcanoName"],
		EruptionNumber: parseIntField(fields["EruptionNumber"]),
		Category:       fields["EruptionCategory"],
		VEI:            parseFloatField(fields["VEI"]),
		StartYear:      parseFloatField(fields["StartYear"]),
		EndYear:        parseFloatField(fields["EndYear"]),
		Latitude:       parseFloatField(fields["Latitude"]),
		Longitude:      parseFloatField(fields["Longitude"]),
	}

	for key, value := range fields {
		if knownEruptionColumn[key] {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]string)
		}
		e.Extra[key] = value
	}
	return e
}

// Coordinates returns the eruption's position, with ok false when either
// coordinate is unknown.
func (e Eruption) Coordinates() (lat, lon float64, ok bool) {
	if e.Latitude == nil || e.Longitude == nil {
		return 0, 0, false
	}
	return *e.Latitude, *e.Longitude, true
}

func (e Eruption) String() string {
	if e.VolcanoNumber == nil {
		return "Eruption (Volcano #Unknown)"
	}
	return fmt.Sprintf("Eruption (Volcano #%d)", *e.VolcanoNumber)
}
