package votw

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// WriteCSV writes the set as header-mapped CSV. The header is the typed
// column set plus the first record's Extra columns, sorted; records lacking
// an Extra column emit an empty cell.
func (s VolcanoSet) WriteCSV(w io.Writer) error {
	header := append([]string(nil), volcanoColumns...)
	if len(s) > 0 {
		header = append(header, sortedKeys(s[0].Extra)...)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, v := range s {
		row := make([]string, len(header))
		for i, column := range header {
			row[i] = v.columnValue(column)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the set as CSV to a new file at path.
func (s VolcanoSet) ExportCSV(path string) error {
	return exportFile(path, s.WriteCSV)
}

// WriteGeoJSON writes the set as a GeoJSON FeatureCollection of Point
// features in [longitude, latitude] order. Records without coordinates are
// skipped; all remaining fields become feature properties.
func (s VolcanoSet) WriteGeoJSON(w io.Writer) error {
	features := make([]feature, 0, len(s))
	for _, v := range s {
		lat, lon, ok := v.Coordinates()
		if !ok {
			continue
		}
		features = append(features, newFeature(lat, lon, v.properties()))
	}
	return writeFeatureCollection(w, features)
}

// ExportGeoJSON writes the set as GeoJSON to a new file at path.
func (s VolcanoSet) ExportGeoJSON(path string) error {
	return exportFile(path, s.WriteGeoJSON)
}

// WriteCSV writes the set as header-mapped CSV, mirroring
// VolcanoSet.WriteCSV.
func (s EruptionSet) WriteCSV(w io.Writer) error {
	header := append([]string(nil), eruptionColumns...)
	if len(s) > 0 {
		header = append(header, sortedKeys(s[0].Extra)...)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range s {
		row := make([]string, len(header))
		for i, column := range header {
			row[i] = e.columnValue(column)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the set as CSV to a new file at path.
func (s EruptionSet) ExportCSV(path string) error {
	return exportFile(path, s.WriteCSV)
}

// WriteGeoJSON writes the set as a GeoJSON FeatureCollection, mirroring
// VolcanoSet.WriteGeoJSON.
func (s EruptionSet) WriteGeoJSON(w io.Writer) error {
	features := make([]feature, 0, len(s))
	for _, e := range s {
		lat, lon, ok := e.Coordinates()
		if !ok {
			continue
		}
		features = append(features, newFeature(lat, lon, e.properties()))
	}
	return writeFeatureCollection(w, features)
}

// ExportGeoJSON writes the set as GeoJSON to a new file at path.
func (s EruptionSet) ExportGeoJSON(path string) error {
	return exportFile(path, s.WriteGeoJSON)
}

func (v Volcano) columnValue(column string) string {
	switch column {
	case "VolcanoNumber":
		return formatIntField(v.Number)
	case "VolcanoName":
		return v.Name
	case "VolcanoType":
		return v.VolcanoType
	case "Country":
		return v.Country
	case "Region":
		return v.Region
	case "Subregion":
		return v.Subregion
	case "Latitude":
		return formatFloatField(v.Latitude)
	case "Longitude":
		return formatFloatField(v.Longitude)
	case "Elevation":
		return formatFloatField(v.Elevation)
	case "LastEruptionYear":
		return formatFloatField(v.LastEruptionYear)
	case "GeologicEpoch":
		return v.GeologicEpoch
	case "TectonicSetting":
		return v.TectonicSetting
	case "MajorRockType":
		return v.MajorRockType
	case "EvidenceCategory":
		return v.EvidenceCategory
	case "GeologicalSummary":
		return v.GeologicalSummary
	case "LastUpdateDate":
		return v.LastUpdateDate
	case "Remarks":
		return v.Remarks
	default:
		return v.Extra[column]
	}
}

// properties returns the record's non-empty fields keyed by upstream column
// name, minus the coordinates carried by the feature geometry.
func (v Volcano) properties() map[string]any {
	props := make(map[string]any)
	if v.Number != nil {
		props["VolcanoNumber"] = *v.Number
	}
	putString(props, "VolcanoName", v.Name)
	putString(props, "VolcanoType", v.VolcanoType)
	putString(props, "Country", v.Country)
	putString(props, "Region", v.Region)
	putString(props, "Subregion", v.Subregion)
	if v.Elevation != nil {
		props["Elevation"] = *v.Elevation
	}
	if v.LastEruptionYear != nil {
		props["LastEruptionYear"] = *v.LastEruptionYear
	}
	putString(props, "GeologicEpoch", v.GeologicEpoch)
	putString(props, "TectonicSetting", v.TectonicSetting)
	putString(props, "MajorRockType", v.MajorRockType)
	putString(props, "EvidenceCategory", v.EvidenceCategory)
	putString(props, "GeologicalSummary", v.GeologicalSummary)
	putString(props, "LastUpdateDate", v.LastUpdateDate)
	putString(props, "Remarks", v.Remarks)
	for key, value := range v.Extra {
		props[key] = value
	}
	return props
}

func (e Eruption) columnValue(column string) string {
	switch column {
	case "VolcanoNumber":
		return formatIntField(e.VolcanoNumber)
	case "VolcanoName":
		return e.VolcanoName
	case "EruptionNumber":
		return formatIntField(e.EruptionNumber)
	case "EruptionCategory":
		return e.Category
	case "VEI":
		return formatFloatField(e.VEI)
	case "StartYear":
		return formatFloatField(e.StartYear)
	case "EndYear":
		return formatFloatField(e.EndYear)
	case "Latitude":
		return formatFloatField(e.Latitude)
	case "Longitude":
		return formatFloatField(e.Longitude)
	default:
		return e.Extra[column]
	}
}

func (e Eruption) properties() map[string]any {
	props := make(map[string]any)
	if e.VolcanoNumber != nil {
		props["VolcanoNumber"] = *e.VolcanoNumber
	}
	putString(props, "VolcanoName", e.VolcanoName)
	if e.EruptionNumber != nil {
		props["EruptionNumber"] = *e.EruptionNumber
	}
	putString(props, "EruptionCategory", e.Category)
	if e.VEI != nil {
		props["VEI"] = *e.VEI
	}
	if e.StartYear != nil {
		props["StartYear"] = *e.StartYear
	}
	if e.EndYear != nil {
		props["EndYear"] = *e.EndYear
	}
	for key, value := range e.Extra {
		props[key] = value
	}
	return props
}

// GeoJSON shapes.

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   pointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

func newFeature(lat, lon float64, props map[string]any) feature {
	return feature{
		Type: "Feature",
		Geometry: pointGeometry{
			Type:        "Point",
			Coordinates: [2]float64{lon, lat},
		},
		Properties: props,
	}
}

func writeFeatureCollection(w io.Writer, features []feature) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(featureCollection{Type: "FeatureCollection", Features: features}); err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return nil
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatIntField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func putString(props map[string]any, key, value string) {
	if value != "" {
		props[key] = value
	}
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
