package gvp

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// GeoJSON shapes for the raw dataset conversion.

type geoCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

type geoFeature struct {
	Type       string         `json:"type"`
	Geometry   geoPoint       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

// convertCSVToGeoJSON renders a raw dataset payload as a GeoJSON
// FeatureCollection of Point features. Rows without parseable coordinates
// are dropped; every other column becomes a feature property with numeric
// cells retyped, while the coordinate columns themselves stay out of the
// properties.
func convertCSVToGeoJSON(data []byte) ([]byte, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	features := []geoFeature{}

	header, err := cr.Read()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if err == nil {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}

		for {
			record, err := cr.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				continue
			}

			row := make(map[string]string, len(header))
			for i, name := range header {
				if name == "" {
					continue
				}
				if i < len(record) {
					row[name] = strings.TrimSpace(record[i])
				} else {
					row[name] = ""
				}
			}

			lat, lon, ok := rowCoordinates(row)
			if !ok {
				continue
			}

			props := make(map[string]any, len(row))
			for name, value := range row {
				if isCoordinateColumn(name) {
					continue
				}
				props[name] = retype(value)
			}

			features = append(features, geoFeature{
				Type:       "Feature",
				Geometry:   geoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}},
				Properties: props,
			})
		}
	}

	out, err := json.MarshalIndent(geoCollection{Type: "FeatureCollection", Features: features}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return out, nil
}

// rowCoordinates extracts the row's position, accepting long or short
// coordinate column names in any casing.
func rowCoordinates(row map[string]string) (lat, lon float64, ok bool) {
	latRaw, latOK := coordinateCell(row, "latitude", "lat")
	lonRaw, lonOK := coordinateCell(row, "longitude", "lon")
	if !latOK || !lonOK {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func coordinateCell(row map[string]string, names ...string) (string, bool) {
	for _, want := range names {
		for name, value := range row {
			if strings.EqualFold(name, want) {
				return value, true
			}
		}
	}
	return "", false
}

func isCoordinateColumn(name string) bool {
	switch strings.ToLower(name) {
	case "latitude", "longitude", "lat", "lon":
		return true
	}
	return false
}

// retype converts a CSV cell to the closest JSON scalar: float when the text
// carries a decimal point, int when it parses whole, string otherwise.
func retype(value string) any {
	if strings.Contains(value, ".") {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	} else if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return value
}
