package votw

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// VolcanoSet is an ordered collection of volcano records. Operations never
// mutate the receiver; each returns a new set sharing record values.
type VolcanoSet []Volcano

// FilterByCountry returns volcanoes whose country matches exactly,
// case-insensitively.
func (s VolcanoSet) FilterByCountry(country string) VolcanoSet {
	out := make(VolcanoSet, 0, len(s))
	for _, v := range s {
		if equalFold(v.Country, country) {
			out = append(out, v)
		}
	}
	return out
}

// FilterByType returns volcanoes whose type contains the given substring,
// case-insensitively.
func (s VolcanoSet) FilterByType(volcanoType string) VolcanoSet {
	out := make(VolcanoSet, 0, len(s))
	for _, v := range s {
		if containsFold(v.VolcanoType, volcanoType) {
			out = append(out, v)
		}
	}
	return out
}

// FilterByElevationRange returns volcanoes whose elevation lies within
// [minElev, maxElev] meters, bounds inclusive. Records with unknown elevation
// are excluded.
func (s VolcanoSet) FilterByElevationRange(minElev, maxElev float64) VolcanoSet {
	out := make(VolcanoSet, 0, len(s))
	for _, v := range s {
		if v.Elevation == nil {
			continue
		}
		if *v.Elevation >= minElev && *v.Elevation <= maxElev {
			out = append(out, v)
		}
	}
	return out
}

// WithinRadius returns volcanoes at most radiusKm kilometers from the point,
// boundary inclusive. Records without coordinates never match.
func (s VolcanoSet) WithinRadius(lat, lon, radiusKm float64) VolcanoSet {
	out := make(VolcanoSet, 0, len(s))
	for _, v := range s {
		if v.DistanceTo(lat, lon) <= radiusKm {
			out = append(out, v)
		}
	}
	return out
}

// SortByDistance returns the set ordered by ascending distance from the
// point. Records without coordinates sort last.
func (s VolcanoSet) SortByDistance(lat, lon float64) VolcanoSet {
	out := append(VolcanoSet(nil), s...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceTo(lat, lon) < out[j].DistanceTo(lat, lon)
	})
	return out
}

// SortByElevation returns the set ordered highest first. Records with
// unknown elevation sort last.
func (s VolcanoSet) SortByElevation() VolcanoSet {
	out := append(VolcanoSet(nil), s...)
	elev := func(v Volcano) float64 {
		if v.Elevation == nil {
			return math.Inf(-1)
		}
		return *v.Elevation
	}
	sort.SliceStable(out, func(i, j int) bool {
		return elev(out[i]) > elev(out[j])
	})
	return out
}

// ByNumber returns the first volcano with the given identifier.
func (s VolcanoSet) ByNumber(number int) (Volcano, bool) {
	for _, v := range s {
		if v.Number != nil && *v.Number == number {
			return v, true
		}
	}
	return Volcano{}, false
}

// Latitudes returns the known latitudes in set order.
func (s VolcanoSet) Latitudes() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v.Latitude != nil {
			out = append(out, *v.Latitude)
		}
	}
	return out
}

// Longitudes returns the known longitudes in set order.
func (s VolcanoSet) Longitudes() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v.Longitude != nil {
			out = append(out, *v.Longitude)
		}
	}
	return out
}

// Elevations returns the known elevations in meters, in set order.
func (s VolcanoSet) Elevations() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v.Elevation != nil {
			out = append(out, *v.Elevation)
		}
	}
	return out
}

// Countries returns the sorted distinct countries in the set.
func (s VolcanoSet) Countries() []string {
	return distinctSorted(s, func(v Volcano) string { return v.Country })
}

// VolcanoTypes returns the sorted distinct volcano types in the set.
func (s VolcanoSet) VolcanoTypes() []string {
	return distinctSorted(s, func(v Volcano) string { return v.VolcanoType })
}

// SummaryStats describes a volcano set in aggregate. Elevation figures are
// nil when no record has a known elevation.
type SummaryStats struct {
	TotalVolcanoes int
	Countries      int
	VolcanoTypes   int
	AvgElevation   *float64
	MaxElevation   *float64
	MinElevation   *float64
}

// SummaryStats computes aggregate figures for the set.
func (s VolcanoSet) SummaryStats() SummaryStats {
	stats := SummaryStats{
		TotalVolcanoes: len(s),
		Countries:      len(s.Countries()),
		VolcanoTypes:   len(s.VolcanoTypes()),
	}

	elevations := s.Elevations()
	if len(elevations) == 0 {
		return stats
	}

	sum, maximum, minimum := 0.0, elevations[0], elevations[0]
	for _, e := range elevations {
		sum += e
		maximum = math.Max(maximum, e)
		minimum = math.Min(minimum, e)
	}
	avg := sum / float64(len(elevations))
	stats.AvgElevation = &avg
	stats.MaxElevation = &maximum
	stats.MinElevation = &minimum
	return stats
}

// Print writes a one-line-per-record listing to w. A positive limit caps the
// number of records shown.
func (s VolcanoSet) Print(w io.Writer, limit int) {
	shown := s
	if limit > 0 && limit < len(s) {
		shown = s[:limit]
	}

	fmt.Fprintf(w, "VolcanoSet with %d volcanoes:\n", len(s))
	for i, v := range shown {
		elev := "----m"
		if v.Elevation != nil {
			elev = fmt.Sprintf("%4.0fm", *v.Elevation)
		}
		coords := "unknown location"
		if lat, lon, ok := v.Coordinates(); ok {
			coords = fmt.Sprintf("%+7.3f, %+8.3f", lat, lon)
		}
		last := "Unknown"
		if v.LastEruptionYear != nil {
			last = fmt.Sprintf("%d", int(*v.LastEruptionYear))
		}
		fmt.Fprintf(w, "%3d. %-30s | %-15s | %s, %s | Last: %s\n",
			i+1, v.Name, v.Country, coords, elev, last)
	}
	if len(shown) < len(s) {
		fmt.Fprintf(w, "... and %d more\n", len(s)-len(shown))
	}
}

func distinctSorted(s VolcanoSet, key func(Volcano) string) []string {
	seen := make(map[string]bool, len(s))
	var out []string
	for _, v := range s {
		k := key(v)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
