package votw

import "strings"

// VolcanoFilter bundles the optional criteria accepted by VolcanoSet.Filter.
// Zero-valued fields are ignored; pointer fields distinguish "unset" from a
// legitimate zero. Text criteria match case-insensitive substrings.
type VolcanoFilter struct {
	Country       string
	Name          string
	Number        *int
	VolcanoType   string
	GeologicEpoch string

	// Elevation bounds in meters, inclusive. Records with unknown elevation
	// never match a bounded filter.
	MinElevation *float64
	MaxElevation *float64

	// Reference point for geographic filtering. When both coordinates are
	// set the result is sorted by ascending distance; RadiusKm additionally
	// restricts the result to that distance (inclusive) before sorting.
	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64
}

// Filter returns the volcanoes matching every supplied criterion.
func (s VolcanoSet) Filter(f VolcanoFilter) VolcanoSet {
	out := make(VolcanoSet, 0, len(s))
	for _, v := range s {
		if f.Country != "" && !containsFold(v.Country, f.Country) {
			continue
		}
		if f.Name != "" && !containsFold(v.Name, f.Name) {
			continue
		}
		if f.Number != nil && (v.Number == nil || *v.Number != *f.Number) {
			continue
		}
		if f.VolcanoType != "" && !containsFold(v.VolcanoType, f.VolcanoType) {
			continue
		}
		if f.GeologicEpoch != "" && !containsFold(v.GeologicEpoch, f.GeologicEpoch) {
			continue
		}
		if f.MinElevation != nil || f.MaxElevation != nil {
			if v.Elevation == nil {
				continue
			}
			if f.MinElevation != nil && *v.Elevation < *f.MinElevation {
				continue
			}
			if f.MaxElevation != nil && *v.Elevation > *f.MaxElevation {
				continue
			}
		}
		out = append(out, v)
	}

	if f.Latitude != nil && f.Longitude != nil {
		if f.RadiusKm != nil {
			out = out.WithinRadius(*f.Latitude, *f.Longitude, *f.RadiusKm)
		}
		out = out.SortByDistance(*f.Latitude, *f.Longitude)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
