package votw

import "sort"

// MergeVolcanoSets combines two volcano sets, treating primary as
// authoritative: the result holds every primary record plus each secondary
// record whose identifier is absent from primary. Colliding secondary records
// are dropped and their identifiers returned sorted, so callers can surface a
// diagnostic. Secondary records without an identifier cannot collide and are
// always kept.
//
// The GVP Holocene and Pleistocene volcano datasets overlap at the epoch
// boundary; Holocene records are the authoritative copy.
func MergeVolcanoSets(primary, secondary VolcanoSet) (VolcanoSet, []int) {
	ids := make(map[int]bool, len(primary))
	for _, v := range primary {
		if v.Number != nil {
			ids[*v.Number] = true
		}
	}

	merged := make(VolcanoSet, 0, len(primary)+len(secondary))
	merged = append(merged, primary...)

	var dropped []int
	for _, v := range secondary {
		if v.Number != nil && ids[*v.Number] {
			dropped = append(dropped, *v.Number)
			continue
		}
		merged = append(merged, v)
	}

	sort.Ints(dropped)
	return merged, dropped
}
