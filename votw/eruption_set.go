package votw

import (
	"fmt"
	"io"
	"sort"
)

// EruptionSet is an ordered collection of eruption records. Operations never
// mutate the receiver.
type EruptionSet []Eruption

// FilterByVolcanoNumber returns eruptions belonging to the given volcano.
func (s EruptionSet) FilterByVolcanoNumber(number int) EruptionSet {
	out := make(EruptionSet, 0, len(s))
	for _, e := range s {
		if e.VolcanoNumber != nil && *e.VolcanoNumber == number {
			out = append(out, e)
		}
	}
	return out
}

// VolcanoNumbers returns the sorted distinct volcano identifiers present in
// the set.
func (s EruptionSet) VolcanoNumbers() []int {
	seen := make(map[int]bool, len(s))
	var out []int
	for _, e := range s {
		if e.VolcanoNumber == nil || seen[*e.VolcanoNumber] {
			continue
		}
		seen[*e.VolcanoNumber] = true
		out = append(out, *e.VolcanoNumber)
	}
	sort.Ints(out)
	return out
}

// EruptionSummary describes an eruption set in aggregate.
type EruptionSummary struct {
	TotalEruptions  int
	UniqueVolcanoes int
}

// SummaryStats computes aggregate figures for the set.
func (s EruptionSet) SummaryStats() EruptionSummary {
	return EruptionSummary{
		TotalEruptions:  len(s),
		UniqueVolcanoes: len(s.VolcanoNumbers()),
	}
}

// Print writes a one-line-per-record listing to w. A positive limit caps the
// number of records shown.
func (s EruptionSet) Print(w io.Writer, limit int) {
	shown := s
	if limit > 0 && limit < len(s) {
		shown = s[:limit]
	}

	fmt.Fprintf(w, "EruptionSet with %d eruptions:\n", len(s))
	for i, e := range shown {
		fmt.Fprintf(w, "%3d. %s\n", i+1, e)
	}
	if len(shown) < len(s) {
		fmt.Fprintf(w, "... and %d more\n", len(s)-len(shown))
	}
}
