package gvp

import "github.com/couchcryptid/volcano-data-kit/votw"

// Database is the query surface shared by the local and web facades.
type Database interface {
	// Volcanoes returns the resident volcano set. Web mode keeps no
	// resident data, so its set is always empty.
	Volcanoes() votw.VolcanoSet

	// FilterVolcanoes applies the given criteria to the resident set.
	FilterVolcanoes(f votw.VolcanoFilter) votw.VolcanoSet

	// Stats summarizes the resident set.
	Stats() Stats
}

// Stats describes a database's resident volcano set.
type Stats struct {
	TotalVolcanoes int
	Countries      int
	VolcanoTypes   int
	DataSource     string
}
