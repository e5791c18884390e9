// Package votw models volcano and eruption records from the Smithsonian
// Institution's Volcanoes of the World (VOTW) database, as published by the
// Global Volcanism Program (GVP).
//
// # Data Source
//
// Records originate from the GVP web services CSV exports, one file per
// dataset (Holocene or Pleistocene, volcanoes or eruptions). The gvp package
// downloads and caches those files; this package parses them into typed
// records and provides filtering, sorting, geographic queries, merging, and
// CSV/GeoJSON export over collections.
//
// # Field Conventions
//
// Rows arrive as string field mappings keyed by the upstream column names
// (VolcanoNumber, VolcanoName, Latitude, ...). A known subset is coerced to
// typed values; every other column passes through untouched in the record's
// Extra map, so schema additions upstream never break a load.
//
// Numeric coercion never fails a record: a malformed value (for example an
// elevation of "N/A") leaves the typed field nil and the record otherwise
// intact. The volcano identifier is therefore either a valid integer or
// absent, never an error.
//
// Unnamed volcanoes:
//
//	A VolcanoName equal to "unnamed" (any casing) is rewritten to
//	"Unnamed-<number>" using the raw identifier string, so display names
//	stay unique. Without an identifier the name normalizes to "Unnamed".
//
// Coordinates and distance:
//
//	Latitude and longitude are WGS-84 decimal degrees. A record missing
//	either coordinate is infinitely far from every point: radius queries
//	exclude it and distance sorts push it last. Great-circle distances use
//	Earth radius 6371 km.
//
// Elevation:
//
//	Stored in meters. Conversion to feet uses the factor 3.28084.
//	Elevation-range filters skip records with unknown elevation, and a
//	highest-first sort places them last.
//
// Records are immutable once constructed, so collections returned by filter
// and sort operations share record values safely.
package votw
