package gvp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/volcano-data-kit/votw"
)

// LocalDatabase serves volcano queries from a CSV loaded eagerly at
// construction.
type LocalDatabase struct {
	source    string
	volcanoes votw.VolcanoSet
	logger    *slog.Logger
}

// Open loads a volcano CSV into memory. An empty csvPath falls back to the
// cached holocene_volcanoes dataset, downloading it first if nothing is
// cached yet. A named file that does not exist degrades to an empty set with
// a diagnostic instead of failing, keeping the database usable.
func Open(ctx context.Context, csvPath string, opts ...Option) (*LocalDatabase, error) {
	d := newDownloader(opts...)

	source := csvPath
	if source == "" {
		path, err := d.Download(ctx, HoloceneVolcanoes, false)
		if err != nil {
			return nil, err
		}
		source = path
	}

	db := &LocalDatabase{source: source, logger: d.logger}

	set, err := votw.LoadVolcanoes(source)
	if err != nil {
		if csvPath != "" && errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("volcano csv not found, starting empty", "path", csvPath)
			db.volcanoes = votw.VolcanoSet{}
			return db, nil
		}
		return nil, err
	}

	db.volcanoes = set
	d.logger.Info("loaded volcano database", "source", source, "volcanoes", len(set))
	return db, nil
}

// Source returns the path the database was loaded from.
func (db *LocalDatabase) Source() string { return db.source }

// Volcanoes returns the resident volcano set.
func (db *LocalDatabase) Volcanoes() votw.VolcanoSet { return db.volcanoes }

// FilterVolcanoes applies the given criteria to the resident set.
func (db *LocalDatabase) FilterVolcanoes(f votw.VolcanoFilter) votw.VolcanoSet {
	return db.volcanoes.Filter(f)
}

// VolcanoByNumber returns the resident volcano with the given identifier.
func (db *LocalDatabase) VolcanoByNumber(number int) (votw.Volcano, bool) {
	return db.volcanoes.ByNumber(number)
}

// Countries returns the sorted distinct countries in the resident set.
func (db *LocalDatabase) Countries() []string { return db.volcanoes.Countries() }

// VolcanoTypes returns the sorted distinct volcano types in the resident
// set.
func (db *LocalDatabase) VolcanoTypes() []string { return db.volcanoes.VolcanoTypes() }

// Stats summarizes the resident set.
func (db *LocalDatabase) Stats() Stats {
	return Stats{
		TotalVolcanoes: len(db.volcanoes),
		Countries:      len(db.volcanoes.Countries()),
		VolcanoTypes:   len(db.volcanoes.VolcanoTypes()),
		DataSource:     db.source,
	}
}

// GetVolcanoes is a web-mode accessor and always fails on a local database.
func (db *LocalDatabase) GetVolcanoes(ctx context.Context, holocene, pleistocene bool) (votw.VolcanoSet, error) {
	return nil, fmt.Errorf("get volcanoes: %w", ErrWrongMode)
}

// GetEruptions is a web-mode accessor and always fails on a local database.
func (db *LocalDatabase) GetEruptions(ctx context.Context, holocene, pleistocene bool) (votw.EruptionSet, error) {
	return nil, fmt.Errorf("get eruptions: %w", ErrWrongMode)
}
