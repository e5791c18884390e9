package gvp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/volcano-data-kit/votw"
)

// WebDatabase obtains datasets on demand from the GVP web services. It keeps
// no resident data: every accessor call loads from the downloader's cache,
// fetching over the network only when a dataset is not cached yet.
type WebDatabase struct {
	downloader *Downloader
	logger     *slog.Logger
}

// NewWebDatabase creates a lazy facade. No I/O happens until a dataset
// accessor is invoked.
func NewWebDatabase(opts ...Option) *WebDatabase {
	d := newDownloader(opts...)
	return &WebDatabase{downloader: d, logger: d.logger}
}

// GetVolcanoes downloads and loads the requested volcano datasets. With both
// epochs requested the sets are merged with Holocene authoritative;
// colliding Pleistocene records are dropped with a warning naming the count
// and a sample of the dropped identifiers. Requesting neither epoch returns
// an empty set.
func (db *WebDatabase) GetVolcanoes(ctx context.Context, holocene, pleistocene bool) (votw.VolcanoSet, error) {
	if !holocene && !pleistocene {
		return votw.VolcanoSet{}, nil
	}

	var holoceneSet, pleistoceneSet votw.VolcanoSet
	if holocene {
		set, err := db.loadVolcanoes(ctx, HoloceneVolcanoes)
		if err != nil {
			return nil, err
		}
		holoceneSet = set
	}
	if pleistocene {
		set, err := db.loadVolcanoes(ctx, PleistoceneVolcanoes)
		if err != nil {
			return nil, err
		}
		pleistoceneSet = set
	}

	switch {
	case holocene && pleistocene:
		merged, dropped := votw.MergeVolcanoSets(holoceneSet, pleistoceneSet)
		if len(dropped) > 0 {
			sample := dropped
			if len(sample) > 10 {
				sample = sample[:10]
			}
			db.logger.Warn("dropped duplicate volcano records",
				"count", len(dropped),
				"kept_epoch", "holocene",
				"sample", sample)
		}
		return merged, nil
	case holocene:
		return holoceneSet, nil
	default:
		return pleistoceneSet, nil
	}
}

// GetEruptions downloads and loads the requested eruption datasets.
// Requesting both epochs concatenates them; eruption records carry no
// per-record identity at this level, so there is no dedup.
func (db *WebDatabase) GetEruptions(ctx context.Context, holocene, pleistocene bool) (votw.EruptionSet, error) {
	if !holocene && !pleistocene {
		return votw.EruptionSet{}, nil
	}

	var out votw.EruptionSet
	if holocene {
		set, err := db.loadEruptions(ctx, HoloceneEruptions)
		if err != nil {
			return nil, err
		}
		out = append(out, set...)
	}
	if pleistocene {
		set, err := db.loadEruptions(ctx, PleistoceneEruptions)
		if err != nil {
			return nil, err
		}
		out = append(out, set...)
	}
	return out, nil
}

func (db *WebDatabase) loadVolcanoes(ctx context.Context, dataset Dataset) (votw.VolcanoSet, error) {
	path, err := db.downloader.Download(ctx, dataset, false)
	if err != nil {
		return nil, err
	}
	set, err := votw.LoadVolcanoes(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dataset, err)
	}
	return set, nil
}

func (db *WebDatabase) loadEruptions(ctx context.Context, dataset Dataset) (votw.EruptionSet, error) {
	path, err := db.downloader.Download(ctx, dataset, false)
	if err != nil {
		return nil, err
	}
	set, err := votw.LoadEruptions(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dataset, err)
	}
	return set, nil
}

// Volcanoes returns the resident set, which is always empty in web mode;
// use GetVolcanoes to fetch data.
func (db *WebDatabase) Volcanoes() votw.VolcanoSet { return votw.VolcanoSet{} }

// FilterVolcanoes applies criteria to the resident set, which is empty in
// web mode.
func (db *WebDatabase) FilterVolcanoes(f votw.VolcanoFilter) votw.VolcanoSet {
	return db.Volcanoes().Filter(f)
}

// Stats summarizes the resident set.
func (db *WebDatabase) Stats() Stats {
	return Stats{DataSource: db.downloader.BaseURL()}
}

// CacheInfo reports cache state via the underlying downloader.
func (db *WebDatabase) CacheInfo(datasets ...Dataset) ([]CacheStatus, error) {
	return db.downloader.CacheInfo(datasets...)
}

// ClearCache removes cached datasets via the underlying downloader.
func (db *WebDatabase) ClearCache(datasets ...Dataset) error {
	return db.downloader.ClearCache(datasets...)
}

// ExportCSV exports a dataset payload via the underlying downloader.
func (db *WebDatabase) ExportCSV(ctx context.Context, dataset Dataset, outputPath string, forceRefresh bool) (string, error) {
	return db.downloader.ExportCSV(ctx, dataset, outputPath, forceRefresh)
}

// ExportGeoJSON exports a dataset as GeoJSON via the underlying downloader.
func (db *WebDatabase) ExportGeoJSON(ctx context.Context, dataset Dataset, outputPath string, forceRefresh bool) (string, error) {
	return db.downloader.ExportGeoJSON(ctx, dataset, outputPath, forceRefresh)
}
