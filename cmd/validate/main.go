// Command validate performs integrity checks on a local dataset cache: sidecar
// metadata against the payloads on disk, CSV parseability, cross-dataset
// consistency between volcano and eruption lists, and GeoJSON alignment.
//
// Usage:
//
//	go run ./cmd/validate -cache-dir .volcanoes_cache
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/couchcryptid/volcano-data-kit/gvp"
	"github.com/couchcryptid/volcano-data-kit/votw"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// sidecar mirrors the JSON metadata written next to each cached payload.
type sidecar struct {
	Dataset           string `json:"dataset"`
	DownloadTime      string `json:"download_time"`
	DownloadTimestamp int64  `json:"download_timestamp"`
	FilePath          string `json:"file_path"`
	FileSize          int64  `json:"file_size"`
}

// cacheEntry holds everything found on disk for one cached dataset.
type cacheEntry struct {
	dataset     gvp.Dataset
	csvPath     string
	csvSize     int64
	hasMeta     bool
	metaErr     error
	meta        sidecar
	geojsonPath string // "" when no export exists
}

func main() {
	cacheDir := flag.String("cache-dir", gvp.DefaultCacheDir, "dataset cache directory to validate")
	flag.Parse()

	if code := run(*cacheDir); code != 0 {
		os.Exit(code)
	}
}

func run(cacheDir string) int {
	fmt.Println("=== Volcano Cache Integrity Validation ===")
	fmt.Println()

	entries := loadCache(cacheDir)
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no cached datasets in %s\n", cacheDir)
		return 1
	}

	volcanoes, eruptions, parsePhase := parseDatasets(entries)

	// ── Run validation phases ──
	phases := []*phase{
		validateSidecars(entries),
		parsePhase,
		validateConsistency(volcanoes, eruptions),
		validateGeoJSON(entries, volcanoes, eruptions),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	var volcanoCount, eruptionCount int
	for _, s := range volcanoes {
		volcanoCount += len(s)
	}
	for _, s := range eruptions {
		eruptionCount += len(s)
	}
	fmt.Println()
	fmt.Printf("Datasets: %d cached, %d volcano records, %d eruption records\n",
		len(entries), volcanoCount, eruptionCount)

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Cache loading ──

// loadCache collects the on-disk state for every dataset with a cached
// payload. Datasets without a payload are skipped with a note.
func loadCache(cacheDir string) []cacheEntry {
	var entries []cacheEntry
	for _, dataset := range gvp.Datasets() {
		csvPath := filepath.Join(cacheDir, string(dataset)+".csv")
		info, err := os.Stat(csvPath)
		if err != nil {
			fmt.Printf("  note: %s not cached, skipping\n", dataset)
			continue
		}

		entry := cacheEntry{dataset: dataset, csvPath: csvPath, csvSize: info.Size()}

		metaPath := filepath.Join(cacheDir, string(dataset)+".meta.json")
		if data, err := os.ReadFile(metaPath); err == nil {
			entry.hasMeta = true
			entry.metaErr = json.Unmarshal(data, &entry.meta)
		}

		geojsonPath := filepath.Join(cacheDir, string(dataset)+".geojson")
		if _, err := os.Stat(geojsonPath); err == nil {
			entry.geojsonPath = geojsonPath
		}

		entries = append(entries, entry)
	}
	return entries
}

func isEruptionDataset(dataset gvp.Dataset) bool {
	return strings.HasSuffix(string(dataset), "_eruptions")
}

// ── Phase 1: Sidecar Metadata ──
// Validates that each cached payload carries a sidecar describing it.

func validateSidecars(entries []cacheEntry) *phase {
	p := &phase{name: "Phase 1: Sidecar Metadata"}

	now := time.Now()
	for _, e := range entries {
		if !e.hasMeta {
			p.errorf("%s: payload present but sidecar missing", e.dataset)
			continue
		}
		if e.metaErr != nil {
			p.errorf("%s: sidecar unreadable: %v", e.dataset, e.metaErr)
			continue
		}

		if e.meta.Dataset != string(e.dataset) {
			p.errorf("%s: sidecar names dataset %q", e.dataset, e.meta.Dataset)
		}
		if e.meta.FileSize != e.csvSize {
			p.errorf("%s: sidecar records %d bytes, payload is %d", e.dataset, e.meta.FileSize, e.csvSize)
		}
		if base := filepath.Base(e.meta.FilePath); base != string(e.dataset)+".csv" {
			p.errorf("%s: sidecar points at %q", e.dataset, e.meta.FilePath)
		}

		downloadTime, err := time.Parse(time.RFC3339, e.meta.DownloadTime)
		if err != nil {
			p.errorf("%s: sidecar download_time %q: %v", e.dataset, e.meta.DownloadTime, err)
			continue
		}
		if downloadTime.Unix() != e.meta.DownloadTimestamp {
			p.errorf("%s: download_time %s disagrees with download_timestamp %d",
				e.dataset, e.meta.DownloadTime, e.meta.DownloadTimestamp)
		}
		if downloadTime.After(now) {
			p.errorf("%s: download_time %s is in the future", e.dataset, e.meta.DownloadTime)
		}
	}
	return p
}

// ── Phase 2: Dataset Parsing ──
// Parses every cached payload and checks record-level sanity.

func parseDatasets(entries []cacheEntry) (map[gvp.Dataset]votw.VolcanoSet, map[gvp.Dataset]votw.EruptionSet, *phase) {
	p := &phase{name: "Phase 2: Dataset Parsing"}
	volcanoes := make(map[gvp.Dataset]votw.VolcanoSet)
	eruptions := make(map[gvp.Dataset]votw.EruptionSet)

	for _, e := range entries {
		if isEruptionDataset(e.dataset) {
			set, err := votw.LoadEruptions(e.csvPath)
			if err != nil {
				p.errorf("%s: %v", e.dataset, err)
				continue
			}
			eruptions[e.dataset] = set
			checkEruptions(p, e.dataset, set)
			continue
		}

		set, err := votw.LoadVolcanoes(e.csvPath)
		if err != nil {
			p.errorf("%s: %v", e.dataset, err)
			continue
		}
		volcanoes[e.dataset] = set
		checkVolcanoes(p, e.dataset, set)
	}
	return volcanoes, eruptions, p
}

func checkVolcanoes(p *phase, dataset gvp.Dataset, set votw.VolcanoSet) {
	if len(set) == 0 {
		p.errorf("%s: no records", dataset)
		return
	}

	seen := map[int]string{}
	var missingNumber int
	for _, v := range set {
		if v.Number == nil {
			missingNumber++
			continue
		}
		if prev, ok := seen[*v.Number]; ok {
			p.errorf("%s: volcano number %d appears twice (%q and %q)", dataset, *v.Number, prev, v.Name)
		}
		seen[*v.Number] = v.Name

		if lat, lon, ok := v.Coordinates(); ok {
			if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				p.errorf("%s: volcano %d has coordinates (%g, %g) out of range", dataset, *v.Number, lat, lon)
			}
		}
	}

	if missingNumber == len(set) {
		p.errorf("%s: no record has a volcano number, header mismatch likely", dataset)
	} else if missingNumber > 0 {
		fmt.Printf("  note: %s has %d records without a volcano number\n", dataset, missingNumber)
	}
}

func checkEruptions(p *phase, dataset gvp.Dataset, set votw.EruptionSet) {
	if len(set) == 0 {
		p.errorf("%s: no records", dataset)
		return
	}

	var missingVolcano int
	for _, e := range set {
		if e.VolcanoNumber == nil {
			missingVolcano++
		}
		if e.StartYear != nil && e.EndYear != nil && *e.EndYear < *e.StartYear {
			num := "?"
			if e.EruptionNumber != nil {
				num = fmt.Sprint(*e.EruptionNumber)
			}
			p.errorf("%s: eruption %s ends in %g before starting in %g", dataset, num, *e.EndYear, *e.StartYear)
		}
	}

	if missingVolcano == len(set) {
		p.errorf("%s: no record references a volcano, header mismatch likely", dataset)
	} else if missingVolcano > 0 {
		fmt.Printf("  note: %s has %d records without a volcano number\n", dataset, missingVolcano)
	}
}

// ── Phase 3: Cross-Dataset Consistency ──
// Checks eruption lists against the volcano list of the same epoch.

func validateConsistency(volcanoes map[gvp.Dataset]votw.VolcanoSet, eruptions map[gvp.Dataset]votw.EruptionSet) *phase {
	p := &phase{name: "Phase 3: Cross-Dataset Consistency"}

	pairs := []struct {
		volcanoes gvp.Dataset
		eruptions gvp.Dataset
	}{
		{gvp.HoloceneVolcanoes, gvp.HoloceneEruptions},
		{gvp.PleistoceneVolcanoes, gvp.PleistoceneEruptions},
	}

	for _, pair := range pairs {
		vset, haveVolcanoes := volcanoes[pair.volcanoes]
		eset, haveEruptions := eruptions[pair.eruptions]
		if !haveVolcanoes || !haveEruptions {
			continue
		}

		known := make(map[int]bool, len(vset))
		for _, v := range vset {
			if v.Number != nil {
				known[*v.Number] = true
			}
		}

		var referenced, unresolved int
		for _, e := range eset {
			if e.VolcanoNumber == nil {
				continue
			}
			referenced++
			if !known[*e.VolcanoNumber] {
				unresolved++
			}
		}

		if referenced > 0 && unresolved == referenced {
			p.errorf("%s: no eruption references a volcano in %s", pair.eruptions, pair.volcanoes)
		} else if unresolved > 0 {
			fmt.Printf("  note: %s has %d of %d references outside %s\n",
				pair.eruptions, unresolved, referenced, pair.volcanoes)
		}
	}

	if hol, ok := volcanoes[gvp.HoloceneVolcanoes]; ok {
		if ple, ok := volcanoes[gvp.PleistoceneVolcanoes]; ok {
			_, dropped := votw.MergeVolcanoSets(hol, ple)
			fmt.Printf("  note: %d volcano numbers appear in both epochs\n", len(dropped))
		}
	}

	return p
}

// ── Phase 4: GeoJSON Alignment ──
// Compares exported GeoJSON feature counts against the records that carry
// coordinates.

// featureCollection decodes just enough of an exported GeoJSON document.
type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Type     string `json:"type"`
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func validateGeoJSON(entries []cacheEntry, volcanoes map[gvp.Dataset]votw.VolcanoSet, eruptions map[gvp.Dataset]votw.EruptionSet) *phase {
	p := &phase{name: "Phase 4: GeoJSON Alignment"}

	var checked int
	for _, e := range entries {
		if e.geojsonPath == "" {
			continue
		}
		checked++

		data, err := os.ReadFile(e.geojsonPath)
		if err != nil {
			p.errorf("%s: %v", e.dataset, err)
			continue
		}
		var fc featureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			p.errorf("%s: decode geojson: %v", e.dataset, err)
			continue
		}

		if fc.Type != "FeatureCollection" {
			p.errorf("%s: document type is %q", e.dataset, fc.Type)
		}
		for i, f := range fc.Features {
			if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) != 2 {
				p.errorf("%s: feature %d has geometry %s with %d coordinates",
					e.dataset, i, f.Geometry.Type, len(f.Geometry.Coordinates))
			}
		}

		expected := coordinateRecords(e.dataset, volcanoes, eruptions)
		if expected >= 0 && len(fc.Features) != expected {
			p.errorf("%s: geojson has %d features, csv has %d records with coordinates",
				e.dataset, len(fc.Features), expected)
		}
	}

	if checked == 0 {
		fmt.Println("  note: no GeoJSON exports to validate")
	}
	return p
}

// coordinateRecords counts the records in a parsed dataset that carry
// coordinates. Returns -1 when the dataset failed to parse.
func coordinateRecords(dataset gvp.Dataset, volcanoes map[gvp.Dataset]votw.VolcanoSet, eruptions map[gvp.Dataset]votw.EruptionSet) int {
	if isEruptionDataset(dataset) {
		set, ok := eruptions[dataset]
		if !ok {
			return -1
		}
		n := 0
		for _, e := range set {
			if _, _, ok := e.Coordinates(); ok {
				n++
			}
		}
		return n
	}

	set, ok := volcanoes[dataset]
	if !ok {
		return -1
	}
	n := 0
	for _, v := range set {
		if _, _, ok := v.Coordinates(); ok {
			n++
		}
	}
	return n
}
