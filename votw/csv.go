package votw

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadVolcanoes reads a volcano dataset CSV from disk.
func LoadVolcanoes(path string) (VolcanoSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open volcano csv: %w", err)
	}
	defer f.Close()
	return ReadVolcanoes(f)
}

// ReadVolcanoes parses volcano records from header-mapped CSV. The header's
// byte-order mark is tolerated, cells are whitespace-trimmed, unknown columns
// pass through to each record's Extra map, and rows that fail to parse are
// skipped rather than failing the load.
func ReadVolcanoes(r io.Reader) (VolcanoSet, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	set := make(VolcanoSet, 0, len(rows))
	for _, fields := range rows {
		set = append(set, ParseVolcano(fields))
	}
	return set, nil
}

// LoadEruptions reads an eruption dataset CSV from disk.
func LoadEruptions(path string) (EruptionSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open eruption csv: %w", err)
	}
	defer f.Close()
	return ReadEruptions(f)
}

// ReadEruptions parses eruption records from header-mapped CSV with the same
// tolerances as ReadVolcanoes.
func ReadEruptions(r io.Reader) (EruptionSet, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	set := make(EruptionSet, 0, len(rows))
	for _, fields := range rows {
		set = append(set, ParseEruption(fields))
	}
	return set, nil
}

// readRows decodes CSV into per-row field mappings keyed by header name.
// Short rows are padded with empty fields; malformed rows are skipped.
func readRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A bad row must not abort the batch.
			continue
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				fields[name] = strings.TrimSpace(record[i])
			} else {
				fields[name] = ""
			}
		}
		rows = append(rows, fields)
	}
	return rows, nil
}
