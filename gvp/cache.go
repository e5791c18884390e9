package gvp

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

// cacheMeta is the JSON sidecar persisted next to each cached payload.
type cacheMeta struct {
	Dataset           string `json:"dataset"`
	DownloadTime      string `json:"download_time"`
	DownloadTimestamp int64  `json:"download_timestamp"`
	FilePath          string `json:"file_path"`
	FileSize          int64  `json:"file_size"`
}

// CacheStatus describes one dataset's presence in the local cache.
type CacheStatus struct {
	Dataset      Dataset
	Cached       bool
	DownloadTime time.Time
	FileSize     int64
	FilePath     string
}

// readCacheMeta loads a sidecar. Any failure, including corrupt JSON, reads
// as a cache miss.
func readCacheMeta(path string) (cacheMeta, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cacheMeta{}, false
	}
	var meta cacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}, false
	}
	return meta, true
}

func writeCacheMeta(path string, meta cacheMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache metadata: %w", err)
	}
	return nil
}
