package gvp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/volcano-data-kit/internal/observability"
)

const testVolcanoCSV = "VolcanoNumber,VolcanoName,Country,Latitude,Longitude,Elevation\n" +
	"357120,Villarrica,Chile,-39.42,-71.93,2847\n" +
	"211060,Etna,Italy,37.748,14.999,3357\n"

var testDownloadTime = time.Date(2024, 11, 5, 14, 30, 0, 0, time.UTC)

// datasetServer fakes the WFS endpoint, counting fetches per feature type.
type datasetServer struct {
	*httptest.Server

	mu       sync.Mutex
	fetches  map[string]int
	payloads map[string]string // typeName -> body
	status   int
}

func newDatasetServer(t *testing.T) *datasetServer {
	t.Helper()
	s := &datasetServer{
		fetches:  make(map[string]int),
		payloads: make(map[string]string),
		status:   http.StatusOK,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "WFS", r.URL.Query().Get("service"))
		assert.Equal(t, "1.0.0", r.URL.Query().Get("version"))
		assert.Equal(t, "GetFeature", r.URL.Query().Get("request"))
		assert.Equal(t, "csv", r.URL.Query().Get("outputFormat"))

		typeName := r.URL.Query().Get("typeName")
		s.mu.Lock()
		s.fetches[typeName]++
		body, ok := s.payloads[typeName]
		status := s.status
		s.mu.Unlock()

		if status != http.StatusOK {
			http.Error(w, "geoserver unavailable", status)
			return
		}
		if !ok {
			body = testVolcanoCSV
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *datasetServer) fetchCount(d Dataset) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[d.TypeName()]
}

func (s *datasetServer) totalFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.fetches {
		total += n
	}
	return total
}

func (s *datasetServer) setPayload(d Dataset, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[d.TypeName()] = body
}

func (s *datasetServer) setStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDownloader(t *testing.T, baseURL string) *Downloader {
	t.Helper()
	return &Downloader{
		cacheDir:   t.TempDir(),
		baseURL:    baseURL,
		timeout:    5 * time.Second,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		clock:      clockwork.NewFakeClockAt(testDownloadTime),
		logger:     testLogger(),
		metrics:    observability.NewMetricsForTesting(),
	}
}

func TestNewDownloader(t *testing.T) {
	t.Run("creates the cache directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "cache")

		d, err := NewDownloader(WithCacheDir(dir), WithLogger(testLogger()))
		require.NoError(t, err)
		assert.Equal(t, dir, d.CacheDir())

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("defaults", func(t *testing.T) {
		d := newDownloader()

		assert.Equal(t, DefaultBaseURL, d.BaseURL())
		assert.True(t, strings.HasSuffix(d.CacheDir(), DefaultCacheDir))
		require.NotNil(t, d.httpClient)
		assert.Equal(t, defaultTimeout, d.httpClient.Timeout)
		assert.NotNil(t, d.metrics)
	})

	t.Run("timeout option shapes the client", func(t *testing.T) {
		d := newDownloader(WithTimeout(10 * time.Second))
		assert.Equal(t, 10*time.Second, d.httpClient.Timeout)
	})
}

func TestDownloader_Download_SecondCallHitsCache(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	path1, err := d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)
	path2, err := d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)

	assert.Equal(t, path1, path2)
	assert.Equal(t, 1, srv.fetchCount(HoloceneVolcanoes))

	data, err := os.ReadFile(path1)
	require.NoError(t, err)
	assert.Equal(t, testVolcanoCSV, string(data))
}

func TestDownloader_Download_ForceRefresh(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	_, err := d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)
	_, err = d.Download(context.Background(), HoloceneVolcanoes, true)
	require.NoError(t, err)

	assert.Equal(t, 2, srv.fetchCount(HoloceneVolcanoes))
}

func TestDownloader_Download_RepairsPayload(t *testing.T) {
	srv := newDatasetServer(t)
	srv.setPayload(HoloceneVolcanoes, "VolcanoName,Remarks\nEtna,\"lava fountains (< 1 km high)\"\n")
	d := testDownloader(t, srv.URL)

	path, err := d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "(< ")
	assert.Contains(t, string(data), "(&lt; 1 km high)")
}

func TestDownloader_Download_InvalidDataset(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	_, err := d.Download(context.Background(), Dataset("mesozoic_volcanoes"), false)

	var invalid *InvalidDatasetError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, Dataset("mesozoic_volcanoes"), invalid.Dataset)
	assert.Contains(t, err.Error(), "holocene_volcanoes")
	assert.Equal(t, 0, srv.totalFetches())
}

func TestDownloader_Download_ServerError(t *testing.T) {
	srv := newDatasetServer(t)
	srv.setStatus(http.StatusServiceUnavailable)
	d := testDownloader(t, srv.URL)

	_, err := d.Download(context.Background(), HoloceneVolcanoes, false)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Contains(t, err.Error(), "status 503")

	// Nothing is cached after a failed fetch.
	_, statErr := os.Stat(filepath.Join(d.cacheDir, "holocene_volcanoes.csv"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestDownloader_Download_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := testDownloader(t, srv.URL)
	d.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := d.Download(context.Background(), HoloceneVolcanoes, false)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
}

func TestDownloader_Download_CorruptSidecarRefetches(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	_, err := d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)

	metaPath := filepath.Join(d.cacheDir, "holocene_volcanoes.meta.json")
	require.NoError(t, os.WriteFile(metaPath, []byte("{not json"), 0o644))

	_, err = d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.fetchCount(HoloceneVolcanoes))
}

func TestDownloader_Download_MissingPayloadRefetches(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	path, err := d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.fetchCount(HoloceneVolcanoes))
}

func TestDownloader_Download_WritesSidecar(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	path, err := d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(d.cacheDir, "holocene_volcanoes.meta.json"))
	require.NoError(t, err)

	var meta cacheMeta
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "holocene_volcanoes", meta.Dataset)
	assert.Equal(t, "2024-11-05T14:30:00Z", meta.DownloadTime)
	assert.Equal(t, testDownloadTime.Unix(), meta.DownloadTimestamp)
	assert.Equal(t, path, meta.FilePath)
	assert.Equal(t, int64(len(testVolcanoCSV)), meta.FileSize)
}

func TestDownloader_CacheInfo(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	t.Run("empty cache, no network", func(t *testing.T) {
		statuses, err := d.CacheInfo()

		require.NoError(t, err)
		require.Len(t, statuses, 4)
		for _, status := range statuses {
			assert.False(t, status.Cached, status.Dataset)
		}
		assert.Equal(t, 0, srv.totalFetches())
	})

	t.Run("after download", func(t *testing.T) {
		_, err := d.Download(context.Background(), HoloceneEruptions, false)
		require.NoError(t, err)

		statuses, err := d.CacheInfo(HoloceneEruptions)
		require.NoError(t, err)
		require.Len(t, statuses, 1)

		status := statuses[0]
		assert.Equal(t, HoloceneEruptions, status.Dataset)
		assert.True(t, status.Cached)
		assert.Equal(t, int64(len(testVolcanoCSV)), status.FileSize)
		assert.True(t, status.DownloadTime.Equal(testDownloadTime))
		assert.Equal(t, filepath.Join(d.cacheDir, "holocene_eruptions.csv"), status.FilePath)
	})

	t.Run("invalid dataset", func(t *testing.T) {
		_, err := d.CacheInfo(Dataset("bogus"))

		var invalid *InvalidDatasetError
		require.ErrorAs(t, err, &invalid)
	})
}

func TestDownloader_ClearCache(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	_, err := d.Download(context.Background(), HoloceneVolcanoes, false)
	require.NoError(t, err)
	_, err = d.ExportGeoJSON(context.Background(), HoloceneVolcanoes, "", false)
	require.NoError(t, err)
	_, err = d.Download(context.Background(), PleistoceneVolcanoes, false)
	require.NoError(t, err)

	require.NoError(t, d.ClearCache(HoloceneVolcanoes))

	for _, name := range []string{
		"holocene_volcanoes.csv",
		"holocene_volcanoes.geojson",
		"holocene_volcanoes.meta.json",
	} {
		_, err := os.Stat(filepath.Join(d.cacheDir, name))
		assert.True(t, errors.Is(err, os.ErrNotExist), name)
	}
	_, err = os.Stat(filepath.Join(d.cacheDir, "pleistocene_volcanoes.csv"))
	assert.NoError(t, err, "other datasets stay cached")

	t.Run("clearing an empty cache is not an error", func(t *testing.T) {
		assert.NoError(t, d.ClearCache(HoloceneVolcanoes))
	})

	t.Run("no arguments clears everything", func(t *testing.T) {
		require.NoError(t, d.ClearCache())

		statuses, err := d.CacheInfo()
		require.NoError(t, err)
		for _, status := range statuses {
			assert.False(t, status.Cached, status.Dataset)
		}
	})

	t.Run("invalid dataset", func(t *testing.T) {
		var invalid *InvalidDatasetError
		require.ErrorAs(t, d.ClearCache(Dataset("bogus")), &invalid)
	})
}

func TestDownloader_ExportCSV(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)
	out := filepath.Join(t.TempDir(), "out.csv")

	path, err := d.ExportCSV(context.Background(), HoloceneVolcanoes, out, false)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, testVolcanoCSV, string(data))

	t.Run("empty output path returns the cache path", func(t *testing.T) {
		path, err := d.ExportCSV(context.Background(), HoloceneVolcanoes, "", false)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(d.cacheDir, "holocene_volcanoes.csv"), path)
		assert.Equal(t, 1, srv.fetchCount(HoloceneVolcanoes), "export reuses the cache")
	})
}

func TestDownloader_ExportGeoJSON(t *testing.T) {
	srv := newDatasetServer(t)
	d := testDownloader(t, srv.URL)

	path, err := d.ExportGeoJSON(context.Background(), HoloceneVolcanoes, "", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d.cacheDir, "holocene_volcanoes.geojson"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc geoCollection
	require.NoError(t, json.Unmarshal(raw, &fc))
	require.Len(t, fc.Features, 2)
	assert.Equal(t, [2]float64{-71.93, -39.42}, fc.Features[0].Geometry.Coordinates)
	assert.Equal(t, "Villarrica", fc.Features[0].Properties["VolcanoName"])
}
