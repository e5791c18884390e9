package gvp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/volcano-data-kit/internal/observability"
)

const (
	// DefaultBaseURL is the Smithsonian GVP web services endpoint.
	DefaultBaseURL = "https://webservices.volcano.si.edu/geoserver/GVP-VOTW/ows"

	// DefaultCacheDir is the cache directory name resolved under the working
	// directory when none is configured.
	DefaultCacheDir = ".volcanoes_cache"

	defaultTimeout = 60 * time.Second
)

// Downloader fetches GVP datasets over WFS and caches them on disk. Each
// download is a single blocking GET with a fixed per-request timeout and no
// retries; a failed request surfaces immediately as a *DownloadError.
type Downloader struct {
	cacheDir   string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures a Downloader and the facades built on it.
type Option func(*Downloader)

// WithCacheDir overrides the cache directory.
func WithCacheDir(dir string) Option {
	return func(d *Downloader) { d.cacheDir = dir }
}

// WithBaseURL overrides the WFS endpoint.
func WithBaseURL(baseURL string) Option {
	return func(d *Downloader) { d.baseURL = baseURL }
}

// WithTimeout sets the per-request network timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Downloader) { d.timeout = timeout }
}

// WithHTTPClient replaces the HTTP client, ignoring WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) { d.httpClient = client }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) { d.logger = logger }
}

// WithClock replaces the wall clock recorded in cache metadata.
func WithClock(clock clockwork.Clock) Option {
	return func(d *Downloader) { d.clock = clock }
}

// WithMetrics replaces the metrics sink.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(d *Downloader) { d.metrics = metrics }
}

// newDownloader applies defaults and options without touching the
// filesystem.
func newDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		cacheDir: defaultCacheDir(),
		baseURL:  DefaultBaseURL,
		timeout:  defaultTimeout,
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
		metrics:  observability.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.httpClient == nil {
		d.httpClient = &http.Client{Timeout: d.timeout}
	}
	return d
}

// NewDownloader creates a downloader and ensures its cache directory exists.
func NewDownloader(opts ...Option) (*Downloader, error) {
	d := newDownloader(opts...)
	if err := os.MkdirAll(d.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return d, nil
}

func defaultCacheDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return DefaultCacheDir
	}
	return filepath.Join(wd, DefaultCacheDir)
}

// CacheDir returns the resolved cache directory.
func (d *Downloader) CacheDir() string { return d.cacheDir }

// BaseURL returns the WFS endpoint in use.
func (d *Downloader) BaseURL() string { return d.baseURL }

// Download ensures the dataset's CSV payload is cached and returns its path.
// A present payload with a parseable sidecar is reused without network
// access unless forceRefresh is set.
func (d *Downloader) Download(ctx context.Context, dataset Dataset, forceRefresh bool) (string, error) {
	if !dataset.Valid() {
		return "", &InvalidDatasetError{Dataset: dataset}
	}

	path := d.cachePath(dataset)
	if !forceRefresh {
		if _, ok := readCacheMeta(d.metaPath(dataset)); ok {
			if _, err := os.Stat(path); err == nil {
				d.metrics.CacheLookups.WithLabelValues(string(dataset), "hit").Inc()
				d.logger.Debug("cache hit", "dataset", dataset, "path", path)
				return path, nil
			}
		}
		d.metrics.CacheLookups.WithLabelValues(string(dataset), "miss").Inc()
	}

	requestURL := d.downloadURL(dataset, "csv")
	d.logger.Info("downloading dataset", "dataset", dataset, "url", requestURL)

	start := d.clock.Now()
	data, err := d.fetch(ctx, requestURL)
	if err != nil {
		d.metrics.Downloads.WithLabelValues(string(dataset), "error").Inc()
		return "", err
	}
	d.metrics.DownloadDuration.Observe(d.clock.Since(start).Seconds())

	data = repairPayload(data)

	if err := os.MkdirAll(d.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write dataset: %w", err)
	}
	if err := d.writeMeta(dataset, path, int64(len(data))); err != nil {
		return "", err
	}

	d.metrics.Downloads.WithLabelValues(string(dataset), "success").Inc()
	d.metrics.DownloadBytes.Observe(float64(len(data)))
	d.logger.Info("dataset cached", "dataset", dataset, "path", path, "bytes", len(data))
	return path, nil
}

func (d *Downloader) fetch(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &DownloadError{URL: requestURL, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &DownloadError{URL: requestURL, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: requestURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

// repairPayload rewrites the one malformed byte sequence the upstream
// service is known to emit inside text fields.
func repairPayload(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("(< "), []byte("(&lt; "))
}

func (d *Downloader) writeMeta(dataset Dataset, path string, size int64) error {
	now := d.clock.Now().UTC()
	return writeCacheMeta(d.metaPath(dataset), cacheMeta{
		Dataset:           string(dataset),
		DownloadTime:      now.Format(time.RFC3339),
		DownloadTimestamp: now.Unix(),
		FilePath:          path,
		FileSize:          size,
	})
}

// CacheInfo reports cache state for the given datasets, or all datasets when
// none are named. It never touches the network.
func (d *Downloader) CacheInfo(datasets ...Dataset) ([]CacheStatus, error) {
	if len(datasets) == 0 {
		datasets = Datasets()
	}

	statuses := make([]CacheStatus, 0, len(datasets))
	for _, ds := range datasets {
		if !ds.Valid() {
			return nil, &InvalidDatasetError{Dataset: ds}
		}
		status := CacheStatus{Dataset: ds, FilePath: d.cachePath(ds)}
		if meta, ok := readCacheMeta(d.metaPath(ds)); ok {
			if info, err := os.Stat(status.FilePath); err == nil {
				status.Cached = true
				status.FileSize = info.Size()
				if t, err := time.Parse(time.RFC3339, meta.DownloadTime); err == nil {
					status.DownloadTime = t
				}
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// ClearCache removes cached payloads, derived exports, and sidecars for the
// given datasets, or for every dataset when none are named. Absent files are
// not an error.
func (d *Downloader) ClearCache(datasets ...Dataset) error {
	if len(datasets) == 0 {
		datasets = Datasets()
	}

	for _, ds := range datasets {
		if !ds.Valid() {
			return &InvalidDatasetError{Dataset: ds}
		}
		for _, path := range []string{d.cachePath(ds), d.geojsonPath(ds), d.metaPath(ds)} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %s: %w", path, err)
			}
		}
		d.logger.Debug("cache cleared", "dataset", ds)
	}
	return nil
}

// ExportCSV ensures the dataset is cached and copies its CSV payload to
// outputPath. An empty outputPath leaves the payload in place and returns
// the cache path.
func (d *Downloader) ExportCSV(ctx context.Context, dataset Dataset, outputPath string, forceRefresh bool) (string, error) {
	path, err := d.Download(ctx, dataset, forceRefresh)
	if err != nil {
		return "", err
	}
	if outputPath == "" || outputPath == path {
		return path, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read cached dataset: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write csv export: %w", err)
	}
	d.logger.Info("exported dataset", "dataset", dataset, "format", "csv", "path", outputPath)
	return outputPath, nil
}

// ExportGeoJSON ensures the dataset is cached, converts the CSV payload to a
// GeoJSON FeatureCollection, and writes it to outputPath. An empty
// outputPath writes next to the cached payload.
func (d *Downloader) ExportGeoJSON(ctx context.Context, dataset Dataset, outputPath string, forceRefresh bool) (string, error) {
	path, err := d.Download(ctx, dataset, forceRefresh)
	if err != nil {
		return "", err
	}
	if outputPath == "" {
		outputPath = d.geojsonPath(dataset)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read cached dataset: %w", err)
	}
	geo, err := convertCSVToGeoJSON(data)
	if err != nil {
		return "", fmt.Errorf("convert %s to geojson: %w", dataset, err)
	}
	if err := os.WriteFile(outputPath, geo, 0o644); err != nil {
		return "", fmt.Errorf("write geojson export: %w", err)
	}
	d.logger.Info("exported dataset", "dataset", dataset, "format", "geojson", "path", outputPath)
	return outputPath, nil
}

func (d *Downloader) downloadURL(dataset Dataset, format string) string {
	params := url.Values{
		"service":      {"WFS"},
		"version":      {"1.0.0"},
		"request":      {"GetFeature"},
		"typeName":     {dataset.TypeName()},
		"outputFormat": {format},
	}
	return d.baseURL + "?" + params.Encode()
}

func (d *Downloader) cachePath(dataset Dataset) string {
	return filepath.Join(d.cacheDir, string(dataset)+".csv")
}

func (d *Downloader) metaPath(dataset Dataset) string {
	return filepath.Join(d.cacheDir, string(dataset)+".meta.json")
}

func (d *Downloader) geojsonPath(dataset Dataset) string {
	return filepath.Join(d.cacheDir, string(dataset)+".geojson")
}
