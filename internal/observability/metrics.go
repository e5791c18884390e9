package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for dataset
// acquisition.
type Metrics struct {
	Downloads    *prometheus.CounterVec // labels: dataset, outcome={success,error}
	CacheLookups *prometheus.CounterVec // labels: dataset, result={hit,miss}

	DownloadBytes    prometheus.Histogram
	DownloadDuration prometheus.Histogram
}

// NewMetrics creates and registers all acquisition metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "volcano_kit",
			Name:      "downloads_total",
			Help:      "Dataset downloads by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "volcano_kit",
			Name:      "cache_lookups_total",
			Help:      "Dataset cache lookups by dataset and result.",
		}, []string{"dataset", "result"}),
		DownloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "volcano_kit",
			Name:      "download_bytes",
			Help:      "Size of downloaded dataset payloads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "volcano_kit",
			Name:      "download_duration_seconds",
			Help:      "Duration of dataset downloads in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	prometheus.MustRegister(
		m.Downloads,
		m.CacheLookups,
		m.DownloadBytes,
		m.DownloadDuration,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Downloads:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "volcano_kit", Name: "downloads_total"}, []string{"dataset", "outcome"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "volcano_kit", Name: "cache_lookups_total"}, []string{"dataset", "result"}),
		DownloadBytes:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "volcano_kit", Name: "download_bytes"}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "volcano_kit", Name: "download_duration_seconds"}),
	}
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide registered metrics, created on first use.
func Default() *Metrics {
	defaultOnce.Do(func() { defaultMetrics = NewMetrics() })
	return defaultMetrics
}
