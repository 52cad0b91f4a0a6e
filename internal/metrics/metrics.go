package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every doodles metric. It is separate from the default
// registry so textfile exports only carry run metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Run metrics
var (
	RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"},
	)

	RunLastTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "doodles_run_last_timestamp_seconds",
			Help: "Unix timestamp of the last completed run",
		},
	)

	RunLastDuration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "doodles_run_last_duration_seconds",
			Help: "Duration of the last run in seconds",
		},
	)
)

// Per-file metrics
var (
	FilesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_files_total",
			Help: "Input files seen, by outcome (processed, skipped, blank, failed)",
		},
		[]string{"result"},
	)

	FileStageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doodles_file_stage_duration_seconds",
			Help:    "Time spent per file in each stage",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"}, // "decode", "crop", "encode"
	)

	DecodeTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_decode_total",
			Help: "Image decodes by decoder and status",
		},
		[]string{"decoder", "status"},
	)

	OutputBytes = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_output_bytes_total",
			Help: "Bytes of encoded JPEG written, by variant",
		},
		[]string{"variant"}, // "fullsize", "thumbnail"
	)
)

// Manifest metrics
var (
	ManifestEntries = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "doodles_manifest_entries",
			Help: "Entries in the last written gallery manifest",
		},
	)

	ManifestDateSource = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_manifest_date_source_total",
			Help: "Manifest timestamps by source (filename, modtime)",
		},
		[]string{"source"},
	)

	ManifestMissingThumbnails = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "doodles_manifest_missing_thumbnails_total",
			Help: "Manifest entries whose thumbnail file was not found",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doodles_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration by volume and operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_filesystem_operation_errors_total",
			Help: "Failed filesystem operations by volume and operation",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_filesystem_retry_attempts_total",
			Help: "Retries after NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doodles_filesystem_retry_duration_seconds",
			Help:    "Total operation time including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doodles_filesystem_stale_errors_total",
			Help: "ESTALE errors seen",
		},
		[]string{"operation", "volume"},
	)
)
