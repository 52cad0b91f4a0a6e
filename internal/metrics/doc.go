// Package metrics provides Prometheus instrumentation for doodles runs.
//
// doodles is a batch tool, so nothing is scraped. Instead every metric is
// registered on [Registry] and, when METRICS_FILE is configured, exported
// once at the end of a run with [WriteTextfile] for the node_exporter
// textfile collector. All metrics are prefixed with "doodles_".
//
// # Metric Categories
//
// ## Run Metrics
//   - RunsTotal: Counter of runs by status
//   - RunLastTimestamp / RunLastDuration: Gauges for the last run
//
// ## File Metrics
//   - FilesTotal: Counter of input files by outcome
//   - FileStageDuration: Histogram of decode, crop and encode time
//   - DecodeTotal: Counter of decodes by decoder (imaging, vips) and status
//   - OutputBytes: Counter of JPEG bytes written by variant
//
// ## Manifest Metrics
//   - ManifestEntries: Gauge of entries in the last manifest
//   - ManifestDateSource: Counter of timestamps taken from filename or mtime
//   - ManifestMissingThumbnails: Counter of entries without a thumbnail file
//
// ## Filesystem Metrics
//
// Recorded through [NewFilesystemObserver], which implements
// filesystem.Observer.
//
// Call [InitializeMetrics] once at startup so zero-valued series are
// exported too.
package metrics
