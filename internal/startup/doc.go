// Package startup handles configuration loading and the run's lifecycle
// logging.
//
// # Configuration
//
// [LoadConfig] starts from built-in defaults, applies an optional YAML file
// and then environment variables. With no file and no variables the tool
// reads raw_doodles/ and writes doodles/ in the working directory.
//
// Environment variables:
//
//   - DOODLES_CONFIG: YAML file to load (default: doodles.yaml if present)
//   - RAW_DIR: directory of scans to process (default: raw_doodles)
//   - OUTPUT_DIR: directory for images and gallery.json (default: doodles)
//   - METRICS_FILE: Prometheus textfile to write after the run (default: off)
//   - AUTO_ORIENT: apply EXIF orientation when decoding (default: false)
//   - VIPS_ENABLED: use libvips when the Go decoders fail (default: true)
//   - LOG_LEVEL: debug, info, warn or error (default: info)
//
// The YAML file uses the keys raw_dir, output_dir, metrics_file,
// auto_orient and vips_enabled. Unknown keys are rejected.
//
// # Directory Setup
//
// The raw directory must exist. The output directory is created when
// missing and must be writable.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
package startup
