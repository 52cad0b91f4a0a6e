/*
Package filesystem provides the directory listing and stat calls used by the
doodles pipeline, with automatic retry for NFS stale file handle errors.

# Purpose

Raw scans and the gallery output often live on network shares. Listing the
raw directory, checking whether an output already exists and reading output
modification times are wrapped so that transient ESTALE (errno 116) errors
are retried with exponential backoff instead of failing the run.

Image decoding is deliberately not routed through this package: a file that
cannot be read or decoded fails for that file only.

# Usage

	cfg := filesystem.DefaultRetryConfig()

	entries, err := filesystem.ReadDirWithRetry(rawDir, cfg)
	if err != nil {
	    return err
	}

	exists, err := filesystem.Exists(filepath.Join(outDir, name), cfg)

# Retry Behavior

Defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only ESTALE triggers retries. All other errors fail immediately.

# Metrics

Install an [Observer] with [SetObserver] (the metrics package provides one)
and a [VolumeResolver] with [SetDefaultVolumeResolver] to label operations
by volume ("raw" or "output").
*/
package filesystem
