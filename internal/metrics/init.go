package metrics

// InitializeMetrics pre-populates the expected label combinations so every
// series appears in the first export, even at zero.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		RunsTotal.WithLabelValues(status)
	}

	for _, result := range []string{"processed", "skipped", "blank", "failed"} {
		FilesTotal.WithLabelValues(result)
	}

	for _, stage := range []string{"decode", "crop", "encode"} {
		FileStageDuration.WithLabelValues(stage)
	}

	for _, decoder := range []string{"imaging", "vips"} {
		DecodeTotal.WithLabelValues(decoder, "success")
		DecodeTotal.WithLabelValues(decoder, "error")
	}

	for _, variant := range []string{"fullsize", "thumbnail"} {
		OutputBytes.WithLabelValues(variant)
	}

	for _, source := range []string{"filename", "modtime"} {
		ManifestDateSource.WithLabelValues(source)
	}

	volumes := []string{"raw", "output", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"stat", "readdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}
}
