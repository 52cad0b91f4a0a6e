package main

import (
	"context"
	"time"

	"github.com/Timmoth/doodles/internal/filesystem"
	"github.com/Timmoth/doodles/internal/logging"
	"github.com/Timmoth/doodles/internal/media"
	"github.com/Timmoth/doodles/internal/metrics"
	"github.com/Timmoth/doodles/internal/pipeline"
	"github.com/Timmoth/doodles/internal/startup"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Filesystem metrics are labelled by the configured directories
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"raw":    config.RawDir,
		"output": config.OutputDir,
	}))
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	metrics.InitializeMetrics()

	// Initialize decoders
	startup.LogDecoderInit(config.VipsEnabled)
	if config.VipsEnabled {
		if err := media.InitVips(); err != nil {
			logging.Warn("libvips unavailable, continuing with Go decoders only: %v", err)
		}
		defer media.ShutdownVips()
	}

	p := pipeline.New(pipeline.Options{
		RawDir:    config.RawDir,
		OutputDir: config.OutputDir,
		Decode: media.DecodeOptions{
			AutoOrient: config.AutoOrient,
			UseVips:    config.VipsEnabled,
		},
		Retry: filesystem.DefaultRetryConfig(),
	})

	startup.LogRunStarted()
	report, runErr := p.Run(context.Background())
	startup.LogRunSummary(report)

	if config.MetricsFile != "" {
		if err := metrics.WriteTextfile(config.MetricsFile); err != nil {
			logging.Error("Failed to write metrics file: %v", err)
		} else {
			startup.LogMetricsWritten(config.MetricsFile)
		}
	}

	if runErr != nil {
		media.ShutdownVips()
		startup.LogFatal("Run failed: %v", runErr)
	}

	logging.Info("Done in %v", time.Since(startTime).Round(time.Millisecond))
}
