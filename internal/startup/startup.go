package startup

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/Timmoth/doodles/internal/logging"
	"github.com/Timmoth/doodles/internal/pipeline"

	"github.com/shirou/gopsutil/v3/mem"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// LogDecoderInit logs which decoders are in use
func LogDecoderInit(vipsEnabled bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DECODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Go image decoders (jpeg, png, gif, webp, bmp, tiff)")
	if !vipsEnabled {
		logging.Info("  libvips fallback disabled (VIPS_ENABLED=false)")
	}
}

// LogRunStarted logs the start of the processing pass
func LogRunStarted() {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PROCESSING")
	logging.Info("------------------------------------------------------------")
}

// LogRunSummary logs the outcome of a run
func LogRunSummary(report *pipeline.Report) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SUMMARY")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Processed:        %d", report.Processed)
	logging.Info("  Already existed:  %d", report.Skipped)
	logging.Info("  Blank:            %d", report.Blank)
	logging.Info("  Failed:           %d", report.Failed)
	logging.Info("  Gallery entries:  %d", len(report.Entries))
	logging.Info("  Duration:         %v", report.Duration.Round(time.Millisecond))

	for _, f := range report.Failures {
		logging.Warn("  [FAILED] %s: %v", f.Path, f.Err)
	}
}

// LogMetricsWritten logs the metrics textfile export
func LogMetricsWritten(path string) {
	logging.Info("  [OK] Metrics written to %s", path)
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
      ____                  ____
     / __ \____  ____  ____/ / /__  _____
    / / / / __ \/ __ \/ __  / / _ \/ ___/
   / /_/ / /_/ / /_/ / /_/ / /  __(__  )
  /_____/\____/\____/\__,_/_/\___/____/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())

	if vm, err := mem.VirtualMemory(); err == nil {
		logging.Info("  Memory:          %s total, %s available",
			formatBytes(vm.Total), formatBytes(vm.Available))
	} else {
		logging.Debug("  Memory:          unknown (%v)", err)
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// formatBytes renders a byte count with a binary unit
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
