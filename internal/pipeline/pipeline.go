package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Timmoth/doodles/internal/crop"
	"github.com/Timmoth/doodles/internal/filesystem"
	"github.com/Timmoth/doodles/internal/gallery"
	"github.com/Timmoth/doodles/internal/logging"
	"github.com/Timmoth/doodles/internal/media"
	"github.com/Timmoth/doodles/internal/metrics"
)

// Options configures a Pipeline
type Options struct {
	RawDir    string
	OutputDir string
	Decode    media.DecodeOptions
	Retry     filesystem.RetryConfig
}

// Job is one input scan and the full-size output it maps to
type Job struct {
	Input  string
	Output string
	// Exists is set when Output is already present; such jobs are skipped
	Exists bool
	// Err is set when Output could not be checked; the job is a failure
	Err error
}

// Failure records a scan that could not be processed
type Failure struct {
	Path string
	Err  error
}

// Report summarises a run
type Report struct {
	Processed int
	Skipped   int
	Blank     int
	Failed    int
	Failures  []Failure
	Entries   []gallery.Entry
	Duration  time.Duration
}

// Pipeline crops scans and builds the gallery manifest
type Pipeline struct {
	opts Options
}

// New creates a Pipeline
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

// Plan lists the raw directory and pairs every .jp*g scan with its output
// path, in name order.
func (p *Pipeline) Plan() ([]Job, error) {
	entries, err := filesystem.ReadDirWithRetry(p.opts.RawDir, p.opts.Retry)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw directory: %w", err)
	}

	jobs := make([]Job, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !gallery.IsImageName(name) {
			continue
		}

		out := filepath.Join(p.opts.OutputDir, name)
		job := Job{Input: filepath.Join(p.opts.RawDir, name), Output: out}
		job.Exists, err = filesystem.Exists(out, p.opts.Retry)
		if err != nil {
			job.Err = fmt.Errorf("failed to check %s: %w", out, err)
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// Run processes every pending scan and rewrites the manifest. Per-file
// problems are recorded in the report; the returned error is only set when
// the run itself could not complete. ctx is checked between files.
func (p *Pipeline) Run(ctx context.Context) (report *Report, err error) {
	start := time.Now()
	report = &Report{}

	defer func() {
		report.Duration = time.Since(start)
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RunsTotal.WithLabelValues(status).Inc()
		metrics.RunLastDuration.Set(report.Duration.Seconds())
		metrics.RunLastTimestamp.Set(float64(time.Now().Unix()))
	}()

	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs, err := p.Plan()
	if err != nil {
		return report, err
	}
	logging.Info("Found %d scans in %s", len(jobs), p.opts.RawDir)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		name := filepath.Base(job.Input)

		if job.Exists {
			logging.Info("Skipping %s, already exists.", name)
			report.Skipped++
			metrics.FilesTotal.WithLabelValues("skipped").Inc()
			continue
		}

		err := job.Err
		if err == nil {
			err = p.processOne(job)
		}
		switch {
		case err == nil:
			logging.Info("Processed %s", name)
			report.Processed++
			metrics.FilesTotal.WithLabelValues("processed").Inc()
		case errors.Is(err, crop.ErrBlank):
			logging.Info("Skipping %s, nothing found (all white).", name)
			report.Blank++
			metrics.FilesTotal.WithLabelValues("blank").Inc()
		default:
			logging.Error("Failed to process %s: %v", name, err)
			report.Failed++
			report.Failures = append(report.Failures, Failure{Path: job.Input, Err: err})
			metrics.FilesTotal.WithLabelValues("failed").Inc()
		}
	}

	entries, err := gallery.Build(p.opts.OutputDir, p.opts.Retry)
	if err != nil {
		return report, err
	}
	if err := gallery.Write(p.opts.OutputDir, entries); err != nil {
		return report, err
	}
	report.Entries = entries
	logging.Info("Wrote %s with %d entries", gallery.ManifestName, len(entries))

	return report, nil
}

// processOne runs ProcessFile inside its own error boundary so that a
// decoder panic on one corrupt scan is reported like any other failure.
func (p *Pipeline) processOne(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing: %v", r)
		}
	}()
	return p.ProcessFile(job.Input, job.Output)
}

// ProcessFile crops the scan at in and writes the full-size image to out
// and its thumbnail next to it. It returns crop.ErrBlank, and writes
// nothing, when the scan has no ink.
func (p *Pipeline) ProcessFile(in, out string) error {
	img, err := media.Decode(in, p.opts.Decode)
	if err != nil {
		return err
	}

	cropStart := time.Now()
	res, err := crop.Process(img)
	metrics.FileStageDuration.WithLabelValues("crop").Observe(time.Since(cropStart).Seconds())
	if err != nil {
		return err
	}

	logging.Debug("%s: content %v, crop %v, full-size %dx%d",
		filepath.Base(in), res.Content, res.Region,
		res.Fullsize.Bounds().Dx(), res.Fullsize.Bounds().Dy())

	if _, err := media.WriteJPEG(out, res.Fullsize, media.FullsizeQuality, "fullsize"); err != nil {
		return err
	}

	thumbPath := filepath.Join(filepath.Dir(out), gallery.ThumbnailName(filepath.Base(out)))
	if _, err := media.WriteJPEG(thumbPath, res.Thumbnail, media.ThumbnailQuality, "thumbnail"); err != nil {
		return err
	}

	return nil
}
