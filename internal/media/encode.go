package media

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/Timmoth/doodles/internal/logging"
	"github.com/Timmoth/doodles/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// FullsizeQuality is the JPEG quality of the cropped full-size image
	FullsizeQuality = 95
	// ThumbnailQuality is the JPEG quality of the square thumbnail
	ThumbnailQuality = 90
)

// WriteJPEG encodes img as a JPEG at the given quality and writes it to
// path regardless of the file extension. It returns the number of bytes
// written. variant labels the output in metrics ("fullsize", "thumbnail").
func WriteJPEG(path string, img image.Image, quality int, variant string) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.FileStageDuration.WithLabelValues("encode").Observe(time.Since(start).Seconds())
	}()

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		file.Close()
		return 0, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	info, statErr := file.Stat()
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", path, err)
	}

	var size int64
	if statErr == nil {
		size = info.Size()
		metrics.OutputBytes.WithLabelValues(variant).Add(float64(size))
	}

	logging.Debug("Wrote %s (%dx%d, q%d, %d bytes)", path, img.Bounds().Dx(), img.Bounds().Dy(), quality, size)
	return size, nil
}
