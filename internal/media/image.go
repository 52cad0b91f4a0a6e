package media

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/Timmoth/doodles/internal/logging"
	"github.com/Timmoth/doodles/internal/metrics"

	// Inputs are matched by a .jp*g name but decoded by content, so scanner
	// exports that are really PNG, GIF, WebP, BMP or TIFF still load.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeOptions controls how input images are loaded
type DecodeOptions struct {
	// AutoOrient applies the EXIF orientation tag
	AutoOrient bool
	// UseVips allows libvips as a fallback decoder when it is initialized
	UseVips bool
}

// Decode loads the image at path and returns it as an opaque RGB image
// with its origin at (0, 0). Alpha is discarded, not composited.
func Decode(path string, opts DecodeOptions) (*image.NRGBA, error) {
	start := time.Now()
	defer func() {
		metrics.FileStageDuration.WithLabelValues("decode").Observe(time.Since(start).Seconds())
	}()

	img, err := decodeWithImaging(path, opts.AutoOrient)
	if err == nil {
		metrics.DecodeTotal.WithLabelValues("imaging", "success").Inc()
		return toRGB(img), nil
	}
	metrics.DecodeTotal.WithLabelValues("imaging", "error").Inc()

	// Missing or unreadable files won't decode with libvips either
	var pathErr *os.PathError
	if errors.As(err, &pathErr) || !opts.UseVips || !IsVipsAvailable() {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	logging.Debug("imaging could not decode %s: %v, trying libvips", filepath.Base(path), err)

	vimg, vErr := DecodeWithVips(path, opts.AutoOrient)
	if vErr != nil {
		metrics.DecodeTotal.WithLabelValues("vips", "error").Inc()
		return nil, fmt.Errorf("failed to decode %s: %w (libvips: %v)", filepath.Base(path), err, vErr)
	}
	metrics.DecodeTotal.WithLabelValues("vips", "success").Inc()

	return toRGB(vimg), nil
}

func decodeWithImaging(path string, autoOrient bool) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	return imaging.Decode(file, imaging.AutoOrientation(autoOrient))
}

// toRGB copies img into a fresh NRGBA with every pixel fully opaque
func toRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
