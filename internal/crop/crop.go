package crop

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// InkThreshold is the gray level below which a pixel counts as ink
	InkThreshold = 240

	// MarginRatio is the fraction of the content size added on each side
	MarginRatio = 0.2

	// MaxWidth and MaxHeight bound the full-size output
	MaxWidth  = 1920
	MaxHeight = 1080

	// ThumbnailSize is the edge length of the square thumbnail
	ThumbnailSize = 256
)

// ErrBlank is returned by Process when the page contains no ink
var ErrBlank = errors.New("no ink found")

// Result holds the two images derived from one page
type Result struct {
	// Content is the detected ink rectangle
	Content image.Rectangle
	// Region is Content after margin expansion and clamping
	Region    image.Rectangle
	Fullsize  *image.NRGBA
	Thumbnail *image.NRGBA
}

// Process detects the content of img and derives the full-size and
// thumbnail images. It returns ErrBlank when there is nothing to crop.
func Process(img image.Image) (*Result, error) {
	box, ok := Detect(img)
	if !ok {
		return nil, ErrBlank
	}

	region := ExpandBox(box, img.Bounds().Size())
	full, thumb := ExpandAndFit(img, box)

	return &Result{
		Content:   box,
		Region:    region,
		Fullsize:  full,
		Thumbnail: thumb,
	}, nil
}

// Detect returns the smallest rectangle holding every ink pixel of img.
// The second return value is false when the image has no ink at all.
func Detect(img image.Image) (image.Rectangle, bool) {
	gray := imaging.Grayscale(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1

	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			// R, G and B are equal after grayscale conversion
			if row[x*4] >= InkThreshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < 0 {
		return image.Rectangle{}, false
	}

	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// ExpandBox grows box by MarginRatio of its width and height on every side
// and clamps the result to an image of the given size.
func ExpandBox(box image.Rectangle, size image.Point) image.Rectangle {
	borderX := int(float64(box.Dx()) * MarginRatio)
	borderY := int(float64(box.Dy()) * MarginRatio)

	// Clamp each edge on its own; Intersect would collapse zero-width boxes
	return image.Rectangle{
		Min: image.Pt(clamp(box.Min.X-borderX, 0, size.X), clamp(box.Min.Y-borderY, 0, size.Y)),
		Max: image.Pt(clamp(box.Max.X+borderX, 0, size.X), clamp(box.Max.Y+borderY, 0, size.Y)),
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// ExpandAndFit crops img to the expanded box, shrinks the crop to the
// full-size bounds if needed and derives the thumbnail from the result.
func ExpandAndFit(img image.Image, box image.Rectangle) (full, thumb *image.NRGBA) {
	bounds := img.Bounds()
	region := ExpandBox(box, bounds.Size())

	cropped := imaging.Crop(img, region.Add(bounds.Min))
	full = FitWithin(cropped, MaxWidth, MaxHeight)
	thumb = Thumbnail(full, ThumbnailSize)

	return full, thumb
}

// FitWithin downscales img proportionally so neither side exceeds
// maxW x maxH. Images already inside the bounds keep their size.
func FitWithin(img image.Image, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return imaging.Clone(img)
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// Thumbnail cover-fits img into a size x size square: it trims the longer
// side to a centered square and scales that to size. Cropping first keeps
// the intermediate no larger than the source, even for 1px-thin strips.
func Thumbnail(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	square := imaging.CropAnchor(img, side, side, imaging.Center)
	return imaging.Resize(square, size, size, imaging.Lanczos)
}
