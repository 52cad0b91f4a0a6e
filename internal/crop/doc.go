// Package crop finds the drawn content of a scanned page and derives the
// gallery images from it.
//
// Processing happens in two steps:
//
//  1. [Detect] converts the image to grayscale and returns the tightest
//     rectangle containing every ink pixel (gray value below
//     [InkThreshold]). A page without ink yields no rectangle.
//  2. [ExpandAndFit] grows that rectangle by [MarginRatio] of its size on
//     each side, clamps it to the page, crops, shrinks the result to fit
//     [MaxWidth]x[MaxHeight] when oversized and derives a
//     [ThumbnailSize] square thumbnail by cover-fitting the crop.
//
// Rectangles use the image.Rectangle convention throughout: Min is
// inclusive and Max is exclusive, relative to the image origin.
//
// [Process] runs both steps and reports [ErrBlank] for pages without ink.
package crop
