// Package media reads scanned drawings and writes the gallery JPEGs.
//
// [Decode] opens an input by content, not extension: the standard library
// and golang.org/x/image decoders cover JPEG, PNG, GIF, WebP, BMP and TIFF.
// When those fail and libvips has been started with [InitVips], the file
// is retried through libvips, which accepts JPEG variants the Go decoder
// does not. Decoded images are normalised to opaque RGB.
//
// [WriteJPEG] encodes with an explicit quality: [FullsizeQuality] for the
// cropped image and [ThumbnailQuality] for the thumbnail.
package media
