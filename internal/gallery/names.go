package gallery

import (
	"path/filepath"
	"strings"
)

const (
	// ManifestName is the file name of the manifest in the output directory
	ManifestName = "gallery.json"

	// ThumbnailSuffix marks derived thumbnail files
	ThumbnailSuffix = "_thumbnail"

	// imagePattern selects .jpg, .jpeg and other .jp*g names
	imagePattern = "*.jp*g"
)

// Stem returns name without its final extension. A name that is only a
// dot and an extension, like ".jpg", is its own stem.
func Stem(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// ThumbnailName returns the thumbnail file name for a full-size image
func ThumbnailName(name string) string {
	return Stem(name) + ThumbnailSuffix + ".jpg"
}

// IsImageName reports whether name is picked up as a gallery image.
// Matching is case-sensitive and includes dot-files.
func IsImageName(name string) bool {
	ok, _ := filepath.Match(imagePattern, name)
	return ok
}

// IsThumbnailName reports whether name is a derived thumbnail
func IsThumbnailName(name string) bool {
	return strings.HasSuffix(Stem(name), ThumbnailSuffix)
}
