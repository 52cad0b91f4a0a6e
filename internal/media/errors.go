package media

import "errors"

// ErrVipsUnavailable is returned when libvips decoding is requested before
// InitVips or after ShutdownVips
var ErrVipsUnavailable = errors.New("libvips not available")
