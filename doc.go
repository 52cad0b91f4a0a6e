// Package main provides the entry point for doodles, a batch tool that
// turns scanned drawings into a web gallery.
//
// # Run Sequence
//
// A run takes no arguments and follows a fixed sequence:
//
//  1. Configuration Loading: defaults, optional doodles.yaml, environment
//  2. Decoder Setup: Go image decoders plus libvips as a fallback
//  3. Processing: every *.jp*g in the raw directory without an output is
//     decoded, cropped to its ink with a 20% margin and written as a
//     full-size JPEG and a 256x256 thumbnail
//  4. Manifest: gallery.json is rebuilt from the output directory
//  5. Metrics: optionally written as a Prometheus textfile
//
// A scan that fails to decode or write is logged and counted, and the run
// moves on. Only failures of the run itself (unreadable raw directory,
// unwritable manifest) end the process with a non-zero status.
//
// # Output Layout
//
//	doodles/
//	  24_03_15_My_Doodle.jpg            full-size, at most 1920x1080
//	  24_03_15_My_Doodle_thumbnail.jpg  256x256
//	  gallery.json                      newest first
package main
