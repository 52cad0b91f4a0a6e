// Package pipeline runs a doodles batch: it crops every new scan in the raw
// directory into the output directory and rewrites the gallery manifest.
//
// Files are handled one at a time. A scan whose full-size output already
// exists is skipped, a blank scan produces no output, and a scan that
// fails to decode or write is logged and recorded in the [Report] while
// the run moves on to the next file. Only problems with the directories
// themselves or with the manifest fail the whole run.
package pipeline
