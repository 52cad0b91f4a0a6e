// Package logging provides a simple leveled logging interface for the
// doodles batch tool.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: Per-file progress and run summaries
//   - WARN: Recoverable problems (missing thumbnails, bad config values)
//   - ERROR: Per-file failures
//   - FATAL: Run-level failures that terminate the program
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true.
package logging
