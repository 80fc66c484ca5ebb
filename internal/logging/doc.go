// Package logging builds the zap loggers used by the tracker and the demo.
//
// Console output goes to the given writer. When a file is configured, or the
// TRACK_DEBUG environment variable names one, a JSON core is added that
// appends to that file through a rotating lumberjack writer.
package logging
