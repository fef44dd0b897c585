// Package main hosts the reelkit CLI entrypoint and command graph.
//
// The Cobra command tree lists ffmpeg capabilities (codecs, encoders,
// decoders, formats, devices) with flag-based filtering, works with
// timecodes, probes durations, and manages the capability cache. It
// centralizes configuration resolution, logger setup, and the cache handle so
// subcommands only deal with presentation.
//
// Tables and JSON go to stdout; logs go to stderr and the daily log file.
package main
