// Package capabilities decodes the fixed-format capability listings printed
// by ffmpeg (-codecs, -encoders, -decoders, -formats, -devices) into ordered
// tables of records.
//
// Every listing line starts with a flag prefix: one character per capability
// column, with a placeholder where the column does not apply. The same
// character can mean different things in different columns (S is "subtitle"
// in the media-type column of -codecs but "lossless" in its last column), so
// flags are always resolved through a single (kind, character, column)
// lookup table rather than by character alone.
//
// Parsing is a pure function of its input. Structural problems (no separator,
// wrong header) fail the whole parse; malformed body rows are collected in a
// *RowErrors value while the well-formed rows are still returned.
package capabilities
