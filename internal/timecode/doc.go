// Package timecode parses, validates, formats, and differences clock-style
// media positions of the form H:MM:SS[.nnnnnn].
//
// Timecode is an immutable value type. The optional sub-second field holds
// millionths of a second and always renders as six digits; it is omitted from
// the rendered form when zero. Arithmetic is performed on nanosecond totals so
// differences never lose precision.
//
// Validation failures are returned as *ValidationError values. Callers can use
// errors.Is with ErrInputShape or ErrFormat to tell a missing value apart from
// a malformed one.
package timecode
