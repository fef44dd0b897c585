package timecode

import "fmt"

// Span is a start/end pair used to cut a section out of a media file.
type Span struct {
	Start Timecode
	End   Timecode
}

// NewSpan pairs start and end, rejecting an end that precedes the start.
func NewSpan(start, end Timecode) (Span, error) {
	if end.Compare(start) < 0 {
		return Span{}, fmt.Errorf("%w: %s > %s", ErrReversedSpan, start, end)
	}
	return Span{Start: start, End: end}, nil
}

// ParseSpan parses both ends of a span.
func ParseSpan(start, end string) (Span, error) {
	s, err := Parse(start)
	if err != nil {
		return Span{}, fmt.Errorf("start: %w", err)
	}
	e, err := Parse(end)
	if err != nil {
		return Span{}, fmt.Errorf("end: %w", err)
	}
	return NewSpan(s, e)
}

// Duration returns the length of the span.
func (s Span) Duration() Timecode {
	return Difference(s.End, s.Start)
}
