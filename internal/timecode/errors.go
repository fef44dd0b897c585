package timecode

import (
	"errors"
	"fmt"
)

// Category classifies why a timecode failed validation.
type Category int

const (
	// CategoryUndefined means no value was supplied at all.
	CategoryUndefined Category = iota
	// CategoryNull means a value was supplied but it was nil.
	CategoryNull
	CategoryEmpty
	CategoryWhitespace
	// CategoryFormat covers every structural problem with a non-blank value.
	CategoryFormat
)

func (c Category) String() string {
	switch c {
	case CategoryUndefined:
		return "undefined"
	case CategoryNull:
		return "null"
	case CategoryEmpty:
		return "empty"
	case CategoryWhitespace:
		return "whitespace"
	case CategoryFormat:
		return "format"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

var (
	// ErrInputShape matches undefined, null, empty, and whitespace-only input.
	ErrInputShape = errors.New("timecode input missing")
	// ErrFormat matches values that are present but not a valid timecode.
	ErrFormat = errors.New("timecode format invalid")
	// ErrReversedSpan is returned when a span ends before it starts.
	ErrReversedSpan = errors.New("timecode span end precedes start")
)

const formatHint = "must follow HH:MM:SS or HH:MM:SS.nnnnnn"

// ValidationError reports why a value could not be turned into a Timecode.
type ValidationError struct {
	Category Category
	Input    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Category == CategoryFormat {
		if e.Reason == "" {
			return "timecode is not formatted correctly; " + formatHint
		}
		return fmt.Sprintf("timecode is not formatted correctly: %s; %s", e.Reason, formatHint)
	}
	return "timecode is " + e.Category.String()
}

// Is lets errors.Is match the category sentinels.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrFormat:
		return e.Category == CategoryFormat
	case ErrInputShape:
		return e.Category != CategoryFormat
	}
	return false
}

func shapeError(category Category, input string) error {
	return &ValidationError{Category: category, Input: input}
}

func formatError(input, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &ValidationError{Category: CategoryFormat, Input: input, Reason: reason}
}
