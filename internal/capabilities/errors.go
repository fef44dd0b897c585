package capabilities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyInput       = errors.New("capability listing is empty")
	ErrMissingSeparator = errors.New("capability listing separator not found")
	ErrMissingHeader    = errors.New("capability listing header label not found")
	ErrUnknownKind      = errors.New("unknown capability listing kind")
	// ErrMalformedRow matches every *RowError.
	ErrMalformedRow = errors.New("malformed capability row")
)

// RowError describes one body line that could not be decoded.
type RowError struct {
	// Line is the 1-based line number within the raw listing.
	Line   int
	Text   string
	Reason string
}

func (e *RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Text)
}

func (e *RowError) Is(target error) bool { return target == ErrMalformedRow }

// RowErrors collects the malformed rows of a listing. It is returned together
// with the rows that did parse.
type RowErrors struct {
	Kind Kind
	Rows []*RowError
}

func (e *RowErrors) Error() string {
	if len(e.Rows) == 1 {
		return fmt.Sprintf("parse %s listing: %s", e.Kind, e.Rows[0])
	}
	parts := make([]string, 0, len(e.Rows))
	for _, row := range e.Rows {
		parts = append(parts, row.Error())
	}
	return fmt.Sprintf("parse %s listing: %d malformed rows: %s", e.Kind, len(e.Rows), strings.Join(parts, "; "))
}

func (e *RowErrors) Unwrap() []error {
	out := make([]error, 0, len(e.Rows))
	for _, row := range e.Rows {
		out = append(out, row)
	}
	return out
}
