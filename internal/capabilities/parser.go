package capabilities

import (
	"fmt"
	"slices"
	"strings"
)

// Record is one entry of a capability listing.
type Record struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Flags are ordered by column. Placeholder columns have no entry.
	Flags []Flag `json:"flags"`
}

// Table is the parsed form of one listing.
type Table struct {
	Kind Kind `json:"kind"`
	// Width is the flag prefix width the listing was printed with.
	Width   int      `json:"width"`
	Records []Record `json:"records"`
}

const dotPlaceholder = "."

// blankPlaceholders are accepted by listings that pad unset flags with spaces.
const blankPlaceholders = " ."

// Parse decodes a captured listing of the given kind.
//
// Structural failures return a zero Table and an error wrapping
// ErrEmptyInput, ErrMissingSeparator, or ErrMissingHeader. When only some
// body rows are malformed the returned Table holds the good rows and the
// error is a *RowErrors.
func Parse(kind Kind, raw string) (Table, error) {
	layout, ok := kind.layout()
	if !ok {
		return Table{}, fmt.Errorf("parse listing: %w: %d", ErrUnknownKind, int(kind))
	}
	if strings.TrimSpace(raw) == "" {
		return Table{}, fmt.Errorf("parse %s listing: %w", kind, ErrEmptyInput)
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	sepIndex := findSeparator(lines, layout.separatorWidths)
	if sepIndex < 0 {
		return Table{}, fmt.Errorf("parse %s listing: %w (want a line of %s dashes)", kind, ErrMissingSeparator, describeWidths(layout.separatorWidths))
	}
	header := lines[:sepIndex]
	if !hasLabel(header, layout.labels) {
		return Table{}, fmt.Errorf("parse %s listing: %w (want %s)", kind, ErrMissingHeader, strings.Join(layout.labels, " or "))
	}
	width := legendWidth(header, layout)

	table := Table{Kind: kind, Width: width, Records: make([]Record, 0, len(lines)-sepIndex)}
	var rowErrs []*RowError
	for offset, line := range lines[sepIndex+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := parseRow(kind, layout, width, true, line)
		if err != nil {
			err.Line = sepIndex + offset + 2
			rowErrs = append(rowErrs, err)
			continue
		}
		table.Records = append(table.Records, record)
	}
	if len(rowErrs) > 0 {
		return table, &RowErrors{Kind: kind, Rows: rowErrs}
	}
	return table, nil
}

// ParseLine decodes a single body line without the legend that normally fixes
// the prefix width. Dot-padded prefixes may be shorter than the full width
// since their columns are anchored on the left; blank-padded prefixes are
// tried at each width the kind supports.
func ParseLine(kind Kind, line string) (Record, error) {
	layout, ok := kind.layout()
	if !ok {
		return Record{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	record, err := parseRow(kind, layout, slices.Max(layout.prefixWidths), false, line)
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

// parseRow decodes one body line. With exact set the prefix must be exactly
// width columns; otherwise width is an upper bound.
func parseRow(kind Kind, layout kindLayout, width int, exact bool, line string) (Record, *RowError) {
	if layout.blankColumns {
		widths := []int{width}
		if !exact {
			widths = layout.prefixWidths
		}
		var firstErr *RowError
		for _, width := range widths {
			record, err := parsePositionalRow(kind, width, line)
			if err == nil {
				return record, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return Record{}, firstErr
	}
	minWidth := width
	if !exact {
		minWidth = 1
	}
	return parseTokenRow(kind, minWidth, width, line)
}

// parseTokenRow handles listings whose placeholder is a dot, so the prefix is
// always a single whitespace-free token.
func parseTokenRow(kind Kind, minWidth, maxWidth int, line string) (Record, *RowError) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Record{}, &RowError{Text: line, Reason: "expected a flag prefix followed by a name"}
	}
	prefix := fields[0]
	if len(prefix) < minWidth || len(prefix) > maxWidth {
		want := fmt.Sprint(maxWidth)
		if minWidth != maxWidth {
			want = fmt.Sprintf("%d to %d", minWidth, maxWidth)
		}
		return Record{}, &RowError{Text: line, Reason: fmt.Sprintf("flag prefix %q has width %d, want %s", prefix, len(prefix), want)}
	}
	flags, err := decodePrefix(kind, prefix, dotPlaceholder)
	if err != nil {
		err.Text = line
		return Record{}, err
	}
	return Record{
		Name:        fields[1],
		Description: strings.Join(fields[2:], " "),
		Flags:       flags,
	}, nil
}

// parsePositionalRow reads the prefix by column because an unset flag is a
// space and whitespace splitting would shift later columns left.
func parsePositionalRow(kind Kind, width int, line string) (Record, *RowError) {
	body := strings.TrimRight(line, " \t\r")
	body = strings.TrimPrefix(body, " ")
	if len(body) <= width {
		return Record{}, &RowError{Text: line, Reason: "expected a flag prefix followed by a name"}
	}
	if body[width] != ' ' && body[width] != '\t' {
		return Record{}, &RowError{Text: line, Reason: fmt.Sprintf("flag prefix %q is not followed by whitespace at column %d", body[:width+1], width)}
	}
	prefix := body[:width]
	if strings.TrimSpace(prefix) == "" {
		return Record{}, &RowError{Text: line, Reason: "flag prefix is blank"}
	}
	flags, err := decodePrefix(kind, prefix, blankPlaceholders)
	if err != nil {
		err.Text = line
		return Record{}, err
	}
	fields := strings.Fields(body[width:])
	if len(fields) == 0 {
		return Record{}, &RowError{Text: line, Reason: "missing name"}
	}
	return Record{
		Name:        fields[0],
		Description: strings.Join(fields[1:], " "),
		Flags:       flags,
	}, nil
}

func decodePrefix(kind Kind, prefix, placeholders string) ([]Flag, *RowError) {
	flags := make([]Flag, 0, len(prefix))
	for column := 0; column < len(prefix); column++ {
		char := prefix[column]
		if strings.IndexByte(placeholders, char) >= 0 {
			continue
		}
		meaning, ok := Resolve(kind, char, column)
		if !ok {
			return nil, &RowError{Reason: fmt.Sprintf("unknown flag %q at column %d", char, column)}
		}
		flags = append(flags, Flag{Char: string(char), Column: column, Meaning: meaning})
	}
	return flags, nil
}

// findSeparator returns the index of the first all-dash line whose length is
// one of widths, or -1.
func findSeparator(lines []string, widths []int) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Trim(trimmed, "-") != "" {
			continue
		}
		if slices.Contains(widths, len(trimmed)) {
			return i
		}
	}
	return -1
}

func hasLabel(header []string, labels []string) bool {
	for _, line := range header {
		trimmed := strings.TrimSpace(line)
		for _, label := range labels {
			if strings.EqualFold(trimmed, label) {
				return true
			}
		}
	}
	return false
}

// legendWidth reads the prefix width from legend lines such as
// " D..... = Decoding supported". It falls back to the kind's default width.
func legendWidth(header []string, layout kindLayout) int {
	width := 0
	for _, line := range header {
		key, _, found := strings.Cut(strings.TrimSpace(line), " = ")
		if !found || !isLegendKey(key) {
			continue
		}
		if len(key) > width && slices.Contains(layout.prefixWidths, len(key)) {
			width = len(key)
		}
	}
	if width == 0 {
		return layout.prefixWidths[0]
	}
	return width
}

func isLegendKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c != '.' && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

func describeWidths(widths []int) string {
	parts := make([]string, 0, len(widths))
	for _, w := range widths {
		parts = append(parts, fmt.Sprint(w))
	}
	return strings.Join(parts, " or ")
}
