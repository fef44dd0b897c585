package main

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelkit/internal/capabilities"
)

var titleCaser = cases.Title(language.English)

func kindTitle(kind capabilities.Kind) string {
	return titleCaser.String(kind.String())
}

// meaningList renders meanings as their short slugs, comma separated.
func meaningList(ms []capabilities.Meaning) string {
	parts := make([]string, 0, len(ms))
	for _, m := range ms {
		parts = append(parts, m.Slug())
	}
	return strings.Join(parts, ", ")
}
