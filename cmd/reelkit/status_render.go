package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"reelkit/internal/preflight"
)

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelOK
	levelWarn
	levelError
)

const ansiReset = "\x1b[0m"

var statusLevels = [...]struct {
	label string
	color string
}{
	levelInfo:  {"INFO", "\x1b[34m"},
	levelOK:    {"OK", "\x1b[32m"},
	levelWarn:  {"WARN", "\x1b[33m"},
	levelError: {"ERROR", "\x1b[31m"},
}

func (l statusLevel) label() string { return statusLevels[l].label }
func (l statusLevel) color() string { return statusLevels[l].color }

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// statusPrinter accumulates the lines of a sectioned status report.
type statusPrinter struct {
	colorize bool
	lines    []string
}

func (p *statusPrinter) paint(color, text string) string {
	if !p.colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func (p *statusPrinter) section(title string) {
	if len(p.lines) > 0 {
		p.lines = append(p.lines, "")
	}
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	p.lines = append(p.lines,
		p.paint(levelInfo.color(), heading),
		p.paint(levelInfo.color(), strings.Repeat("-", len(heading))),
	)
}

func (p *statusPrinter) line(label string, level statusLevel, message string) {
	p.lines = append(p.lines, p.paint(level.color(), formatStatusLine(label, level, message)))
}

// checks adds one line per preflight result and a summary naming failures.
func (p *statusPrinter) checks(results []preflight.Result) {
	for _, r := range results {
		level := levelOK
		if !r.Passed {
			level = levelError
		}
		p.line(r.Name, level, r.Detail)
	}
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		p.line("Summary", levelOK, fmt.Sprintf("%d checks passed", len(results)))
		return
	}
	names := make([]string, len(failed))
	for i, r := range failed {
		names[i] = r.Name
	}
	p.line("Summary", levelError, fmt.Sprintf("%d of %d checks failed: %s", len(failed), len(results), strings.Join(names, ", ")))
}

func (p *statusPrinter) String() string {
	return strings.Join(p.lines, "\n")
}

func formatStatusLine(label string, level statusLevel, message string) string {
	status := "[" + level.label() + "]"
	if message != "" {
		status += " " + message
	}
	return fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status)
}

// shouldColorize reports whether writer is a terminal and NO_COLOR is unset.
func shouldColorize(writer io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
