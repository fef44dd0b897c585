package logging

import "strings"

// FormatSubject builds the command/kind subject string used in console output.
func FormatSubject(command, kind string) string {
	command = strings.TrimSpace(command)
	kind = strings.TrimSpace(kind)
	switch {
	case command != "" && kind != "" && command != kind:
		return command + " · " + kind
	case command != "":
		return command
	default:
		return kind
	}
}
