// Package logs reads reelkit's daily log files for the "reelkit logs"
// command.
//
// Tail returns the last N matching lines with bounded memory, or the complete
// lines after a byte offset. Follow streams appended lines until the context
// ends, woken by filesystem events.
// Latest locates the newest log file when today's has not been written yet.
package logs
