// Package preflight provides readiness checks for the filesystem paths and
// external binaries reelkit depends on.
//
// The "reelkit status" command renders RunAll's results, and commands that
// shell out to ffmpeg consult CheckSystemDeps before running. Checks for
// disabled features are skipped.
package preflight
