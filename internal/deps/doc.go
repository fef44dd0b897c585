// Package deps reports whether the external binaries reelkit shells out to
// are installed.
package deps
