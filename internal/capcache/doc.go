// Package capcache persists parsed capability tables in SQLite so repeated CLI
// invocations do not re-run ffmpeg.
//
// Tables are keyed by the ffmpeg binary, its version line, and the listing
// kind, so upgrading ffmpeg naturally invalidates old entries. Entries older
// than the configured TTL are refetched. Refreshes take an exclusive flock on
// a sibling lock file so concurrent invocations fetch a listing once.
package capcache
