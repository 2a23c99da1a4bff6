// Package store persists the most recent scrape result per symbol in a
// SQLite database. Snapshots let the API serve repeat lookups without paying
// for a fresh browser session on every request; staleness policy is the
// caller's concern.
package store
