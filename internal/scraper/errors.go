package scraper

import "errors"

var (
	// ErrInvalidSymbol is returned when the requested symbol is empty after trimming.
	ErrInvalidSymbol = errors.New("symbol must be a non-empty string")
	// ErrTableTimeout is returned when the announcements table does not load in time.
	ErrTableTimeout = errors.New("timeout waiting for announcements table")
	// ErrBrowser wraps failures of the underlying browser session.
	ErrBrowser = errors.New("browser error")
	// ErrPoolClosed is returned when a scrape is requested after pool shutdown.
	ErrPoolClosed = errors.New("browser pool is closed")
)
