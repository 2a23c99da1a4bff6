package scraper

import "context"

// Announcement is one row of the NSE corporate-filings announcements table.
// Field names follow the table columns; BroadcastDate is kept as the
// display string the site renders rather than a parsed time.
type Announcement struct {
	Symbol         string `json:"symbol"`
	SymbolLink     string `json:"symbol_link"`
	CompanyName    string `json:"company_name"`
	Subject        string `json:"subject"`
	Details        string `json:"details"`
	AttachmentURL  string `json:"attachment_url"`
	AttachmentSize string `json:"attachment_size"`
	XBRLURL        string `json:"xbrl_url"`
	BroadcastDate  string `json:"broadcast_date"`
}

// Scraper describes the behaviour required from an announcements scraper.
type Scraper interface {
	Announcements(ctx context.Context, symbol string) ([]Announcement, error)
}
