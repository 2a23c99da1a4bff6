// Package scraper extracts corporate-filing announcements from the NSE
// website using headless Chrome. A fixed-size pool of browser processes
// serves concurrent scrapes; each scrape navigates to the filings page for a
// symbol, waits for the announcements table to finish rendering, and pulls
// every row out in a single in-page JavaScript pass.
package scraper
