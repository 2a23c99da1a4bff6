package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	filingsPath = "/companies-listing/corporate-filings-announcements"

	// Row-count stability polling: the table keeps filling for a moment
	// after the first row appears, so the count is sampled until it holds
	// steady for two consecutive checks.
	stabilityPollInterval = 100 * time.Millisecond
	stabilityMaxChecks    = 10
	stabilityNeeded       = 2
)

// ChromeScraper scrapes announcements with headless Chrome tabs drawn from a
// browser pool.
type ChromeScraper struct {
	pool    *Pool
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewChromeScraper constructs a scraper. The timeout bounds a whole scrape,
// navigation included.
func NewChromeScraper(pool *Pool, baseURL string, timeout time.Duration, logger *zap.Logger) *ChromeScraper {
	return &ChromeScraper{
		pool:    pool,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// NormalizeSymbol trims and upper-cases a stock symbol.
func NormalizeSymbol(symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return "", ErrInvalidSymbol
	}
	return sym, nil
}

// FilingsURL returns the announcements page URL for a normalized symbol.
func (s *ChromeScraper) FilingsURL(symbol string) string {
	return s.baseURL + filingsPath + "?symbol=" + url.QueryEscape(symbol)
}

// Announcements scrapes the current announcements for symbol. The symbol is
// normalized first; the scrape runs in a fresh tab bounded by the configured
// timeout and the caller's context.
func (s *ChromeScraper) Announcements(ctx context.Context, symbol string) ([]Announcement, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	allocCtx, release, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
	defer cancelTimeout()

	// The tab context derives from the allocator, not the request, so wire
	// request cancellation through explicitly.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	pageURL := s.FilingsURL(sym)
	s.logger.Info("scraping announcements",
		zap.String("symbol", sym),
		zap.String("url", pageURL),
	)

	start := time.Now()
	var rows []Announcement
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(announcementRowsSelector, chromedp.ByQuery),
		waitForStableRowCount(stabilityPollInterval, stabilityMaxChecks, stabilityNeeded),
		chromedp.Evaluate(extractAnnouncementsScript, &rows),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: table did not load within %s", ErrTableTimeout, s.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrBrowser, err)
	}

	s.logger.Info("scraped announcements",
		zap.String("symbol", sym),
		zap.Int("count", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rows, nil
}

// waitForStableRowCount polls the table's row count until it is unchanged
// and non-zero for stableNeeded consecutive checks, or maxChecks samples
// have been taken. Running out of checks is not an error; extraction
// proceeds with whatever rows are present.
func waitForStableRowCount(interval time.Duration, maxChecks, stableNeeded int) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		previous, stable := -1, 0
		for i := 0; i < maxChecks; i++ {
			var count int
			if err := chromedp.Evaluate(countAnnouncementRowsScript, &count).Do(ctx); err != nil {
				return err
			}

			if count == previous && count > 0 {
				stable++
				if stable >= stableNeeded {
					return nil
				}
			} else {
				stable = 0
			}
			previous = count

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		return nil
	}
}
