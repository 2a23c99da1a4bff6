package scraper

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestNormalizeSymbol(t *testing.T) {
	t.Run("upper-cases and trims", func(t *testing.T) {
		got, err := NormalizeSymbol("  reliance ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "RELIANCE" {
			t.Fatalf("expected RELIANCE, got %s", got)
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		if _, err := NormalizeSymbol("   "); err != ErrInvalidSymbol {
			t.Fatalf("expected ErrInvalidSymbol, got %v", err)
		}
	})
}

func TestFilingsURL(t *testing.T) {
	s := NewChromeScraper(nil, "https://www.nseindia.com/", 30*time.Second, zaptest.NewLogger(t))

	got := s.FilingsURL("RELIANCE")
	want := "https://www.nseindia.com/companies-listing/corporate-filings-announcements?symbol=RELIANCE"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	// Symbols with reserved characters must be query-escaped.
	got = s.FilingsURL("M&M")
	want = "https://www.nseindia.com/companies-listing/corporate-filings-announcements?symbol=M%26M"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
