package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stockwire/nse-announcements/internal/scraper"
	"github.com/stockwire/nse-announcements/internal/store"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const announcementsExample = "/announcements?symbol=RELIANCE"

// SnapshotStore is the slice of the snapshot repository the handlers need.
type SnapshotStore interface {
	Snapshot(symbol string) ([]scraper.Announcement, time.Time, error)
	UpsertSnapshot(symbol string, fetchedAt time.Time, announcements []scraper.Announcement) error
}

// Handler wires the scraper and snapshot store into HTTP handlers.
type Handler struct {
	scraper   scraper.Scraper
	snapshots SnapshotStore
	logger    *zap.Logger

	cacheTTL time.Duration
	clock    func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithCacheTTL sets how long a stored snapshot may be served in place of a
// fresh scrape. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) HandlerOption {
	return func(h *Handler) {
		h.cacheTTL = ttl
	}
}

// NewHandler constructs a Handler with the provided dependencies. The
// snapshot store may be nil, in which case every request scrapes.
func NewHandler(scr scraper.Scraper, snapshots SnapshotStore, logger *zap.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		scraper:   scr,
		snapshots: snapshots,
		logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := indexResponse{
		Message: "NSE Announcements Scraper API",
		Endpoints: map[string]string{
			"/announcements": "GET - Get announcements for a symbol. Query param: symbol (required)",
			"/health":        "GET - Health check endpoint",
		},
		Example: announcementsExample,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

func (h *Handler) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	symbol, err := scraper.NormalizeSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Symbol parameter is required",
			Example: announcementsExample,
		})
		return
	}

	if announcements, fetchedAt, ok := h.cachedSnapshot(symbol); ok {
		writeJSON(w, http.StatusOK, announcementsResponse{
			Symbol:        symbol,
			Count:         len(announcements),
			Announcements: announcements,
			Cached:        true,
			FetchedAt:     &fetchedAt,
		})
		return
	}

	announcements, err := h.scraper.Announcements(r.Context(), symbol)
	if err != nil {
		h.logger.Warn("scrape failed",
			zap.String("symbol", symbol),
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:  err.Error(),
			Symbol: symbol,
		})
		return
	}

	// A failed upsert only costs the next request a re-scrape.
	if h.snapshots != nil {
		if err := h.snapshots.UpsertSnapshot(symbol, h.clock(), announcements); err != nil {
			h.logger.Warn("storing snapshot failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, announcementsResponse{
		Symbol:        symbol,
		Count:         len(announcements),
		Announcements: announcements,
	})
}

// cachedSnapshot reports whether a stored snapshot for symbol is still
// within the cache TTL.
func (h *Handler) cachedSnapshot(symbol string) ([]scraper.Announcement, time.Time, bool) {
	if h.snapshots == nil || h.cacheTTL <= 0 {
		return nil, time.Time{}, false
	}

	announcements, fetchedAt, err := h.snapshots.Snapshot(symbol)
	if err != nil {
		if !errors.Is(err, store.ErrNoSnapshot) {
			h.logger.Warn("reading snapshot failed", zap.String("symbol", symbol), zap.Error(err))
		}
		return nil, time.Time{}, false
	}
	if h.clock().Sub(fetchedAt) >= h.cacheTTL {
		return nil, time.Time{}, false
	}
	return announcements, fetchedAt, true
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type announcementsResponse struct {
	Symbol        string                 `json:"symbol"`
	Count         int                    `json:"count"`
	Announcements []scraper.Announcement `json:"announcements"`
	Cached        bool                   `json:"cached,omitempty"`
	FetchedAt     *time.Time             `json:"fetched_at,omitempty"`
}

type indexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
	Example   string            `json:"example"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Symbol  string `json:"symbol,omitempty"`
	Example string `json:"example,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
