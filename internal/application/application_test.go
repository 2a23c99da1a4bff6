package application

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/stockwire/nse-announcements/internal/config"
	"github.com/stockwire/nse-announcements/internal/scraper"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(t, "8085")
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer app.Close()

	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.pool == nil || app.snapshots == nil || app.scraper == nil {
		t.Fatalf("expected pool, snapshots, and scraper to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
	if app.server.Addr != "0.0.0.0:8085" {
		t.Fatalf("expected bind address 0.0.0.0:8085, got %s", app.server.Addr)
	}
	if app.pool.Size() != config.BrowserWorkers*config.TabsPerWorker {
		t.Fatalf("expected %d tab slots, got %d", config.BrowserWorkers*config.TabsPerWorker, app.pool.Size())
	}
}

func TestCloseReleasesPoolAndStore(t *testing.T) {
	cfg := baseTestConfig(t, "8086")
	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := app.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if _, _, err := app.pool.Acquire(context.Background()); !errors.Is(err, scraper.ErrPoolClosed) {
		t.Fatalf("expected closed pool to reject acquisitions, got %v", err)
	}
	if _, _, err := app.snapshots.Snapshot("RELIANCE"); err == nil {
		t.Fatalf("expected closed store to reject reads")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig(t, "9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != "0.0.0.0:9090" {
		t.Fatalf("expected address 0.0.0.0:9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestNewReturnsErrorForUnusableDatabase(t *testing.T) {
	cfg := baseTestConfig(t, "0")
	cfg.DatabasePath = filepath.Join(t.TempDir(), "missing-dir", "x", "ann.db")

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for unusable database path")
	}
}

func baseTestConfig(t *testing.T, port string) config.Config {
	t.Helper()

	return config.Config{
		Port:                 port,
		Host:                 "0.0.0.0",
		NSEBaseURL:           "https://www.nseindia.com",
		DatabasePath:         filepath.Join(t.TempDir(), "ann.db"),
		ScrapeTimeout:        time.Second,
		CacheTTL:             time.Minute,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
