package application

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/stockwire/nse-announcements/internal/api"
	"github.com/stockwire/nse-announcements/internal/config"
	"github.com/stockwire/nse-announcements/internal/scraper"
	"github.com/stockwire/nse-announcements/internal/store"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	snapshots *store.Repository
	pool      *scraper.Pool
	scraper   scraper.Scraper
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
// The browser pool is created here but Chrome processes only start on the
// first scrape.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	snapshots := store.NewRepository(db)

	pool := scraper.NewPool(scraper.PoolOptions{
		Workers:       config.BrowserWorkers,
		TabsPerWorker: config.TabsPerWorker,
		ChromePath:    cfg.ChromePath,
	})
	scr := scraper.NewChromeScraper(pool, cfg.NSEBaseURL, cfg.ScrapeTimeout, logger)

	handler := api.NewHandler(scr, snapshots, logger, api.WithCacheTTL(cfg.CacheTTL))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		snapshots: snapshots,
		pool:      pool,
		scraper:   scr,
		handler:   handler,
		router:    router,
		logger:    logger,
		server:    NewServer(cfg, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.BindAddr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases the browser pool and the snapshot store. Call after the
// HTTP server has shut down.
func (a *App) Close() error {
	a.pool.Close()
	if err := a.snapshots.Close(); err != nil {
		return fmt.Errorf("closing snapshot store: %w", err)
	}
	return nil
}
