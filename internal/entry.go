// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/psycho-baller/obsidian-journal/internal/api"
	"github.com/psycho-baller/obsidian-journal/internal/capture"
	"github.com/psycho-baller/obsidian-journal/internal/draft"
	"github.com/psycho-baller/obsidian-journal/internal/extract"
	"github.com/psycho-baller/obsidian-journal/internal/index"
	"github.com/psycho-baller/obsidian-journal/internal/journal"
	"github.com/psycho-baller/obsidian-journal/internal/mcpserver"
	"github.com/psycho-baller/obsidian-journal/internal/sse"
	"github.com/psycho-baller/obsidian-journal/internal/storage"
)

// services holds the wired application components shared by the HTTP
// server and the MCP server.
type services struct {
	vault   *storage.FS
	drafts  *draft.Manager
	journal *journal.Service
	db      *index.DB
	capture *capture.Service
	broker  *sse.Broker
}

func (s *services) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		s.broker.Close()
	}
}

// buildServices wires the core components from configuration. withBroker
// controls whether an SSE broker is created; the MCP stdio server has no
// use for one.
func buildServices(cfg *Config, logger *slog.Logger, withBroker bool) (*services, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	if err := os.MkdirAll(cfg.State.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	vault, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init vault storage: %w", err)
	}
	state, err := storage.NewFS(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("init state storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, vault, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	drafts, err := draft.NewManager(state)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init draft manager: %w", err)
	}

	js := journal.NewService(vault, state, cfg.Journal.CutoffHour)

	apiKey := cfg.AI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OBSIDIAN_JOURNAL_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	extractor := extract.NewClient(cfg.AI.Endpoint, cfg.AI.Model, apiKey)

	var broker *sse.Broker
	if withBroker {
		broker = sse.NewBroker()
	}

	svc := capture.NewService(drafts, js, extractor, db, broker, logger)

	return &services{
		vault:   vault,
		drafts:  drafts,
		journal: js,
		db:      db,
		capture: svc,
		broker:  broker,
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("state_path", cfg.State.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Int("journal_cutoff_hour", cfg.Journal.CutoffHour),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svcs, err := buildServices(cfg, logger, true)
	if err != nil {
		return err
	}
	defer svcs.close()

	apiRouter := api.NewRouter(
		svcs.capture,
		svcs.drafts,
		svcs.journal,
		cfg.Auth.AuthEnabled(),
		cfg.Auth.Token,
		http.HandlerFunc(svcs.broker.ServeHTTP),
		cfg.Vault.Path,
	)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback so edits made directly in the
	// vault (e.g. from Obsidian) show up in the index and push events.
	g.Go(func() error {
		index.Watch(gCtx, svcs.db, svcs.vault, cfg.Vault.Path, logger, func(kind, day string) {
			svcs.broker.PublishDayEvent(kind, day)
		})
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdin/stdout. Logs go to stderr so
// they never corrupt the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svcs, err := buildServices(cfg, logger, false)
	if err != nil {
		return err
	}
	defer svcs.close()

	srv := mcpserver.New(svcs.capture, svcs.drafts, svcs.journal, svcs.vault)

	logger.Info("MCP server starting on stdio")
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}
