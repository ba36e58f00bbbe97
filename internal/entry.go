// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mailcraft/internal/api"
	"github.com/starford/mailcraft/internal/editor"
	"github.com/starford/mailcraft/internal/index"
	"github.com/starford/mailcraft/internal/mcpserver"
	"github.com/starford/mailcraft/internal/storage"
)

// Export formats accepted by Export.
const (
	FormatHTML = "html"
	FormatEML  = "eml"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger initializes the structured JSON logger and installs it as default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("assets_path", cfg.Assets.Path),
		slog.Bool("smtp_enabled", cfg.SMTP.Address != ""),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.close(logger)

	h := api.NewHandler(c.email, c.proposals, c.composer, api.WithAccess(c.access))
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, c.broker, c.assets)

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

	// Uploaded images are referenced from exported emails, so they are
	// served without auth.
	r.Get("/assets/{filename}", api.NewAssetHandler(c.assets).ServeFile)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// External edits to the saved-emails file only exist for the fs driver.
	if fsStore, ok := c.kv.(*storage.FS); ok {
		file, err := fsStore.Path(editor.SavedEmailsKey)
		if err != nil {
			return fmt.Errorf("resolve saved emails path: %w", err)
		}
		g.Go(func() error {
			err := index.Watch(gCtx, c.db, fsStore, file, logger, func(kind, id string) {
				c.broker.PublishChange("catalog."+kind, id)
			})
			if err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the editor tools over stdio until the client disconnects.
// Logs go to stderr unless WithLogOutput says otherwise.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()

	c, err := wire(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer c.close(logger)

	logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(c.email, c.assets).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Export writes the saved email id to out as an HTML document or, with
// FormatEML, as an RFC 5322 message.
func Export(ctx context.Context, id, format string, out io.Writer, opts ...Option) error {
	if id == "" {
		return fmt.Errorf("email id is required")
	}
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()

	c, err := wire(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer c.close(logger)

	if _, err := c.email.LoadEmail(ctx, id); err != nil {
		return fmt.Errorf("load email %s: %w", id, err)
	}

	var data []byte
	switch format {
	case FormatHTML, "":
		data = []byte(c.email.Export(ctx).HTML)
	case FormatEML:
		data, _, err = c.email.ExportEML(ctx)
		if err != nil {
			return fmt.Errorf("package email: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
