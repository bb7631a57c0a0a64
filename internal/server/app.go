// Package server initializes and runs the vault service: it wires the account
// store and the locker engine into the HTTP API and handles graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cosmiclocker/internal/logging"
	"cosmiclocker/internal/server/api"
	"cosmiclocker/internal/server/config"
	"cosmiclocker/internal/server/locker"
	"cosmiclocker/internal/server/users"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	api    *api.Server
}

func NewApp(c *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	us := users.NewStore(filepath.Join(c.DataDir, "users.json"))
	lk, err := locker.New(c.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("locker init error: %w", err)
	}
	sessions := api.NewSessions([]byte(c.SecretKey), c.SessionTTL)

	return &App{
		config: c,
		logger: logger,
		api:    api.NewServer(sessions, us, lk, logger),
	}, nil
}

// Run serves until the context is cancelled, then shuts the listener down
// gracefully.
func (app *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    app.config.Address,
		Handler: app.api,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting server", "address", app.config.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
