// Package app initializes and runs the main application service.
// It configures logging, storage, sessions, and routing, and handles
// graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valerienguyen169/Shrink-Ray/internal/config"
	"github.com/valerienguyen169/Shrink-Ray/internal/db/memorystorage"
	"github.com/valerienguyen169/Shrink-Ray/internal/db/postgresdb"
	"github.com/valerienguyen169/Shrink-Ray/internal/db/storage"
	"github.com/valerienguyen169/Shrink-Ray/internal/hasher"
	"github.com/valerienguyen169/Shrink-Ray/internal/logger"
	"github.com/valerienguyen169/Shrink-Ray/internal/router"
	"github.com/valerienguyen169/Shrink-Ray/internal/service"
	"github.com/valerienguyen169/Shrink-Ray/internal/session"
)

// App encapsulates the configuration, storage backend, and HTTP handler
// needed to run the URL shortener service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing the logger
// - selecting and setting up storage
// - setting up sessions, the service layer, and the router
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	if err = logger.Init(app.cfg.LogLevel); err != nil {
		return nil, err
	}

	app.db, err = newStorage(app.cfg)
	if err != nil {
		return nil, err
	}

	sessionSigningKey, err := base64.URLEncoding.DecodeString(app.cfg.SessionSigningSecret)
	if err != nil {
		return nil, err
	}

	sessions := session.New(
		session.NewMemoryStore(app.cfg.SessionTTL),
		app.cfg.SessionCookieName,
		sessionSigningKey,
		app.cfg.SessionTTL,
	)

	app.httpHandler = router.New(
		service.New(app.db, hasher.New(app.cfg.PasswordHashCost)),
		sessions,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.DatabaseDSN != "" {
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)
	}

	return memorystorage.New()
}
