// Package server wires the application together: configuration, logging,
// storage backends, the auth pipeline and the HTTP server, with graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/image-cloud/api/internal/logging"
	"github.com/image-cloud/api/internal/server/auth"
	"github.com/image-cloud/api/internal/server/blob"
	"github.com/image-cloud/api/internal/server/config"
	"github.com/image-cloud/api/internal/server/images"
	"github.com/image-cloud/api/internal/server/shared/db"
	"github.com/image-cloud/api/internal/server/users"
	"github.com/image-cloud/api/internal/server/web"
)

const adminCredentialsFormat = "\nUsername: %s\nEmail: %s\nPassword: %s\n"

type App struct {
	config       *config.Config
	logger       logging.Logger
	manager      db.RepositoryManager
	userService  *users.Service
	imageService *images.Service
	handler      *web.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var blobs blob.Store
	if cfg.S3BaseEndpoint != "" {
		blobs, err = blob.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("blob store init error: %w", err)
		}
	}

	pipeline := auth.NewPipeline(manager.Users(), manager.Sessions())
	userService := users.NewService(manager.Users(), manager.Sessions(), cfg, logger)
	imageService := images.NewService(manager.Images(), blobs, logger)

	handler := web.NewHandler(cfg, logger, pipeline, userService, imageService)

	return &App{
		config:       cfg,
		logger:       logger,
		manager:      manager,
		userService:  userService,
		imageService: imageService,
		handler:      handler,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// bootstrap seeds the first admin account on an empty store and prints its
// generated password to stdout, the only place it is ever shown.
func (app *App) bootstrap(ctx context.Context) error {
	admin, password, err := app.userService.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap error: %w", err)
	}
	if admin != nil {
		fmt.Printf(adminCredentialsFormat, admin.Username, admin.Email, password)
	}
	return nil
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.bootstrap(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         app.config.EndpointAddr,
		Handler:      web.NewRouter(app.handler),
		ReadTimeout:  app.config.ReadTimeout,
		WriteTimeout: app.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "HTTP server listening", "addr", app.config.EndpointAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.WriteTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	if conn := app.manager.Conn(); conn != nil {
		if err := conn.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}

	return nil
}
