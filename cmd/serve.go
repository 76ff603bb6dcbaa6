package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/server"
	"github.com/desertthunder/plview/internal/web"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the web interface until the process receives an interrupt or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("host") {
		r.config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		r.config.Server.Port = int(cmd.Int("port"))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return r.withStore(ctx, func(store models.Store) error {
		srv, err := r.newServer(store)
		if err != nil {
			return err
		}

		errs := make(chan error, 1)
		go func() {
			r.logger.Info("server listening", "addr", srv.Addr, "backend", r.config.Store.Backend)
			errs <- srv.ListenAndServe()
		}()

		select {
		case err := <-errs:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		r.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
}

// newServer wires the web handler behind the middleware stack.
func (r *Runner) newServer(store models.Store) (*http.Server, error) {
	cfg := r.config.Server

	handler, err := web.NewHandler(store, r.logger, cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build web handler: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(
		server.Recovery(r.logger),
		server.RequestLogging(r.logger),
		server.RateLimit(cfg.RateLimit, cfg.Burst),
	)
	router.Handler(handler)

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}, nil
}
