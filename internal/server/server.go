// Package server runs the sandbox API: it opens the database, the optional
// Redis cache and the order-status hub, then serves the kernel until the
// context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sparkcrackers/storefront/config"
	"github.com/sparkcrackers/storefront/internal/kernel"
	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/database"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/ws"
)

const shutdownGrace = 10 * time.Second

// Start boots every dependency and blocks until ctx is done or the listener
// fails.
func Start(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}

	db, err := database.Connect()
	if err != nil {
		return err
	}
	defer database.Close(db)

	store, err := cache.Connect(config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("server: catalog cache disabled", "error", err)
		store = nil
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	hub := ws.NewHub()
	go hub.Run(ctx)

	k := kernel.NewHTTPKernel(kernel.Options{
		DB:            db,
		Cache:         store,
		CatalogTTL:    time.Minute,
		Hub:           hub,
		PaymentSecret: config.PaymentKeySecret(),
	})

	ln, err := net.Listen("tcp", ":"+config.AppPort())
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	logger.Info("server: sandbox API listening", "addr", ln.Addr().String(), "env", config.AppEnv())
	return Serve(ctx, ln, k.Handler())
}

// Serve handles connections on ln until ctx is done, then drains in-flight
// requests for up to shutdownGrace.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
