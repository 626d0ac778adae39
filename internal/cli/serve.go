package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/plotline/pkg/adapters/http"
)

// ShutdownTimeout is the deadline given to in-flight requests on shutdown.
const ShutdownTimeout = 5 * time.Second

// NewHandler builds the HTTP API for app.
func (a *App) NewHandler(version string) http.Handler {
	return httpAdapter.NewHandler(a.Manager,
		httpAdapter.WithLogger(a.Logger),
		httpAdapter.WithMetrics(a.Metrics.Handler()),
		httpAdapter.WithVersion(version),
	)
}

// Serve runs the HTTP API on addr until ctx is done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, addr, version string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.NewHandler(version),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end when ctx does, so Shutdown is not held open by them.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting HTTP server", "address", addr, "storage", a.Config.Storage.Driver)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.Logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if closeErr := srv.Close(); closeErr != nil {
				return errors.Join(err, closeErr)
			}
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		return nil
	}
}
