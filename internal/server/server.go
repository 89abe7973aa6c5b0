package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/resor-app/resor/config"
	"github.com/resor-app/resor/internal/kernel"
	"github.com/resor-app/resor/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Start serves the kernel's handler on APP_PORT until ctx is canceled,
// then drains in-flight requests and closes the kernel.
func Start(ctx context.Context, k *kernel.Kernel) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", config.AppPort()),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return serve(ctx, srv, k)
}

func serve(ctx context.Context, srv *http.Server, k *kernel.Kernel) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("resor listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		_ = k.Close()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if cerr := k.Close(); cerr != nil {
		logger.Error("kernel close failed", "error", cerr)
	}
	return err
}
