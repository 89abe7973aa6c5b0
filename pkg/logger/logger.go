// Package logger provides the process-wide structured logger built on log/slog.
//
// Handlers fetch a request-scoped logger with WithCtx so every line carries
// the request_id attached by the HTTP middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order created", "order_id", id)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/resor-app/resor/config"
)

// L is the base logger. It is usable before Setup runs.
var L = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Setup rebuilds L from the current configuration and installs it as the
// slog default. Extra handlers (the Mongo sink) are fanned out alongside the
// console handler.
func Setup(extra ...slog.Handler) *slog.Logger {
	L = slog.New(newHandler(os.Stdout, config.AppEnv(), extra...))
	slog.SetDefault(L)
	return L
}

func newHandler(w io.Writer, env string, extra ...slog.Handler) slog.Handler {
	var console slog.Handler
	switch env {
	case "production", "prod":
		console = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "test", "testing":
		console = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})
	default:
		console = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	if len(extra) == 0 {
		return console
	}
	return NewMultiHandler(append([]slog.Handler{console}, extra...)...)
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
