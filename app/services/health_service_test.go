package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resor-app/resor/app/services"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	report, healthy := services.NewHealthService(map[string]services.Pinger{"db": ok}).Check(context.Background())
	assert.True(t, healthy)
	assert.Equal(t, "ok", report.Status)

	report, healthy = services.NewHealthService(map[string]services.Pinger{"db": ok, "cache": down}).Check(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "connection refused", report.Checks["cache"])
	assert.Equal(t, "ok", report.Checks["db"])
}
