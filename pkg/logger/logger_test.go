package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeInserter struct {
	mu   sync.Mutex
	docs []Entry
}

func (f *fakeInserter) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.docs = append(f.docs, d.(Entry))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestMongoHandlerFlushesOnClose(t *testing.T) {
	col := &fakeInserter{}
	h := newMongoHandler(col, slog.LevelInfo)
	log := slog.New(h).With("request_id", "abc")

	log.Debug("ignored")
	log.WithGroup("order").Info("created", "id", "o1")
	h.Close()

	require.Len(t, col.docs, 1)
	e := col.docs[0]
	assert.Equal(t, "created", e.Msg)
	assert.Equal(t, "INFO", e.Level)
	assert.Equal(t, "abc", e.RequestID)
	assert.Equal(t, "o1", e.Attrs["order.id"])
	assert.WithinDuration(t, time.Now(), e.Time, time.Minute)
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(m)

	log.Info("hello")
	assert.Contains(t, a.String(), "hello")
	assert.Empty(t, b.String())

	log.Error("boom")
	assert.Contains(t, b.String(), "boom")
}

func TestWithCtx(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := InjectLogger(context.Background(), custom)
	assert.Same(t, custom, WithCtx(ctx))
}

func TestNewHandlerProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler(&buf, "production")).Info("ready", "port", "3000")
	assert.Contains(t, buf.String(), `"msg":"ready"`)
}
