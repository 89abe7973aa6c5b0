package logger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LogCollection holds persisted log lines when LOG_MONGO is enabled.
const LogCollection = "logs"

const (
	sinkQueueSize = 4096
	sinkBatchSize = 50
	sinkFlushTick = 2 * time.Second
)

// Entry is the document shape stored in the logs collection.
type Entry struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"requestId,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// inserter is the slice of *mongo.Collection the sink needs.
type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

type sink struct {
	col   inserter
	queue chan Entry
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// MongoHandler is a slog.Handler that batches records into MongoDB from a
// background goroutine. Records are dropped when the queue is full.
type MongoHandler struct {
	sink   *sink
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewMongoHandler starts a sink writing to db's logs collection. It shares
// the application's client; Close flushes but does not disconnect.
func NewMongoHandler(db *mongo.Database, level slog.Leveler) *MongoHandler {
	col := db.Collection(LogCollection)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "time", Value: -1}}})
	return newMongoHandler(col, level)
}

func newMongoHandler(col inserter, level slog.Leveler) *MongoHandler {
	s := &sink{
		col:   col,
		queue: make(chan Entry, sinkQueueSize),
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	if level == nil {
		level = slog.LevelInfo
	}
	return &MongoHandler{sink: s, level: level}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}
	add := func(a slog.Attr) bool {
		if a.Key == "request_id" {
			e.RequestID = a.Value.String()
			return true
		}
		e.Attrs[h.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	select {
	case h.sink.queue <- e:
	default:
	}
	return nil
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// Close flushes queued entries and stops the background writer.
func (h *MongoHandler) Close() {
	h.sink.once.Do(func() { close(h.sink.done) })
	h.sink.wg.Wait()
}

func (s *sink) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(sinkFlushTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, sinkBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = s.col.InsertMany(ctx, batch)
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case e := <-s.queue:
			batch = append(batch, e)
			if len(batch) >= sinkBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case e := <-s.queue:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}

// MultiHandler fans each record out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: hs}
}
