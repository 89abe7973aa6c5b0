// Package seeders loads the data a fresh deployment needs: the first admin
// account and a starter menu. Each seeder registers itself from init and
// must leave existing data alone, so `resor seed` can run on every deploy.
package seeders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/resor-app/resor/internal/kernel"
	"github.com/resor-app/resor/pkg/logger"
)

// SeederFunc writes seed data through the stores.
type SeederFunc func(ctx context.Context, st kernel.Stores) error

type seeder struct {
	name string
	fn   SeederFunc
}

var (
	mu       sync.Mutex
	registry []seeder
)

// Register appends a seeder. Seeders run in registration order.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, seeder{name: name, fn: fn})
}

// Names lists the registered seeders sorted by name.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, len(registry))
	for i, s := range registry {
		names[i] = s.name
	}
	sort.Strings(names)
	return names
}

// RunAll runs every seeder, or only those named in only. Unknown names are
// an error before anything is written.
func RunAll(ctx context.Context, st kernel.Stores, only ...string) error {
	mu.Lock()
	all := append([]seeder(nil), registry...)
	mu.Unlock()

	run := all
	if len(only) > 0 {
		byName := make(map[string]seeder, len(all))
		for _, s := range all {
			byName[s.name] = s
		}
		run = run[:0:0]
		for _, name := range only {
			s, ok := byName[name]
			if !ok {
				return fmt.Errorf("unknown seeder %q", name)
			}
			run = append(run, s)
		}
	}

	for _, s := range run {
		start := time.Now()
		if err := s.fn(ctx, st); err != nil {
			return fmt.Errorf("seeder %q: %w", s.name, err)
		}
		logger.WithCtx(ctx).Info("seeded", "seeder", s.name, "duration", time.Since(start).String())
	}
	return nil
}
