package hints

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rcliao/tag-hints/internal/store"
)

// Manager hands out one Cache per mode over a shared store. Caches of
// different modes share nothing but the store. All methods are safe for
// concurrent use.
type Manager struct {
	ctx  context.Context
	kv   store.KV
	opts Options

	mu     sync.Mutex
	caches map[string]*Cache
	closed bool
}

// NewManager creates a Manager. The store stays owned by the caller.
func NewManager(ctx context.Context, kv store.KV, opts Options) *Manager {
	return &Manager{
		ctx:    ctx,
		kv:     kv,
		opts:   opts,
		caches: make(map[string]*Cache),
	}
}

// Cache returns the cache for mode, creating and starting its load on first
// use.
func (m *Manager) Cache(mode string) (*Cache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if c, ok := m.caches[mode]; ok {
		return c, nil
	}
	c := New(m.ctx, m.kv, mode, m.opts)
	m.caches[mode] = c
	return c, nil
}

// Modes returns the sorted modes with an open cache.
func (m *Manager) Modes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	modes := make([]string, 0, len(m.caches))
	for mode := range m.caches {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	return modes
}

// Close closes every cache, waiting for their final snapshots.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	caches := make([]*Cache, 0, len(m.caches))
	for _, c := range m.caches {
		caches = append(caches, c)
	}
	m.mu.Unlock()

	var errs []error
	for _, c := range caches {
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.Mode(), err))
		}
	}
	return errors.Join(errs...)
}
