package hints_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rcliao/tag-hints/internal/hints"
	"github.com/rcliao/tag-hints/internal/observability"
	"github.com/rcliao/tag-hints/internal/store"
)

const testMode = "test"

var errStore = errors.New("store unavailable")

// gatedStore holds every Get until release is closed.
type gatedStore struct {
	*store.MemoryStore
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{MemoryStore: store.NewMemoryStore(), release: make(chan struct{})}
}

func (s *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.MemoryStore.Get(ctx, key)
}

// failingStore fails reads and, when failSet is true, writes.
type failingStore struct {
	*store.MemoryStore
	failSet bool
}

func (s *failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errStore
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return errStore
	}
	return s.MemoryStore.Set(ctx, key, value)
}

type captureObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (o *captureObserver) OnEvent(_ context.Context, e observability.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *captureObserver) count(typ observability.EventType) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newCache(t *testing.T, kv store.KV, opts hints.Options) *hints.Cache {
	t.Helper()
	c := hints.New(context.Background(), kv, testMode, opts)
	t.Cleanup(func() { c.Close(context.Background()) })
	return c
}

func newReadyCache(t *testing.T, kv store.KV) *hints.Cache {
	t.Helper()
	c := newCache(t, kv, hints.DefaultOptions())
	if err := c.WaitReady(testContext(t)); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	return c
}

func mustQuery(t *testing.T, c *hints.Cache, prefix string, limit int) []string {
	t.Helper()
	got, err := c.Query(testContext(t), prefix, limit)
	if err != nil {
		t.Fatalf("Query(%q, %d) error = %v", prefix, limit, err)
	}
	return got
}

func storedSnapshot(t *testing.T, kv store.KV) []string {
	t.Helper()
	data, err := kv.Get(context.Background(), hints.StoreKey(testMode))
	if err != nil {
		t.Fatalf("Get(snapshot) error = %v", err)
	}
	list, err := hints.DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	return list
}

func putSnapshot(t *testing.T, kv store.KV, list []string) {
	t.Helper()
	data, err := hints.EncodeSnapshot(list)
	if err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}
	if err := kv.Set(context.Background(), hints.StoreKey(testMode), data); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}
