package hints

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rcliao/tag-hints/internal/observability"
	"github.com/rcliao/tag-hints/internal/store"
)

// bestEffortSink owns the writes of one cache's snapshots. Offer never
// blocks and never reports failure; a single writer goroutine stores the
// most recent snapshot, so intermediate snapshots may be skipped but the
// last one offered is always the last one written.
type bestEffortSink struct {
	kv       store.KV
	key      string
	mode     string
	observer observability.Observer

	mu      sync.Mutex
	pending []byte
	dirty   bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once

	writes   atomic.Int64
	failures atomic.Int64
}

func newBestEffortSink(ctx context.Context, kv store.KV, mode string, observer observability.Observer) *bestEffortSink {
	s := &bestEffortSink{
		kv:       kv,
		key:      StoreKey(mode),
		mode:     mode,
		observer: observer,
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run(context.WithoutCancel(ctx))
	return s
}

// Offer replaces the pending snapshot and wakes the writer.
func (s *bestEffortSink) Offer(data []byte) {
	s.mu.Lock()
	s.pending = data
	s.dirty = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close writes any pending snapshot and stops the writer. It returns early
// with ctx's error if the final write does not finish in time.
func (s *bestEffortSink) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.quit) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *bestEffortSink) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.drain(ctx)
		case <-s.quit:
			s.drain(ctx)
			return
		}
	}
}

func (s *bestEffortSink) drain(ctx context.Context) {
	for {
		s.mu.Lock()
		if !s.dirty {
			s.mu.Unlock()
			return
		}
		data := s.pending
		s.pending, s.dirty = nil, false
		s.mu.Unlock()

		if err := s.kv.Set(ctx, s.key, data); err != nil {
			s.failures.Add(1)
			s.observer.OnEvent(ctx, observability.Event{
				Type:      EventPersistFailed,
				Level:     observability.LevelWarning,
				Timestamp: time.Now(),
				Source:    eventSource,
				Data:      map[string]any{"mode": s.mode, "error": err.Error()},
			})
			continue
		}
		s.writes.Add(1)
	}
}
