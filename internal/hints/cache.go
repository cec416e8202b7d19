// Package hints remembers the hashtags a user has used, ranks them by
// recency and answers prefix queries. Each mode gets its own Cache, which
// loads its history from a store.KV once at startup and writes a snapshot of
// its best ranked hints back after every change.
//
// A Cache runs a single goroutine that owns the ranked index. Every public
// method is a message to that goroutine, so operations apply in arrival
// order and the index needs no locking. Store reads and writes happen on
// other goroutines and never block callers.
package hints

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rcliao/tag-hints/internal/index"
	"github.com/rcliao/tag-hints/internal/observability"
	"github.com/rcliao/tag-hints/internal/store"
)

const (
	// DefaultSnapshotSize is the number of hints kept in durable storage.
	DefaultSnapshotSize = 101

	mailboxSize = 64
)

// State is the load state of a Cache.
type State int32

const (
	StateNotLoaded State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not_loaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Options configures a Cache.
type Options struct {
	// SnapshotSize bounds how many hints each write persists.
	SnapshotSize int
	// LoadTimeout bounds the initial load. Zero waits forever.
	LoadTimeout time.Duration
	// Observer receives load and persistence events.
	Observer observability.Observer
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		SnapshotSize: DefaultSnapshotSize,
		Observer:     observability.NoOpObserver{},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SnapshotSize <= 0 {
		o.SnapshotSize = def.SnapshotSize
	}
	if o.Observer == nil {
		o.Observer = def.Observer
	}
	return o
}

// Info describes a Cache at one instant.
type Info struct {
	Mode          string `json:"mode"`
	State         string `json:"state"`
	Entries       int    `json:"entries"`
	Uses          int64  `json:"uses"`
	Writes        int64  `json:"writes"`
	WriteFailures int64  `json:"write_failures"`
}

// Cache is the hint set of one mode.
type Cache struct {
	mode string
	kv   store.KV
	opts Options
	ctx  context.Context

	state    atomic.Int32
	ready    chan struct{}
	closed   atomic.Bool
	stopSent atomic.Bool

	mailbox chan func()
	done    chan struct{}
	sink    *bestEffortSink

	// Owned by the run goroutine.
	hints    *index.Index
	counter  int64
	stopping bool
}

// New creates the Cache for mode and issues its one load from kv. The cache
// answers queries with no results and drops usages until that load
// completes. ctx scopes store calls made on the cache's behalf; canceling it
// does not abort them.
func New(ctx context.Context, kv store.KV, mode string, opts Options) *Cache {
	opts = opts.withDefaults()
	base := context.WithoutCancel(ctx)

	c := &Cache{
		mode:    mode,
		kv:      kv,
		opts:    opts,
		ctx:     base,
		ready:   make(chan struct{}),
		mailbox: make(chan func(), mailboxSize),
		done:    make(chan struct{}),
		sink:    newBestEffortSink(base, kv, mode, opts.Observer),
		hints:   index.New(),
	}
	c.state.Store(int32(StateNotLoaded))

	go c.run()
	c.load()
	return c
}

// Mode returns the cache's mode.
func (c *Cache) Mode() string {
	return c.mode
}

// State returns the current load state.
func (c *Cache) State() State {
	return State(c.state.Load())
}

// Ready is closed once the initial load has completed.
func (c *Cache) Ready() <-chan struct{} {
	return c.ready
}

// WaitReady blocks until the initial load has completed.
func (c *Cache) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordUsage marks text as just used. It returns without waiting. Usages
// arriving before the cache is ready are dropped.
func (c *Cache) RecordUsage(text string) {
	_ = c.post(c.ctx, func() { c.recordUsage(text) })
}

// Remove forgets text, with one leading '#' ignored. Removing an unknown
// hint, or removing before the cache is ready, succeeds. The returned error
// is ErrClosed or ctx's error, never a store failure.
func (c *Cache) Remove(ctx context.Context, text string) error {
	return c.call(ctx, func() { c.remove(text) })
}

// Query returns up to limit hints starting with prefix, most recently used
// first. An empty prefix matches every hint.
func (c *Cache) Query(ctx context.Context, prefix string, limit int) ([]string, error) {
	var result []string
	if err := c.call(ctx, func() { result = c.query(prefix, limit) }); err != nil {
		return nil, err
	}
	return result, nil
}

// Info returns a description of the cache.
func (c *Cache) Info(ctx context.Context) (Info, error) {
	var info Info
	err := c.call(ctx, func() {
		info = Info{
			Mode:    c.mode,
			State:   c.State().String(),
			Entries: c.hints.Len(),
			Uses:    c.counter,
		}
	})
	if err != nil {
		return Info{}, err
	}
	info.Writes = c.sink.writes.Load()
	info.WriteFailures = c.sink.failures.Load()
	return info, nil
}

// Close stops the cache after the operations already sent to it and writes
// the latest pending snapshot. Later calls return ErrClosed.
func (c *Cache) Close(ctx context.Context) error {
	c.closed.Store(true)
	if !c.stopSent.Load() {
		select {
		case c.mailbox <- func() { c.stopping = true }:
			c.stopSent.Store(true)
		case <-c.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.sink.Close(ctx)
}

func (c *Cache) run() {
	defer close(c.done)
	for {
		fn := <-c.mailbox
		fn()
		if c.stopping {
			return
		}
	}
}

func (c *Cache) post(ctx context.Context, fn func()) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.send(ctx, fn)
}

func (c *Cache) send(ctx context.Context, fn func()) error {
	select {
	case c.mailbox <- fn:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn on the cache goroutine and waits for it.
func (c *Cache) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := c.post(ctx, func() { fn(); close(finished) }); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-c.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache) load() {
	c.state.Store(int32(StateLoading))
	go func() {
		data, err := c.fetch()
		_ = c.send(c.ctx, func() { c.fromStore(data, err) })
	}()
}

func (c *Cache) fetch() ([]byte, error) {
	key := StoreKey(c.mode)
	if c.opts.LoadTimeout <= 0 {
		return c.kv.Get(c.ctx, key)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.LoadTimeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := c.kv.Get(ctx, key)
		ch <- result{data, err}
	}()

	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", key, ctx.Err())
	}
}

// fromStore replays the loaded snapshot and marks the cache ready. Any
// failure leaves the cache ready with no history.
func (c *Cache) fromStore(data []byte, err error) {
	defer c.markReady()

	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.emit(EventLoadFailed, observability.LevelWarning, map[string]any{"error": err.Error()})
			return
		}
		data = nil
	}
	if len(data) == 0 {
		c.emit(EventLoadComplete, observability.LevelInfo, map[string]any{"replayed": 0})
		return
	}

	hints, err := DecodeSnapshot(data)
	if err != nil {
		c.emit(EventDecodeFailed, observability.LevelError, map[string]any{"error": err.Error(), "bytes": len(data)})
		return
	}

	// Snapshots are newest first.
	for i := len(hints) - 1; i >= 0; i-- {
		c.use(hints[i])
	}
	c.emit(EventLoadComplete, observability.LevelInfo, map[string]any{"replayed": len(hints)})
}

func (c *Cache) markReady() {
	c.state.Store(int32(StateReady))
	close(c.ready)
}

func (c *Cache) isReady() bool {
	return c.State() == StateReady
}

func (c *Cache) recordUsage(text string) {
	if !c.isReady() {
		return
	}
	c.use(text)
	c.persist()
}

func (c *Cache) use(text string) {
	key := KeyOf(text)
	c.hints.Add(key, text)
	c.counter++
	c.hints.SetRating(key, -c.counter)
}

func (c *Cache) remove(text string) {
	if !c.isReady() {
		return
	}
	key := KeyOf(strings.TrimPrefix(text, "#"))
	if !c.hints.Has(key) {
		return
	}
	c.hints.Remove(key)
	c.persist()
}

func (c *Cache) query(prefix string, limit int) []string {
	if !c.isReady() {
		return []string{}
	}
	var entries []index.Entry
	if prefix == "" {
		entries = c.hints.SearchEmpty(limit)
	} else {
		entries = c.hints.Search(prefix, limit)
	}
	return entryTexts(entries)
}

// persist hands the current snapshot to the sink.
func (c *Cache) persist() {
	data, err := EncodeSnapshot(entryTexts(c.hints.SearchEmpty(c.opts.SnapshotSize)))
	if err != nil {
		c.emit(EventEncodeFailed, observability.LevelError, map[string]any{"error": err.Error()})
		return
	}
	c.sink.Offer(data)
}

func (c *Cache) emit(typ observability.EventType, level observability.Level, data map[string]any) {
	data["mode"] = c.mode
	c.opts.Observer.OnEvent(c.ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    eventSource,
		Data:      data,
	})
}

func entryTexts(entries []index.Entry) []string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return texts
}
