package hints_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rcliao/tag-hints/internal/hints"
	"github.com/rcliao/tag-hints/internal/store"
)

func TestCache_RankingByRecency(t *testing.T) {
	c := newReadyCache(t, store.NewMemoryStore())

	c.RecordUsage("A")
	c.RecordUsage("B")
	c.RecordUsage("A")

	got := mustQuery(t, c, "", 10)
	want := []string{"A", "B"}
	if !slices.Equal(got, want) {
		t.Errorf("Query(\"\", 10) = %v, want %v", got, want)
	}
}

func TestCache_PrefixFilter(t *testing.T) {
	c := newReadyCache(t, store.NewMemoryStore())

	c.RecordUsage("cat")
	c.RecordUsage("car")
	c.RecordUsage("dog")

	got := mustQuery(t, c, "ca", 10)
	want := []string{"car", "cat"}
	if !slices.Equal(got, want) {
		t.Errorf("Query(ca, 10) = %v, want %v", got, want)
	}
	if got := mustQuery(t, c, "ca", 1); !slices.Equal(got, []string{"car"}) {
		t.Errorf("Query(ca, 1) = %v, want [car]", got)
	}
}

func TestCache_UsageBeforeReadyIsDropped(t *testing.T) {
	kv := newGatedStore()
	c := newCache(t, kv, hints.DefaultOptions())

	if got := c.State(); got != hints.StateLoading {
		t.Fatalf("State() = %v, want %v", got, hints.StateLoading)
	}

	c.RecordUsage("x")
	if got := mustQuery(t, c, "", 10); got == nil || len(got) != 0 {
		t.Errorf("Query before ready = %v, want empty", got)
	}
	if err := c.Remove(testContext(t), "x"); err != nil {
		t.Errorf("Remove before ready error = %v, want nil", err)
	}

	close(kv.release)
	if err := c.WaitReady(testContext(t)); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	if got := c.State(); got != hints.StateReady {
		t.Errorf("State() = %v, want %v", got, hints.StateReady)
	}

	if got := mustQuery(t, c, "", 10); len(got) != 0 {
		t.Errorf("Query after ready = %v, want usage dropped", got)
	}
	if _, err := kv.MemoryStore.Get(context.Background(), hints.StoreKey(testMode)); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("dropped usage must not be persisted, Get error = %v", err)
	}
}

func TestCache_ReplayRestoresOrder(t *testing.T) {
	kv := store.NewMemoryStore()
	putSnapshot(t, kv, []string{"c", "b", "a"})

	c := newReadyCache(t, kv)

	got := mustQuery(t, c, "", 10)
	want := []string{"c", "b", "a"}
	if !slices.Equal(got, want) {
		t.Errorf("Query after replay = %v, want %v", got, want)
	}

	info, err := c.Info(testContext(t))
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Uses != 3 || info.Entries != 3 {
		t.Errorf("Info() = %+v, want 3 uses and 3 entries", info)
	}

	// New uses rank above replayed history.
	c.RecordUsage("a")
	if got := mustQuery(t, c, "", 10); !slices.Equal(got, []string{"a", "c", "b"}) {
		t.Errorf("Query after use = %v, want [a c b]", got)
	}
}

func TestCache_RemoveIsIdempotent(t *testing.T) {
	c := newReadyCache(t, store.NewMemoryStore())
	ctx := testContext(t)

	c.RecordUsage("keep")

	for range 2 {
		if err := c.Remove(ctx, "never"); err != nil {
			t.Fatalf("Remove(never) error = %v", err)
		}
	}
	if got := mustQuery(t, c, "", 10); !slices.Equal(got, []string{"keep"}) {
		t.Errorf("Query = %v, want [keep]", got)
	}

	for range 2 {
		if err := c.Remove(ctx, "keep"); err != nil {
			t.Fatalf("Remove(keep) error = %v", err)
		}
	}
	if got := mustQuery(t, c, "", 10); len(got) != 0 {
		t.Errorf("Query = %v, want empty", got)
	}
}

func TestCache_RemoveStripsOneLeadingHash(t *testing.T) {
	c := newReadyCache(t, store.NewMemoryStore())
	ctx := testContext(t)

	c.RecordUsage("tag")
	if err := c.Remove(ctx, "#tag"); err != nil {
		t.Fatalf("Remove(#tag) error = %v", err)
	}
	if got := mustQuery(t, c, "", 10); len(got) != 0 {
		t.Errorf("after Remove(#tag) Query = %v, want empty", got)
	}

	c.RecordUsage("tag")
	if err := c.Remove(ctx, "tag"); err != nil {
		t.Fatalf("Remove(tag) error = %v", err)
	}
	if got := mustQuery(t, c, "", 10); len(got) != 0 {
		t.Errorf("after Remove(tag) Query = %v, want empty", got)
	}

	c.RecordUsage("#tag")
	c.Remove(ctx, "#tag")
	if got := mustQuery(t, c, "", 10); !slices.Equal(got, []string{"#tag"}) {
		t.Errorf("Remove(#tag) must target 'tag', Query = %v", got)
	}
	c.Remove(ctx, "##tag")
	if got := mustQuery(t, c, "", 10); len(got) != 0 {
		t.Errorf("after Remove(##tag) Query = %v, want empty", got)
	}
}

func TestCache_SnapshotKeepsMostRecent(t *testing.T) {
	kv := store.NewMemoryStore()
	c := newReadyCache(t, kv)

	for i := range 150 {
		c.RecordUsage(fmt.Sprintf("t%03d", i))
	}
	if err := c.Close(testContext(t)); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := storedSnapshot(t, kv)
	if len(got) != hints.DefaultSnapshotSize {
		t.Fatalf("snapshot has %d entries, want %d", len(got), hints.DefaultSnapshotSize)
	}
	if got[0] != "t149" || got[len(got)-1] != "t049" {
		t.Errorf("snapshot spans %s..%s, want t149..t049", got[0], got[len(got)-1])
	}
}

func TestCache_SnapshotSizeOption(t *testing.T) {
	kv := store.NewMemoryStore()
	opts := hints.DefaultOptions()
	opts.SnapshotSize = 2
	c := newCache(t, kv, opts)
	if err := c.WaitReady(testContext(t)); err != nil {
		t.Fatal(err)
	}

	c.RecordUsage("a")
	c.RecordUsage("b")
	c.RecordUsage("c")
	c.Close(testContext(t))

	if got := storedSnapshot(t, kv); !slices.Equal(got, []string{"c", "b"}) {
		t.Errorf("snapshot = %v, want [c b]", got)
	}
}

func TestCache_RemovePersistsSnapshot(t *testing.T) {
	kv := store.NewMemoryStore()
	c := newReadyCache(t, kv)

	c.RecordUsage("a")
	c.RecordUsage("b")
	if err := c.Remove(testContext(t), "a"); err != nil {
		t.Fatal(err)
	}
	c.Close(testContext(t))

	if got := storedSnapshot(t, kv); !slices.Equal(got, []string{"b"}) {
		t.Errorf("snapshot = %v, want [b]", got)
	}
}

func TestCache_RestartFromSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "hints.db")

	s1, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	c1 := hints.New(context.Background(), s1, testMode, hints.DefaultOptions())
	if err := c1.WaitReady(testContext(t)); err != nil {
		t.Fatal(err)
	}
	c1.RecordUsage("a")
	c1.RecordUsage("b")
	c1.RecordUsage("c")
	if err := c1.Close(testContext(t)); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	s1.Close()

	s2, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	c2 := newReadyCache(t, s2)

	if got := mustQuery(t, c2, "", 10); !slices.Equal(got, []string{"c", "b", "a"}) {
		t.Errorf("Query after restart = %v, want [c b a]", got)
	}
}

func TestCache_LoadFailureIsNoHistory(t *testing.T) {
	obs := &captureObserver{}
	opts := hints.DefaultOptions()
	opts.Observer = obs
	c := newCache(t, &failingStore{MemoryStore: store.NewMemoryStore()}, opts)

	if err := c.WaitReady(testContext(t)); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	if n := obs.count(hints.EventLoadFailed); n != 1 {
		t.Errorf("load failed events = %d, want 1", n)
	}

	c.RecordUsage("after")
	if got := mustQuery(t, c, "", 10); !slices.Equal(got, []string{"after"}) {
		t.Errorf("Query = %v, want [after]", got)
	}
}

func TestCache_CorruptSnapshotIsNoHistory(t *testing.T) {
	kv := store.NewMemoryStore()
	kv.Set(context.Background(), hints.StoreKey(testMode), []byte("not a snapshot"))

	obs := &captureObserver{}
	opts := hints.DefaultOptions()
	opts.Observer = obs
	c := newCache(t, kv, opts)

	if err := c.WaitReady(testContext(t)); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	if got := mustQuery(t, c, "", 10); len(got) != 0 {
		t.Errorf("Query = %v, want empty", got)
	}
	if n := obs.count(hints.EventDecodeFailed); n != 1 {
		t.Errorf("decode failed events = %d, want 1", n)
	}
}

func TestCache_EmptyPayloadIsNoHistory(t *testing.T) {
	kv := store.NewMemoryStore()
	kv.Set(context.Background(), hints.StoreKey(testMode), nil)

	obs := &captureObserver{}
	opts := hints.DefaultOptions()
	opts.Observer = obs
	c := newCache(t, kv, opts)

	if err := c.WaitReady(testContext(t)); err != nil {
		t.Fatal(err)
	}
	if n := obs.count(hints.EventDecodeFailed); n != 0 {
		t.Errorf("decode failed events = %d, want 0", n)
	}
	if n := obs.count(hints.EventLoadComplete); n != 1 {
		t.Errorf("load complete events = %d, want 1", n)
	}
}

func TestCache_PersistFailureIsIgnored(t *testing.T) {
	obs := &captureObserver{}
	opts := hints.DefaultOptions()
	opts.Observer = obs
	c := newCache(t, &failingStore{MemoryStore: store.NewMemoryStore(), failSet: true}, opts)
	if err := c.WaitReady(testContext(t)); err != nil {
		t.Fatal(err)
	}

	c.RecordUsage("x")
	if err := c.Remove(testContext(t), "x"); err != nil {
		t.Errorf("Remove() error = %v, want nil despite failing store", err)
	}
	c.RecordUsage("y")
	if got := mustQuery(t, c, "", 10); !slices.Equal(got, []string{"y"}) {
		t.Errorf("Query = %v, want [y]", got)
	}

	info, err := c.Info(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(testContext(t)); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
	if obs.count(hints.EventPersistFailed) == 0 {
		t.Error("expected at least one persist failed event")
	}
	if info.Mode != testMode || info.Entries != 1 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestCache_LoadTimeout(t *testing.T) {
	kv := newGatedStore()
	t.Cleanup(func() { close(kv.release) })

	obs := &captureObserver{}
	opts := hints.DefaultOptions()
	opts.LoadTimeout = 20 * time.Millisecond
	opts.Observer = obs
	c := newCache(t, kv, opts)

	if err := c.WaitReady(testContext(t)); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	if n := obs.count(hints.EventLoadFailed); n != 1 {
		t.Errorf("load failed events = %d, want 1", n)
	}
	c.RecordUsage("late")
	if got := mustQuery(t, c, "", 10); !slices.Equal(got, []string{"late"}) {
		t.Errorf("Query = %v, want [late]", got)
	}
}

func TestCache_WaitReadyHonorsContext(t *testing.T) {
	kv := newGatedStore()
	t.Cleanup(func() { close(kv.release) })
	c := newCache(t, kv, hints.DefaultOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := c.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitReady() error = %v, want deadline exceeded", err)
	}
}

func TestCache_QueryLimit(t *testing.T) {
	c := newReadyCache(t, store.NewMemoryStore())
	c.RecordUsage("a")
	c.RecordUsage("b")

	for _, limit := range []int{0, -3} {
		got := mustQuery(t, c, "", limit)
		if got == nil || len(got) != 0 {
			t.Errorf("Query(limit=%d) = %v, want empty non-nil", limit, got)
		}
	}
	if got := mustQuery(t, c, "zzz", 10); got == nil || len(got) != 0 {
		t.Errorf("Query(zzz) = %v, want empty non-nil", got)
	}
}

func TestCache_Closed(t *testing.T) {
	c := newReadyCache(t, store.NewMemoryStore())
	ctx := testContext(t)

	if err := c.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(ctx); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := c.Query(ctx, "", 10); !errors.Is(err, hints.ErrClosed) {
		t.Errorf("Query after Close error = %v, want ErrClosed", err)
	}
	if err := c.Remove(ctx, "x"); !errors.Is(err, hints.ErrClosed) {
		t.Errorf("Remove after Close error = %v, want ErrClosed", err)
	}
	c.RecordUsage("ignored")
}
