package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/glowplan/internal/project"
	"github.com/example/glowplan/internal/scene"
)

type memStore struct {
	mu    sync.Mutex
	saves []*project.Snapshot
	err   error
	saved chan struct{}
}

func newMemStore() *memStore { return &memStore{saved: make(chan struct{}, 16)} }

func (m *memStore) Load(context.Context, string) (*project.Snapshot, error) { return nil, nil }
func (m *memStore) List(context.Context) ([]string, error)                  { return nil, nil }

func (m *memStore) Save(_ context.Context, _ string, snap *project.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, snap)
	m.saved <- struct{}{}
	return m.err
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func snapWith(n int) *project.Snapshot {
	snap := &project.Snapshot{}
	for i := 0; i < n; i++ {
		snap.Decor = append(snap.Decor, scene.DecorShape{ID: "d", Radius: 10})
	}
	return snap
}

func waitSave(t *testing.T, m *memStore) {
	t.Helper()
	select {
	case <-m.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save")
	}
}

func TestScheduleCoalesces(t *testing.T) {
	store := newMemStore()
	s := New(store, "house", WithDelay(30*time.Millisecond))
	defer s.Close()

	s.Schedule(snapWith(1))
	s.Schedule(snapWith(2))
	s.Schedule(snapWith(3))
	waitSave(t, store)

	time.Sleep(60 * time.Millisecond)
	if got := store.count(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	if got := len(store.saves[0].Decor); got != 3 {
		t.Errorf("saved snapshot has %d decor, want the latest (3)", got)
	}
}

func TestFlushWritesPending(t *testing.T) {
	store := newMemStore()
	s := New(store, "house", WithDelay(time.Hour))
	defer s.Close()

	s.Schedule(snapWith(2))
	if err := s.Flush(context.Background(), nil); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if store.count() != 1 || len(store.saves[0].Decor) != 2 {
		t.Fatalf("saves = %+v", store.saves)
	}
	if err := s.Flush(context.Background(), nil); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if store.count() != 1 {
		t.Errorf("empty flush saved again")
	}
}

func TestSaveFailureReported(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	var (
		mu     sync.Mutex
		failed error
	)
	s := New(store, "house", WithErrorHandler(func(err error) {
		mu.Lock()
		failed = err
		mu.Unlock()
	}))
	defer s.Close()

	err := s.Flush(context.Background(), snapWith(1))
	if !errors.Is(err, store.err) {
		t.Fatalf("Flush err = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !errors.Is(failed, store.err) {
		t.Errorf("error handler got %v", failed)
	}
}

func TestCloseDropsPending(t *testing.T) {
	store := newMemStore()
	s := New(store, "house", WithDelay(20*time.Millisecond))
	s.Schedule(snapWith(1))
	s.Close()
	time.Sleep(50 * time.Millisecond)
	if store.count() != 0 {
		t.Errorf("saves after close = %d", store.count())
	}
	s.Schedule(snapWith(1))
	if err := s.Flush(context.Background(), nil); err == nil {
		t.Error("Flush after Close succeeded")
	}
}

// gatedStore holds every Save until release is closed.
type gatedStore struct {
	*memStore
	started chan struct{}
	release chan struct{}
}

func (g *gatedStore) Save(ctx context.Context, id string, snap *project.Snapshot) error {
	g.started <- struct{}{}
	<-g.release
	return g.memStore.Save(ctx, id, snap)
}

func TestScheduleDoesNotWaitForSave(t *testing.T) {
	store := &gatedStore{memStore: newMemStore(), started: make(chan struct{}, 4), release: make(chan struct{})}
	s := New(store, "house", WithDelay(10*time.Millisecond))
	defer s.Close()

	s.Schedule(snapWith(1))
	select {
	case <-store.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first save never started")
	}

	begin := time.Now()
	s.Schedule(snapWith(2))
	s.Schedule(snapWith(3))
	if d := time.Since(begin); d > 100*time.Millisecond {
		t.Fatalf("Schedule waited %v for the save in progress", d)
	}

	close(store.release)
	waitSave(t, store.memStore)
	waitSave(t, store.memStore)
	time.Sleep(50 * time.Millisecond)
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.saves) != 2 {
		t.Fatalf("saves = %d, want 2", len(store.saves))
	}
	if got := len(store.saves[1].Decor); got != 3 {
		t.Errorf("second save has %d decor, want the latest (3)", got)
	}
}
