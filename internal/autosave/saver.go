// Package autosave writes project snapshots in the background after edits
// settle.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/example/glowplan/internal/project"
)

// DefaultDelay is the quiet period before a scheduled snapshot is written.
const DefaultDelay = 1500 * time.Millisecond

// Saver debounces snapshots and saves the latest one to a project.Store.
// Schedule may be called from any goroutine; saving happens on the
// Saver's own goroutine.
type Saver struct {
	store     project.Store
	projectID string
	delay     time.Duration
	timeout   time.Duration
	onSaved   func(string)
	onError   func(error)

	mu      sync.Mutex
	pending *project.Snapshot
	poke    chan struct{}

	flushes chan flushRequest
	done    chan struct{}
	once    sync.Once
}

type flushRequest struct {
	snap   *project.Snapshot
	result chan error
}

// Option configures a Saver.
type Option func(*Saver)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(s *Saver) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithTimeout bounds each save call.
func WithTimeout(d time.Duration) Option { return func(s *Saver) { s.timeout = d } }

// WithErrorHandler is called on the saver goroutine when a save fails.
func WithErrorHandler(fn func(error)) Option { return func(s *Saver) { s.onError = fn } }

// WithSavedHandler is called on the saver goroutine after each successful save.
func WithSavedHandler(fn func(projectID string)) Option {
	return func(s *Saver) { s.onSaved = fn }
}

// New starts a Saver for projectID. Call Close to stop it.
func New(store project.Store, projectID string, opts ...Option) *Saver {
	s := &Saver{
		store:     store,
		projectID: projectID,
		delay:     DefaultDelay,
		timeout:   10 * time.Second,
		poke:      make(chan struct{}, 1),
		flushes:   make(chan flushRequest),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// ProjectID returns the project the saver writes to.
func (s *Saver) ProjectID() string { return s.projectID }

// Schedule queues snap to be saved once no newer snapshot arrives within
// the delay. It never waits for a save in progress. The snapshot must not
// be modified afterwards.
func (s *Saver) Schedule(snap *project.Snapshot) {
	s.mu.Lock()
	s.pending = snap
	s.mu.Unlock()
	select {
	case s.poke <- struct{}{}:
	default:
	}
}

func (s *Saver) take() *project.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.pending
	s.pending = nil
	return snap
}

// Flush saves snap immediately, replacing anything pending, and waits for
// the result. A nil snap writes the pending snapshot if there is one.
func (s *Saver) Flush(ctx context.Context, snap *project.Snapshot) error {
	req := flushRequest{snap: snap, result: make(chan error, 1)}
	select {
	case s.flushes <- req:
	case <-s.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the saver, dropping any pending snapshot. Call Flush first to
// keep it.
func (s *Saver) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Saver) run() {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
		fire = nil
	}
	for {
		select {
		case <-s.done:
			stop()
			return
		case <-s.poke:
			if timer == nil {
				timer = time.NewTimer(s.delay)
			} else {
				timer.Stop()
				timer.Reset(s.delay)
			}
			fire = timer.C
		case req := <-s.flushes:
			stop()
			select {
			case <-s.done:
				req.result <- context.Canceled
				return
			default:
			}
			snap := s.take()
			if req.snap != nil {
				snap = req.snap
			}
			var err error
			if snap != nil {
				err = s.save(snap)
			}
			req.result <- err
		case <-fire:
			fire = nil
			if snap := s.take(); snap != nil {
				s.save(snap)
			}
		}
	}
}

func (s *Saver) save(snap *project.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	log := slogger().With("project", s.projectID)
	if err := s.store.Save(ctx, s.projectID, snap); err != nil {
		log.Warn("autosave failed", "err", err)
		if s.onError != nil {
			s.onError(err)
		}
		return err
	}
	log.Debug("autosaved")
	if s.onSaved != nil {
		s.onSaved(s.projectID)
	}
	return nil
}
