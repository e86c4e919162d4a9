package undo

import (
	"fmt"
	"time"

	"github.com/example/glowplan/internal/scene"
	"github.com/google/uuid"
)

// DefaultLimit is the number of entries kept before the oldest is evicted.
const DefaultLimit = 25

// Target is the scene an undo log is replayed against. *scene.Store
// implements it.
type Target interface {
	Insert(e scene.Entity, index int) error
	Remove(kind scene.Kind, id string) (scene.Removed, error)
	ApplyPlacement(kind scene.Kind, id string, p scene.Placement) error
	Select(kind scene.Kind, id string) error
}

var _ Target = (*scene.Store)(nil)

type trackKey struct {
	kind scene.Kind
	id   string
}

// Log is a bounded undo history with a redo stack.
type Log struct {
	limit    int
	entries  []Entry
	redo     []Entry
	tracking map[trackKey]scene.Placement

	now   func() time.Time
	newID func() string
}

// Option configures a Log.
type Option func(*Log)

// WithLimit sets the maximum number of undo entries. Values below one are
// ignored.
func WithLimit(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithClock sets the clock used to stamp entries.
func WithClock(now func() time.Time) Option { return func(l *Log) { l.now = now } }

// WithIDFunc sets the generator used for entry ids.
func WithIDFunc(fn func() string) Option { return func(l *Log) { l.newID = fn } }

// New returns an empty Log.
func New(opts ...Option) *Log {
	l := &Log{
		limit:    DefaultLimit,
		tracking: make(map[trackKey]scene.Placement),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Limit returns the maximum number of entries kept.
func (l *Log) Limit() int { return l.limit }

// Record appends a to the log, evicting the oldest entry when the log is full.
// Recording discards anything that could be redone.
func (l *Log) Record(a Action) Entry {
	e := Entry{ID: l.newID(), Action: a, Timestamp: l.now()}
	l.entries = pushBounded(l.entries, e, l.limit)
	l.redo = nil
	return e
}

func pushBounded(list []Entry, e Entry, limit int) []Entry {
	list = append(list, e)
	if over := len(list) - limit; over > 0 {
		list = append(list[:0:0], list[over:]...)
	}
	return list
}

// StartMoveTracking remembers the placement of kind/id before a drag.
func (l *Log) StartMoveTracking(kind scene.Kind, id string, before scene.Placement) {
	l.tracking[trackKey{kind, id}] = before
}

// EndMoveTracking closes the bracket opened by StartMoveTracking. A Move or
// Resize entry is recorded only when after differs from the tracked
// placement. An end without a matching start records nothing.
func (l *Log) EndMoveTracking(kind scene.Kind, id string, after scene.Placement, op Op) (Entry, bool) {
	key := trackKey{kind, id}
	before, ok := l.tracking[key]
	if !ok {
		return Entry{}, false
	}
	delete(l.tracking, key)
	if before == after {
		return Entry{}, false
	}
	if op == OpResize {
		return l.Record(Resize{Kind: kind, EntityID: id, Before: before, After: after}), true
	}
	return l.Record(Move{Kind: kind, EntityID: id, Before: before, After: after}), true
}

// CancelMoveTracking drops an open bracket without recording.
func (l *Log) CancelMoveTracking(kind scene.Kind, id string) {
	delete(l.tracking, trackKey{kind, id})
}

// Tracking reports whether a bracket is open for kind/id.
func (l *Log) Tracking(kind scene.Kind, id string) bool {
	_, ok := l.tracking[trackKey{kind, id}]
	return ok
}

// Undo reverts the most recent entry against t. It returns false when the log
// is empty or the inverse could not be applied; in the latter case the entry
// is dropped.
func (l *Log) Undo(t Target) (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	e := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	if err := revert(t, e.Action); err != nil {
		return e, false
	}
	l.redo = pushBounded(l.redo, e, l.limit)
	return e, true
}

// Redo re-applies the most recently undone entry.
func (l *Log) Redo(t Target) (Entry, bool) {
	if len(l.redo) == 0 {
		return Entry{}, false
	}
	e := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	if err := apply(t, e.Action); err != nil {
		return e, false
	}
	l.entries = pushBounded(l.entries, e, l.limit)
	return e, true
}

func revert(t Target, a Action) error {
	switch v := a.(type) {
	case Add:
		_, err := t.Remove(v.Entity.EntityKind(), v.Entity.EntityID())
		return err
	case Delete:
		if err := t.Insert(v.Entity, v.Index); err != nil {
			return err
		}
		if v.WasSelected {
			return t.Select(v.Entity.EntityKind(), v.Entity.EntityID())
		}
		return nil
	case Move:
		return t.ApplyPlacement(v.Kind, v.EntityID, v.Before)
	case Resize:
		return t.ApplyPlacement(v.Kind, v.EntityID, v.Before)
	}
	return fmt.Errorf("revert: unknown action %T", a)
}

func apply(t Target, a Action) error {
	switch v := a.(type) {
	case Add:
		return t.Insert(v.Entity, -1)
	case Delete:
		_, err := t.Remove(v.Entity.EntityKind(), v.Entity.EntityID())
		return err
	case Move:
		return t.ApplyPlacement(v.Kind, v.EntityID, v.After)
	case Resize:
		return t.ApplyPlacement(v.Kind, v.EntityID, v.After)
	}
	return fmt.Errorf("apply: unknown action %T", a)
}

// Clear empties both stacks and cancels every open move bracket.
func (l *Log) Clear() {
	l.entries = nil
	l.redo = nil
	clear(l.tracking)
}

// Len returns the number of undoable entries.
func (l *Log) Len() int { return len(l.entries) }

// CanUndo reports whether Undo has anything to revert.
func (l *Log) CanUndo() bool { return len(l.entries) > 0 }

// CanRedo reports whether Redo has anything to re-apply.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// Entries returns the undo entries, oldest first.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}
