package gesture

import (
	"fmt"
	"strings"

	"github.com/example/glowplan/internal/geometry"
	"golang.org/x/mobile/event/touch"
)

// Mode is the interaction mode that owns canvas gestures.
type Mode int

const (
	ModeStringDraw Mode = iota
	ModeTapPlace
	ModeDecor
	ModeMeasure
	ModeReference
	numModes
)

var modeNames = [numModes]string{"string", "tap", "decor", "measure", "reference"}

func (m Mode) String() string {
	if m >= 0 && m < numModes {
		return modeNames[m]
	}
	return "unknown"
}

// Modes returns every mode in declaration order.
func Modes() []Mode {
	out := make([]Mode, numModes)
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

// ParseMode resolves a mode name as produced by Mode.String.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q (want one of %s)", name, strings.Join(modeNames[:], ", "))
}

// Handler receives the gestures of one mode. DragStart carries the first
// vector of a drag; later vectors arrive through DragMove.
type Handler interface {
	Tap(p geometry.Point)
	DragStart(v geometry.Vector)
	DragMove(v geometry.Vector)
	DragEnd(v geometry.Vector)
	// Cancel discards whatever the handler started for the current gesture.
	Cancel()
}

// EventKind names a gesture milestone reported to subscribers.
type EventKind int

const (
	EventTap EventKind = iota
	EventDragStart
	EventDragEnd
	EventCancel
	EventAbort
	EventModeChange
)

var eventNames = [...]string{"tap", "drag-start", "drag-end", "cancel", "abort", "mode-change"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is emitted synchronously after the handler has run.
type Event struct {
	Mode   Mode
	Kind   EventKind
	Point  geometry.Point
	Vector geometry.Vector
}

// Arbiter feeds touches through a Drawer and dispatches the outcome to the
// handler registered for the current mode. Exactly one handler exists per
// mode.
type Arbiter struct {
	drawer   *Drawer
	handlers [numModes]Handler
	mode     Mode
	// owner is the mode that received the start of the gesture in progress.
	owner Mode
	// started is set once the owner has seen DragStart for this gesture.
	started bool

	subs   map[int]func(Event)
	nextID int
}

// NewArbiter returns an Arbiter in ModeStringDraw. handlers must contain an
// entry for every mode.
func NewArbiter(d *Drawer, handlers map[Mode]Handler) (*Arbiter, error) {
	a := &Arbiter{drawer: d, subs: make(map[int]func(Event))}
	for _, m := range Modes() {
		h, ok := handlers[m]
		if !ok || h == nil {
			return nil, fmt.Errorf("no handler for mode %s", m)
		}
		a.handlers[m] = h
	}
	return a, nil
}

// Mode returns the current mode.
func (a *Arbiter) Mode() Mode { return a.mode }

// Drawer returns the underlying tap/drag classifier.
func (a *Arbiter) Drawer() *Drawer { return a.drawer }

// SetMode switches modes. A gesture in progress is cancelled first so it
// cannot complete under the new mode.
func (a *Arbiter) SetMode(m Mode) error {
	if m < 0 || m >= numModes {
		return fmt.Errorf("invalid mode %d", int(m))
	}
	if m == a.mode {
		return nil
	}
	if a.drawer.Active() {
		a.Cancel()
	}
	a.mode = m
	a.emit(Event{Mode: m, Kind: EventModeChange})
	return nil
}

// Touch handles one touch event and returns the Drawer's classification.
func (a *Arbiter) Touch(e touch.Event) Result {
	wasActive := a.drawer.Active()
	r := a.drawer.Handle(e)
	if !wasActive && a.drawer.Active() {
		a.owner = a.mode
		a.started = false
	}
	h := a.handlers[a.owner]
	switch r.Outcome {
	case OutcomeTap:
		h.Tap(r.Point)
		a.emit(Event{Mode: a.owner, Kind: EventTap, Point: r.Point})
	case OutcomeDragStart:
		a.started = true
		h.DragStart(r.Vector)
		a.emit(Event{Mode: a.owner, Kind: EventDragStart, Point: r.Point, Vector: r.Vector})
	case OutcomePreview:
		h.DragMove(r.Vector)
	case OutcomeDrag:
		// A release far from the press can end a drag that never moved.
		if !a.started {
			h.DragStart(r.Vector)
		}
		a.started = false
		h.DragEnd(r.Vector)
		a.emit(Event{Mode: a.owner, Kind: EventDragEnd, Point: r.Point, Vector: r.Vector})
	case OutcomeAborted:
		h.Cancel()
		a.emit(Event{Mode: a.owner, Kind: EventAbort, Point: r.Point})
	}
	return r
}

// Cancel aborts the gesture in progress, as when the host interrupts input.
func (a *Arbiter) Cancel() {
	if r := a.drawer.Cancel(); r.Outcome == OutcomeCancelled {
		a.handlers[a.owner].Cancel()
		a.emit(Event{Mode: a.owner, Kind: EventCancel})
	}
}

// Subscribe registers fn for every gesture event and returns a function that
// removes it.
func (a *Arbiter) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	return func() { delete(a.subs, id) }
}

func (a *Arbiter) emit(ev Event) {
	for id := 0; id < a.nextID; id++ {
		if fn, ok := a.subs[id]; ok {
			fn(ev)
		}
	}
}
