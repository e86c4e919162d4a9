// Package gesture turns raw touch sequences into taps and drawn vectors and
// routes them to the handler of the active interaction mode.
package gesture

import (
	"time"

	"github.com/example/glowplan/internal/geometry"
	"golang.org/x/mobile/event/touch"
)

// Outcome classifies what a touch event did to the gesture in progress.
type Outcome int

const (
	// OutcomeNone means the event changed nothing the caller needs to see.
	OutcomeNone Outcome = iota
	// OutcomeTap is a short press released near where it started.
	OutcomeTap
	// OutcomeDragStart is reported once, when a press first moves beyond the
	// tap threshold.
	OutcomeDragStart
	// OutcomePreview carries the live vector of a drag in progress.
	OutcomePreview
	// OutcomeDrag carries the completed vector of a finished drag.
	OutcomeDrag
	// OutcomeAborted means a second touch arrived and the gesture was
	// dropped.
	OutcomeAborted
	// OutcomeCancelled means the host interrupted the gesture.
	OutcomeCancelled
)

var outcomeNames = [...]string{"none", "tap", "drag-start", "preview", "drag", "aborted", "cancelled"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Result is returned for every event fed to a Drawer.
type Result struct {
	Outcome Outcome
	// Point is the tap location, or the current touch location otherwise.
	Point geometry.Point
	// Vector runs from the press point to the current point for drag
	// outcomes.
	Vector geometry.Vector
	// Yield is set while more than one finger is down so the host can hand
	// the touches to its own pinch and pan handling.
	Yield bool
}

// DrawerOptions configures tap classification.
type DrawerOptions struct {
	// TapThreshold is the displacement in pixels a press must exceed to
	// become a drag.
	TapThreshold float64
	// TapTimeout is the longest press still classified as a tap.
	TapTimeout time.Duration
	// Now returns the current time. touch.Event carries no timestamp.
	Now func() time.Time
}

// DefaultDrawerOptions returns the stock thresholds: 5 px and 300 ms.
func DefaultDrawerOptions() DrawerOptions {
	return DrawerOptions{
		TapThreshold: 5,
		TapTimeout:   300 * time.Millisecond,
		Now:          time.Now,
	}
}

type drawState int

const (
	stateIdle drawState = iota
	statePending
	stateDragging
	// stateBlocked swallows touches of an aborted gesture until every finger
	// is lifted.
	stateBlocked
)

// Drawer is the tap/drag state machine for a single gesture at a time.
type Drawer struct {
	opts DrawerOptions

	state     drawState
	active    map[touch.Sequence]struct{}
	seq       touch.Sequence
	start     geometry.Point
	startTime time.Time
}

// NewDrawer returns an idle Drawer. Zero option fields take their defaults.
func NewDrawer(opts DrawerOptions) *Drawer {
	def := DefaultDrawerOptions()
	if opts.TapThreshold <= 0 {
		opts.TapThreshold = def.TapThreshold
	}
	if opts.TapTimeout <= 0 {
		opts.TapTimeout = def.TapTimeout
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Drawer{opts: opts, active: make(map[touch.Sequence]struct{})}
}

// Options returns the thresholds in use.
func (d *Drawer) Options() DrawerOptions { return d.opts }

// Active reports whether a gesture is pending or dragging.
func (d *Drawer) Active() bool {
	return d.state == statePending || d.state == stateDragging
}

// Dragging reports whether the current gesture has become a drag.
func (d *Drawer) Dragging() bool { return d.state == stateDragging }

func pointOf(e touch.Event) geometry.Point {
	return geometry.Pt(float64(e.X), float64(e.Y))
}

// Handle advances the state machine with e.
func (d *Drawer) Handle(e touch.Event) Result {
	p := pointOf(e)
	switch e.Type {
	case touch.TypeBegin:
		return d.begin(e.Sequence, p)
	case touch.TypeMove:
		return d.move(e.Sequence, p)
	case touch.TypeEnd:
		return d.end(e.Sequence, p)
	}
	return Result{Point: p}
}

func (d *Drawer) begin(seq touch.Sequence, p geometry.Point) Result {
	d.active[seq] = struct{}{}
	if len(d.active) > 1 {
		if d.Active() {
			d.state = stateBlocked
			return Result{Outcome: OutcomeAborted, Point: p, Yield: true}
		}
		return Result{Point: p, Yield: true}
	}
	if d.state == stateBlocked {
		return Result{Point: p, Yield: true}
	}
	d.state = statePending
	d.seq = seq
	d.start = p
	d.startTime = d.opts.Now()
	return Result{Point: p}
}

func (d *Drawer) move(seq touch.Sequence, p geometry.Point) Result {
	if len(d.active) > 1 {
		if d.Active() {
			d.state = stateBlocked
			return Result{Outcome: OutcomeAborted, Point: p, Yield: true}
		}
		return Result{Point: p, Yield: true}
	}
	if !d.Active() || seq != d.seq {
		return Result{Point: p}
	}
	v := geometry.Vec(d.start, p)
	if d.state == statePending {
		if v.Length() <= d.opts.TapThreshold {
			return Result{Point: p}
		}
		d.state = stateDragging
		return Result{Outcome: OutcomeDragStart, Point: p, Vector: v}
	}
	return Result{Outcome: OutcomePreview, Point: p, Vector: v}
}

func (d *Drawer) end(seq touch.Sequence, p geometry.Point) Result {
	delete(d.active, seq)
	switch d.state {
	case stateBlocked:
		if len(d.active) == 0 {
			d.state = stateIdle
		}
		return Result{Point: p, Yield: len(d.active) > 0}
	case stateIdle:
		return Result{Point: p}
	}
	if seq != d.seq {
		return Result{Point: p}
	}
	v := geometry.Vec(d.start, p)
	wasPending := d.state == statePending
	d.state = stateIdle
	if wasPending && v.Length() <= d.opts.TapThreshold && d.opts.Now().Sub(d.startTime) < d.opts.TapTimeout {
		return Result{Outcome: OutcomeTap, Point: p}
	}
	return Result{Outcome: OutcomeDrag, Point: p, Vector: v}
}

// Cancel discards the gesture in progress and forgets every active touch.
func (d *Drawer) Cancel() Result {
	was := d.Active()
	d.state = stateIdle
	clear(d.active)
	if was {
		return Result{Outcome: OutcomeCancelled}
	}
	return Result{}
}
