package gesture

import (
	"testing"
	"time"

	"github.com/example/glowplan/internal/geometry"
	"golang.org/x/mobile/event/touch"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDrawer() (*Drawer, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 12, 24, 20, 0, 0, 0, time.UTC)}
	opts := DefaultDrawerOptions()
	opts.Now = clk.Now
	return NewDrawer(opts), clk
}

func ev(seq touch.Sequence, typ touch.Type, x, y float32) touch.Event {
	return touch.Event{X: x, Y: y, Sequence: seq, Type: typ}
}

func TestTapClassification(t *testing.T) {
	d, clk := newTestDrawer()
	d.Handle(ev(1, touch.TypeBegin, 100, 100))
	if r := d.Handle(ev(1, touch.TypeMove, 103, 104)); r.Outcome != OutcomeNone {
		t.Fatalf("move within threshold = %v, want none", r.Outcome)
	}
	clk.Advance(100 * time.Millisecond)
	r := d.Handle(ev(1, touch.TypeEnd, 103, 104))
	if r.Outcome != OutcomeTap {
		t.Fatalf("outcome = %v, want tap", r.Outcome)
	}
	if r.Point != geometry.Pt(103, 104) {
		t.Errorf("tap point = %v, want release point", r.Point)
	}
	if d.Active() {
		t.Error("drawer should be idle after release")
	}
}

func TestSlowPressIsDrag(t *testing.T) {
	d, clk := newTestDrawer()
	d.Handle(ev(1, touch.TypeBegin, 10, 10))
	clk.Advance(300 * time.Millisecond)
	r := d.Handle(ev(1, touch.TypeEnd, 10, 10))
	if r.Outcome != OutcomeDrag {
		t.Fatalf("outcome = %v, want drag", r.Outcome)
	}
	if r.Vector.Length() != 0 {
		t.Errorf("vector length = %v, want 0", r.Vector.Length())
	}
}

func TestDragLifecycle(t *testing.T) {
	d, _ := newTestDrawer()
	d.Handle(ev(1, touch.TypeBegin, 0, 0))
	if r := d.Handle(ev(1, touch.TypeMove, 5, 0)); r.Outcome != OutcomeNone {
		t.Fatalf("exactly 5 px = %v, want none", r.Outcome)
	}
	r := d.Handle(ev(1, touch.TypeMove, 6, 0))
	if r.Outcome != OutcomeDragStart {
		t.Fatalf("outcome = %v, want drag-start", r.Outcome)
	}
	r = d.Handle(ev(1, touch.TypeMove, 40, 30))
	if r.Outcome != OutcomePreview || r.Vector != geometry.Vec(geometry.Pt(0, 0), geometry.Pt(40, 30)) {
		t.Fatalf("preview = %+v", r)
	}
	// Returning near the start does not turn a drag back into a tap.
	r = d.Handle(ev(1, touch.TypeEnd, 1, 1))
	if r.Outcome != OutcomeDrag {
		t.Fatalf("outcome = %v, want drag", r.Outcome)
	}
	if r.Vector.End != geometry.Pt(1, 1) {
		t.Errorf("final vector = %+v", r.Vector)
	}
}

func TestReleaseFarFromStartWithoutMoveIsDrag(t *testing.T) {
	d, _ := newTestDrawer()
	d.Handle(ev(1, touch.TypeBegin, 0, 0))
	if r := d.Handle(ev(1, touch.TypeEnd, 50, 0)); r.Outcome != OutcomeDrag {
		t.Fatalf("outcome = %v, want drag", r.Outcome)
	}
}

func TestSecondTouchAborts(t *testing.T) {
	d, _ := newTestDrawer()
	d.Handle(ev(1, touch.TypeBegin, 0, 0))
	d.Handle(ev(1, touch.TypeMove, 30, 0))
	r := d.Handle(ev(2, touch.TypeBegin, 100, 100))
	if r.Outcome != OutcomeAborted || !r.Yield {
		t.Fatalf("second touch = %+v, want aborted with yield", r)
	}
	if r := d.Handle(ev(1, touch.TypeMove, 60, 0)); r.Outcome != OutcomeNone || !r.Yield {
		t.Errorf("move during pinch = %+v", r)
	}
	if r := d.Handle(ev(1, touch.TypeEnd, 60, 0)); r.Outcome != OutcomeNone {
		t.Errorf("first finger release = %v, want none", r.Outcome)
	}
	if r := d.Handle(ev(2, touch.TypeMove, 120, 100)); r.Outcome != OutcomeNone {
		t.Errorf("remaining finger move = %v, want none", r.Outcome)
	}
	if r := d.Handle(ev(2, touch.TypeEnd, 120, 100)); r.Outcome != OutcomeNone {
		t.Errorf("last release = %v, want none", r.Outcome)
	}
	d.Handle(ev(3, touch.TypeBegin, 0, 0))
	if !d.Active() {
		t.Error("a fresh touch after all fingers lift should start a gesture")
	}
}

func TestCancelDiscards(t *testing.T) {
	d, _ := newTestDrawer()
	d.Handle(ev(1, touch.TypeBegin, 0, 0))
	d.Handle(ev(1, touch.TypeMove, 30, 0))
	if r := d.Cancel(); r.Outcome != OutcomeCancelled {
		t.Fatalf("Cancel = %v, want cancelled", r.Outcome)
	}
	if r := d.Handle(ev(1, touch.TypeEnd, 30, 0)); r.Outcome != OutcomeNone {
		t.Errorf("release after cancel = %v, want none", r.Outcome)
	}
	if r := d.Cancel(); r.Outcome != OutcomeNone {
		t.Errorf("Cancel when idle = %v, want none", r.Outcome)
	}
}

func TestCustomThresholds(t *testing.T) {
	clk := &fakeClock{}
	d := NewDrawer(DrawerOptions{TapThreshold: 20, TapTimeout: time.Second, Now: clk.Now})
	d.Handle(ev(1, touch.TypeBegin, 0, 0))
	d.Handle(ev(1, touch.TypeMove, 15, 0))
	clk.Advance(500 * time.Millisecond)
	if r := d.Handle(ev(1, touch.TypeEnd, 15, 0)); r.Outcome != OutcomeTap {
		t.Errorf("outcome = %v, want tap under custom thresholds", r.Outcome)
	}
}
