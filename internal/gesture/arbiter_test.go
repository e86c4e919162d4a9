package gesture

import (
	"strings"
	"testing"

	"github.com/example/glowplan/internal/geometry"
	"golang.org/x/mobile/event/touch"
)

type recorder struct {
	name  string
	calls *[]string
}

func (r recorder) log(s string)              { *r.calls = append(*r.calls, r.name+":"+s) }
func (r recorder) Tap(geometry.Point)        { r.log("tap") }
func (r recorder) DragStart(geometry.Vector) { r.log("start") }
func (r recorder) DragMove(geometry.Vector)  { r.log("move") }
func (r recorder) DragEnd(geometry.Vector)   { r.log("end") }
func (r recorder) Cancel()                   { r.log("cancel") }

func newTestArbiter(t *testing.T) (*Arbiter, *[]string, *fakeClock) {
	t.Helper()
	calls := &[]string{}
	handlers := map[Mode]Handler{}
	for _, m := range Modes() {
		handlers[m] = recorder{name: m.String(), calls: calls}
	}
	d, clk := newTestDrawer()
	a, err := NewArbiter(d, handlers)
	if err != nil {
		t.Fatalf("NewArbiter: %v", err)
	}
	return a, calls, clk
}

func TestNewArbiterRequiresEveryMode(t *testing.T) {
	d, _ := newTestDrawer()
	if _, err := NewArbiter(d, map[Mode]Handler{ModeStringDraw: recorder{calls: &[]string{}}}); err == nil {
		t.Fatal("expected error for missing handlers")
	}
}

func TestRoutesToCurrentModeOnly(t *testing.T) {
	a, calls, _ := newTestArbiter(t)
	if err := a.SetMode(ModeDecor); err != nil {
		t.Fatal(err)
	}
	a.Touch(ev(1, touch.TypeBegin, 0, 0))
	a.Touch(ev(1, touch.TypeMove, 20, 0))
	a.Touch(ev(1, touch.TypeMove, 30, 0))
	a.Touch(ev(1, touch.TypeEnd, 30, 0))
	a.Touch(ev(2, touch.TypeBegin, 5, 5))
	a.Touch(ev(2, touch.TypeEnd, 5, 5))
	got := strings.Join(*calls, ",")
	want := "decor:start,decor:move,decor:end,decor:tap"
	if got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}

func TestModeChangeCancelsGesture(t *testing.T) {
	a, calls, _ := newTestArbiter(t)
	a.Touch(ev(1, touch.TypeBegin, 0, 0))
	a.Touch(ev(1, touch.TypeMove, 20, 0))
	if err := a.SetMode(ModeMeasure); err != nil {
		t.Fatal(err)
	}
	a.Touch(ev(1, touch.TypeEnd, 40, 0))
	got := strings.Join(*calls, ",")
	if got != "string:start,string:cancel" {
		t.Errorf("calls = %s", got)
	}
}

func TestMultiTouchCancelsHandler(t *testing.T) {
	a, calls, _ := newTestArbiter(t)
	var events []EventKind
	a.Subscribe(func(e Event) { events = append(events, e.Kind) })
	a.Touch(ev(1, touch.TypeBegin, 0, 0))
	a.Touch(ev(1, touch.TypeMove, 20, 0))
	r := a.Touch(ev(2, touch.TypeBegin, 50, 50))
	if !r.Yield {
		t.Error("expected yield on second touch")
	}
	a.Touch(ev(1, touch.TypeEnd, 20, 0))
	a.Touch(ev(2, touch.TypeEnd, 50, 50))
	if got := strings.Join(*calls, ","); got != "string:start,string:cancel" {
		t.Errorf("calls = %s", got)
	}
	if len(events) != 2 || events[0] != EventDragStart || events[1] != EventAbort {
		t.Errorf("events = %v", events)
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	a, _, _ := newTestArbiter(t)
	var got []Event
	unsub := a.Subscribe(func(e Event) { got = append(got, e) })
	a.Touch(ev(1, touch.TypeBegin, 7, 8))
	a.Touch(ev(1, touch.TypeEnd, 7, 8))
	if len(got) != 1 || got[0].Kind != EventTap || got[0].Point != geometry.Pt(7, 8) || got[0].Mode != ModeStringDraw {
		t.Fatalf("events = %+v", got)
	}
	unsub()
	a.Touch(ev(1, touch.TypeBegin, 7, 8))
	a.Touch(ev(1, touch.TypeEnd, 7, 8))
	if len(got) != 1 {
		t.Errorf("received %d events after unsubscribe", len(got))
	}
}

func TestArbiterCancel(t *testing.T) {
	a, calls, _ := newTestArbiter(t)
	a.SetMode(ModeReference)
	a.Touch(ev(1, touch.TypeBegin, 0, 0))
	a.Cancel()
	a.Cancel()
	if got := strings.Join(*calls, ","); got != "reference:cancel" {
		t.Errorf("calls = %s", got)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(strings.ToUpper(m.String()))
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("paint"); err == nil {
		t.Error("expected error for unknown mode")
	}
	a, _, _ := newTestArbiter(t)
	if err := a.SetMode(Mode(42)); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestFarReleaseStartsDragFirst(t *testing.T) {
	a, calls, _ := newTestArbiter(t)
	a.Touch(ev(1, touch.TypeBegin, 0, 0))
	a.Touch(ev(1, touch.TypeEnd, 50, 0))
	if got := strings.Join(*calls, ","); got != "string:start,string:end" {
		t.Errorf("calls = %s", got)
	}
}
