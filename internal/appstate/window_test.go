package appstate

import (
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/gesture"
	"github.com/example/glowplan/internal/render"
)

const canvasHeight = 768

func newWindowState(t *testing.T) (*harness, *windowState) {
	t.Helper()
	h := newHarness(t)
	w := NewWindow(h.s, render.NewCompositor(testCatalog(), render.WithGlow(render.GlowOptions{})))
	ws := &windowState{w: w}
	ws.register()
	return h, ws
}

func (ws *windowState) press(x, y float32) bool {
	return ws.mouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress}, canvasHeight)
}

func (ws *windowState) moveTo(x, y float32) bool {
	return ws.mouse(mouse.Event{X: x, Y: y}, canvasHeight)
}

func (ws *windowState) release(x, y float32) bool {
	return ws.mouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}, canvasHeight)
}

func (ws *windowState) typeRunes(text string) {
	for _, r := range text {
		ws.key(key.Event{Rune: r, Direction: key.DirPress})
	}
}

func TestMouseDragDrawsString(t *testing.T) {
	h, ws := newWindowState(t)
	ws.press(0, 0)
	ws.moveTo(50, 0)
	ws.moveTo(100, 0)
	if !ws.release(100, 0) {
		t.Error("release reported no change")
	}
	if n := len(h.s.Store().LightStrings()); n != 1 {
		t.Fatalf("strings = %d, want 1", n)
	}
	if ws.w.comp.Last() == nil {
		t.Error("nothing rendered")
	}
}

func TestMouseMoveWithoutPressIgnored(t *testing.T) {
	h, ws := newWindowState(t)
	if ws.moveTo(10, 10) || ws.release(10, 10) {
		t.Error("hover changed state")
	}
	if h.s.Store().Len() != 0 {
		t.Error("hover created an entity")
	}
}

func TestRightButtonCancels(t *testing.T) {
	h, ws := newWindowState(t)
	ws.press(0, 0)
	ws.moveTo(80, 0)
	ws.mouse(mouse.Event{X: 80, Y: 0, Button: mouse.ButtonRight, Direction: mouse.DirPress}, canvasHeight)
	ws.release(100, 0)
	if h.s.Store().Len() != 0 {
		t.Error("cancelled drag created an entity")
	}
}

func TestPressOnStatusBarIgnored(t *testing.T) {
	h, ws := newWindowState(t)
	if ws.press(10, canvasHeight+5) {
		t.Error("status bar press started a gesture")
	}
	ws.release(10, canvasHeight+5)
	if h.s.Store().Len() != 0 {
		t.Error("status bar click placed something")
	}
}

func TestModeKeysAndUndo(t *testing.T) {
	h, ws := newWindowState(t)
	ws.typeRunes("t")
	if h.s.Mode() != gesture.ModeTapPlace {
		t.Fatalf("mode = %s, want tap", h.s.Mode())
	}
	ws.press(30, 30)
	ws.release(30, 30)
	if len(h.s.Store().SingularLights()) != 1 {
		t.Fatal("tap did not place a light")
	}
	ws.key(key.Event{Rune: 'z', Code: key.CodeZ, Modifiers: key.ModControl, Direction: key.DirPress})
	if h.s.Store().Len() != 0 {
		t.Error("ctrl+z did not undo")
	}
	ws.key(key.Event{Rune: 'y', Code: key.CodeY, Modifiers: key.ModControl, Direction: key.DirPress})
	if h.s.Store().Len() != 1 {
		t.Error("ctrl+y did not redo")
	}
}

func TestReferenceEntry(t *testing.T) {
	h, ws := newWindowState(t)
	ws.typeRunes("r")
	if h.s.Mode() != gesture.ModeReference {
		t.Fatalf("mode = %s, want reference", h.s.Mode())
	}
	ws.press(0, 0)
	ws.moveTo(180, 0)
	ws.moveTo(360, 0)
	ws.release(360, 0)
	if !ws.entering() {
		t.Fatal("length prompt not active after drawing the line")
	}

	ws.typeRunes("1x")
	ws.key(key.Event{Code: key.CodeDeleteBackspace, Direction: key.DirPress})
	ws.typeRunes("0 ft")
	ws.key(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress})

	factor, ok := h.s.Calibrator().ScaleFactor()
	if !ok || factor != 36 {
		t.Fatalf("scale = %v, %v; want 36", factor, ok)
	}
	if h.s.Mode() != gesture.ModeStringDraw {
		t.Errorf("mode = %s, want string", h.s.Mode())
	}
	if ws.entry != "" {
		t.Errorf("entry = %q after confirm", ws.entry)
	}
}

func TestTabCyclesAsset(t *testing.T) {
	h, ws := newWindowState(t)
	ws.key(key.Event{Rune: '\t', Code: key.CodeTab, Direction: key.DirPress})
	if got := h.s.Asset(catalog.CategoryString); got != "icicle" {
		t.Fatalf("asset = %q, want icicle", got)
	}
	ws.key(key.Event{Rune: '\t', Code: key.CodeTab, Direction: key.DirPress})
	if got := h.s.Asset(catalog.CategoryString); got != "c9" {
		t.Errorf("asset = %q, want c9", got)
	}
}
