package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/gesture"
	"github.com/example/glowplan/internal/render"
)

const (
	statusHeight   = 22
	messageTimeout = 2 * time.Second
)

var (
	statusBg   = color.RGBA{32, 32, 40, 255}
	statusText = color.RGBA{230, 230, 230, 255}
	statusFace = basicfont.Face7x13
)

// Shortcut describes a keyboard combination that triggers an action.
type Shortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// Window shows a Session in a shiny window and feeds the left mouse button
// into it as a single touch.
type Window struct {
	session *Session
	comp    *render.Compositor

	onSave  func() error
	onCopy  func(img image.Image) error
	onClose func()

	updateCh chan struct{}
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithSaveHandler is called for ctrl+s.
func WithSaveHandler(fn func() error) WindowOption { return func(w *Window) { w.onSave = fn } }

// WithCopyHandler is called for ctrl+c with the current composite.
func WithCopyHandler(fn func(img image.Image) error) WindowOption {
	return func(w *Window) { w.onCopy = fn }
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) WindowOption { return func(w *Window) { w.onClose = fn } }

// NewWindow wires s to paint through comp.
func NewWindow(s *Session, comp *render.Compositor, opts ...WindowOption) *Window {
	w := &Window{session: s, comp: comp, updateCh: make(chan struct{}, 1)}
	for _, o := range opts {
		o(w)
	}
	s.SetRenderer(RendererFunc(func(f render.Frame) {
		comp.Render(f)
		w.requestPaint()
	}))
	return w
}

func (w *Window) requestPaint() {
	select {
	case w.updateCh <- struct{}{}:
	default:
	}
}

// Run executes the UI loop using shiny's driver.
func (w *Window) Run() { driver.Main(w.Main) }

type paintState struct {
	width, height int
	img           *image.RGBA
	status        string
	message       string
	messageUntil  time.Time
}

// windowState is the event loop's view of the session. It is only touched
// from the loop goroutine.
type windowState struct {
	w            *Window
	pressed      bool
	entry        string
	message      string
	messageUntil time.Time
	actions      map[Shortcut]func()
}

// Main runs the event loop on an existing screen.
func (w *Window) Main(s screen.Screen) {
	defer func() {
		if w.onClose != nil {
			w.onClose()
		}
	}()

	canvas := w.comp.Size()
	width, height := canvas.X, canvas.Y+statusHeight
	win, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "glowplan"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer win.Release()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-w.updateCh:
				win.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawWindow(ctx, s, win, st)
			paintMu.Lock()
			paintCancel = nil
			paintMu.Unlock()
			cancel()
		}
	}()

	ws := &windowState{w: w}
	ws.register()
	w.session.flush()

	for {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			win.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				paintCancel()
			}
			paintMu.Unlock()
			st := paintState{
				width:        width,
				height:       height,
				img:          w.comp.Last(),
				status:       ws.status(),
				message:      ws.message,
				messageUntil: ws.messageUntil,
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if ws.mouse(e, height-statusHeight) {
				win.Send(paint.Event{})
			}
		case key.Event:
			if e.Direction == key.DirPress && ws.key(e) {
				win.Send(paint.Event{})
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

// mouse maps the left button onto touch sequence 0. The right button
// cancels the gesture in progress.
func (ws *windowState) mouse(e mouse.Event, canvasHeight int) bool {
	s := ws.w.session
	te := touch.Event{X: e.X, Y: e.Y}
	switch {
	case e.Button == mouse.ButtonRight && e.Direction == mouse.DirPress:
		ws.pressed = false
		s.Cancel()
		return true
	case e.Button != mouse.ButtonLeft && e.Direction != mouse.DirNone:
		return false
	case e.Direction == mouse.DirPress:
		if int(e.Y) >= canvasHeight {
			return false
		}
		ws.pressed = true
		te.Type = touch.TypeBegin
	case e.Direction == mouse.DirRelease:
		if !ws.pressed {
			return false
		}
		ws.pressed = false
		te.Type = touch.TypeEnd
	case e.Direction == mouse.DirNone && ws.pressed:
		te.Type = touch.TypeMove
	default:
		return false
	}
	r := s.Touch(te)
	return r.Outcome != gesture.OutcomeNone
}

func (ws *windowState) flash(format string, args ...any) {
	ws.message = fmt.Sprintf(format, args...)
	ws.messageUntil = time.Now().Add(messageTimeout)
	log.Print(ws.message)
}

// entering reports whether keystrokes go to the reference length prompt.
func (ws *windowState) entering() bool {
	s := ws.w.session
	if s.Mode() != gesture.ModeReference {
		return false
	}
	_, ok := s.Calibrator().Pending()
	return ok
}

func (ws *windowState) register() {
	s := ws.w.session
	ws.actions = map[Shortcut]func(){}
	mode := func(r rune, m gesture.Mode) {
		ws.actions[Shortcut{Rune: r}] = func() {
			if err := s.SetMode(m); err != nil {
				ws.flash("mode: %v", err)
			}
		}
	}
	mode('s', gesture.ModeStringDraw)
	mode('t', gesture.ModeTapPlace)
	mode('d', gesture.ModeDecor)
	mode('m', gesture.ModeMeasure)
	mode('r', gesture.ModeReference)

	ws.actions[Shortcut{Rune: 'z', Modifiers: key.ModControl}] = func() {
		if !s.Undo() {
			ws.flash("nothing to undo")
		}
	}
	redo := func() {
		if !s.Redo() {
			ws.flash("nothing to redo")
		}
	}
	ws.actions[Shortcut{Rune: 'y', Modifiers: key.ModControl}] = redo
	ws.actions[Shortcut{Rune: 'z', Modifiers: key.ModControl | key.ModShift}] = redo
	del := func() { s.DeleteSelected() }
	ws.actions[Shortcut{Code: key.CodeDeleteForward}] = del
	ws.actions[Shortcut{Code: key.CodeDeleteBackspace}] = del
	ws.actions[Shortcut{Code: key.CodeEscape}] = func() {
		if s.Mode() == gesture.ModeReference {
			if err := s.CancelReference(); err != nil {
				ws.flash("reference: %v", err)
			}
			return
		}
		s.Store().ClearSelection()
		s.Cancel()
	}
	ws.actions[Shortcut{Code: key.CodeTab}] = ws.cycleAsset

	ws.actions[Shortcut{Rune: 's', Modifiers: key.ModControl}] = func() {
		if ws.w.onSave == nil {
			return
		}
		if err := ws.w.onSave(); err != nil {
			ws.flash("save: %v", err)
			return
		}
		ws.flash("saved")
	}
	ws.actions[Shortcut{Rune: 'c', Modifiers: key.ModControl}] = func() {
		img := ws.w.comp.Last()
		if ws.w.onCopy == nil || img == nil {
			return
		}
		if err := ws.w.onCopy(img); err != nil {
			ws.flash("copy: %v", err)
			return
		}
		ws.flash("design copied to clipboard")
	}
}

func (ws *windowState) key(e key.Event) bool {
	if ws.entering() && e.Modifiers&key.ModControl == 0 {
		return ws.typeLength(e)
	}
	r := e.Rune
	if r < ' ' && e.Code >= key.CodeA && e.Code <= key.CodeZ {
		// ctrl+letter arrives as a control character on some drivers.
		r = 'a' + rune(e.Code-key.CodeA)
	}
	sc := Shortcut{Rune: unicode.ToLower(r), Code: e.Code, Modifiers: e.Modifiers}
	if unicode.IsPrint(r) {
		sc.Code = key.CodeUnknown
	} else {
		sc.Rune = 0
	}
	fn, ok := ws.actions[sc]
	if !ok {
		return false
	}
	fn()
	return true
}

// typeLength edits the reference length prompt shown once a reference line
// has been drawn.
func (ws *windowState) typeLength(e key.Event) bool {
	s := ws.w.session
	switch e.Code {
	case key.CodeReturnEnter:
		if err := s.ConfirmReference(ws.entry); err != nil {
			ws.flash("reference: %v", err)
			return true
		}
		factor, _ := s.Calibrator().ScaleFactor()
		ws.flash("scale set to %.1f px/ft", factor)
		ws.entry = ""
		return true
	case key.CodeEscape:
		ws.entry = ""
		if err := s.CancelReference(); err != nil {
			ws.flash("reference: %v", err)
		}
		return true
	case key.CodeDeleteBackspace:
		if ws.entry != "" {
			ws.entry = ws.entry[:len(ws.entry)-1]
		}
		return true
	}
	if e.Rune > 0 && e.Rune < unicode.MaxASCII && unicode.IsPrint(e.Rune) {
		ws.entry += string(e.Rune)
		return true
	}
	return false
}

// cycleAsset selects the next asset of the category used by the current
// mode.
func (ws *windowState) cycleAsset() {
	s := ws.w.session
	cat, ok := modeCategory[s.Mode()]
	if !ok {
		return
	}
	set, ok := s.Catalog().(*catalog.Set)
	if !ok {
		return
	}
	assets := set.ByCategory(cat)
	if len(assets) == 0 {
		return
	}
	next := assets[0]
	for i, a := range assets {
		if a.ID == s.Asset(cat) {
			next = assets[(i+1)%len(assets)]
			break
		}
	}
	if err := s.SetAsset(cat, next.ID); err != nil {
		ws.flash("asset: %v", err)
		return
	}
	ws.flash("%s: %s", cat, next.Name)
}

var modeCategory = map[gesture.Mode]catalog.Category{
	gesture.ModeStringDraw: catalog.CategoryString,
	gesture.ModeTapPlace:   catalog.CategorySingular,
	gesture.ModeDecor:      catalog.CategoryDecor,
}

func (ws *windowState) status() string {
	s := ws.w.session
	parts := []string{"mode: " + s.Mode().String()}
	if cat, ok := modeCategory[s.Mode()]; ok {
		if id := s.Asset(cat); id != "" {
			parts = append(parts, "asset: "+id)
		}
	}
	if factor, ok := s.Calibrator().ScaleFactor(); ok {
		parts = append(parts, fmt.Sprintf("scale: %.1f px/ft", factor))
	} else {
		parts = append(parts, "scale: not set")
	}
	if ws.entering() {
		parts = append(parts, "length (ft): "+ws.entry+"_")
	}
	return strings.Join(parts, "   ")
}

func drawWindow(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Pt(st.width, st.height))
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	dst := b.RGBA()
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	if st.img != nil {
		draw.Draw(dst, st.img.Bounds(), st.img, image.Point{}, draw.Src)
	}
	if ctx.Err() != nil {
		return
	}

	bar := image.Rect(0, st.height-statusHeight, st.width, st.height)
	draw.Draw(dst, bar, image.NewUniform(statusBg), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(statusText), Face: statusFace}
	d.Dot = fixed.P(6, bar.Max.Y-6)
	d.DrawString(st.status)

	if st.message != "" && time.Now().Before(st.messageUntil) {
		d.Src = image.White
		wmsg := d.MeasureString(st.message).Ceil()
		ascent := statusFace.Metrics().Ascent.Ceil()
		px := (st.width - wmsg) / 2
		py := (st.height-statusHeight)/2 + ascent/2
		box := image.Rect(px-8, py-ascent-6, px+wmsg+8, py+6)
		draw.Draw(dst, box, image.NewUniform(color.RGBA{0, 0, 0, 200}), image.Point{}, draw.Over)
		d.Dot = fixed.P(px, py)
		d.DrawString(st.message)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
