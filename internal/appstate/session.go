// Package appstate ties the design canvas core together into a Session and
// drives it from a window or a command console.
package appstate

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/mobile/event/touch"
	"golang.org/x/text/language"

	"github.com/example/glowplan/internal/calibrate"
	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/geometry"
	"github.com/example/glowplan/internal/gesture"
	"github.com/example/glowplan/internal/project"
	"github.com/example/glowplan/internal/scene"
	"github.com/example/glowplan/internal/undo"
)

// DefaultDecorRadius is the radius of a decor placed by a tap.
const DefaultDecorRadius = 40

// ErrUnknownAsset is returned when an asset id is not in the catalog.
var ErrUnknownAsset = errors.New("unknown asset")

// Scheduler receives a snapshot after every committed change.
// *autosave.Saver implements it.
type Scheduler interface {
	Schedule(snap *project.Snapshot)
}

type options struct {
	catalog         catalog.Catalog
	renderer        Renderer
	autosave        Scheduler
	limits          calibrate.Limits
	bounds          scene.DecorBounds
	drawer          gesture.DrawerOptions
	undoLimit       int
	stringThreshold float64
	decorRadius     float64
	lang            language.Tag
	now             func() time.Time
	newID           func() string
	assets          map[catalog.Category]string
}

// Option configures a Session.
type Option func(*options)

// WithCatalog sets the asset catalog used to size and space lights.
func WithCatalog(c catalog.Catalog) Option { return func(o *options) { o.catalog = c } }

// WithRenderer sets the renderer called after every state change.
func WithRenderer(r Renderer) Option { return func(o *options) { o.renderer = r } }

// WithAutosave sets where snapshots go after each committed change.
func WithAutosave(s Scheduler) Option { return func(o *options) { o.autosave = s } }

// WithLimits sets the calibration fallbacks and clamps.
func WithLimits(l calibrate.Limits) Option { return func(o *options) { o.limits = l } }

// WithDecorBounds sets the decor radius clamp.
func WithDecorBounds(b scene.DecorBounds) Option { return func(o *options) { o.bounds = b } }

// WithDrawerOptions sets the tap classification thresholds.
func WithDrawerOptions(d gesture.DrawerOptions) Option { return func(o *options) { o.drawer = d } }

// WithUndoLimit sets the undo history length.
func WithUndoLimit(n int) Option { return func(o *options) { o.undoLimit = n } }

// WithStringThreshold fixes the light string hit distance. Zero derives it
// from the current light size.
func WithStringThreshold(px float64) Option { return func(o *options) { o.stringThreshold = px } }

// WithDecorRadius sets the radius of decor placed by a tap.
func WithDecorRadius(px float64) Option { return func(o *options) { o.decorRadius = px } }

// WithLanguage sets the language used for measurement labels.
func WithLanguage(tag language.Tag) Option { return func(o *options) { o.lang = tag } }

// WithClock sets the time source for gestures, entities and history.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithIDFunc sets the id generator for entities and history entries.
func WithIDFunc(fn func() string) Option { return func(o *options) { o.newID = fn } }

// WithAsset selects the asset placed for category c.
func WithAsset(c catalog.Category, id string) Option {
	return func(o *options) { o.assets[c] = id }
}

// Session is one design being edited. It owns the scene, its history, the
// calibration and the gesture router. A Session is not safe for concurrent
// use; drive it from one goroutine.
type Session struct {
	store     *scene.Store
	storeOpts []scene.Option
	history   *undo.Log
	cal       *calibrate.Calibrator
	arbiter   *gesture.Arbiter
	catalog   catalog.Catalog
	renderer  Renderer
	autosave  Scheduler

	assets          map[catalog.Category]string
	stringThreshold float64
	decorRadius     float64

	// returnMode is restored when reference mode ends.
	returnMode gesture.Mode
	preview    *geometry.Vector
	dirty      bool
}

// NewSession returns an empty session in string drawing mode.
func NewSession(opts ...Option) (*Session, error) {
	o := options{
		limits:      calibrate.DefaultLimits(),
		bounds:      scene.DefaultDecorBounds(),
		drawer:      gesture.DefaultDrawerOptions(),
		undoLimit:   undo.DefaultLimit,
		decorRadius: DefaultDecorRadius,
		lang:        language.English,
		assets:      make(map[catalog.Category]string),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.catalog == nil {
		o.catalog = catalog.NewSet()
	}

	cal := calibrate.New(o.limits)
	storeOpts := []scene.Option{
		scene.WithDecorBounds(o.bounds),
		scene.WithLengthFunc(cal.LineLengthInFeet),
		scene.WithLanguage(o.lang),
	}
	undoOpts := []undo.Option{undo.WithLimit(o.undoLimit)}
	if o.now != nil {
		storeOpts = append(storeOpts, scene.WithClock(o.now))
		undoOpts = append(undoOpts, undo.WithClock(o.now))
		o.drawer.Now = o.now
	}
	if o.newID != nil {
		storeOpts = append(storeOpts, scene.WithIDFunc(o.newID))
		undoOpts = append(undoOpts, undo.WithIDFunc(o.newID))
	}

	s := &Session{
		store:           scene.NewStore(storeOpts...),
		storeOpts:       storeOpts,
		history:         undo.New(undoOpts...),
		cal:             cal,
		catalog:         o.catalog,
		renderer:        o.renderer,
		autosave:        o.autosave,
		assets:          o.assets,
		stringThreshold: o.stringThreshold,
		decorRadius:     o.decorRadius,
	}
	arb, err := gesture.NewArbiter(gesture.NewDrawer(o.drawer), map[gesture.Mode]gesture.Handler{
		gesture.ModeStringDraw: &stringHandler{s: s},
		gesture.ModeTapPlace:   &tapHandler{s: s},
		gesture.ModeDecor:      &decorHandler{s: s},
		gesture.ModeMeasure:    &measureHandler{s: s},
		gesture.ModeReference:  &referenceHandler{s: s},
	})
	if err != nil {
		return nil, err
	}
	s.arbiter = arb
	return s, nil
}

// Store returns the scene.
func (s *Session) Store() *scene.Store { return s.store }

// History returns the undo log.
func (s *Session) History() *undo.Log { return s.history }

// Calibrator returns the reference scale.
func (s *Session) Calibrator() *calibrate.Calibrator { return s.cal }

// Arbiter returns the gesture router.
func (s *Session) Arbiter() *gesture.Arbiter { return s.arbiter }

// Catalog returns the asset catalog.
func (s *Session) Catalog() catalog.Catalog { return s.catalog }

// SetRenderer replaces the renderer.
func (s *Session) SetRenderer(r Renderer) { s.renderer = r }

// SetAutosave replaces the snapshot scheduler.
func (s *Session) SetAutosave(a Scheduler) { s.autosave = a }

// Subscribe registers fn for gesture events.
func (s *Session) Subscribe(fn func(gesture.Event)) (unsubscribe func()) {
	return s.arbiter.Subscribe(fn)
}

// Mode returns the current interaction mode.
func (s *Session) Mode() gesture.Mode { return s.arbiter.Mode() }

// SetMode switches interaction modes. Entering reference mode starts a new
// calibration; leaving it abandons one that was not confirmed.
func (s *Session) SetMode(m gesture.Mode) error {
	cur := s.arbiter.Mode()
	if m == cur {
		return nil
	}
	if err := s.arbiter.SetMode(m); err != nil {
		return err
	}
	switch {
	case m == gesture.ModeReference:
		s.returnMode = cur
		s.cal.StartReferenceMode()
	case cur == gesture.ModeReference:
		s.cal.CancelReferenceMode()
	}
	s.preview = nil
	s.render()
	return nil
}

// Asset returns the asset id placed for category c.
func (s *Session) Asset(c catalog.Category) string { return s.assets[c] }

// SetAsset selects the asset placed for category c.
func (s *Session) SetAsset(c catalog.Category, id string) error {
	a, ok := s.catalog.AssetByID(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, id)
	}
	if a.Category != c {
		return fmt.Errorf("asset %s is a %s asset, not %s", id, a.Category, c)
	}
	s.assets[c] = id
	return nil
}

// Touch feeds one touch event through the gesture router.
func (s *Session) Touch(e touch.Event) gesture.Result {
	r := s.arbiter.Touch(e)
	if r.Outcome != gesture.OutcomeNone {
		s.flush()
	}
	return r
}

// Cancel aborts the gesture in progress.
func (s *Session) Cancel() {
	s.arbiter.Cancel()
	s.flush()
}

// Preview returns the vector of a drag being drawn, if any.
func (s *Session) Preview() (geometry.Vector, bool) {
	if s.preview == nil {
		return geometry.Vector{}, false
	}
	return *s.preview, true
}

// Undo reverts the most recent change.
func (s *Session) Undo() bool {
	if _, ok := s.history.Undo(s.store); !ok {
		return false
	}
	s.commit()
	s.flush()
	return true
}

// Redo reapplies the most recently undone change.
func (s *Session) Redo() bool {
	if _, ok := s.history.Redo(s.store); !ok {
		return false
	}
	s.commit()
	s.flush()
	return true
}

// DeleteSelected removes the selected entity. Deleting a light string,
// singular light or decor can be undone.
func (s *Session) DeleteSelected() bool {
	sel, ok := s.store.Selected()
	if !ok {
		return false
	}
	removed, err := s.store.Remove(sel.Kind, sel.ID)
	if err != nil {
		Logger().Debug("delete selected", "kind", sel.Kind, "id", sel.ID, "err", err)
		return false
	}
	if sel.Kind != scene.KindMeasurement {
		s.history.Record(undo.Delete{Entity: removed.Entity, Index: removed.Index, WasSelected: removed.WasSelected})
	}
	s.commit()
	s.flush()
	return true
}

// ClearAll removes every entity. History is wiped first so no open move
// bracket outlives the entity it tracks.
func (s *Session) ClearAll() {
	s.arbiter.Cancel()
	s.history.Clear()
	s.store.Clear()
	s.preview = nil
	s.commit()
	s.flush()
}

// StartReference enters reference mode.
func (s *Session) StartReference() error {
	return s.SetMode(gesture.ModeReference)
}

// CancelReference leaves reference mode without changing the calibration.
func (s *Session) CancelReference() error {
	if s.arbiter.Mode() != gesture.ModeReference {
		s.cal.CancelReferenceMode()
		return nil
	}
	return s.SetMode(s.returnMode)
}

// ConfirmReference commits the drawn reference line with a length typed by
// the user, such as "10", "10 ft" or "10'". On error the drawn line stays
// pending so the user can try again.
func (s *Session) ConfirmReference(text string) error {
	feet, err := calibrate.ParseFeet(text)
	if err != nil {
		return err
	}
	return s.ConfirmReferenceFeet(feet)
}

// ConfirmReferenceFeet commits the drawn reference line as feet long and
// returns to the mode active before reference mode.
func (s *Session) ConfirmReferenceFeet(feet float64) error {
	if err := s.cal.ConfirmReferenceLength(feet); err != nil {
		return err
	}
	factor, _ := s.cal.ScaleFactor()
	Logger().Info("reference set", "feet", feet, "px_per_ft", factor)
	if s.arbiter.Mode() == gesture.ModeReference {
		if err := s.arbiter.SetMode(s.returnMode); err != nil {
			return err
		}
	}
	s.commit()
	s.flush()
	return nil
}

// ClearReference drops the calibration. Scale-dependent values fall back to
// their defaults.
func (s *Session) ClearReference() {
	s.cal.ClearReference()
	s.commit()
	s.flush()
}

// Snapshot returns a copy of the design suitable for saving.
func (s *Session) Snapshot() *project.Snapshot {
	snap := &project.Snapshot{
		LightStrings:     s.store.LightStrings(),
		SingleLights:     s.store.SingularLights(),
		Decor:            s.store.Decor(),
		MeasurementLines: s.store.MeasurementLines(),
		Version:          project.Version,
	}
	if ref, ok := s.cal.Reference(); ok {
		snap.ReferenceScale = &ref
	}
	return snap.Clone()
}

// Restore replaces the design with snap and clears the history. A nil snap
// leaves an empty design. On error the current design is kept.
func (s *Session) Restore(snap *project.Snapshot) error {
	store := scene.NewStore(s.storeOpts...)
	var ref *calibrate.Reference
	if snap != nil {
		snap = snap.Clone()
		if err := fill(store, snap); err != nil {
			return err
		}
		ref = snap.ReferenceScale
	}

	s.arbiter.Cancel()
	s.history.Clear()
	s.store = store
	s.cal.Restore(ref)
	s.preview = nil
	if snap != nil {
		Logger().Info("design restored", "entities", store.Len(), "calibrated", ref != nil)
	}
	s.render()
	return nil
}

// fill inserts every entity of snap into an empty store.
func fill(store *scene.Store, snap *project.Snapshot) error {
	for _, ls := range snap.LightStrings {
		if err := store.Insert(ls, -1); err != nil {
			return fmt.Errorf("restore light string: %w", err)
		}
	}
	for _, l := range snap.SingleLights {
		if err := store.Insert(l, -1); err != nil {
			return fmt.Errorf("restore light: %w", err)
		}
	}
	for _, d := range snap.Decor {
		if err := store.Insert(d, -1); err != nil {
			return fmt.Errorf("restore decor: %w", err)
		}
	}
	for _, m := range snap.MeasurementLines {
		if err := store.Insert(m, -1); err != nil {
			return fmt.Errorf("restore measurement: %w", err)
		}
	}
	return nil
}

// commit marks the design as changed since the last autosave.
func (s *Session) commit() { s.dirty = true }

// flush renders and, when something was committed, schedules an autosave.
func (s *Session) flush() {
	s.render()
	if !s.dirty {
		return
	}
	s.dirty = false
	if s.autosave != nil {
		s.autosave.Schedule(s.Snapshot())
	}
}

func (s *Session) render() {
	if s.renderer != nil {
		s.renderer.Render(s.Frame())
	}
}
