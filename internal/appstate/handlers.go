package appstate

import (
	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/geometry"
	"github.com/example/glowplan/internal/scene"
	"github.com/example/glowplan/internal/undo"
)

// LightHitRadius is how close a tap must land to pick a singular light.
const LightHitRadius = scene.HandleHitRadius

// mover drags one entity from its origin placement. When tracked, the drag
// is bracketed in the undo log.
type mover struct {
	kind    scene.Kind
	id      string
	origin  scene.Placement
	op      undo.Op
	tracked bool
}

func (m *mover) begin(s *Session, kind scene.Kind, id string, op undo.Op, tracked bool) bool {
	p, ok := s.store.PlacementOf(kind, id)
	if !ok {
		return false
	}
	*m = mover{kind: kind, id: id, origin: p, op: op, tracked: tracked}
	if tracked {
		s.history.StartMoveTracking(kind, id, p)
	}
	return true
}

func (m *mover) active() bool { return m.id != "" }

func (m *mover) apply(s *Session, p scene.Placement) {
	if err := s.store.ApplyPlacement(m.kind, m.id, p); err != nil {
		Logger().Debug("drag target vanished", "kind", m.kind, "id", m.id, "err", err)
	}
}

func (m *mover) translate(s *Session, v geometry.Vector) {
	m.apply(s, m.origin.Translate(v.End.Sub(v.Start)))
}

// end closes the drag and reports whether the entity changed.
func (m *mover) end(s *Session) bool {
	defer func() { *m = mover{} }()
	after, ok := s.store.PlacementOf(m.kind, m.id)
	if !ok {
		if m.tracked {
			s.history.CancelMoveTracking(m.kind, m.id)
		}
		return false
	}
	if m.tracked {
		_, recorded := s.history.EndMoveTracking(m.kind, m.id, after, m.op)
		return recorded
	}
	return after != m.origin
}

func (m *mover) cancel(s *Session) {
	if !m.active() {
		return
	}
	m.apply(s, m.origin)
	if m.tracked {
		s.history.CancelMoveTracking(m.kind, m.id)
	}
	*m = mover{}
}

// longEnough reports whether a completed drag should create an entity.
// Presses that never left the tap radius produce near-zero vectors.
func (s *Session) longEnough(v geometry.Vector) bool {
	return v.Length() > s.arbiter.Drawer().Options().TapThreshold
}

func (s *Session) setPreview(v geometry.Vector) { s.preview = &v }

func (s *Session) placeAsset(c catalog.Category) (string, bool) {
	id := s.assets[c]
	if id == "" {
		Logger().Debug("no asset selected", "category", c)
		return "", false
	}
	return id, true
}

// stringHandler draws new light strings and drags the selected one.
type stringHandler struct {
	s    *Session
	drag mover
}

func (h *stringHandler) Tap(p geometry.Point) {
	s := h.s
	if ls, ok := s.store.FindClosestLightString(p, s.StringThreshold()); ok {
		_ = s.store.Select(scene.KindLightString, ls.ID)
		return
	}
	s.store.ClearSelection()
}

func (h *stringHandler) DragStart(v geometry.Vector) {
	s := h.s
	if sel, ok := s.store.Selected(); ok && sel.Kind == scene.KindLightString {
		if ls, hit := s.store.FindClosestLightString(v.Start, s.StringThreshold()); hit && ls.ID == sel.ID {
			if h.drag.begin(s, scene.KindLightString, ls.ID, undo.OpMove, true) {
				h.drag.translate(s, v)
				return
			}
		}
	}
	s.setPreview(v)
}

func (h *stringHandler) DragMove(v geometry.Vector) {
	if h.drag.active() {
		h.drag.translate(h.s, v)
		return
	}
	h.s.setPreview(v)
}

func (h *stringHandler) DragEnd(v geometry.Vector) {
	s := h.s
	if h.drag.active() {
		h.drag.translate(s, v)
		if h.drag.end(s) {
			s.commit()
		}
		return
	}
	s.preview = nil
	if !s.longEnough(v) {
		return
	}
	assetID, ok := s.placeAsset(catalog.CategoryString)
	if !ok {
		return
	}
	ls := s.store.AddLightString(scene.LightString{Start: v.Start, End: v.End, AssetID: assetID})
	s.history.Record(undo.Add{Entity: ls})
	s.commit()
}

func (h *stringHandler) Cancel() {
	h.drag.cancel(h.s)
	h.s.preview = nil
}

// tapHandler places singular lights and drags them.
type tapHandler struct {
	s    *Session
	drag mover
}

func (h *tapHandler) Tap(p geometry.Point) {
	s := h.s
	if l, ok := s.store.FindSingularLightAt(p, LightHitRadius); ok {
		_ = s.store.Select(scene.KindSingularLight, l.ID)
		return
	}
	assetID, ok := s.placeAsset(catalog.CategorySingular)
	if !ok {
		return
	}
	l := s.store.AddSingularLight(scene.SingularLight{
		Position:   p,
		AssetID:    assetID,
		LightIndex: nextLightIndex(s.store.SingularLights()),
	})
	s.history.Record(undo.Add{Entity: l})
	s.commit()
}

// nextLightIndex numbers a new light after the highest index in use, so
// indices stay unique after deletes.
func nextLightIndex(lights []scene.SingularLight) int {
	next := 0
	for _, l := range lights {
		next = max(next, l.LightIndex+1)
	}
	return next
}

func (h *tapHandler) DragStart(v geometry.Vector) {
	s := h.s
	l, ok := s.store.FindSingularLightAt(v.Start, LightHitRadius)
	if !ok {
		return
	}
	_ = s.store.Select(scene.KindSingularLight, l.ID)
	if h.drag.begin(s, scene.KindSingularLight, l.ID, undo.OpMove, true) {
		h.drag.translate(s, v)
	}
}

func (h *tapHandler) DragMove(v geometry.Vector) {
	if h.drag.active() {
		h.drag.translate(h.s, v)
	}
}

func (h *tapHandler) DragEnd(v geometry.Vector) {
	if !h.drag.active() {
		return
	}
	h.drag.translate(h.s, v)
	if h.drag.end(h.s) {
		h.s.commit()
	}
}

func (h *tapHandler) Cancel() { h.drag.cancel(h.s) }

// decorHandler places, moves and resizes decor. Hits are tested in order:
// the selected decor's resize handle, then decor bodies topmost first, then
// empty canvas.
type decorHandler struct {
	s        *Session
	drag     mover
	resizing bool
}

func (h *decorHandler) Tap(p geometry.Point) {
	s := h.s
	if _, ok := s.store.FindResizeHandleAt(p); ok {
		return
	}
	if d, ok := s.store.FindDecorAtPoint(p); ok {
		_ = s.store.Select(scene.KindDecor, d.ID)
		return
	}
	assetID, ok := s.placeAsset(catalog.CategoryDecor)
	if !ok {
		return
	}
	d := s.store.AddDecor(scene.DecorShape{Center: p, Radius: s.decorRadius, AssetID: assetID})
	s.history.Record(undo.Add{Entity: d})
	_ = s.store.Select(scene.KindDecor, d.ID)
	s.commit()
}

func (h *decorHandler) DragStart(v geometry.Vector) {
	s := h.s
	if d, ok := s.store.FindResizeHandleAt(v.Start); ok {
		if h.drag.begin(s, scene.KindDecor, d.ID, undo.OpResize, true) {
			h.resizing = true
			h.DragMove(v)
		}
		return
	}
	if d, ok := s.store.FindDecorAtPoint(v.Start); ok {
		_ = s.store.Select(scene.KindDecor, d.ID)
		if h.drag.begin(s, scene.KindDecor, d.ID, undo.OpMove, true) {
			h.resizing = false
			h.DragMove(v)
		}
	}
}

func (h *decorHandler) DragMove(v geometry.Vector) {
	if !h.drag.active() {
		return
	}
	if h.resizing {
		p := h.drag.origin
		p.Radius = geometry.Distance(p.Center, v.End)
		h.drag.apply(h.s, p)
		return
	}
	h.drag.translate(h.s, v)
}

func (h *decorHandler) DragEnd(v geometry.Vector) {
	if !h.drag.active() {
		return
	}
	h.DragMove(v)
	if h.drag.end(h.s) {
		h.s.commit()
	}
	h.resizing = false
}

func (h *decorHandler) Cancel() {
	h.drag.cancel(h.s)
	h.resizing = false
}

// measureHandler draws measurement lines and drags the ends of the selected
// one. Measurement lines are annotations and stay out of the undo history.
type measureHandler struct {
	s        *Session
	drag     mover
	endpoint scene.Endpoint
	whole    bool
}

func (h *measureHandler) Tap(p geometry.Point) {
	s := h.s
	if m, ok := s.store.FindMeasurementLineAtPoint(p, scene.MeasurementLineTolerance); ok {
		_ = s.store.Select(scene.KindMeasurement, m.ID)
		return
	}
	s.store.ClearSelection()
}

func (h *measureHandler) DragStart(v geometry.Vector) {
	s := h.s
	if m, end, ok := s.store.FindMeasurementHandleAtPoint(v.Start, scene.MeasurementHandleTolerance); ok {
		if h.drag.begin(s, scene.KindMeasurement, m.ID, undo.OpMove, false) {
			h.endpoint, h.whole = end, false
			h.DragMove(v)
		}
		return
	}
	if m, ok := s.store.FindMeasurementLineAtPoint(v.Start, scene.MeasurementLineTolerance); ok &&
		s.store.IsSelected(scene.KindMeasurement, m.ID) {
		if h.drag.begin(s, scene.KindMeasurement, m.ID, undo.OpMove, false) {
			h.whole = true
			h.DragMove(v)
		}
		return
	}
	s.setPreview(v)
}

func (h *measureHandler) DragMove(v geometry.Vector) {
	if !h.drag.active() {
		h.s.setPreview(v)
		return
	}
	if h.whole {
		h.drag.translate(h.s, v)
		return
	}
	p := h.drag.origin
	if h.endpoint == scene.EndpointStart {
		p.Start = v.End
	} else {
		p.End = v.End
	}
	h.drag.apply(h.s, p)
}

func (h *measureHandler) DragEnd(v geometry.Vector) {
	s := h.s
	if h.drag.active() {
		h.DragMove(v)
		if h.drag.end(s) {
			s.commit()
		}
		return
	}
	s.preview = nil
	if !s.longEnough(v) {
		return
	}
	m := s.store.AddMeasurement(scene.MeasurementLine{Start: v.Start, End: v.End})
	_ = s.store.Select(scene.KindMeasurement, m.ID)
	s.commit()
}

func (h *measureHandler) Cancel() {
	h.drag.cancel(h.s)
	h.s.preview = nil
}

// referenceHandler turns a drag into the pending reference line. The line is
// committed by Session.ConfirmReference.
type referenceHandler struct {
	s *Session
}

func (h *referenceHandler) Tap(geometry.Point) {}

func (h *referenceHandler) DragStart(v geometry.Vector) { h.s.setPreview(v) }
func (h *referenceHandler) DragMove(v geometry.Vector)  { h.s.setPreview(v) }

func (h *referenceHandler) DragEnd(v geometry.Vector) {
	s := h.s
	s.preview = nil
	if !s.longEnough(v) {
		return
	}
	s.cal.CompleteReferenceLine(v)
	Logger().Debug("reference line drawn", "length_px", v.Length())
}

func (h *referenceHandler) Cancel() { h.s.preview = nil }
