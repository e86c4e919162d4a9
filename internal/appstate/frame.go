package appstate

import (
	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/geometry"
	"github.com/example/glowplan/internal/render"
	"github.com/example/glowplan/internal/scene"
)

// Renderer paints a frame. It is called synchronously after every state
// change and must not retain the frame's slices beyond the call.
// *render.Compositor implements it.
type Renderer interface {
	Render(f render.Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(f render.Frame)

// Render implements Renderer.
func (fn RendererFunc) Render(f render.Frame) { fn(f) }

// Frame builds the current frame.
func (s *Session) Frame() render.Frame {
	f := render.Frame{
		Strings:      s.store.LightStrings(),
		Lights:       s.store.SingularLights(),
		Decor:        s.store.Decor(),
		Measurements: s.store.MeasurementLines(),
		LightScale:   s.LightScale(),
		Mode:         s.arbiter.Mode(),
	}
	f.Positions, f.Scales = s.lightPositions(f.Strings, f.Lights, f.Decor)
	f.ScaleFactor, f.HasScale = s.cal.ScaleFactor()
	f.Selection, _ = s.store.Selected()
	if s.preview != nil {
		v := *s.preview
		f.Preview = &v
	}
	if ref, ok := s.cal.Reference(); ok {
		f.Reference = &ref.Line
	}
	if p, ok := s.cal.Pending(); ok {
		f.PendingReference = &p
	}
	return f
}

// LightPositions returns the light centres of every placed entity, keyed by
// entity id.
func (s *Session) LightPositions() map[string][]geometry.Point {
	pos, _ := s.lightPositions(s.store.LightStrings(), s.store.SingularLights(), s.store.Decor())
	return pos
}

func (s *Session) lightPositions(strings []scene.LightString, lights []scene.SingularLight, decor []scene.DecorShape) (map[string][]geometry.Point, map[string]float64) {
	pos := make(map[string][]geometry.Point, len(strings)+len(lights)+len(decor))
	scales := make(map[string]float64, len(pos))
	for _, ls := range strings {
		a, ok := s.asset(ls.AssetID, ls.ID)
		if !ok {
			continue
		}
		spacing := s.spacingFor(a)
		if ls.Spacing != nil {
			spacing = *ls.Spacing
		}
		pos[ls.ID] = geometry.SampleVector(ls.Vector(), spacing)
		scales[ls.ID] = s.cal.LightSizeScale(a.DiameterInches)
	}
	for _, l := range lights {
		a, ok := s.asset(l.AssetID, l.ID)
		if !ok {
			continue
		}
		pos[l.ID] = []geometry.Point{l.Position}
		scales[l.ID] = s.cal.LightSizeScale(a.DiameterInches)
	}
	for _, d := range decor {
		a, ok := s.asset(d.AssetID, d.ID)
		if !ok {
			continue
		}
		spacing := d.LightSpacing
		if spacing <= 0 {
			spacing = s.spacingFor(a)
		}
		pos[d.ID] = geometry.CirclePoints(d.Center, d.Radius, spacing)
		scales[d.ID] = s.cal.LightSizeScale(a.DiameterInches)
	}
	return pos, scales
}

func (s *Session) asset(assetID, entityID string) (catalog.Asset, bool) {
	a, ok := s.catalog.AssetByID(assetID)
	if !ok {
		Logger().Debug("skipping entity with unknown asset", "entity", entityID, "asset", assetID)
	}
	return a, ok
}

// spacingFor returns the pixel spacing of a's lights. Calibrated assets
// follow the reference scale; custom-style assets keep their own spacing.
func (s *Session) spacingFor(a catalog.Asset) float64 {
	if !a.Calibrated && a.SpacingPixels > 0 {
		return a.SpacingPixels
	}
	return s.cal.ScaledLightSpacing(a.SpacingInches)
}

// LightScale returns the size scale of the selected string asset, or the
// default diameter when none is selected.
func (s *Session) LightScale() float64 {
	if a, ok := s.catalog.AssetByID(s.assets[catalog.CategoryString]); ok {
		return s.cal.LightSizeScale(a.DiameterInches)
	}
	return s.cal.LightSizeScale(0)
}

// StringThreshold returns the hit distance used to pick light strings.
func (s *Session) StringThreshold() float64 {
	if s.stringThreshold > 0 {
		return s.stringThreshold
	}
	return scene.DefaultStringThreshold(s.LightScale())
}
