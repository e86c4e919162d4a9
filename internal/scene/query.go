package scene

import (
	"math"

	"github.com/example/glowplan/internal/geometry"
)

const (
	// HandleHitRadius is the touch radius around a decor resize handle.
	HandleHitRadius = 12
	// MeasurementLineTolerance is the default hit distance to a measurement line.
	MeasurementLineTolerance = 20
	// MeasurementHandleTolerance is the default hit distance to a measurement endpoint.
	MeasurementHandleTolerance = 15

	baseStringThreshold = 8
	endpointWeight      = 0.8
)

// DefaultStringThreshold returns the light string hit distance for lights
// drawn at lightSizeScale.
func DefaultStringThreshold(lightSizeScale float64) float64 {
	return math.Max(baseStringThreshold, baseStringThreshold*lightSizeScale*1.5)
}

// stringDistance weights endpoint proximity so short strings are easy to grab
// by their ends.
func stringDistance(p geometry.Point, ls LightString) float64 {
	ends := math.Min(geometry.Distance(p, ls.Start), geometry.Distance(p, ls.End))
	return math.Min(endpointWeight*ends, geometry.PointToSegmentDistance(p, ls.Start, ls.End))
}

// FindClosestLightString returns the light string nearest to p within
// threshold. A non-positive threshold uses DefaultStringThreshold(1).
func (s *Store) FindClosestLightString(p geometry.Point, threshold float64) (LightString, bool) {
	if threshold <= 0 {
		threshold = DefaultStringThreshold(1)
	}
	best := -1
	bestDist := math.Inf(1)
	for i, ls := range s.strings {
		d := stringDistance(p, ls)
		if d <= threshold && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return LightString{}, false
	}
	return s.strings[best], true
}

// FindDecorAtPoint returns the most recently added decor shape whose disc
// contains p.
func (s *Store) FindDecorAtPoint(p geometry.Point) (DecorShape, bool) {
	for i := len(s.decor) - 1; i >= 0; i-- {
		d := s.decor[i]
		if geometry.Distance(p, d.Center) <= d.Radius {
			return d, true
		}
	}
	return DecorShape{}, false
}

// ResizeHandles returns the resize handle positions of d. Only the handle on
// the right of the shape is offered.
func ResizeHandles(d DecorShape) []geometry.Point {
	return []geometry.Point{d.Center.Add(geometry.Pt(d.Radius, 0))}
}

// FindResizeHandleAt returns the selected decor shape when p touches one of
// its resize handles.
func (s *Store) FindResizeHandleAt(p geometry.Point) (DecorShape, bool) {
	if s.selection.Kind != KindDecor {
		return DecorShape{}, false
	}
	d, ok := s.DecorShape(s.selection.ID)
	if !ok {
		return DecorShape{}, false
	}
	for _, h := range ResizeHandles(d) {
		if geometry.Distance(p, h) <= HandleHitRadius {
			return d, true
		}
	}
	return DecorShape{}, false
}

// FindMeasurementLineAtPoint returns the measurement line closest to p within
// tolerance. A non-positive tolerance uses MeasurementLineTolerance.
func (s *Store) FindMeasurementLineAtPoint(p geometry.Point, tolerance float64) (MeasurementLine, bool) {
	if tolerance <= 0 {
		tolerance = MeasurementLineTolerance
	}
	best := -1
	bestDist := math.Inf(1)
	for i, m := range s.measurements {
		d := geometry.PointToSegmentDistance(p, m.Start, m.End)
		if d <= tolerance && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return MeasurementLine{}, false
	}
	return s.measure(s.measurements[best]), true
}

// FindMeasurementHandleAtPoint reports which endpoint of the selected
// measurement line is within tolerance of p. The nearer end wins when both
// are in range.
func (s *Store) FindMeasurementHandleAtPoint(p geometry.Point, tolerance float64) (MeasurementLine, Endpoint, bool) {
	if tolerance <= 0 {
		tolerance = MeasurementHandleTolerance
	}
	if s.selection.Kind != KindMeasurement {
		return MeasurementLine{}, EndpointStart, false
	}
	m, ok := s.MeasurementLine(s.selection.ID)
	if !ok {
		return MeasurementLine{}, EndpointStart, false
	}
	ds := geometry.Distance(p, m.Start)
	de := geometry.Distance(p, m.End)
	switch {
	case ds <= tolerance && ds <= de:
		return m, EndpointStart, true
	case de <= tolerance:
		return m, EndpointEnd, true
	}
	return MeasurementLine{}, EndpointStart, false
}

// FindSingularLightAt returns the most recently placed light within radius
// of p.
func (s *Store) FindSingularLightAt(p geometry.Point, radius float64) (SingularLight, bool) {
	for i := len(s.lights) - 1; i >= 0; i-- {
		if geometry.Distance(p, s.lights[i].Position) <= radius {
			return s.lights[i], true
		}
	}
	return SingularLight{}, false
}
