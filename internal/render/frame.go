// Package render paints design frames onto a photo.
package render

import (
	"github.com/example/glowplan/internal/geometry"
	"github.com/example/glowplan/internal/gesture"
	"github.com/example/glowplan/internal/scene"
)

// Frame is everything a renderer needs to paint the design.
type Frame struct {
	Strings      []scene.LightString
	Lights       []scene.SingularLight
	Decor        []scene.DecorShape
	Measurements []scene.MeasurementLine

	// Positions maps entity id to the light centres for that entity.
	// Entities whose asset is missing have no entry.
	Positions map[string][]geometry.Point
	// Scales maps entity id to the light size scale for that entity.
	Scales map[string]float64

	// LightScale is the size scale of the selected string asset.
	LightScale  float64
	ScaleFactor float64
	HasScale    bool
	Selection   scene.Selection
	Mode        gesture.Mode

	// Preview is the vector being dragged, if any.
	Preview *geometry.Vector
	// Reference is the committed reference line; PendingReference is one
	// waiting for a length.
	Reference        *geometry.Vector
	PendingReference *geometry.Vector
}
