// Package scene holds the entities placed on a design canvas and answers the
// spatial queries used to select them.
//
// A Store is not safe for concurrent use. Every mutation is expected to run on
// the goroutine that owns the design session.
package scene

import (
	"errors"
	"time"

	"github.com/example/glowplan/internal/geometry"
)

// ErrNotFound is returned when an entity id is not present in the store.
var ErrNotFound = errors.New("entity not found")

// Kind identifies an entity collection.
type Kind int

const (
	KindNone Kind = iota
	KindLightString
	KindSingularLight
	KindDecor
	KindMeasurement
)

var kindNames = map[Kind]string{
	KindNone:          "none",
	KindLightString:   "light_string",
	KindSingularLight: "singular_light",
	KindDecor:         "decor_shape",
	KindMeasurement:   "measurement_line",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind resolves a kind name as produced by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && k != KindNone {
			return k, true
		}
	}
	return KindNone, false
}

// Entity is implemented by every value stored in a Store.
type Entity interface {
	EntityID() string
	EntityKind() Kind
}

// LightString is a run of lights sampled along a drawn segment.
type LightString struct {
	ID      string         `json:"id"`
	Start   geometry.Point `json:"start"`
	End     geometry.Point `json:"end"`
	AssetID string         `json:"assetId"`
	// Spacing overrides the asset spacing, in pixels.
	Spacing   *float64  `json:"spacing,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s LightString) EntityID() string        { return s.ID }
func (s LightString) EntityKind() Kind        { return KindLightString }
func (s LightString) Vector() geometry.Vector { return geometry.Vec(s.Start, s.End) }

// SingularLight is one individually placed light.
type SingularLight struct {
	ID         string         `json:"id"`
	Position   geometry.Point `json:"position"`
	AssetID    string         `json:"assetId"`
	LightIndex int            `json:"lightIndex"`
}

func (l SingularLight) EntityID() string { return l.ID }
func (l SingularLight) EntityKind() Kind { return KindSingularLight }

// DecorShape is a circular decoration such as a wreath.
type DecorShape struct {
	ID           string         `json:"id"`
	Center       geometry.Point `json:"center"`
	Radius       float64        `json:"radius"`
	AssetID      string         `json:"assetId"`
	LightSpacing float64        `json:"lightSpacing"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (d DecorShape) EntityID() string { return d.ID }
func (d DecorShape) EntityKind() Kind { return KindDecor }

// MeasurementLine is a dimension line. LengthInFeet and Label are filled in
// from the current scale each time the line is read; a Store never keeps them.
type MeasurementLine struct {
	ID           string         `json:"id"`
	Start        geometry.Point `json:"start"`
	End          geometry.Point `json:"end"`
	LengthInFeet *float64       `json:"lengthInFeet,omitempty"`
	Label        string         `json:"label,omitempty"`
}

func (m MeasurementLine) EntityID() string { return m.ID }
func (m MeasurementLine) EntityKind() Kind { return KindMeasurement }

// Selection names the single selected entity across every collection.
type Selection struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// IsZero reports whether nothing is selected.
func (s Selection) IsZero() bool { return s.Kind == KindNone || s.ID == "" }

// Placement is the geometry of an entity that move and resize gestures
// change. It is comparable so callers can detect a gesture that ended where it
// started.
type Placement struct {
	Start  geometry.Point `json:"start"`
	End    geometry.Point `json:"end"`
	Center geometry.Point `json:"center"`
	Radius float64        `json:"radius"`
}

// Translate returns the placement moved by delta.
func (p Placement) Translate(delta geometry.Point) Placement {
	return Placement{
		Start:  p.Start.Add(delta),
		End:    p.End.Add(delta),
		Center: p.Center.Add(delta),
		Radius: p.Radius,
	}
}

// Endpoint selects one end of a segment entity.
type Endpoint int

const (
	EndpointStart Endpoint = iota
	EndpointEnd
)

func (e Endpoint) String() string {
	if e == EndpointEnd {
		return "end"
	}
	return "start"
}

// DecorBounds limits the radius of every decor shape.
type DecorBounds struct {
	Min float64
	Max float64
}

// DefaultDecorBounds returns the stock radius limits, in pixels.
func DefaultDecorBounds() DecorBounds {
	return DecorBounds{Min: 5, Max: 120}
}

// Clamp limits r to the bounds.
func (b DecorBounds) Clamp(r float64) float64 {
	return geometry.Clamp(r, b.Min, b.Max)
}
