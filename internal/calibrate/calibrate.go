// Package calibrate converts between canvas pixels and real-world feet using a
// user-drawn reference line of known length.
//
// The scale factor is never cached: every query derives it from the stored
// reference line and length, so it cannot go stale when the reference changes.
package calibrate

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/example/glowplan/internal/geometry"
)

var (
	// ErrInvalidLength is returned when a reference length is not a finite
	// positive number.
	ErrInvalidLength = errors.New("reference length must be a positive number of feet")
	// ErrNoPendingLine is returned when a length is confirmed without a drawn
	// reference line waiting for it.
	ErrNoPendingLine = errors.New("no reference line is waiting for a length")
)

// Limits holds the fallback and clamp constants used by scale-dependent
// queries.
type Limits struct {
	// FallbackSpacing is the light spacing in pixels used when no reference
	// is set.
	FallbackSpacing float64
	// MinSpacing is the smallest spacing ever returned, in pixels.
	MinSpacing float64
	// BaseLightDiameter is the on-screen diameter in pixels of a light drawn
	// at scale 1.
	BaseLightDiameter float64
	MinLightScale     float64
	MaxLightScale     float64
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		FallbackSpacing:   36,
		MinSpacing:        3,
		BaseLightDiameter: 8,
		MinLightScale:     0.05,
		MaxLightScale:     3.0,
	}
}

const (
	// DefaultSpacingInches is the light spacing assumed when the asset does
	// not declare one.
	DefaultSpacingInches = 12
	// DefaultDiameterInches is the light diameter assumed when the asset does
	// not declare one.
	DefaultDiameterInches = 1
)

// Reference is a committed calibration: a drawn line and its declared length.
type Reference struct {
	Line       geometry.Vector `json:"referenceLine"`
	LengthFeet float64         `json:"referenceLength"`
}

// Calibrator tracks the reference calibration for one design session.
type Calibrator struct {
	limits Limits

	settingReference bool
	pending          *geometry.Vector

	line   *geometry.Vector
	length float64
}

// New returns a Calibrator with no reference set.
func New(limits Limits) *Calibrator {
	return &Calibrator{limits: limits}
}

// Limits returns the limits in use.
func (c *Calibrator) Limits() Limits { return c.limits }

// StartReferenceMode makes subsequent drawing gestures produce a reference
// line instead of a light string.
func (c *Calibrator) StartReferenceMode() {
	c.settingReference = true
}

// CancelReferenceMode leaves reference mode and drops any pending line. The
// committed reference, if any, is kept.
func (c *Calibrator) CancelReferenceMode() {
	c.settingReference = false
	c.pending = nil
}

// IsSettingReference reports whether reference mode is active.
func (c *Calibrator) IsSettingReference() bool { return c.settingReference }

// CompleteReferenceLine stores line as the pending reference. The reference
// is not committed until ConfirmReferenceLength succeeds.
func (c *Calibrator) CompleteReferenceLine(line geometry.Vector) {
	l := line
	c.pending = &l
}

// Pending returns the line waiting for a length confirmation.
func (c *Calibrator) Pending() (geometry.Vector, bool) {
	if c.pending == nil {
		return geometry.Vector{}, false
	}
	return *c.pending, true
}

// ConfirmReferenceLength commits the pending line with the given length. On
// failure the pending line is kept so the caller can ask again.
func (c *Calibrator) ConfirmReferenceLength(feet float64) error {
	if c.pending == nil {
		return ErrNoPendingLine
	}
	if math.IsNaN(feet) || math.IsInf(feet, 0) || feet <= 0 {
		return ErrInvalidLength
	}
	l := *c.pending
	c.line = &l
	c.length = feet
	c.pending = nil
	c.settingReference = false
	return nil
}

// ConfirmReferenceInput parses free-form length input such as "10", "10.5 ft"
// or "12'" and confirms it.
func (c *Calibrator) ConfirmReferenceInput(text string) error {
	feet, err := ParseFeet(text)
	if err != nil {
		return err
	}
	return c.ConfirmReferenceLength(feet)
}

// ParseFeet parses a length in feet. A trailing "ft", "feet" or "'" unit is
// accepted.
func ParseFeet(text string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	for _, suffix := range []string{"feet", "ft", "'"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidLength
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidLength
	}
	return v, nil
}

// ClearReference forgets the committed reference. Scale queries fall back to
// their defaults afterwards.
func (c *Calibrator) ClearReference() {
	c.line = nil
	c.length = 0
}

// Restore replaces the committed reference, typically from a saved project.
// A nil or invalid reference clears it.
func (c *Calibrator) Restore(ref *Reference) {
	if ref == nil || !(ref.LengthFeet > 0) || math.IsInf(ref.LengthFeet, 0) {
		c.ClearReference()
		return
	}
	l := ref.Line
	c.line = &l
	c.length = ref.LengthFeet
}

// Reference returns the committed reference.
func (c *Calibrator) Reference() (Reference, bool) {
	if c.line == nil {
		return Reference{}, false
	}
	return Reference{Line: *c.line, LengthFeet: c.length}, true
}

// ScaleFactor returns the pixels-per-foot ratio of the committed reference.
func (c *Calibrator) ScaleFactor() (float64, bool) {
	if c.line == nil || c.length <= 0 {
		return 0, false
	}
	return c.line.Length() / c.length, true
}

// FeetToPixels converts feet to pixels. ok is false when no reference is set.
func (c *Calibrator) FeetToPixels(feet float64) (px float64, ok bool) {
	scale, ok := c.ScaleFactor()
	if !ok {
		return 0, false
	}
	return feet * scale, true
}

// PixelsToFeet converts pixels to feet. ok is false when no reference is set
// or the reference line has zero length.
func (c *Calibrator) PixelsToFeet(px float64) (feet float64, ok bool) {
	scale, ok := c.ScaleFactor()
	if !ok || scale == 0 {
		return 0, false
	}
	return px / scale, true
}

// ScaledLightSpacing converts a real-world spacing in inches to pixels. With
// no reference it returns the fallback spacing. The result is never below the
// minimum spacing.
func (c *Calibrator) ScaledLightSpacing(inches float64) float64 {
	if inches <= 0 {
		inches = DefaultSpacingInches
	}
	spacing := c.limits.FallbackSpacing
	if px, ok := c.FeetToPixels(inches / 12); ok {
		spacing = px
	}
	return math.Max(spacing, c.limits.MinSpacing)
}

// LightSizeScale returns the ratio between a light's real size on the canvas
// and the base light diameter, clamped to the configured bounds. It is 1 when
// no reference is set.
func (c *Calibrator) LightSizeScale(diameterInches float64) float64 {
	if diameterInches <= 0 {
		diameterInches = DefaultDiameterInches
	}
	px, ok := c.FeetToPixels(diameterInches / 12)
	if !ok || c.limits.BaseLightDiameter <= 0 {
		return 1
	}
	return geometry.Clamp(px/c.limits.BaseLightDiameter, c.limits.MinLightScale, c.limits.MaxLightScale)
}

// LineLengthInFeet returns the real-world length of the segment a→b.
func (c *Calibrator) LineLengthInFeet(a, b geometry.Point) (float64, bool) {
	return c.PixelsToFeet(geometry.Distance(a, b))
}
