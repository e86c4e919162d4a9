package calibrate

import (
	"errors"
	"math"
	"testing"

	"github.com/example/glowplan/internal/geometry"
	"gonum.org/v1/gonum/floats/scalar"
)

func calibrated(t *testing.T, px, feet float64) *Calibrator {
	t.Helper()
	c := New(DefaultLimits())
	c.StartReferenceMode()
	c.CompleteReferenceLine(geometry.Vec(geometry.Pt(0, 0), geometry.Pt(px, 0)))
	if err := c.ConfirmReferenceLength(feet); err != nil {
		t.Fatalf("ConfirmReferenceLength: %v", err)
	}
	return c
}

func TestScaleFactorScenario(t *testing.T) {
	c := calibrated(t, 360, 10)
	scale, ok := c.ScaleFactor()
	if !ok {
		t.Fatal("expected scale factor to be set")
	}
	if !scalar.EqualWithinAbs(scale, 36, 1e-9) {
		t.Fatalf("scale = %v, want 36", scale)
	}
	if got := c.ScaledLightSpacing(12); !scalar.EqualWithinAbs(got, 36, 1e-9) {
		t.Fatalf("ScaledLightSpacing(12) = %v, want 36", got)
	}
	if got := c.ScaledLightSpacing(6); !scalar.EqualWithinAbs(got, 18, 1e-9) {
		t.Fatalf("ScaledLightSpacing(6) = %v, want 18", got)
	}
	if c.IsSettingReference() {
		t.Error("reference mode should end after a successful confirm")
	}
}

func TestRoundTrip(t *testing.T) {
	c := calibrated(t, 237.3, 7.9)
	for _, feet := range []float64{0.01, 1, 3.3, 12, 250} {
		px, ok := c.FeetToPixels(feet)
		if !ok {
			t.Fatalf("FeetToPixels(%v) not ok", feet)
		}
		back, ok := c.PixelsToFeet(px)
		if !ok {
			t.Fatalf("PixelsToFeet(%v) not ok", px)
		}
		if !scalar.EqualWithinAbsOrRel(back, feet, 1e-9, 1e-9) {
			t.Errorf("round trip %v -> %v -> %v", feet, px, back)
		}
	}
}

func TestFallbacksWithoutReference(t *testing.T) {
	c := New(DefaultLimits())
	if _, ok := c.ScaleFactor(); ok {
		t.Error("ScaleFactor should be unset")
	}
	if _, ok := c.FeetToPixels(3); ok {
		t.Error("FeetToPixels should be unset")
	}
	if _, ok := c.PixelsToFeet(3); ok {
		t.Error("PixelsToFeet should be unset")
	}
	if _, ok := c.LineLengthInFeet(geometry.Pt(0, 0), geometry.Pt(1, 1)); ok {
		t.Error("LineLengthInFeet should be unset")
	}
	if got := c.ScaledLightSpacing(12); got != 36 {
		t.Errorf("ScaledLightSpacing fallback = %v, want 36", got)
	}
	if got := c.LightSizeScale(1); got != 1 {
		t.Errorf("LightSizeScale fallback = %v, want 1", got)
	}
}

func TestScaledLightSpacingFloor(t *testing.T) {
	// 10 px for 100 ft: 12 in -> 0.1 px, floored to 3.
	c := calibrated(t, 10, 100)
	if got := c.ScaledLightSpacing(12); got != 3 {
		t.Errorf("ScaledLightSpacing = %v, want floor 3", got)
	}
}

func TestLightSizeScaleClamp(t *testing.T) {
	tests := []struct {
		name      string
		px, feet  float64
		diameter  float64
		want      float64
		tolerance float64
	}{
		// 96 px/ft: 1 in = 8 px -> scale 1
		{"unit", 96, 1, 1, 1, 1e-9},
		// 48 px/ft: 1 in = 4 px -> 0.5
		{"half", 48, 1, 1, 0.5, 1e-9},
		// tiny scale clamps to 0.05
		{"min clamp", 1, 100, 1, 0.05, 0},
		// huge scale clamps to 3
		{"max clamp", 10000, 1, 1, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := calibrated(t, tt.px, tt.feet)
			got := c.LightSizeScale(tt.diameter)
			if !scalar.EqualWithinAbs(got, tt.want, tt.tolerance) {
				t.Errorf("LightSizeScale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirmRejectsInvalidLengths(t *testing.T) {
	c := New(DefaultLimits())
	c.StartReferenceMode()
	line := geometry.Vec(geometry.Pt(0, 0), geometry.Pt(100, 0))
	c.CompleteReferenceLine(line)
	for _, feet := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := c.ConfirmReferenceLength(feet); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("ConfirmReferenceLength(%v) = %v, want ErrInvalidLength", feet, err)
		}
		if _, ok := c.Pending(); !ok {
			t.Fatalf("pending line dropped after rejecting %v", feet)
		}
		if _, ok := c.ScaleFactor(); ok {
			t.Fatalf("reference committed after rejecting %v", feet)
		}
	}
	for _, text := range []string{"", "abc", "ten feet", "-3 ft"} {
		if err := c.ConfirmReferenceInput(text); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("ConfirmReferenceInput(%q) = %v, want ErrInvalidLength", text, err)
		}
	}
	if !c.IsSettingReference() {
		t.Error("reference mode should remain active after rejected input")
	}
	if err := c.ConfirmReferenceInput(" 10 ft "); err != nil {
		t.Fatalf("ConfirmReferenceInput: %v", err)
	}
	if scale, _ := c.ScaleFactor(); !scalar.EqualWithinAbs(scale, 10, 1e-9) {
		t.Errorf("scale = %v, want 10", scale)
	}
}

func TestConfirmWithoutPending(t *testing.T) {
	c := New(DefaultLimits())
	if err := c.ConfirmReferenceLength(10); !errors.Is(err, ErrNoPendingLine) {
		t.Fatalf("err = %v, want ErrNoPendingLine", err)
	}
}

func TestCancelKeepsCommittedReference(t *testing.T) {
	c := calibrated(t, 360, 10)
	c.StartReferenceMode()
	c.CompleteReferenceLine(geometry.Vec(geometry.Pt(0, 0), geometry.Pt(50, 0)))
	c.CancelReferenceMode()
	if _, ok := c.Pending(); ok {
		t.Error("pending line should be discarded on cancel")
	}
	if scale, _ := c.ScaleFactor(); !scalar.EqualWithinAbs(scale, 36, 1e-9) {
		t.Errorf("scale = %v, want the previous 36", scale)
	}
}

func TestClearAndRestore(t *testing.T) {
	c := calibrated(t, 360, 10)
	ref, ok := c.Reference()
	if !ok {
		t.Fatal("expected reference")
	}
	c.ClearReference()
	if _, ok := c.ScaleFactor(); ok {
		t.Fatal("scale should be unset after clear")
	}
	c.Restore(&ref)
	if scale, _ := c.ScaleFactor(); !scalar.EqualWithinAbs(scale, 36, 1e-9) {
		t.Errorf("restored scale = %v, want 36", scale)
	}
	c.Restore(&Reference{Line: ref.Line, LengthFeet: -2})
	if _, ok := c.ScaleFactor(); ok {
		t.Error("invalid restore should clear the reference")
	}
}

func TestLineLengthInFeet(t *testing.T) {
	c := calibrated(t, 360, 10)
	got, ok := c.LineLengthInFeet(geometry.Pt(0, 0), geometry.Pt(0, 72))
	if !ok || !scalar.EqualWithinAbs(got, 2, 1e-9) {
		t.Errorf("LineLengthInFeet = %v, %v; want 2, true", got, ok)
	}
}

func TestParseFeet(t *testing.T) {
	tests := map[string]float64{
		"10":       10,
		"10.5ft":   10.5,
		"3 feet":   3,
		"12'":      12,
		"  7 FT  ": 7,
	}
	for in, want := range tests {
		got, err := ParseFeet(in)
		if err != nil {
			t.Errorf("ParseFeet(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseFeet(%q) = %v, want %v", in, got, want)
		}
	}
}
