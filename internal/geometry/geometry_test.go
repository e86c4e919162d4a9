package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

func TestDistance(t *testing.T) {
	if got := Distance(Pt(0, 0), Pt(3, 4)); !scalar.EqualWithinAbs(got, 5, tol) {
		t.Fatalf("Distance = %v, want 5", got)
	}
	if got := Distance(Pt(2, 2), Pt(2, 2)); got != 0 {
		t.Fatalf("Distance of identical points = %v, want 0", got)
	}
}

func TestPointToSegmentDistance(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		a, b Point
		want float64
	}{
		{"perpendicular to middle", Pt(5, 3), Pt(0, 0), Pt(10, 0), 3},
		{"beyond end clamps", Pt(13, 4), Pt(0, 0), Pt(10, 0), 5},
		{"before start clamps", Pt(-3, -4), Pt(0, 0), Pt(10, 0), 5},
		{"on the segment", Pt(4, 0), Pt(0, 0), Pt(10, 0), 0},
		{"degenerate segment", Pt(3, 4), Pt(0, 0), Pt(0, 0), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointToSegmentDistance(tt.p, tt.a, tt.b)
			if !scalar.EqualWithinAbs(got, tt.want, tol) {
				t.Errorf("PointToSegmentDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleVectorCount(t *testing.T) {
	tests := []struct {
		length, spacing float64
		want            int
	}{
		{100, 36, 3},
		{36, 36, 2},
		{35.9, 36, 1},
		{0, 36, 1},
		{360, 36, 11},
		{10, 3, 4},
	}
	for _, tt := range tests {
		v := Vec(Pt(0, 0), Pt(tt.length, 0))
		pts := SampleVector(v, tt.spacing)
		if len(pts) != tt.want {
			t.Errorf("SampleVector(len=%v, spacing=%v) returned %d points, want %d", tt.length, tt.spacing, len(pts), tt.want)
			continue
		}
		if pts[0] != v.Start {
			t.Errorf("first point %v, want start %v", pts[0], v.Start)
		}
		if len(pts) > 1 && pts[len(pts)-1] != v.End {
			t.Errorf("last point %v, want end %v", pts[len(pts)-1], v.End)
		}
	}
}

func TestSampleVectorProgress(t *testing.T) {
	v := Vec(Pt(10, 20), Pt(110, 20))
	pts := SampleVector(v, 36)
	want := []Point{Pt(10, 20), Pt(60, 20), Pt(110, 20)}
	if len(pts) != len(want) {
		t.Fatalf("got %d points, want %d", len(pts), len(want))
	}
	for i := range want {
		if !scalar.EqualWithinAbs(pts[i].X, want[i].X, tol) || !scalar.EqualWithinAbs(pts[i].Y, want[i].Y, tol) {
			t.Errorf("point %d = %v, want %v", i, pts[i], want[i])
		}
	}
}

func TestSampleVectorBadSpacing(t *testing.T) {
	v := Vec(Pt(1, 1), Pt(50, 50))
	for _, spacing := range []float64{0, -4, math.NaN(), math.Inf(1)} {
		pts := SampleVector(v, spacing)
		if len(pts) != 1 || pts[0] != v.Start {
			t.Errorf("SampleVector(spacing=%v) = %v, want single start point", spacing, pts)
		}
	}
}

func TestSampleVectorDiagonalSpacing(t *testing.T) {
	v := Vec(Pt(0, 0), Pt(30, 40)) // length 50
	pts := SampleVector(v, 10)
	if len(pts) != 6 {
		t.Fatalf("got %d points, want 6", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if d := Distance(pts[i-1], pts[i]); !scalar.EqualWithinAbs(d, 10, 1e-6) {
			t.Errorf("gap %d = %v, want 10", i, d)
		}
	}
}

func TestCirclePoints(t *testing.T) {
	c := Pt(100, 100)
	pts := CirclePoints(c, 20, 10)
	// circumference ~125.66 -> 12 lights
	if len(pts) != 12 {
		t.Fatalf("got %d points, want 12", len(pts))
	}
	for _, p := range pts {
		if d := Distance(p, c); !scalar.EqualWithinAbs(d, 20, 1e-6) {
			t.Errorf("point %v at distance %v, want 20", p, d)
		}
	}
	if !scalar.EqualWithinAbs(pts[0].X, 120, 1e-9) || !scalar.EqualWithinAbs(pts[0].Y, 100, 1e-9) {
		t.Errorf("first point %v, want (120,100)", pts[0])
	}
	if got := CirclePoints(c, 0, 10); len(got) != 1 || got[0] != c {
		t.Errorf("zero radius = %v, want centre", got)
	}
	if got := CirclePoints(c, 1, 100); len(got) != 1 {
		t.Errorf("tiny circle returned %d points, want 1", len(got))
	}
}

func TestClampPoint(t *testing.T) {
	bounds := RectWH(100, 50)
	if got := ClampPoint(Pt(-5, 70), bounds); got != Pt(0, 50) {
		t.Errorf("ClampPoint = %v, want (0,50)", got)
	}
	if got := ClampPoint(Pt(40, 20), bounds); got != Pt(40, 20) {
		t.Errorf("ClampPoint inside = %v, want unchanged", got)
	}
	if got := ClampPoint(Pt(-5, 70), Rect{}); got != Pt(-5, 70) {
		t.Errorf("ClampPoint with empty bounds = %v, want unchanged", got)
	}
}

func TestVectorTranslate(t *testing.T) {
	v := Vec(Pt(1, 2), Pt(3, 4)).Translate(Pt(10, -2))
	if v.Start != Pt(11, 0) || v.End != Pt(13, 2) {
		t.Errorf("Translate = %+v", v)
	}
	if m := Vec(Pt(0, 0), Pt(10, 10)).Midpoint(); m != Pt(5, 5) {
		t.Errorf("Midpoint = %v, want (5,5)", m)
	}
}
