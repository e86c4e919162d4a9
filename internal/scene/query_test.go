package scene

import (
	"testing"

	"github.com/example/glowplan/internal/geometry"
)

func TestFindClosestLightStringThreshold(t *testing.T) {
	s := newTestStore()
	ls := s.AddLightString(LightString{Start: geometry.Pt(0, 0), End: geometry.Pt(100, 0)})
	threshold := DefaultStringThreshold(1)
	if threshold != 12 {
		t.Fatalf("DefaultStringThreshold(1) = %v, want 12", threshold)
	}
	if got, ok := s.FindClosestLightString(geometry.Pt(50, 6), threshold); !ok || got.ID != ls.ID {
		t.Errorf("6 px from midpoint: got %v, %v", got.ID, ok)
	}
	if _, ok := s.FindClosestLightString(geometry.Pt(50, 13), threshold); ok {
		t.Error("13 px from midpoint should miss")
	}
	if _, ok := s.FindClosestLightString(geometry.Pt(50, 12), 0); !ok {
		t.Error("threshold is inclusive and 0 means default")
	}
}

func TestDefaultStringThreshold(t *testing.T) {
	tests := []struct {
		scale, want float64
	}{
		{0.05, 8},
		{0.5, 8},
		{1, 12},
		{2, 24},
	}
	for _, tt := range tests {
		if got := DefaultStringThreshold(tt.scale); got != tt.want {
			t.Errorf("DefaultStringThreshold(%v) = %v, want %v", tt.scale, got, tt.want)
		}
	}
}

func TestFindClosestLightStringPrefersNearest(t *testing.T) {
	s := newTestStore()
	s.AddLightString(LightString{Start: geometry.Pt(0, 0), End: geometry.Pt(100, 0)})
	near := s.AddLightString(LightString{Start: geometry.Pt(0, 10), End: geometry.Pt(100, 10)})
	got, ok := s.FindClosestLightString(geometry.Pt(50, 8), 12)
	if !ok || got.ID != near.ID {
		t.Errorf("got %v, want nearer string %v", got.ID, near.ID)
	}
}

func TestFindClosestLightStringEndpointBias(t *testing.T) {
	s := newTestStore()
	// A point 14 px past the end is 14 px from the segment but weighs in at
	// 0.8*14 = 11.2 through the endpoint term.
	ls := s.AddLightString(LightString{Start: geometry.Pt(0, 0), End: geometry.Pt(20, 0)})
	if got, ok := s.FindClosestLightString(geometry.Pt(34, 0), 12); !ok || got.ID != ls.ID {
		t.Errorf("endpoint-biased hit missed: %v", ok)
	}
}

func TestFindDecorAtPointTopmost(t *testing.T) {
	s := newTestStore()
	bottom := s.AddDecor(DecorShape{Center: geometry.Pt(50, 50), Radius: 40})
	top := s.AddDecor(DecorShape{Center: geometry.Pt(60, 50), Radius: 20})
	if got, ok := s.FindDecorAtPoint(geometry.Pt(60, 50)); !ok || got.ID != top.ID {
		t.Errorf("overlap hit = %v, want topmost %v", got.ID, top.ID)
	}
	if got, ok := s.FindDecorAtPoint(geometry.Pt(20, 50)); !ok || got.ID != bottom.ID {
		t.Errorf("bottom-only hit = %v, want %v", got.ID, bottom.ID)
	}
	if got, ok := s.FindDecorAtPoint(geometry.Pt(90, 50)); !ok || got.ID != bottom.ID {
		t.Errorf("edge of disc should hit: %v %v", got.ID, ok)
	}
	if _, ok := s.FindDecorAtPoint(geometry.Pt(91, 50)); ok {
		t.Error("outside every disc should miss")
	}
}

func TestFindResizeHandleAt(t *testing.T) {
	s := newTestStore()
	d := s.AddDecor(DecorShape{Center: geometry.Pt(100, 100), Radius: 30})
	handle := ResizeHandles(d)
	if len(handle) != 1 || handle[0] != geometry.Pt(130, 100) {
		t.Fatalf("ResizeHandles = %v", handle)
	}
	if _, ok := s.FindResizeHandleAt(geometry.Pt(130, 100)); ok {
		t.Error("handle of an unselected decor should not hit")
	}
	if err := s.Select(KindDecor, d.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.FindResizeHandleAt(geometry.Pt(140, 105)); !ok {
		t.Error("point within 12 px of handle should hit")
	}
	if _, ok := s.FindResizeHandleAt(geometry.Pt(143, 100)); ok {
		t.Error("point 13 px from handle should miss")
	}
}

func TestFindMeasurementLineAndHandle(t *testing.T) {
	s := newTestStore()
	m := s.AddMeasurement(MeasurementLine{Start: geometry.Pt(0, 0), End: geometry.Pt(200, 0)})
	if got, ok := s.FindMeasurementLineAtPoint(geometry.Pt(100, 20), 0); !ok || got.ID != m.ID {
		t.Errorf("line hit at default tolerance failed")
	}
	if _, ok := s.FindMeasurementLineAtPoint(geometry.Pt(100, 21), 0); ok {
		t.Error("21 px should miss")
	}
	if _, _, ok := s.FindMeasurementHandleAtPoint(geometry.Pt(0, 0), 0); ok {
		t.Error("handles only apply to the selected line")
	}
	if err := s.Select(KindMeasurement, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, end, ok := s.FindMeasurementHandleAtPoint(geometry.Pt(195, 10), 0); !ok || end != EndpointEnd {
		t.Errorf("end handle = %v, %v", end, ok)
	}
	if _, end, ok := s.FindMeasurementHandleAtPoint(geometry.Pt(-10, 0), 0); !ok || end != EndpointStart {
		t.Errorf("start handle = %v, %v", end, ok)
	}
	if _, _, ok := s.FindMeasurementHandleAtPoint(geometry.Pt(100, 0), 0); ok {
		t.Error("midpoint is not a handle")
	}
}

func TestFindSingularLightAt(t *testing.T) {
	s := newTestStore()
	s.AddSingularLight(SingularLight{Position: geometry.Pt(10, 10)})
	top := s.AddSingularLight(SingularLight{Position: geometry.Pt(12, 10)})
	if got, ok := s.FindSingularLightAt(geometry.Pt(11, 10), 5); !ok || got.ID != top.ID {
		t.Errorf("got %v, want topmost %v", got.ID, top.ID)
	}
	if _, ok := s.FindSingularLightAt(geometry.Pt(40, 40), 5); ok {
		t.Error("far point should miss")
	}
}
