// Package geometry provides the canvas-space primitives shared by the design
// canvas: points, drawn vectors, distances and light sampling.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a canvas-space coordinate in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return fromVec(r2.Add(p.vec(), q.vec())) }

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point { return fromVec(r2.Sub(p.vec(), q.vec())) }

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point { return fromVec(r2.Scale(f, p.vec())) }

// Vector is a drawn segment. It is ephemeral until a caller commits it as an
// entity.
type Vector struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Vec is shorthand for Vector{Start: start, End: end}.
func Vec(start, end Point) Vector {
	return Vector{Start: start, End: end}
}

// Length returns the pixel length of the vector.
func (v Vector) Length() float64 {
	return Distance(v.Start, v.End)
}

// Translate moves both endpoints by delta.
func (v Vector) Translate(delta Point) Vector {
	return Vector{Start: v.Start.Add(delta), End: v.End.Add(delta)}
}

// Midpoint returns the point halfway along the vector.
func (v Vector) Midpoint() Point {
	return Lerp(v.Start, v.End, 0.5)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(a.vec(), b.vec()))
}

// Lerp interpolates between a and b. t=0 yields a and t=1 yields b.
func Lerp(a, b Point, t float64) Point {
	return a.Add(b.Sub(a).Scale(t))
}

// PointToSegmentDistance returns the distance from p to the closest point of
// the segment a→b. A degenerate segment is treated as the single point a.
func PointToSegmentDistance(p, a, b Point) float64 {
	ab := r2.Sub(b.vec(), a.vec())
	lenSq := r2.Dot(ab, ab)
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := r2.Dot(r2.Sub(p.vec(), a.vec()), ab) / lenSq
	t = Clamp(t, 0, 1)
	return Distance(p, Lerp(a, b, t))
}

// SampleVector places lights along v. It returns floor(|v|/spacing)+1 evenly
// spaced points including both endpoints, or a single point at v.Start when
// the vector is shorter than one spacing. A non-positive spacing yields the
// single start point.
func SampleVector(v Vector, spacing float64) []Point {
	if !(spacing > 0) || math.IsInf(spacing, 1) {
		return []Point{v.Start}
	}
	count := int(math.Floor(v.Length() / spacing))
	if count <= 0 {
		return []Point{v.Start}
	}
	points := make([]Point, count+1)
	for i := 0; i <= count; i++ {
		points[i] = Lerp(v.Start, v.End, float64(i)/float64(count))
	}
	// Pin the final point to avoid float drift on the endpoint.
	points[count] = v.End
	return points
}

// CirclePoints places lights around a circle, starting at 0° and spaced so
// that the arc between neighbours is at least spacing. At least one point is
// always returned.
func CirclePoints(center Point, radius, spacing float64) []Point {
	if radius <= 0 {
		return []Point{center}
	}
	n := 1
	if spacing > 0 {
		n = int(math.Floor(2 * math.Pi * radius / spacing))
		if n < 1 {
			n = 1
		}
	}
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		points[i] = Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return points
}

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rect is an axis-aligned canvas rectangle.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectWH returns the rectangle with its origin at zero and the given size.
func RectWH(w, h float64) Rect {
	return Rect{Max: Point{X: w, Y: h}}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ClampPoint moves p to the nearest location inside bounds. An empty bounds
// rectangle leaves p unchanged.
func ClampPoint(p Point, bounds Rect) Point {
	if bounds.Empty() {
		return p
	}
	return Point{
		X: Clamp(p.X, bounds.Min.X, bounds.Max.X),
		Y: Clamp(p.Y, bounds.Min.Y, bounds.Max.Y),
	}
}
