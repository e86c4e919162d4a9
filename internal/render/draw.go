package render

import (
	"image"
	"image/color"
	"math"

	"github.com/example/glowplan/internal/geometry"
)

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// drawDashedSegment alternates c1 and c2 every dash pixels along a→b.
func drawDashedSegment(img *image.RGBA, a, b geometry.Point, dash, thick int, c1, c2 color.Color) {
	length := geometry.Distance(a, b)
	if length == 0 || dash <= 0 {
		setThickPixel(img, round(a.X), round(a.Y), thick, c1)
		return
	}
	steps := int(math.Ceil(length))
	for i := 0; i <= steps; i++ {
		p := geometry.Lerp(a, b, float64(i)/float64(steps))
		col := c1
		if (i/dash)%2 == 1 {
			col = c2
		}
		setThickPixel(img, round(p.X), round(p.Y), thick, col)
	}
}

func drawCircleThin(img *image.RGBA, cx, cy, r int, col color.Color) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, p := range pts {
			px := cx + p[0]
			py := cy + p[1]
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

func drawFilledCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				px := cx + dx
				py := cy + dy
				if image.Pt(px, py).In(img.Bounds()) {
					img.Set(px, py, col)
				}
			}
		}
	}
}

func drawHandle(img *image.RGBA, p geometry.Point, size int) {
	hs := size / 2
	x, y := round(p.X), round(p.Y)
	for dy := -hs; dy <= hs; dy++ {
		for dx := -hs; dx <= hs; dx++ {
			pt := image.Pt(x+dx, y+dy)
			if !pt.In(img.Bounds()) {
				continue
			}
			if dx == -hs || dx == hs || dy == -hs || dy == hs {
				img.Set(pt.X, pt.Y, color.Black)
			} else {
				img.Set(pt.X, pt.Y, color.White)
			}
		}
	}
}

func round(v float64) int { return int(math.Round(v)) }
