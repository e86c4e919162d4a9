package render

import (
	"image"
	"image/color"
	"image/draw"
	"slices"
)

// GlowOptions configures the halo painted around each light.
type GlowOptions struct {
	// Radius is the blur radius in pixels. Zero disables the halo.
	Radius int
	// Spread multiplies the bulb radius to size the halo before blurring.
	Spread  float64
	Opacity float64
}

// DefaultGlowOptions returns a soft halo that reads well on night photos.
func DefaultGlowOptions() GlowOptions {
	return GlowOptions{
		Radius:  6,
		Spread:  2.5,
		Opacity: 0.6,
	}
}

type disc struct{ x, y, r int }

// glowLayer accumulates the halo discs of one light colour. The blurred
// mask is kept so an unchanged layer can be reused by the next frame.
type glowLayer struct {
	col     color.RGBA
	bounds  image.Rectangle
	radius  int
	discs   []disc
	blurred *image.Gray
}

func newGlowLayer(bounds image.Rectangle, col color.RGBA, radius int) *glowLayer {
	return &glowLayer{col: col, bounds: bounds, radius: radius}
}

func (g *glowLayer) add(cx, cy, r int) {
	g.discs = append(g.discs, disc{cx, cy, r})
}

// matches reports whether prev holds the same discs and can stand in for g.
func (g *glowLayer) matches(prev *glowLayer) bool {
	return prev != nil && prev.blurred != nil &&
		prev.bounds == g.bounds && prev.radius == g.radius &&
		slices.Equal(prev.discs, g.discs)
}

func (g *glowLayer) mask() *image.Gray {
	m := image.NewGray(g.bounds)
	for _, d := range g.discs {
		for dy := -d.r; dy <= d.r; dy++ {
			for dx := -d.r; dx <= d.r; dx++ {
				if dx*dx+dy*dy > d.r*d.r {
					continue
				}
				p := image.Pt(d.x+dx, d.y+dy)
				if p.In(g.bounds) {
					m.SetGray(p.X, p.Y, color.Gray{Y: 255})
				}
			}
		}
	}
	return m
}

// composite paints the blurred mask over dst in the layer colour, blurring
// first if needed.
func (g *glowLayer) composite(dst *image.RGBA, opts GlowOptions) {
	if opts.Radius <= 0 || opts.Opacity <= 0 {
		return
	}
	if g.blurred == nil {
		g.blurred = blurGray(g.mask(), g.radius)
	}
	opacity := min(opts.Opacity, 1)
	c := g.col
	c.A = uint8(opacity*255 + 0.5)
	// Uniform expects premultiplied colour.
	c.R = uint8(uint16(c.R) * uint16(c.A) / 255)
	c.G = uint8(uint16(c.G) * uint16(c.A) / 255)
	c.B = uint8(uint16(c.B) * uint16(c.A) / 255)
	draw.DrawMask(dst, g.bounds, image.NewUniform(c), image.Point{}, g.blurred, g.bounds.Min, draw.Over)
}

// blurGray applies a two-pass box blur of the given radius.
func blurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewGray(bounds)
	dst := image.NewGray(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[row+x])
		}
		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0 := max(y-radius, 0)
			y1 := min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
