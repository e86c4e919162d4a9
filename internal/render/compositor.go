package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/geometry"
	"github.com/example/glowplan/internal/scene"
)

// DefaultSize is the canvas used when no photo is set.
var DefaultSize = image.Pt(1024, 768)

var (
	nightSky     = color.RGBA{18, 22, 38, 255}
	wireColor    = color.RGBA{24, 64, 32, 255}
	measureColor = color.RGBA{255, 255, 255, 255}
	refColor     = color.RGBA{80, 220, 255, 255}
	pendingColor = color.RGBA{255, 220, 60, 255}
	labelBg      = color.RGBA{0, 0, 0, 160}
)

const handleSize = 9

// Compositor paints frames over a base photo. Render may be called from the
// session goroutine while Last is read from a paint goroutine.
type Compositor struct {
	catalog catalog.Catalog
	glow    GlowOptions
	face    font.Face

	mu   sync.Mutex
	base image.Image
	last *image.RGBA

	// glowMu guards glowCache, the blurred layers of the previous frame.
	glowMu    sync.Mutex
	glowCache map[color.RGBA]*glowLayer
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithGlow sets the halo options.
func WithGlow(g GlowOptions) Option { return func(c *Compositor) { c.glow = g } }

// WithBase sets the photo painted under the design.
func WithBase(img image.Image) Option { return func(c *Compositor) { c.base = img } }

// WithFace sets the font used for measurement labels.
func WithFace(f font.Face) Option { return func(c *Compositor) { c.face = f } }

// NewCompositor returns a Compositor that colours lights from cat.
func NewCompositor(cat catalog.Catalog, opts ...Option) *Compositor {
	c := &Compositor{
		catalog: cat,
		glow:    DefaultGlowOptions(),
		face:    basicfont.Face7x13,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetBase replaces the photo.
func (c *Compositor) SetBase(img image.Image) {
	c.mu.Lock()
	c.base = img
	c.mu.Unlock()
}

// Size returns the canvas size.
func (c *Compositor) Size() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return DefaultSize
	}
	return c.base.Bounds().Size()
}

// Render composes f and keeps the result for Last.
func (c *Compositor) Render(f Frame) {
	img := c.Compose(f)
	c.mu.Lock()
	c.last = img
	c.mu.Unlock()
}

// Last returns the most recently rendered image, or nil.
func (c *Compositor) Last() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Compose paints f over the base photo and returns a new image with a zero
// origin.
func (c *Compositor) Compose(f Frame) *image.RGBA {
	c.mu.Lock()
	base := c.base
	c.mu.Unlock()

	size := DefaultSize
	if base != nil {
		size = base.Bounds().Size()
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	if base != nil {
		xdraw.Copy(dst, image.Point{}, base, base.Bounds(), draw.Src, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(nightSky), image.Point{}, draw.Src)
	}

	for _, ls := range f.Strings {
		if _, ok := f.Positions[ls.ID]; ok {
			drawLine(dst, round(ls.Start.X), round(ls.Start.Y), round(ls.End.X), round(ls.End.Y), wireColor, 1)
		}
	}
	for _, d := range f.Decor {
		if a, ok := c.catalog.AssetByID(d.AssetID); ok {
			drawCircleThin(dst, round(d.Center.X), round(d.Center.Y), round(d.Radius), dim(a.Color))
		}
	}

	c.drawLights(dst, f)

	for _, m := range f.Measurements {
		c.drawMeasurement(dst, m)
	}
	if f.Reference != nil {
		drawDashedSegment(dst, f.Reference.Start, f.Reference.End, 6, 2, refColor, color.Black)
	}
	if f.PendingReference != nil {
		drawDashedSegment(dst, f.PendingReference.Start, f.PendingReference.End, 6, 2, pendingColor, color.Black)
	}
	if f.Preview != nil {
		drawDashedSegment(dst, f.Preview.Start, f.Preview.End, 4, 2, color.White, color.Black)
	}
	c.drawSelection(dst, f)
	return dst
}

type bulb struct {
	center geometry.Point
	radius int
	col    color.RGBA
}

func (c *Compositor) drawLights(dst *image.RGBA, f Frame) {
	var bulbs []bulb
	add := func(id, assetID string) {
		pts, ok := f.Positions[id]
		if !ok {
			return
		}
		a, ok := c.catalog.AssetByID(assetID)
		if !ok {
			return
		}
		scale := f.Scales[id]
		if scale <= 0 {
			scale = 1
		}
		r := max(1, round(a.BaseSize*scale/2))
		for _, p := range pts {
			bulbs = append(bulbs, bulb{center: p, radius: r, col: a.Color})
		}
	}
	for _, ls := range f.Strings {
		add(ls.ID, ls.AssetID)
	}
	for _, l := range f.Lights {
		add(l.ID, l.AssetID)
	}
	for _, d := range f.Decor {
		add(d.ID, d.AssetID)
	}

	if c.glow.Radius > 0 && c.glow.Opacity > 0 {
		var layers []*glowLayer
		byColor := make(map[color.RGBA]*glowLayer)
		for _, b := range bulbs {
			layer, ok := byColor[b.col]
			if !ok {
				layer = newGlowLayer(dst.Bounds(), b.col, c.glow.Radius)
				byColor[b.col] = layer
				layers = append(layers, layer)
			}
			spread := c.glow.Spread
			if spread < 1 {
				spread = 1
			}
			layer.add(round(b.center.X), round(b.center.Y), round(float64(b.radius)*spread))
		}
		c.glowMu.Lock()
		next := make(map[color.RGBA]*glowLayer, len(layers))
		for _, layer := range layers {
			if prev := c.glowCache[layer.col]; layer.matches(prev) {
				layer = prev
			}
			layer.composite(dst, c.glow)
			next[layer.col] = layer
		}
		c.glowCache = next
		c.glowMu.Unlock()
	}
	for _, b := range bulbs {
		drawFilledCircle(dst, round(b.center.X), round(b.center.Y), b.radius, b.col)
	}
}

func (c *Compositor) drawMeasurement(dst *image.RGBA, m scene.MeasurementLine) {
	drawLine(dst, round(m.Start.X), round(m.Start.Y), round(m.End.X), round(m.End.Y), measureColor, 2)
	for _, p := range []geometry.Point{m.Start, m.End} {
		drawFilledCircle(dst, round(p.X), round(p.Y), 3, measureColor)
	}
	if m.Label == "" {
		return
	}
	mid := geometry.Vec(m.Start, m.End).Midpoint()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(measureColor), Face: c.face}
	w := d.MeasureString(m.Label).Ceil()
	metrics := c.face.Metrics()
	h := metrics.Ascent.Ceil() + metrics.Descent.Ceil()
	x := round(mid.X) - w/2
	y := round(mid.Y) - h - 6
	box := image.Rect(x-3, y-2, x+w+3, y+h+2)
	draw.Draw(dst, box, image.NewUniform(labelBg), image.Point{}, draw.Over)
	d.Dot = fixed.P(x, y+metrics.Ascent.Ceil())
	d.DrawString(m.Label)
}

func (c *Compositor) drawSelection(dst *image.RGBA, f Frame) {
	if f.Selection.IsZero() {
		return
	}
	sel := f.Selection
	switch sel.Kind {
	case scene.KindLightString:
		for _, ls := range f.Strings {
			if ls.ID == sel.ID {
				drawHandle(dst, ls.Start, handleSize)
				drawHandle(dst, ls.End, handleSize)
			}
		}
	case scene.KindSingularLight:
		for _, l := range f.Lights {
			if l.ID == sel.ID {
				drawCircleThin(dst, round(l.Position.X), round(l.Position.Y), scene.HandleHitRadius, color.White)
			}
		}
	case scene.KindDecor:
		for _, d := range f.Decor {
			if d.ID == sel.ID {
				drawCircleThin(dst, round(d.Center.X), round(d.Center.Y), round(d.Radius), color.White)
				for _, h := range scene.ResizeHandles(d) {
					drawHandle(dst, h, handleSize)
				}
			}
		}
	case scene.KindMeasurement:
		for _, m := range f.Measurements {
			if m.ID == sel.ID {
				drawHandle(dst, m.Start, handleSize)
				drawHandle(dst, m.End, handleSize)
			}
		}
	}
}

// WritePNG composes f and encodes it as PNG.
func (c *Compositor) WritePNG(w io.Writer, f Frame) error {
	return png.Encode(w, c.Compose(f))
}

// ExportPNG composes f and writes it to path.
func (c *Compositor) ExportPNG(path string, f Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.WritePNG(out, f); err != nil {
		if cerr := out.Close(); cerr != nil {
			return fmt.Errorf("export: %v (closing file: %w)", err, cerr)
		}
		return fmt.Errorf("export: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("export: closing file: %w", err)
	}
	return nil
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{c.R / 3, c.G / 3, c.B / 3, 255}
}
