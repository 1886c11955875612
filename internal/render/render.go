// Package render paints the star chart into an RGBA image: an optional
// radial background grid followed by one glowing four-pointed star per
// point. Every call repaints the whole surface.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"constellation/internal/catalog"
	"constellation/internal/viewport"
	"constellation/pkg/colorutil"
	"constellation/pkg/geometry"
)

// BaseStarSize is the arm length, in map units at zoom 1, of a point of
// size 1.
const BaseStarSize = 7.0

// Glow levels multiply the star size to give the glow blur radius.
const (
	GlowLevel          = 1.0
	HighlightGlowLevel = 3.0
)

// Scene is everything a frame depends on.
type Scene struct {
	Dataset   *catalog.Dataset
	Highlight string // group id, empty for none
	View      viewport.State
	// Scale is the number of image pixels per layout unit. Zero means 1.
	Scale float64
}

// Renderer draws scenes. It is safe for concurrent use; it caches
// rasterized star sprites between frames.
type Renderer struct {
	Background bool
	StarSize   float64

	StarColor      color.RGBA
	GlowColor      color.RGBA
	HighlightColor color.RGBA
	SkyColor       color.RGBA
	GridColor      color.RGBA

	mu      sync.Mutex
	sprites map[spriteKey]*sprite
}

// New creates a renderer with the default palette.
func New(background bool) *Renderer {
	return &Renderer{
		Background:     background,
		StarSize:       BaseStarSize,
		StarColor:      colorutil.Star,
		GlowColor:      colorutil.Glow,
		HighlightColor: colorutil.Highlight,
		SkyColor:       colorutil.Sky,
		GridColor:      colorutil.Grid,
		sprites:        make(map[spriteKey]*sprite),
	}
}

// Render repaints dst with the scene and returns the number of stars that
// fell inside the image.
func (r *Renderer) Render(dst *image.RGBA, sc Scene) int {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.SkyColor), image.Point{}, draw.Src)

	b := dst.Bounds()
	if b.Empty() {
		return 0
	}
	scale := sc.Scale
	if scale <= 0 {
		scale = 1
	}
	view := sc.View
	view.Zoom = zoomOrOne(view.Zoom) * scale
	tf := viewport.NewTransform(view, geometry.NewSize(float64(b.Dx()), float64(b.Dy())), 0)

	if r.Background {
		r.drawGrid(dst, tf)
	}
	if sc.Dataset == nil {
		return 0
	}

	glow := image.NewUniform(r.GlowColor)
	highlight := image.NewUniform(r.HighlightColor)
	drawn := 0
	for gi := range sc.Dataset.Data {
		g := &sc.Dataset.Data[gi]
		fill := image.NewUniform(colorutil.ParseCSSOr(g.Color, r.StarColor))
		glowSrc, level := glow, GlowLevel
		if sc.Highlight != "" && g.ID == sc.Highlight {
			glowSrc, level = highlight, HighlightGlowLevel
		}
		for pi := range g.Artists {
			p := &g.Artists[pi]
			size := p.Size * r.StarSize
			if size <= 0 {
				continue
			}
			s := r.sprite(size*view.Zoom, level*size*scale)
			pos := tf.ToScreen(p.Pos()).Add(geometry.Point2D{X: float64(b.Min.X), Y: float64(b.Min.Y)})
			if !visible(b, pos, s.half) {
				continue
			}
			s.drawAt(dst, pos.X, pos.Y, fill, glowSrc)
			drawn++
		}
	}
	return drawn
}

func visible(b image.Rectangle, p geometry.Point2D, half int) bool {
	h := float64(half)
	return p.X+h >= float64(b.Min.X) && p.X-h < float64(b.Max.X) &&
		p.Y+h >= float64(b.Min.Y) && p.Y-h < float64(b.Max.Y)
}

func zoomOrOne(z float64) float64 {
	if z <= 0 {
		return 1
	}
	return z
}
