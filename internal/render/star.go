package render

import (
	"image"
	"image/draw"
	"math"

	"constellation/pkg/geometry"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// starOutline returns the eight vertices of a four-pointed star with arm
// length size centred on the origin: for each quarter turn a tip at
// (size, 0) followed by an inner notch at (size/3, size/3).
func starOutline(size float64) []geometry.Point2D {
	tip := geometry.NewPoint2D(size, 0)
	notch := geometry.NewPoint2D(size/3, size/3)
	pts := make([]geometry.Point2D, 0, 8)
	for i := 1; i <= 4; i++ {
		a := float64(i) * math.Pi / 2
		pts = append(pts, tip.Rotate(a), notch.Rotate(a))
	}
	return pts
}

// sprite is a pre-rasterized star: a coverage mask for the fill and a
// blurred copy of it for the glow. Both share the same bounds and the star
// centre sits at (half, half).
type sprite struct {
	half int
	fill *image.Alpha
	glow *image.Alpha
}

type spriteKey struct {
	arm, blur int
}

// quantum is the sub-pixel granularity of cached sprite sizes.
const quantum = 4

const maxSprites = 256

// glowGain brightens the blurred mask so small stars still show a halo.
const glowGain = 2

func (r *Renderer) sprite(armPx, blurPx float64) *sprite {
	key := spriteKey{arm: int(math.Round(armPx * quantum)), blur: int(math.Round(blurPx * quantum))}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sprites[key]; ok {
		return s
	}
	if len(r.sprites) >= maxSprites {
		r.sprites = make(map[spriteKey]*sprite)
	}
	s := newSprite(float64(key.arm)/quantum, float64(key.blur)/quantum)
	r.sprites[key] = s
	return s
}

func newSprite(arm, blur float64) *sprite {
	// A canvas-style shadow blur b is a Gaussian with sigma b/2, visible
	// out to about three sigma.
	sigma := blur / 2
	pad := int(math.Ceil(3*sigma)) + 1
	half := int(math.Ceil(arm)) + pad
	size := 2*half + 1

	fill := image.NewAlpha(image.Rect(0, 0, size, size))
	if arm > 0 {
		c := float64(half) + 0.5
		ras := vector.NewRasterizer(size, size)
		for i, p := range starOutline(arm) {
			x, y := float32(c+p.X), float32(c+p.Y)
			if i == 0 {
				ras.MoveTo(x, y)
			} else {
				ras.LineTo(x, y)
			}
		}
		ras.ClosePath()
		ras.Draw(fill, fill.Bounds(), image.Opaque, image.Point{})
	}

	glow := image.NewAlpha(fill.Bounds())
	if sigma < 0.5 {
		copy(glow.Pix, fill.Pix)
	} else {
		blurred := imaging.Blur(fill, sigma)
		for i := range glow.Pix {
			glow.Pix[i] = uint8(min(int(blurred.Pix[i*4+3])*glowGain, 255))
		}
	}
	return &sprite{half: half, fill: fill, glow: glow}
}

// drawAt composites the sprite centred on (x, y): glow first, then fill.
func (s *sprite) drawAt(dst draw.Image, x, y float64, fill, glow image.Image) {
	cx := int(math.Floor(x))
	cy := int(math.Floor(y))
	rect := image.Rect(cx-s.half, cy-s.half, cx+s.half+1, cy+s.half+1)
	if !rect.Overlaps(dst.Bounds()) {
		return
	}
	draw.DrawMask(dst, rect, glow, image.Point{}, s.glow, image.Point{}, draw.Over)
	draw.DrawMask(dst, rect, fill, image.Point{}, s.fill, image.Point{}, draw.Over)
}
