package render

import (
	"image"
	"math"

	"constellation/internal/viewport"
	"constellation/pkg/colorutil"
	"constellation/pkg/geometry"

	"github.com/fogleman/gg"
)

// Background grid layout in map units.
const (
	BorderRadius  = 1000.0
	RingSpacing   = 100.0
	SpokeCount    = 12
	NotchCount    = 120
	NotchLength   = 15.0
	MajorNotchLen = 40.0
	MajorEvery    = 10
)

// drawGrid strokes concentric rings, radial spokes and a notched border
// centred on the map origin, following the current pan and zoom. dst must
// start at the image origin; gg paints from (0, 0).
func (r *Renderer) drawGrid(dst *image.RGBA, tf viewport.Transform) {
	dc := gg.NewContextForRGBA(dst)
	dc.SetLineWidth(1)
	origin := tf.ToScreen(geometry.Point2D{})
	scale := tf.Scale()

	for rr := RingSpacing; rr < BorderRadius; rr += RingSpacing {
		r.strokeRing(dc, dst.Bounds(), origin, rr*scale, 0.22)
	}
	r.strokeRing(dc, dst.Bounds(), origin, BorderRadius*scale, 0.6)
	r.strokeRing(dc, dst.Bounds(), origin, (BorderRadius+MajorNotchLen)*scale, 0.35)

	for i := 0; i < SpokeCount; i++ {
		a := float64(i) * 2 * math.Pi / SpokeCount
		tip := geometry.NewPoint2D(BorderRadius, 0).Rotate(a).Scale(scale).Add(origin)
		dc.DrawLine(origin.X, origin.Y, tip.X, tip.Y)
	}
	dc.SetColor(colorutil.WithAlpha(r.GridColor, 0.15))
	dc.Stroke()

	for i := 0; i < NotchCount; i++ {
		a := float64(i) * 2 * math.Pi / NotchCount
		length := NotchLength
		if i%MajorEvery == 0 {
			length = MajorNotchLen
		}
		dir := geometry.NewPoint2D(1, 0).Rotate(a)
		in := dir.Scale(BorderRadius * scale).Add(origin)
		out := dir.Scale((BorderRadius + length) * scale).Add(origin)
		dc.DrawLine(in.X, in.Y, out.X, out.Y)
	}
	dc.SetColor(colorutil.WithAlpha(r.GridColor, 0.5))
	dc.Stroke()
}

func (r *Renderer) strokeRing(dc *gg.Context, b image.Rectangle, center geometry.Point2D, radius, opacity float64) {
	if radius < 1 || !ringCrosses(b, center, radius) {
		return
	}
	dc.DrawCircle(center.X, center.Y, radius)
	dc.SetColor(colorutil.WithAlpha(r.GridColor, opacity))
	dc.Stroke()
}

// ringCrosses reports whether a circle outline crosses the rectangle.
// Rings that enclose the whole surface or miss it are not stroked.
func ringCrosses(b image.Rectangle, c geometry.Point2D, r float64) bool {
	nx := math.Max(float64(b.Min.X), math.Min(c.X, float64(b.Max.X)))
	ny := math.Max(float64(b.Min.Y), math.Min(c.Y, float64(b.Max.Y)))
	if c.Distance(geometry.NewPoint2D(nx, ny)) > r {
		return false
	}
	far := 0.0
	for _, p := range []image.Point{b.Min, {X: b.Max.X, Y: b.Min.Y}, {X: b.Min.X, Y: b.Max.Y}, b.Max} {
		far = math.Max(far, c.Distance(geometry.NewPoint2D(float64(p.X), float64(p.Y))))
	}
	return far >= r
}
