// Package viewport holds the pan/zoom state of the star chart and the
// transform between map space and screen space.
package viewport

import (
	"math"

	"constellation/pkg/geometry"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 10.0
	ZoomStep = 1.5

	// DefaultMaxOffset bounds |offsetX| and |offsetY| in map units.
	DefaultMaxOffset = 1000.0
)

// State is the pan offset (map units) and zoom factor.
type State struct {
	OffsetX float64
	OffsetY float64
	Zoom    float64
}

// Default returns the state every navigation level starts from.
func Default() State {
	return State{Zoom: 1}
}

// CanZoomIn reports whether the zoom-in control is active.
func (s State) CanZoomIn() bool {
	return s.Zoom < MaxZoom
}

// CanZoomOut reports whether the zoom-out control is active.
func (s State) CanZoomOut() bool {
	return s.Zoom > MinZoom
}

// ZoomIn multiplies zoom by ZoomStep. It is a no-op at MaxZoom and never
// overshoots it.
func (s State) ZoomIn() State {
	if !s.CanZoomIn() {
		return s
	}
	s.Zoom = ClampZoom(s.Zoom * ZoomStep)
	return s
}

// ZoomOut divides zoom by ZoomStep. It is a no-op at MinZoom and never
// undershoots it.
func (s State) ZoomOut() State {
	if !s.CanZoomOut() {
		return s
	}
	s.Zoom = ClampZoom(s.Zoom / ZoomStep)
	return s
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ClampOffset limits each offset axis to [-max, max]. A non-positive max
// disables clamping.
func (s State) ClampOffset(max float64) State {
	if max <= 0 {
		return s
	}
	s.OffsetX = math.Max(-max, math.Min(max, s.OffsetX))
	s.OffsetY = math.Max(-max, math.Min(max, s.OffsetY))
	return s
}

// Transform maps between map space and the pixels of a surface of the
// given size. Bias shifts screen y by a fixed amount, used when screen
// coordinates are measured from a window origin that sits above the
// surface (a header bar).
type Transform struct {
	View State
	Size geometry.Size
	Bias float64
}

// NewTransform creates a transform for the given state and surface size.
func NewTransform(view State, size geometry.Size, bias float64) Transform {
	return Transform{View: view, Size: size, Bias: bias}
}

func (t Transform) zoom() float64 {
	if t.View.Zoom == 0 || math.IsNaN(t.View.Zoom) {
		return 1
	}
	return t.View.Zoom
}

func (t Transform) center() geometry.Point2D {
	if t.Size.IsEmpty() {
		return geometry.Point2D{Y: t.Bias}
	}
	return geometry.Point2D{X: t.Size.Width / 2, Y: t.Size.Height/2 + t.Bias}
}

// ToScreen converts map coordinates to screen coordinates:
//
//	sx = w/2 + (mx + offsetX) * zoom
//	sy = h/2 + bias - (my - offsetY) * zoom
//
// Map y grows upward, screen y downward.
func (t Transform) ToScreen(p geometry.Point2D) geometry.Point2D {
	c := t.center()
	z := t.zoom()
	return geometry.Point2D{
		X: c.X + (p.X+t.View.OffsetX)*z,
		Y: c.Y - (p.Y-t.View.OffsetY)*z,
	}
}

// ToMap converts screen coordinates to map coordinates. It is the inverse
// of ToScreen.
func (t Transform) ToMap(p geometry.Point2D) geometry.Point2D {
	c := t.center()
	z := t.zoom()
	return geometry.Point2D{
		X: (p.X-c.X)/z - t.View.OffsetX,
		Y: t.View.OffsetY - (p.Y-c.Y)/z,
	}
}

// Scale returns the number of screen pixels per map unit.
func (t Transform) Scale() float64 {
	return t.zoom()
}

// Fit returns the state that centers points on a surface of the given size
// with margin units left free on every side. The zoom is clamped to the
// usual bounds; a single point or an empty set keeps zoom 1.
func Fit(points []geometry.Point2D, size geometry.Size, margin float64) State {
	if len(points) == 0 || size.IsEmpty() {
		return Default()
	}
	min, ext := geometry.BoundingBox(points)
	center := min.Add(ext.Center())

	zoom := math.Inf(1)
	if ext.Width > 0 {
		zoom = math.Min(zoom, (size.Width-2*margin)/ext.Width)
	}
	if ext.Height > 0 {
		zoom = math.Min(zoom, (size.Height-2*margin)/ext.Height)
	}
	if math.IsInf(zoom, 1) || zoom <= 0 {
		zoom = 1
	}
	return State{OffsetX: -center.X, OffsetY: center.Y, Zoom: ClampZoom(zoom)}
}
