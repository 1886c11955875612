// Package canvas provides the star chart widget.
package canvas

import (
	"image"
	"sync"

	"constellation/internal/render"
	"constellation/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// SceneFunc returns what to draw. It is called from the render goroutine.
type SceneFunc func() render.Scene

// StarCanvas draws a render.Scene into a raster and reports pointer input in
// window coordinates. The widget itself holds no chart state.
type StarCanvas struct {
	widget.BaseWidget

	renderer *render.Renderer
	scene    SceneFunc
	raster   *fynecanvas.Raster

	// Bias is the vertical distance from the window top to the widget, added
	// to every reported pointer position.
	Bias float32

	mu      sync.Mutex
	buffers [2]*image.RGBA
	front   int
	pressed bool
	last    fyne.Position

	onPointerDown func(geometry.Point2D)
	onPointerMove func(geometry.Point2D)
	onPointerUp   func(geometry.Point2D)
	onZoomIn      func()
	onZoomOut     func()
	onResize      func(geometry.Size)
}

var (
	_ desktop.Mouseable = (*StarCanvas)(nil)
	_ desktop.Hoverable = (*StarCanvas)(nil)
	_ fyne.Draggable    = (*StarCanvas)(nil)
	_ fyne.Scrollable   = (*StarCanvas)(nil)
)

// NewStarCanvas creates a canvas drawing with r whatever scene returns.
func NewStarCanvas(r *render.Renderer, scene SceneFunc) *StarCanvas {
	sc := &StarCanvas{
		renderer: r,
		scene:    scene,
	}
	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.ExtendBaseWidget(sc)
	return sc
}

// OnPointerDown sets the callback for a primary button press.
func (sc *StarCanvas) OnPointerDown(callback func(pos geometry.Point2D)) {
	sc.onPointerDown = callback
}

// OnPointerMove sets the callback for pointer motion, pressed or not.
func (sc *StarCanvas) OnPointerMove(callback func(pos geometry.Point2D)) {
	sc.onPointerMove = callback
}

// OnPointerUp sets the callback for a primary button release.
func (sc *StarCanvas) OnPointerUp(callback func(pos geometry.Point2D)) {
	sc.onPointerUp = callback
}

// OnZoom sets the callbacks for wheel zoom.
func (sc *StarCanvas) OnZoom(in, out func()) {
	sc.onZoomIn = in
	sc.onZoomOut = out
}

// OnResize sets the callback for layout size changes.
func (sc *StarCanvas) OnResize(callback func(size geometry.Size)) {
	sc.onResize = callback
}

// window converts a widget-relative position to window coordinates.
func (sc *StarCanvas) window(pos fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(pos.X), float64(pos.Y+sc.Bias))
}

// MouseDown implements desktop.Mouseable.
func (sc *StarCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	sc.mu.Lock()
	sc.pressed = true
	sc.last = ev.Position
	sc.mu.Unlock()
	if sc.onPointerDown != nil {
		sc.onPointerDown(sc.window(ev.Position))
	}
}

// MouseUp implements desktop.Mouseable.
func (sc *StarCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	sc.release(ev.Position)
}

// MouseIn implements desktop.Hoverable.
func (sc *StarCanvas) MouseIn(ev *desktop.MouseEvent) {
	sc.move(ev.Position)
}

// MouseMoved implements desktop.Hoverable.
func (sc *StarCanvas) MouseMoved(ev *desktop.MouseEvent) {
	sc.move(ev.Position)
}

// MouseOut implements desktop.Hoverable.
func (sc *StarCanvas) MouseOut() {}

// Dragged implements fyne.Draggable. Fyne routes motion with a button held
// here instead of MouseMoved.
func (sc *StarCanvas) Dragged(ev *fyne.DragEvent) {
	sc.move(ev.Position)
}

// DragEnd implements fyne.Draggable. Releases outside the widget arrive here
// without a MouseUp.
func (sc *StarCanvas) DragEnd() {
	sc.mu.Lock()
	pos := sc.last
	sc.mu.Unlock()
	sc.release(pos)
}

// Scrolled implements fyne.Scrollable: wheel up zooms in.
func (sc *StarCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 && sc.onZoomIn != nil {
		sc.onZoomIn()
	} else if ev.Scrolled.DY < 0 && sc.onZoomOut != nil {
		sc.onZoomOut()
	}
}

func (sc *StarCanvas) move(pos fyne.Position) {
	sc.mu.Lock()
	sc.last = pos
	sc.mu.Unlock()
	if sc.onPointerMove != nil {
		sc.onPointerMove(sc.window(pos))
	}
}

func (sc *StarCanvas) release(pos fyne.Position) {
	sc.mu.Lock()
	if !sc.pressed {
		sc.mu.Unlock()
		return
	}
	sc.pressed = false
	sc.mu.Unlock()
	if sc.onPointerUp != nil {
		sc.onPointerUp(sc.window(pos))
	}
}

// Refresh redraws the chart.
func (sc *StarCanvas) Refresh() {
	sc.raster.Refresh()
}

// draw is the raster drawing function. w and h are in device pixels; the
// scene is scaled so map units stay in widget units on high-density
// displays. Two buffers alternate so the driver never reads a frame that
// is being drawn.
func (sc *StarCanvas) draw(w, h int) image.Image {
	sc.mu.Lock()
	sc.front ^= 1
	dst := sc.buffers[sc.front]
	if dst == nil || dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		sc.buffers[sc.front] = dst
	}
	sc.mu.Unlock()

	var scene render.Scene
	if sc.scene != nil {
		scene = sc.scene()
	}
	scene.Scale = 1
	if width := sc.Size().Width; width > 0 && w > 0 {
		scene.Scale = float64(w) / float64(width)
	}
	sc.renderer.Render(dst, scene)
	return dst
}

// CreateRenderer implements fyne.Widget.
func (sc *StarCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &starCanvasRenderer{canvas: sc}
}

type starCanvasRenderer struct {
	canvas *StarCanvas
}

func (r *starCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	if r.canvas.onResize != nil {
		r.canvas.onResize(geometry.NewSize(float64(size.Width), float64(size.Height)))
	}
}

func (r *starCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *starCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *starCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *starCanvasRenderer) Destroy() {}
