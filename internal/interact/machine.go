// Package interact is the pointer interaction state machine of the star
// chart. It turns pointer events into viewport, highlight, panel and popup
// changes, and into commands (navigate, play, stop) for the rest of the
// application. It is not safe for concurrent use; callers serialise events.
package interact

import (
	"constellation/internal/catalog"
	"constellation/internal/hittest"
	"constellation/internal/viewport"
	"constellation/pkg/geometry"

	"go.uber.org/zap"
)

// DragSlop is how far, in pixels, the pointer may move between down and up
// and still count as a click.
const DragSlop = 3.0

// Options configures a Machine.
type Options struct {
	// MaxOffset bounds each pan axis when ClampOffset is set.
	MaxOffset   float64
	ClampOffset bool
	// HitRadius is the pick radius in pixels.
	HitRadius float64
	// Bias is the vertical distance from the pointer coordinate origin to
	// the top of the chart surface.
	Bias float64
	// Audio enables Play and Stop commands.
	Audio  bool
	Logger *zap.SugaredLogger
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		MaxOffset:   viewport.DefaultMaxOffset,
		ClampOffset: true,
		HitRadius:   hittest.DefaultThreshold,
		Audio:       true,
	}
}

// CommandKind identifies a Command.
type CommandKind uint8

const (
	// Navigate enters the sublevel of GroupID.
	Navigate CommandKind = iota
	// Play starts the top track of PointID.
	Play
	// Stop silences playback.
	Stop
)

// Command is a request for work outside the chart.
type Command struct {
	Kind    CommandKind
	GroupID string
	PointID string
}

// Popup is the profile card anchored to a point, kept in map coordinates
// so it follows pan and zoom.
type Popup struct {
	Visible bool
	PointID string
	GroupID string
	Map     geometry.Point2D
}

// Panel is the side panel listing a group's leading and trailing members.
type Panel struct {
	Visible bool
	GroupID string
	Title   string
	Members []catalog.Point
}

// Snapshot is a copy of the machine's observable state.
type Snapshot struct {
	Level     Level
	Mode      Mode
	View      viewport.State
	Highlight string
	Frozen    bool
	Popup     Popup
	Panel     Panel
	// Hover is the name of the group under the pointer at the top level.
	Hover string
}

// anchor is where a drag started. pan and view are the pointer position
// and viewport the offset is measured from; a zoom mid-drag moves them.
type anchor struct {
	screen geometry.Point2D
	pan    geometry.Point2D
	view   viewport.State
}

// Machine holds interaction state for one chart.
type Machine struct {
	opts Options
	log  *zap.SugaredLogger

	level   Level
	mode    Mode
	view    viewport.State
	size    geometry.Size
	dataset *catalog.Dataset

	anchor  anchor
	dragged bool

	highlight string
	frozen    bool
	popup     Popup
	panel     Panel
	hover     string
	playing   string

	// per-event scratch
	pos  geometry.Point2D
	hit  hittest.Hit
	cmds []Command
}

// New creates a machine at the top level with the default viewport.
func New(opts Options) *Machine {
	if opts.HitRadius <= 0 {
		opts.HitRadius = hittest.DefaultThreshold
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Machine{
		opts:    opts,
		log:     log,
		view:    viewport.Default(),
		dataset: catalog.Empty,
	}
}

// Reset enters level with a fresh viewport and no highlight, panel, popup
// or freeze. Playback bookkeeping is cleared; stopping the sink is the
// caller's job.
func (m *Machine) Reset(level Level) {
	m.level = level
	m.mode = Idle
	m.view = viewport.Default()
	m.dragged = false
	m.highlight = ""
	m.frozen = false
	m.popup = Popup{}
	m.panel = Panel{}
	m.hover = ""
	m.playing = ""
}

// SetDataset replaces the scene used for hit testing.
func (m *Machine) SetDataset(ds *catalog.Dataset) {
	if ds == nil {
		ds = catalog.Empty
	}
	m.dataset = ds
}

// Dataset returns the scene used for hit testing.
func (m *Machine) Dataset() *catalog.Dataset {
	return m.dataset
}

// SetSize records the chart surface size. It is the resize observer
// callback of the rendering surface.
func (m *Machine) SetSize(size geometry.Size) {
	m.size = size
}

// Transform returns the map to pointer-space transform.
func (m *Machine) Transform() viewport.Transform {
	return viewport.NewTransform(m.view, m.size, m.opts.Bias)
}

// Snapshot copies the observable state.
func (m *Machine) Snapshot() Snapshot {
	p := m.panel
	p.Members = append([]catalog.Point(nil), m.panel.Members...)
	return Snapshot{
		Level:     m.level,
		Mode:      m.mode,
		View:      m.view,
		Highlight: m.highlight,
		Frozen:    m.frozen,
		Popup:     m.popup,
		Panel:     p,
		Hover:     m.hover,
	}
}

// PopupAnchor returns the popup's current position in pointer space.
func (m *Machine) PopupAnchor() (geometry.Point2D, bool) {
	if !m.popup.Visible {
		return geometry.Point2D{}, false
	}
	return m.Transform().ToScreen(m.popup.Map), true
}

// ZoomIn multiplies zoom by the zoom step unless already at the maximum.
// It reports whether the viewport changed.
func (m *Machine) ZoomIn() bool {
	return m.zoomTo(m.view.ZoomIn())
}

// ZoomOut divides zoom by the zoom step unless already at the minimum.
// It reports whether the viewport changed.
func (m *Machine) ZoomOut() bool {
	return m.zoomTo(m.view.ZoomOut())
}

func (m *Machine) zoomTo(v viewport.State) bool {
	if v == m.view {
		return false
	}
	m.view = v
	if m.mode == Dragging {
		m.anchor.pan, m.anchor.view = m.pos, v
	}
	return true
}

// PointerDown handles a button press at pos.
func (m *Machine) PointerDown(pos geometry.Point2D) []Command {
	return m.handle(PointerDown, pos)
}

// PointerMove handles pointer movement to pos.
func (m *Machine) PointerMove(pos geometry.Point2D) []Command {
	return m.handle(PointerMove, pos)
}

// PointerUp handles a button release at pos. Releases are delivered even
// when the pointer has left the surface.
func (m *Machine) PointerUp(pos geometry.Point2D) []Command {
	return m.handle(PointerUp, pos)
}

func (m *Machine) handle(ev PointerEvent, pos geometry.Point2D) []Command {
	m.pos = pos
	m.cmds = nil
	st, ok := modeTable[modeKey{m.mode, ev}]
	if !ok {
		return nil
	}
	if st.run != nil {
		st.run(m)
	}
	if st.next != m.mode {
		m.log.Debugw("pointer mode", "from", m.mode, "to", st.next)
	}
	m.mode = st.next
	return m.cmds
}

func (m *Machine) beginDrag() {
	m.anchor = anchor{screen: m.pos, pan: m.pos, view: m.view}
	m.dragged = false
}

func (m *Machine) drag() {
	if m.pos.DistanceSq(m.anchor.screen) > DragSlop*DragSlop {
		m.dragged = true
	}
	delta := m.pos.Sub(m.anchor.pan)
	z := m.anchor.view.Zoom
	if z == 0 {
		z = 1
	}
	v := m.view
	v.OffsetX = m.anchor.view.OffsetX + delta.X/z
	v.OffsetY = m.anchor.view.OffsetY + delta.Y/z
	if m.opts.ClampOffset {
		v = v.ClampOffset(m.opts.MaxOffset)
	}
	m.view = v
}

func (m *Machine) endDrag() {
	if !m.dragged {
		m.gesture(Click)
	}
	m.dragged = false
}

func (m *Machine) hoverMove() {
	m.gesture(Hover)
}

func (m *Machine) gesture(g Gesture) {
	hit, ok := hittest.FindNearest(m.pos, m.dataset, m.Transform(), m.opts.HitRadius)
	m.hit = hit
	key := gestureKey{level: m.level, frozen: m.frozen, gesture: g, hit: ok}
	for _, a := range gestureTable[key] {
		m.apply(a)
	}
}

func (m *Machine) apply(a action) {
	switch a {
	case actHighlight:
		m.highlight = m.hit.Group.ID
	case actUnhighlight:
		m.highlight = ""
	case actShowPanel:
		m.panel = Panel{
			Visible: true,
			GroupID: m.hit.Group.ID,
			Title:   m.hit.Group.Name,
			Members: catalog.PanelSelection(m.hit.Group),
		}
	case actHidePanel:
		m.panel = Panel{}
	case actShowPopup:
		m.popup = Popup{
			Visible: true,
			PointID: m.hit.Point.ID,
			GroupID: m.hit.Group.ID,
			Map:     m.hit.Point.Pos(),
		}
	case actHidePopup:
		m.popup = Popup{}
	case actHover:
		m.hover = m.hit.Group.Name
	case actUnhover:
		m.hover = ""
	case actPlayLead:
		if len(m.hit.Group.Artists) > 0 {
			m.play(m.hit.Group.Artists[0].ID)
		}
	case actPlayPoint:
		m.play(m.hit.Point.ID)
	case actStop:
		if m.opts.Audio && m.playing != "" {
			m.playing = ""
			m.cmds = append(m.cmds, Command{Kind: Stop})
		}
	case actFreeze:
		m.frozen = true
	case actUnfreeze:
		m.frozen = false
	case actNavigate:
		m.log.Debugw("navigate", "cluster", m.hit.Group.ID)
		m.cmds = append(m.cmds, Command{Kind: Navigate, GroupID: m.hit.Group.ID})
	}
}

// play requests playback of pointID unless it is already the current
// request, so continuous hovering over one star issues a single lookup.
func (m *Machine) play(pointID string) {
	if !m.opts.Audio || pointID == m.playing {
		return
	}
	m.playing = pointID
	m.cmds = append(m.cmds, Command{Kind: Play, PointID: pointID})
}

// PlaybackEnded clears the current playback request, for example when the
// catalog had no track to play.
func (m *Machine) PlaybackEnded(pointID string) {
	if m.playing == pointID {
		m.playing = ""
	}
}
