package interact

// Level is the navigation depth the chart is showing.
type Level uint8

const (
	// TopLevel shows one star per cluster member across all clusters.
	TopLevel Level = iota
	// SubLevel shows the members of a single cluster.
	SubLevel
)

func (l Level) String() string {
	if l == SubLevel {
		return "sub"
	}
	return "top"
}

// Mode is the pointer mode.
type Mode uint8

const (
	Idle Mode = iota
	Dragging
)

func (m Mode) String() string {
	if m == Dragging {
		return "dragging"
	}
	return "idle"
}

// PointerEvent is a raw pointer event fed to the mode table.
type PointerEvent uint8

const (
	PointerDown PointerEvent = iota
	PointerMove
	PointerUp
)

// Gesture is a pointer event after mode resolution: an idle move is a
// hover, a pointer-up that did not drag is a click.
type Gesture uint8

const (
	Hover Gesture = iota
	Click
)

// step is one row of the mode table.
type step struct {
	next Mode
	run  func(m *Machine)
}

type modeKey struct {
	mode  Mode
	event PointerEvent
}

// modeTable drives drag versus hover. Rows not listed leave the mode
// unchanged and do nothing.
var modeTable = map[modeKey]step{
	{Idle, PointerDown}:     {Dragging, (*Machine).beginDrag},
	{Idle, PointerMove}:     {Idle, (*Machine).hoverMove},
	{Idle, PointerUp}:       {Idle, nil},
	{Dragging, PointerDown}: {Dragging, nil},
	{Dragging, PointerMove}: {Dragging, (*Machine).drag},
	{Dragging, PointerUp}:   {Idle, (*Machine).endDrag},
}

// action is a single side effect of a gesture.
type action uint8

const (
	actHighlight action = iota
	actUnhighlight
	actShowPanel
	actHidePanel
	actShowPopup
	actHidePopup
	actHover
	actUnhover
	actPlayLead
	actPlayPoint
	actStop
	actFreeze
	actUnfreeze
	actNavigate
)

type gestureKey struct {
	level   Level
	frozen  bool
	gesture Gesture
	hit     bool
}

var (
	hoverHitTop  = []action{actHighlight, actShowPanel, actShowPopup, actHover, actPlayLead}
	hoverMissTop = []action{actUnhighlight, actHidePanel, actHidePopup, actUnhover, actStop}
	hoverHitSub  = []action{actHighlight, actShowPanel, actShowPopup, actPlayPoint}
	hoverMissSub = []action{actUnhighlight, actHidePanel, actHidePopup, actStop}
	pin          = []action{actFreeze, actHighlight, actShowPanel, actShowPopup, actPlayPoint}
	release      = []action{actUnfreeze, actUnhighlight, actHidePanel, actHidePopup, actStop}
	navigate     = []action{actNavigate}
)

// gestureTable is the full level x frozen x gesture x hit matrix. Frozen is
// never set at the top level; those rows mirror the unfrozen ones.
var gestureTable = map[gestureKey][]action{
	{TopLevel, false, Hover, true}:  hoverHitTop,
	{TopLevel, false, Hover, false}: hoverMissTop,
	{TopLevel, false, Click, true}:  navigate,
	{TopLevel, false, Click, false}: nil,
	{TopLevel, true, Hover, true}:   hoverHitTop,
	{TopLevel, true, Hover, false}:  hoverMissTop,
	{TopLevel, true, Click, true}:   navigate,
	{TopLevel, true, Click, false}:  nil,

	{SubLevel, false, Hover, true}:  hoverHitSub,
	{SubLevel, false, Hover, false}: hoverMissSub,
	{SubLevel, false, Click, true}:  pin,
	{SubLevel, false, Click, false}: release,
	{SubLevel, true, Hover, true}:   nil,
	{SubLevel, true, Hover, false}:  nil,
	{SubLevel, true, Click, true}:   pin,
	{SubLevel, true, Click, false}:  release,
}
