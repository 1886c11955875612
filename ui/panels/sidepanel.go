package panels

import (
	"context"
	"fmt"
	"sync"

	"constellation/internal/catalog"
	"constellation/internal/interact"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// SidePanelWidth is the width of the leaderboard column.
const SidePanelWidth = 240

// SidePanel lists the highlighted group's leading and trailing members.
type SidePanel struct {
	cards CardSource
	ctx   context.Context

	container *fyne.Container
	title     *widget.Label
	top       *fyne.Container
	fresh     *fyne.Container

	mu      sync.Mutex
	groupID string
	gen     uint64
}

// NewSidePanel creates a hidden side panel.
func NewSidePanel(ctx context.Context, cards CardSource) *SidePanel {
	sp := &SidePanel{cards: cards, ctx: ctx}

	sp.title = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	sp.title.Wrapping = fyne.TextWrapWord
	sp.top = container.NewVBox()
	sp.fresh = container.NewVBox()

	bg := fynecanvas.NewRectangle(theme.OverlayBackgroundColor())
	content := container.NewVBox(
		sp.title,
		widget.NewLabelWithStyle("Top Artists", fyne.TextAlignLeading, fyne.TextStyle{Italic: true}),
		sp.top,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Fresh Faces", fyne.TextAlignLeading, fyne.TextStyle{Italic: true}),
		sp.fresh,
	)
	sp.container = container.NewStack(bg, container.NewPadded(content))
	sp.container.Hide()
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Update shows, hides or refills the panel to match p. Rows are only
// rebuilt when the group changes.
func (sp *SidePanel) Update(p interact.Panel) {
	sp.mu.Lock()
	if !p.Visible {
		sp.groupID = ""
		sp.gen++
		sp.mu.Unlock()
		sp.container.Hide()
		return
	}
	if p.GroupID == sp.groupID {
		sp.mu.Unlock()
		sp.container.Show()
		return
	}
	sp.groupID = p.GroupID
	sp.gen++
	gen := sp.gen
	sp.mu.Unlock()

	sp.title.SetText(p.Title)
	top, tail := catalog.SplitPanel(p.Members)
	sp.fill(sp.top, top, 1, gen)
	sp.fill(sp.fresh, tail, len(top)+1, gen)
	sp.container.Show()
}

// GroupID returns the group shown, empty when hidden.
func (sp *SidePanel) GroupID() string {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.groupID
}

func (sp *SidePanel) fill(box *fyne.Container, members []catalog.Point, rank int, gen uint64) {
	box.RemoveAll()
	for i, m := range members {
		link := widget.NewHyperlink(m.ID, nil)
		box.Add(container.NewHBox(widget.NewLabel(fmt.Sprintf("%d.", rank+i)), link))
		go sp.resolve(link, m.ID, gen)
	}
	box.Refresh()
}

// resolve replaces a row's placeholder with the member's profile handle,
// unless the panel has moved on to another group meanwhile.
func (sp *SidePanel) resolve(link *widget.Hyperlink, userID string, gen uint64) {
	card := sp.cards.Card(sp.ctx, userID)
	sp.mu.Lock()
	stale := gen != sp.gen
	sp.mu.Unlock()
	if stale {
		return
	}
	link.SetURL(parseLink(card.Link))
	link.SetText(card.Handle)
}
