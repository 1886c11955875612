package panels

import (
	"context"
	"sync"

	"constellation/internal/interact"
	"constellation/internal/logger"
	"constellation/internal/profile"
	"constellation/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// Popup card geometry. The card sits to the left of its star.
const (
	PopupOffsetX = 175
	PopupWidth   = 170
	PopupHeight  = 230
	pictureSize  = 96
)

// PopupPosition places the card for a star at anchor (window coordinates)
// inside an overlay that starts bias units below the window top.
func PopupPosition(anchor geometry.Point2D, bias float32) fyne.Position {
	return fyne.NewPos(float32(anchor.X)-PopupOffsetX, float32(anchor.Y)-bias)
}

// PopupCard previews the profile of the star under the pointer.
type PopupCard struct {
	cards CardSource
	ctx   context.Context
	log   *zap.SugaredLogger

	container *fyne.Container
	picture   *fynecanvas.Image
	handle    *widget.Hyperlink
	bio       *widget.Label

	mu      sync.Mutex
	pointID string
}

// NewPopupCard creates a hidden popup card.
func NewPopupCard(ctx context.Context, cards CardSource, log *zap.SugaredLogger) *PopupCard {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	pc := &PopupCard{cards: cards, ctx: ctx, log: log}

	pc.picture = fynecanvas.NewImageFromImage(nil)
	pc.picture.FillMode = fynecanvas.ImageFillContain
	pc.picture.SetMinSize(fyne.NewSize(pictureSize, pictureSize))
	pc.handle = widget.NewHyperlink("", nil)
	pc.bio = widget.NewLabel("")
	pc.bio.Wrapping = fyne.TextWrapWord

	bg := fynecanvas.NewRectangle(theme.OverlayBackgroundColor())
	bg.CornerRadius = 6
	pc.container = container.NewStack(bg, container.NewPadded(
		container.NewVBox(pc.picture, pc.handle, pc.bio),
	))
	pc.container.Resize(fyne.NewSize(PopupWidth, PopupHeight))
	pc.container.Hide()
	return pc
}

// Container returns the card container. It must be placed in a container
// without layout so Update can position it.
func (pc *PopupCard) Container() fyne.CanvasObject {
	return pc.container
}

// PointID returns the point the card shows, empty when hidden.
func (pc *PopupCard) PointID() string {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.pointID
}

// Update shows the card for p at pos, or hides it. The profile is fetched
// in the background when the point changes.
func (pc *PopupCard) Update(p interact.Popup, pos fyne.Position) {
	if !p.Visible {
		pc.mu.Lock()
		pc.pointID = ""
		pc.mu.Unlock()
		pc.container.Hide()
		return
	}
	pc.container.Move(pos)

	pc.mu.Lock()
	same := p.PointID == pc.pointID
	pc.pointID = p.PointID
	pc.mu.Unlock()
	if !same {
		pc.show(profile.Card{UserID: p.PointID, Handle: "Loading..."})
		go pc.resolve(p.PointID)
	}
	pc.container.Show()
}

func (pc *PopupCard) resolve(pointID string) {
	card := pc.cards.Card(pc.ctx, pointID)
	if pc.PointID() != pointID {
		return
	}
	pc.show(card)
	if card.Picture == "" {
		return
	}
	img, err := loadPicture(card.Picture)
	if err != nil {
		pc.log.Debugw("profile picture", logger.FieldUser, pointID, logger.FieldError, err)
		return
	}
	if pc.PointID() != pointID {
		return
	}
	pc.picture.Image = img
	pc.picture.Refresh()
}

func (pc *PopupCard) show(c profile.Card) {
	pc.picture.Image = nil
	pc.picture.Refresh()
	pc.handle.SetURL(parseLink(c.Link))
	pc.handle.SetText(c.Handle)
	pc.bio.SetText(c.Bio)
}
