package panels

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"constellation/internal/app"
	"constellation/internal/catalog"
	"constellation/internal/interact"
	"constellation/internal/profile"
	"constellation/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCards struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeCards) Card(_ context.Context, id string) profile.Card {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	if id == "missing" {
		return profile.Missing(id)
	}
	return profile.Card{UserID: id, Handle: "@" + id, Link: profile.SiteURL + "/" + id, Found: true}
}

func (f *fakeCards) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func members(n int) []catalog.Point {
	pts := make([]catalog.Point, n)
	for i := range pts {
		pts[i] = catalog.Point{ID: fmt.Sprintf("u%d", i)}
	}
	return pts
}

func rowLink(t *testing.T, box *fyne.Container, i int) *widget.Hyperlink {
	t.Helper()
	row, ok := box.Objects[i].(*fyne.Container)
	require.True(t, ok)
	link, ok := row.Objects[1].(*widget.Hyperlink)
	require.True(t, ok)
	return link
}

func TestSidePanelFillsLeaderboard(t *testing.T) {
	test.NewTempApp(t)
	cards := &fakeCards{}
	sp := NewSidePanel(context.Background(), cards)
	assert.False(t, sp.Container().Visible())

	group := &catalog.Group{ID: "g1", Name: "Night Owls", Artists: members(9)}
	sp.Update(interact.Panel{Visible: true, GroupID: "g1", Title: "Night Owls", Members: catalog.PanelSelection(group)})

	assert.True(t, sp.Container().Visible())
	assert.Equal(t, "Night Owls", sp.title.Text)
	require.Len(t, sp.top.Objects, catalog.PanelTop)
	require.Len(t, sp.fresh.Objects, catalog.PanelTail)

	last := rowLink(t, sp.fresh, 1)
	assert.Eventually(t, func() bool { return cards.count() == 7 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return last.Text == "@u8" }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "g1", sp.GroupID())
}

func TestSidePanelKeepsRowsForSameGroup(t *testing.T) {
	test.NewTempApp(t)
	cards := &fakeCards{}
	sp := NewSidePanel(context.Background(), cards)
	p := interact.Panel{Visible: true, GroupID: "g1", Members: members(3)}

	sp.Update(p)
	first := sp.top.Objects[0]
	sp.Update(p)
	assert.Same(t, first, sp.top.Objects[0])

	sp.Update(interact.Panel{})
	assert.False(t, sp.Container().Visible())
	assert.Empty(t, sp.GroupID())
}

func TestPopupPosition(t *testing.T) {
	assert.Equal(t, fyne.NewPos(25, 60), PopupPosition(geometry.NewPoint2D(200, 150), 90))
	assert.Equal(t, fyne.NewPos(-175, 0), PopupPosition(geometry.Point2D{}, 0))
}

func TestPopupCardShowsProfile(t *testing.T) {
	test.NewTempApp(t)
	pc := NewPopupCard(context.Background(), &fakeCards{}, nil)

	pc.Update(interact.Popup{Visible: true, PointID: "u4"}, fyne.NewPos(10, 20))
	assert.True(t, pc.Container().Visible())
	assert.Equal(t, fyne.NewPos(10, 20), pc.Container().Position())
	assert.Eventually(t, func() bool { return pc.handle.Text == "@u4" }, time.Second, 5*time.Millisecond)
	require.NotNil(t, pc.handle.URL)
	assert.Equal(t, "https://audius.co/u4", pc.handle.URL.String())

	pc.Update(interact.Popup{}, fyne.Position{})
	assert.False(t, pc.Container().Visible())
	assert.Empty(t, pc.PointID())
}

func TestPopupCardMissingProfile(t *testing.T) {
	test.NewTempApp(t)
	pc := NewPopupCard(context.Background(), &fakeCards{}, nil)
	pc.Update(interact.Popup{Visible: true, PointID: "missing"}, fyne.Position{})
	assert.Eventually(t, func() bool { return pc.handle.Text == profile.NotFoundHandle }, time.Second, 5*time.Millisecond)
}

func TestInfoBar(t *testing.T) {
	test.NewTempApp(t)
	ib := NewInfoBar(true)
	var backs int
	var queries []string
	ib.OnBack(func() { backs++ })
	ib.OnSearch(func(q string) { queries = append(queries, q) })

	top := app.View{Snapshot: interact.Snapshot{Level: interact.TopLevel, Hover: "Night Owls"}}
	ib.Update(top)
	assert.False(t, ib.back.Visible())
	assert.Equal(t, "Night Owls", ib.info.Text)

	sub := app.View{Snapshot: interact.Snapshot{Level: interact.SubLevel}, GroupName: "Drifters", Status: "Searching..."}
	ib.Update(sub)
	assert.True(t, ib.back.Visible())
	assert.Equal(t, "Drifters", ib.info.Text)
	assert.Equal(t, "Searching...", ib.status.Text)

	test.Tap(ib.back)
	assert.Equal(t, 1, backs)

	ib.search.SetText("kaytranada")
	ib.search.OnSubmitted(ib.search.Text)
	assert.Equal(t, []string{"kaytranada"}, queries)
}
