// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image/color"

	"constellation/internal/app"
	"constellation/internal/config"
	"constellation/internal/logger"
	"constellation/internal/render"
	"constellation/internal/version"
	"constellation/pkg/colorutil"
	"constellation/ui/canvas"
	"constellation/ui/panels"
	"constellation/ui/prefs"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const (
	appTitle      = "Constellation"
	headerTitle   = "CONSTELLATIONS"
	defaultWidth  = 1280
	defaultHeight = 860
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	cfg   *config.Config
	prefs *prefs.Prefs
	log   *zap.SugaredLogger

	canvas    *canvas.StarCanvas
	sidePanel *panels.SidePanel
	popup     *panels.PopupCard
	infoBar   *panels.InfoBar

	zoomInBtn  *widget.Button
	zoomOutBtn *widget.Button
}

// New creates a new main window showing state.
func New(fyneApp fyne.App, state *app.State, cfg *config.Config, p *prefs.Prefs, log *zap.SugaredLogger) *MainWindow {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		cfg:    cfg,
		prefs:  p,
		log:    log,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.SetPadded(false)
	mw.Resize(fyne.NewSize(
		float32(p.Float(prefs.KeyWindowWidth, defaultWidth)),
		float32(p.Float(prefs.KeyWindowHeight, defaultHeight)),
	))
	mw.SetCloseIntercept(mw.onClose)
	return mw
}

// setupUI creates the main UI layout: a fixed-height header above the
// chart, with the leaderboard and popup laid over the chart.
func (mw *MainWindow) setupUI() {
	bias := float32(mw.cfg.Viewport.HeaderHeight)

	r := render.New(mw.cfg.Viewport.Background)
	mw.canvas = canvas.NewStarCanvas(r, mw.scene)
	mw.canvas.Bias = bias
	mw.canvas.OnPointerDown(mw.state.PointerDown)
	mw.canvas.OnPointerMove(mw.state.PointerMove)
	mw.canvas.OnPointerUp(mw.state.PointerUp)
	mw.canvas.OnZoom(func() { mw.state.ZoomIn() }, func() { mw.state.ZoomOut() })
	mw.canvas.OnResize(mw.state.Resize)

	ctx := mw.state.Context()
	mw.sidePanel = panels.NewSidePanel(ctx, mw.state)
	mw.popup = panels.NewPopupCard(ctx, mw.state, mw.log.Named("popup"))

	mw.infoBar = panels.NewInfoBar(mw.state.SearchEnabled())
	mw.infoBar.OnBack(func() { mw.state.Back() })
	mw.infoBar.OnSearch(func(q string) {
		mw.prefs.SetString(prefs.KeyLastSearch, q)
		mw.state.Search(q)
	})

	panelColumn := fynecanvas.NewRectangle(color.Transparent)
	panelColumn.SetMinSize(fyne.NewSize(panels.SidePanelWidth, 0))
	chart := container.NewStack(
		mw.canvas,
		container.NewWithoutLayout(mw.popup.Container()),
		container.NewBorder(nil, nil, nil, container.NewStack(panelColumn, mw.sidePanel.Container())),
	)

	header := container.New(&headerLayout{height: bias}, container.NewBorder(
		mw.createToolbar(),
		nil, nil, nil,
		mw.infoBar.Container(),
	))

	mw.SetContent(container.NewBorder(header, nil, nil, nil, chart))
}

// createToolbar creates the title row with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	title := fynecanvas.NewText(headerTitle, colorutil.Highlight)
	title.TextSize = 28
	title.TextStyle = fyne.TextStyle{Bold: true}

	mw.zoomOutBtn = widget.NewButtonWithIcon("", theme.ZoomOutIcon(), mw.onZoomOut)
	mw.zoomInBtn = widget.NewButtonWithIcon("", theme.ZoomInIcon(), mw.onZoomIn)
	about := widget.NewButtonWithIcon("", theme.InfoIcon(), mw.onAbout)

	return container.NewBorder(nil, nil,
		container.NewPadded(title),
		container.NewHBox(mw.zoomOutBtn, mw.zoomInBtn, about),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Back to All Clusters", func() { mw.state.Back() }),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)
	mw.SetMainMenu(fyne.NewMainMenu(viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	refresh := func(interface{}) { mw.sync() }
	mw.state.On(app.EventViewChanged, refresh)
	mw.state.On(app.EventDatasetLoaded, refresh)
	mw.state.On(app.EventLevelChanged, func(interface{}) {
		v := mw.state.View()
		if v.CanBack() {
			mw.SetTitle(appTitle + " - " + v.GroupName)
		} else {
			mw.SetTitle(appTitle)
		}
	})
	mw.state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.infoBar.SetStatus(msg)
		}
	})
}

// sync brings every widget in line with the current state.
func (mw *MainWindow) sync() {
	v := mw.state.View()
	mw.canvas.Refresh()
	mw.sidePanel.Update(v.Panel)

	var pos fyne.Position
	if anchor, ok := mw.state.PopupAnchor(); ok {
		pos = panels.PopupPosition(anchor, mw.canvas.Bias)
	}
	mw.popup.Update(v.Popup, pos)
	mw.infoBar.Update(v)

	setEnabled(mw.zoomInBtn, v.View.CanZoomIn())
	setEnabled(mw.zoomOutBtn, v.View.CanZoomOut())
}

// scene is called by the canvas on every frame.
func (mw *MainWindow) scene() render.Scene {
	v := mw.state.View()
	return render.Scene{Dataset: v.Dataset, Highlight: v.Highlight, View: v.View}
}

func (mw *MainWindow) onZoomIn() {
	mw.state.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.state.ZoomOut()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"An interactive star chart of artist clusters.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// SavePreferences stores the window size.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	}
	if err := mw.prefs.SaveIfChanged(); err != nil {
		mw.log.Warnw("save preferences", "path", mw.prefs.Path(), logger.FieldError, err)
	}
}

func (mw *MainWindow) onClose() {
	mw.SavePreferences()
	mw.Close()
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

// headerLayout gives its objects the full width and a fixed height so the
// chart always starts exactly where pointer positions expect it.
type headerLayout struct {
	height float32
}

func (l *headerLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, o := range objects {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(fyne.NewSize(size.Width, l.height))
	}
}

func (l *headerLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var w float32
	for _, o := range objects {
		if m := o.MinSize(); m.Width > w {
			w = m.Width
		}
	}
	return fyne.NewSize(w, l.height)
}

var _ fyne.Layout = (*headerLayout)(nil)
