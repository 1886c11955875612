package mainwindow

import (
	"os"
	"path/filepath"
	"testing"

	"constellation/internal/app"
	"constellation/internal/catalog"
	"constellation/internal/config"
	"constellation/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHeaderLayoutFixesHeight(t *testing.T) {
	test.NewTempApp(t)
	l := &headerLayout{height: 90}
	obj := widget.NewLabel("title")
	l.Layout([]fyne.CanvasObject{obj}, fyne.NewSize(400, 300))
	assert.Equal(t, fyne.NewSize(400, 90), obj.Size())
	assert.Equal(t, float32(90), l.MinSize([]fyne.CanvasObject{obj}).Height)
}

func newWindow(t *testing.T) (*MainWindow, *app.State) {
	t.Helper()
	dir := t.TempDir()
	doc := `{"data":[{"id":"g1","name":"Night Owls","artists":[{"id":"u1","coordinates":[0,0],"size":1}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cluster_0.json"), []byte(doc), 0o644))

	cfg := config.Default()
	log := zaptest.NewLogger(t).Sugar()
	state := app.NewState(cfg, &catalog.DirSource{Dir: dir}, nil, nil, log)
	t.Cleanup(func() { state.Close() })

	a := test.NewTempApp(t)
	p := prefs.LoadFrom(filepath.Join(t.TempDir(), "preferences.json"))
	mw := New(a, state, cfg, p, log)
	return mw, state
}

func TestWindowFollowsState(t *testing.T) {
	mw, state := newWindow(t)
	state.Start()
	state.Wait()

	assert.Equal(t, 1, state.View().Dataset.Len())
	assert.False(t, mw.zoomInBtn.Disabled())
	assert.False(t, mw.zoomOutBtn.Disabled())

	for state.ZoomIn() {
	}
	assert.True(t, mw.zoomInBtn.Disabled())
	assert.False(t, mw.zoomOutBtn.Disabled())
	assert.Equal(t, appTitle, mw.Title())
}

func TestSavePreferences(t *testing.T) {
	mw, _ := newWindow(t)
	mw.prefs.SetString(prefs.KeyLastSearch, "deadmau5")
	mw.SavePreferences()

	q := prefs.LoadFrom(mw.prefs.Path())
	assert.Equal(t, "deadmau5", q.String(prefs.KeyLastSearch, ""))
	assert.False(t, mw.prefs.Changed())
}
