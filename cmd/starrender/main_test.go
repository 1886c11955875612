package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"constellation/internal/catalog"
	"constellation/internal/viewport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("1200x800")
	require.NoError(t, err)
	assert.Equal(t, 1200, w)
	assert.Equal(t, 800, h)

	w, h, err = parseSize(" 64X48 ")
	require.NoError(t, err)
	assert.Equal(t, []int{64, 48}, []int{w, h})

	for _, bad := range []string{"", "1200", "x800", "0x10", "-5x5", "axb", "99999x10"} {
		_, _, err := parseSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseOffset(t *testing.T) {
	x, y, err := parseOffset("40,-25.5")
	require.NoError(t, err)
	assert.Equal(t, 40.0, x)
	assert.Equal(t, -25.5, y)

	for _, bad := range []string{"", "1", "a,2", "1,b"} {
		_, _, err := parseOffset(bad)
		assert.Error(t, err, bad)
	}
}

func TestDrawCountsVisibleStars(t *testing.T) {
	ds := &catalog.Dataset{Data: []catalog.Group{{
		ID: "g", Name: "Group",
		Artists: []catalog.Point{
			{ID: "in", X: 0, Y: 0, Size: 1},
			{ID: "out", X: 5000, Y: 0, Size: 1},
		},
	}}}
	img, drawn := draw(ds, image.Rect(0, 0, 200, 100), viewport.Default(), options{cluster: "cluster_0"})
	assert.Equal(t, 1, drawn)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
}

func TestHighlightGroup(t *testing.T) {
	ds := &catalog.Dataset{Data: []catalog.Group{
		{ID: "3", Artists: []catalog.Point{{ID: "u1"}}},
		{ID: "4", Artists: []catalog.Point{{ID: "u2"}}},
	}}
	tests := []struct{ in, want string }{
		{"", ""},
		{"4", "4"},
		{"u1", "3"},
		{"nobody", "nobody"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, highlightGroup(ds, tt.in), tt.in)
	}
}

func TestRunWritesPNG(t *testing.T) {
	dir := t.TempDir()
	doc := `{"data":[{"id":"g1","name":"Night Owls","color":"#ff8800","artists":[{"id":"u1","coordinates":[0,0],"size":1}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cluster_0.json"), []byte(doc), 0o644))
	out := filepath.Join(dir, "chart.png")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := run(context.Background(), options{
		dir: dir, out: out, size: "160x120", zoom: 1, offset: "0,0",
	})
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 160, cfg.Width)
	assert.Equal(t, 120, cfg.Height)
}

func TestRunMissingCluster(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	err := run(context.Background(), options{
		dir: t.TempDir(), cluster: "nope", out: filepath.Join(t.TempDir(), "x.png"), size: "10x10", zoom: 1, offset: "0,0",
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRunFit(t *testing.T) {
	dir := t.TempDir()
	doc := `{"data":[{"id":"g1","artists":[{"id":"a","coordinates":[900,900]},{"id":"b","coordinates":[1100,1000]}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cluster_0.json"), []byte(doc), 0o644))
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := run(context.Background(), options{
		dir: dir, out: filepath.Join(dir, "fit.png"), size: "300x200", zoom: 1, offset: "0,0", fit: true,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "fit.png"))
}
