package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"constellation/pkg/geometry"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `{
  "data": [
    {"id": "cluster_3", "name": "Lo-fi", "color": "#37BC9B",
     "artists": [{"id": "a1", "coordinates": [1.5, -2], "size": 1.2},
                 {"id": "a2", "coordinates": [10, 20], "size": 0.8}]},
    {"id": "cluster_7", "name": "Drill",
     "artists": [{"id": "b1", "coordinates": [-5, 5]}]}
  ]
}`

func TestDecode(t *testing.T) {
	ds, err := Decode([]byte(sampleDataset))
	require.NoError(t, err)

	require.Len(t, ds.Data, 2)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, Point{ID: "a1", X: 1.5, Y: -2, Size: 1.2}, ds.Data[0].Artists[0])
	assert.Equal(t, "#37BC9B", ds.Data[0].Color)
	assert.Equal(t, "", ds.Data[1].Color)
	assert.Equal(t, 1.0, ds.Data[1].Artists[0].Size, "missing size defaults to 1")
}

func TestDecodeRejectsBadCoordinates(t *testing.T) {
	_, err := Decode([]byte(`{"data":[{"id":"c","artists":[{"id":"x","coordinates":[1]}]}]}`))
	assert.Error(t, err)
}

func TestPointJSONShape(t *testing.T) {
	out, err := json.Marshal(Point{ID: "p", X: 1, Y: 2, Size: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p","coordinates":[1,2],"size":3}`, string(out))
}

func TestDatasetFind(t *testing.T) {
	ds, err := Decode([]byte(sampleDataset))
	require.NoError(t, err)

	p, g, ok := ds.Find("b1")
	require.True(t, ok)
	assert.Equal(t, "b1", p.ID)
	assert.Equal(t, "cluster_7", g.ID)

	_, _, ok = ds.Find("zzz")
	assert.False(t, ok)

	grp, ok := ds.Group("cluster_3")
	require.True(t, ok)
	assert.Equal(t, "Lo-fi", grp.Name)

	var nilDS *Dataset
	assert.Equal(t, 0, nilDS.Len())
	assert.Nil(t, nilDS.Positions())
}

func TestDatasetPositions(t *testing.T) {
	ds, err := Decode([]byte(sampleDataset))
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point2D{{X: 1.5, Y: -2}, {X: 10, Y: 20}, {X: -5, Y: 5}}, ds.Positions())
}

func groupOf(n int) *Group {
	g := &Group{ID: "g"}
	for i := 0; i < n; i++ {
		g.Artists = append(g.Artists, Point{ID: fmt.Sprintf("p%d", i)})
	}
	return g
}

func ids(pts []Point) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = p.ID
	}
	return out
}

func TestPanelSelection(t *testing.T) {
	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{}},
		{3, []string{"p0", "p1", "p2"}},
		{6, []string{"p0", "p1", "p2", "p3", "p4", "p5"}},
		{7, []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6"}},
		{12, []string{"p0", "p1", "p2", "p3", "p4", "p10", "p11"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(PanelSelection(groupOf(tt.n))))
		})
	}
	assert.Nil(t, PanelSelection(nil))
}

func TestSplitPanel(t *testing.T) {
	top, tail := SplitPanel(PanelSelection(groupOf(12)))
	assert.Equal(t, []string{"p0", "p1", "p2", "p3", "p4"}, ids(top))
	assert.Equal(t, []string{"p10", "p11"}, ids(tail))

	top, tail = SplitPanel(PanelSelection(groupOf(4)))
	assert.Len(t, top, 4)
	assert.Empty(t, tail)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cluster_3.json":
			_, _ = w.Write([]byte(sampleDataset))
		case "/broken.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", time.Second)
	ds, err := LoadDataset(context.Background(), src, "cluster_3")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	_, err = LoadDataset(context.Background(), src, "cluster_99")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = src.Fetch(context.Background(), "broken")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestHTTPSourceSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleDataset))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)
	src.MaxSize = int64(len(sampleDataset))
	data, err := src.Fetch(context.Background(), "exact")
	require.NoError(t, err)
	assert.Len(t, data, len(sampleDataset))

	src.MaxSize = 16
	_, err = LoadDataset(context.Background(), src, "cluster_3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cluster_3.json"), []byte(sampleDataset), 0o644))

	src := &DirSource{Dir: dir}
	ds, err := LoadDataset(context.Background(), src, "cluster_3")
	require.NoError(t, err)
	assert.Len(t, ds.Data, 2)

	_, err = src.Fetch(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, filepath.Join(dir, "passwd.json"), src.Path("../../etc/passwd"))
}

func TestLookupResolve(t *testing.T) {
	var l Lookup
	require.NoError(t, json.Unmarshal([]byte(`{"u1": 1, "u2": "cluster_42", "u3": 9, "u4": "17"}`), &l))

	root, err := Decode([]byte(sampleDataset))
	require.NoError(t, err)

	got, ok := l.Resolve("u1", root)
	assert.True(t, ok)
	assert.Equal(t, "cluster_7", got)

	got, ok = l.Resolve("u2", root)
	assert.True(t, ok)
	assert.Equal(t, "cluster_42", got)

	got, ok = l.Resolve("u4", nil)
	assert.True(t, ok, "quoted numbers are ids")
	assert.Equal(t, "17", got)

	_, ok = l.Resolve("u3", root)
	assert.False(t, ok, "index out of range")

	_, ok = l.Resolve("u1", nil)
	assert.False(t, ok, "index without root dataset")

	_, ok = l.Resolve("nobody", root)
	assert.False(t, ok)
}

func TestLookupRejectsFloats(t *testing.T) {
	var l Lookup
	assert.Error(t, json.Unmarshal([]byte(`{"u1": 1.5}`), &l))
}
