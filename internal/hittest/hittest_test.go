package hittest

import (
	"testing"

	"constellation/internal/catalog"
	"constellation/internal/viewport"
	"constellation/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identity-ish transform: map (x,y) lands on screen (400+x, 300-y).
var tf = viewport.NewTransform(viewport.Default(), geometry.NewSize(800, 600), 0)

func dataset() *catalog.Dataset {
	return &catalog.Dataset{Data: []catalog.Group{
		{ID: "g1", Artists: []catalog.Point{{ID: "far", X: 100, Y: 100}, {ID: "a", X: 10, Y: 0}}},
		{ID: "g2", Artists: []catalog.Point{{ID: "b", X: 0, Y: 0}}},
	}}
}

func TestExactPositionFound(t *testing.T) {
	hit, ok := FindNearest(geometry.NewPoint2D(500, 200), dataset(), tf, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "far", hit.Point.ID)
	assert.Equal(t, "g1", hit.Group.ID)
}

func TestThresholdIsExclusive(t *testing.T) {
	ds := &catalog.Dataset{Data: []catalog.Group{{ID: "g", Artists: []catalog.Point{{ID: "p"}}}}}

	_, ok := FindNearest(geometry.NewPoint2D(420, 300), ds, tf, 20)
	assert.False(t, ok, "distance == threshold is excluded")

	_, ok = FindNearest(geometry.NewPoint2D(419.9, 300), ds, tf, 20)
	assert.True(t, ok)
}

func TestFirstMatchWinsOverNearest(t *testing.T) {
	// Query at map (1,0): "b" is 1px away, "a" is 9px away but comes first.
	hit, ok := FindNearest(geometry.NewPoint2D(401, 300), dataset(), tf, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "a", hit.Point.ID)
	assert.Equal(t, "g1", hit.Group.ID)
}

func TestMissAndEmpty(t *testing.T) {
	_, ok := FindNearest(geometry.NewPoint2D(0, 0), dataset(), tf, DefaultThreshold)
	assert.False(t, ok)

	_, ok = FindNearest(geometry.NewPoint2D(400, 300), nil, tf, DefaultThreshold)
	assert.False(t, ok)

	_, ok = FindNearest(geometry.NewPoint2D(400, 300), catalog.Empty, tf, DefaultThreshold)
	assert.False(t, ok)
}

func TestUsesZoomAndBias(t *testing.T) {
	z := viewport.NewTransform(viewport.State{OffsetX: -10, Zoom: 4}, geometry.NewSize(800, 600), 90)
	// "a" at map (10,0) -> screen (400 + 0*4, 390).
	hit, ok := FindNearest(geometry.NewPoint2D(400, 390), dataset(), z, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "a", hit.Point.ID)
}
