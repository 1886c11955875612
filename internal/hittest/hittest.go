// Package hittest finds the chart point under a pointer.
package hittest

import (
	"constellation/internal/catalog"
	"constellation/internal/viewport"
	"constellation/pkg/geometry"
)

// DefaultThreshold is the pick radius in screen pixels.
const DefaultThreshold = 20.0

// Hit identifies a point and the group that holds it.
type Hit struct {
	Point *catalog.Point
	Group *catalog.Group
}

// FindNearest returns the first point, in dataset order (groups, then
// points within a group), whose screen position lies strictly within
// threshold pixels of pos. Traversal order decides between several
// candidates, not proximity. The scan is linear in the number of points.
func FindNearest(pos geometry.Point2D, ds *catalog.Dataset, tf viewport.Transform, threshold float64) (Hit, bool) {
	if ds == nil || threshold <= 0 {
		return Hit{}, false
	}
	limit := threshold * threshold
	for gi := range ds.Data {
		g := &ds.Data[gi]
		for pi := range g.Artists {
			p := &g.Artists[pi]
			if tf.ToScreen(p.Pos()).DistanceSq(pos) < limit {
				return Hit{Point: p, Group: g}, true
			}
		}
	}
	return Hit{}, false
}
