// Package catalog defines the star-chart dataset model and the sources it
// is loaded from.
package catalog

import (
	"encoding/json"

	"constellation/pkg/geometry"

	"github.com/cockroachdb/errors"
)

// Point is a single artist placed on the chart. Position and size are fixed
// for the lifetime of the dataset that contains it.
type Point struct {
	ID   string
	X, Y float64
	Size float64
}

// Pos returns the point's map coordinates.
func (p Point) Pos() geometry.Point2D {
	return geometry.Point2D{X: p.X, Y: p.Y}
}

type pointJSON struct {
	ID          string     `json:"id"`
	Coordinates [2]float64 `json:"coordinates"`
	Size        float64    `json:"size"`
}

// MarshalJSON encodes coordinates as a two element array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(pointJSON{ID: p.ID, Coordinates: [2]float64{p.X, p.Y}, Size: p.Size})
}

// UnmarshalJSON decodes the {id, coordinates: [x, y], size} form.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string    `json:"id"`
		Coordinates []float64 `json:"coordinates"`
		Size        *float64  `json:"size"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Coordinates) != 2 {
		return errors.Newf("artist %q: expected 2 coordinates, got %d", raw.ID, len(raw.Coordinates))
	}
	p.ID = raw.ID
	p.X, p.Y = raw.Coordinates[0], raw.Coordinates[1]
	p.Size = 1
	if raw.Size != nil {
		p.Size = *raw.Size
	}
	return nil
}

// Group is a named cluster of points.
type Group struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Color   string  `json:"color,omitempty"`
	Artists []Point `json:"artists"`
}

// Dataset is the complete scene for one navigation level.
type Dataset struct {
	Data []Group `json:"data"`
}

// Empty is the scene shown before the first load completes or after a
// load fails.
var Empty = &Dataset{}

// Decode parses a dataset document.
func Decode(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrap(err, "decode dataset")
	}
	return &ds, nil
}

// Len returns the total number of points.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, g := range d.Data {
		n += len(g.Artists)
	}
	return n
}

// Positions returns the map coordinates of every point in order.
func (d *Dataset) Positions() []geometry.Point2D {
	if d == nil {
		return nil
	}
	pts := make([]geometry.Point2D, 0, d.Len())
	for _, g := range d.Data {
		for _, p := range g.Artists {
			pts = append(pts, p.Pos())
		}
	}
	return pts
}

// Group returns the group with the given id.
func (d *Dataset) Group(id string) (*Group, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Data {
		if d.Data[i].ID == id {
			return &d.Data[i], true
		}
	}
	return nil, false
}

// Find returns the point with the given id and the group that holds it.
func (d *Dataset) Find(pointID string) (*Point, *Group, bool) {
	if d == nil {
		return nil, nil, false
	}
	for gi := range d.Data {
		g := &d.Data[gi]
		for pi := range g.Artists {
			if g.Artists[pi].ID == pointID {
				return &g.Artists[pi], g, true
			}
		}
	}
	return nil, nil, false
}
