package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestPointArithmetic(t *testing.T) {
	a := NewPoint2D(3, 4)
	b := NewPoint2D(1, 1)

	assert.Equal(t, Point2D{X: 4, Y: 5}, a.Add(b))
	assert.Equal(t, Point2D{X: 2, Y: 3}, a.Sub(b))
	assert.Equal(t, Point2D{X: 6, Y: 8}, a.Scale(2))
	assert.Equal(t, 25.0, a.DistanceSq(Point2D{}))
	assert.Equal(t, 5.0, a.Distance(Point2D{}))
}

func TestRotateQuarterTurns(t *testing.T) {
	p := NewPoint2D(7, 0)
	for i, want := range []Point2D{{0, 7}, {-7, 0}, {0, -7}, {7, 0}} {
		p = p.Rotate(math.Pi / 2)
		assert.Truef(t, scalar.EqualWithinAbs(p.X, want.X, 1e-9), "turn %d x=%v", i, p.X)
		assert.Truef(t, scalar.EqualWithinAbs(p.Y, want.Y, 1e-9), "turn %d y=%v", i, p.Y)
	}
}

func TestSizeIsEmpty(t *testing.T) {
	assert.True(t, Size{}.IsEmpty())
	assert.True(t, NewSize(100, 0).IsEmpty())
	assert.False(t, NewSize(1, 1).IsEmpty())
	assert.Equal(t, Point2D{X: 50, Y: 25}, NewSize(100, 50).Center())
}

func TestBoundingBox(t *testing.T) {
	min, size := BoundingBox([]Point2D{{1, 2}, {-3, 5}, {4, -1}})
	assert.Equal(t, Point2D{X: -3, Y: -1}, min)
	assert.Equal(t, Size{Width: 7, Height: 6}, size)

	min, size = BoundingBox(nil)
	assert.Equal(t, Point2D{}, min)
	assert.True(t, size.IsEmpty())
}

func TestGenerateCirclePoints(t *testing.T) {
	pts := GenerateCirclePoints(10, 10, 5, 4)
	assert.Len(t, pts, 4)
	for _, p := range pts {
		assert.InDelta(t, 5.0, p.Distance(NewPoint2D(10, 10)), 1e-9)
	}
}
