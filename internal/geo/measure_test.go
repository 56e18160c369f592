package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBoxEmpty(t *testing.T) {
	_, ok := BoundingBox(nil)
	assert.False(t, ok)
	_, ok = Centroid([]Coordinate{})
	assert.False(t, ok)
}

func TestBoundingBoxSinglePoint(t *testing.T) {
	p := Coordinate{Lon: -3.7, Lat: 40.4}
	b, ok := BoundingBox([]Coordinate{p})
	require.True(t, ok)
	assert.Equal(t, BBox{MinLon: -3.7, MinLat: 40.4, MaxLon: -3.7, MaxLat: 40.4}, b)
	assert.Zero(t, b.Area())

	c, ok := Centroid([]Coordinate{p})
	require.True(t, ok)
	assert.Equal(t, p, c)
}

func TestBoundingBoxAndCentroid(t *testing.T) {
	pts := []Coordinate{{0, 0}, {0, 2}, {4, 2}, {4, 0}}
	b, ok := BoundingBox(pts)
	require.True(t, ok)
	assert.Equal(t, BBox{MinLon: 0, MinLat: 0, MaxLon: 4, MaxLat: 2}, b)
	assert.InDelta(t, 8.0, b.Area(), 1e-12)
	assert.True(t, b.Contains(Coordinate{4, 2}))
	assert.False(t, b.Contains(Coordinate{4.1, 2}))

	c, ok := Centroid(pts)
	require.True(t, ok)
	assert.InDelta(t, 2.0, c.Lon, 1e-12)
	assert.InDelta(t, 1.0, c.Lat, 1e-12)
}

func TestSquaredDistance(t *testing.T) {
	assert.InDelta(t, 25.0, SquaredDistance(Coordinate{0, 0}, Coordinate{3, 4}), 1e-12)
	assert.Zero(t, SquaredDistance(Coordinate{1, 1}, Coordinate{1, 1}))
}
