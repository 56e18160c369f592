package geo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() Ring {
	return Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
}

// L 形凹多边形
func lShape() Ring {
	return Ring{{0, 0}, {0, 2}, {1, 2}, {1, 1}, {2, 1}, {2, 0}}
}

func TestContainsPointSquare(t *testing.T) {
	sq := unitSquare()
	assert.True(t, ContainsPoint(sq, Coordinate{0.5, 0.5}))
	assert.False(t, ContainsPoint(sq, Coordinate{1.5, 0.5}))
	assert.False(t, ContainsPoint(sq, Coordinate{-0.1, 0.5}))
	assert.False(t, ContainsPoint(sq, Coordinate{0.5, 1.0000001}))
}

func TestContainsPointBoundary(t *testing.T) {
	sq := unitSquare()
	for _, p := range []Coordinate{{0, 0.5}, {0.5, 1}, {1, 0.25}, {0.75, 0}} {
		assert.True(t, ContainsPoint(sq, p), "edge point %v", p)
	}
	// 闭合边（末点回到首点）同样按边界处理
	assert.True(t, ContainsPoint(Ring{{0, 0}, {2, 0}, {0, 2}}, Coordinate{0, 1}))
}

// variants：同一多边形的开放、首尾闭合、含重复顶点三种写法
func variants(r Ring) []Ring {
	closed := append(append(Ring(nil), r...), r[0])
	repeated := append(Ring{r[0], r[0]}, r[1:]...)
	repeated = append(repeated, r[len(r)-1])
	return []Ring{r, closed, repeated}
}

func randomRing(rng *rand.Rand, scale float64) Ring {
	ring := make(Ring, 3+rng.Intn(10))
	for i := range ring {
		ring[i] = Coordinate{Lon: rng.Float64()*scale - scale/2, Lat: rng.Float64()*scale - scale/2}
	}
	return ring
}

func TestContainsPointEveryVertex(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		for _, ring := range variants(randomRing(rng, 10)) {
			for _, v := range ring {
				require.True(t, ContainsPoint(ring, v), "vertex %v of ring %v", v, ring)
			}
		}
	}
}

func TestContainsPointOutsideBBox(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for n := 0; n < 50; n++ {
		for _, ring := range variants(randomRing(rng, 1)) {
			b, ok := BoundingBox(ring)
			require.True(t, ok)
			outside := []Coordinate{
				{b.MinLon - 0.01, b.MinLat},
				{b.MaxLon + 0.01, b.MaxLat},
				{b.MinLon, b.MinLat - 0.01},
				{b.MaxLon, b.MaxLat + 0.01},
				{b.MaxLon + 3, b.MaxLat + 3},
			}
			for _, p := range outside {
				require.False(t, ContainsPoint(ring, p), "point %v ring %v", p, ring)
			}
		}
	}
}

func TestContainsPointClosedRing(t *testing.T) {
	closed := Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
	assert.False(t, ContainsPoint(closed, Coordinate{5, 5}))
	assert.False(t, ContainsPoint(closed, Coordinate{-0.5, 0.5}))
	assert.True(t, ContainsPoint(closed, Coordinate{0.5, 0.5}))
	assert.True(t, ContainsPoint(closed, Coordinate{0, 0}))

	repeated := Ring{{0, 0}, {0, 1}, {0, 1}, {1, 1}, {1, 0}}
	assert.False(t, ContainsPoint(repeated, Coordinate{5, 5}))
	assert.True(t, ContainsPoint(repeated, Coordinate{0, 1}))
	assert.True(t, ContainsPoint(repeated, Coordinate{0.5, 0.5}))

	// 全部顶点重合：只有该点本身算边界
	point := Ring{{2, 2}, {2, 2}, {2, 2}}
	assert.True(t, ContainsPoint(point, Coordinate{2, 2}))
	assert.False(t, ContainsPoint(point, Coordinate{2, 3}))
}

func TestContainsPointConcave(t *testing.T) {
	l := lShape()
	assert.True(t, ContainsPoint(l, Coordinate{0.5, 1.5}))
	assert.True(t, ContainsPoint(l, Coordinate{1.5, 0.5}))
	assert.False(t, ContainsPoint(l, Coordinate{1.5, 1.5}))
	assert.True(t, ContainsPoint(l, Coordinate{1.5, 1}))
}

func TestContainsPointDegenerate(t *testing.T) {
	assert.False(t, ContainsPoint(nil, Coordinate{}))
	assert.False(t, ContainsPoint(Ring{{0, 0}}, Coordinate{0, 0}))
	assert.False(t, ContainsPoint(Ring{{0, 0}, {1, 1}}, Coordinate{0.5, 0.5}))
}

func TestContainsInAny(t *testing.T) {
	far := Ring{{10, 10}, {10, 11}, {11, 11}, {11, 10}}
	rings := []Ring{unitSquare(), far}
	assert.True(t, ContainsInAny(rings, Coordinate{0.5, 0.5}))
	assert.True(t, ContainsInAny(rings, Coordinate{10.5, 10.5}))
	assert.False(t, ContainsInAny(rings, Coordinate{5, 5}))
	assert.False(t, ContainsInAny(nil, Coordinate{0.5, 0.5}))
}
