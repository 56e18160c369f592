package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 可选的包含判定后端
const (
	BackendRing = "ring"
	BackendOrb  = "orb"
)

var ErrUnknownBackend = errors.New("unknown containment backend")

// 文档注释：点覆盖能力（含边界）
// 背景：几何内核只是其中一种实现；可替换为更稳健的第三方几何库，网格索引与归属流程无需改动。
type Coverer interface {
	Covers(pt Coordinate) bool
}

// RingSet：内置射线法实现
type RingSet []Ring

func (rs RingSet) Covers(pt Coordinate) bool { return ContainsInAny(rs, pt) }

// OrbCoverer：基于 paulmach/orb 平面算法的实现，只使用外环
type OrbCoverer struct {
	rings []orb.Ring
	bound []orb.Bound
}

func newOrbCoverer(rings []Ring) *OrbCoverer {
	c := &OrbCoverer{}
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		or := make(orb.Ring, len(r))
		for i, p := range r {
			or[i] = orb.Point{p.Lon, p.Lat}
		}
		c.rings = append(c.rings, or)
		c.bound = append(c.bound, or.Bound())
	}
	return c
}

func (c *OrbCoverer) Covers(pt Coordinate) bool {
	p := orb.Point{pt.Lon, pt.Lat}
	for i, r := range c.rings {
		if !c.bound[i].Contains(p) {
			continue
		}
		if planar.RingContains(r, p) {
			return true
		}
	}
	return false
}

// NewCoverer：按后端名称构造覆盖判定器；空名称回退到内置实现
func NewCoverer(backend string, rings []Ring) (Coverer, error) {
	switch backend {
	case "", BackendRing:
		return RingSet(rings), nil
	case BackendOrb:
		return newOrbCoverer(rings), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
