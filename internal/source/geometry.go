package source

import (
	"muni-join/internal/geo"

	"github.com/paulmach/orb"
)

// Points：几何体的全部坐标（含内环），用于包围盒与质心
func Points(g orb.Geometry) []geo.Coordinate {
	var out []geo.Coordinate
	add := func(ps []orb.Point) {
		for _, p := range ps {
			out = append(out, geo.Coordinate{Lon: p.Lon(), Lat: p.Lat()})
		}
	}
	switch t := g.(type) {
	case orb.Point:
		add([]orb.Point{t})
	case orb.MultiPoint:
		add(t)
	case orb.LineString:
		add(t)
	case orb.MultiLineString:
		for _, ls := range t {
			add(ls)
		}
	case orb.Ring:
		add(t)
	case orb.Polygon:
		for _, r := range t {
			add(r)
		}
	case orb.MultiPolygon:
		for _, poly := range t {
			for _, r := range poly {
				add(r)
			}
		}
	}
	return out
}

// OuterRings：Polygon 取首环；MultiPolygon 取每个非空分片的首环；其他类型无外环
func OuterRings(g orb.Geometry) []geo.Ring {
	var polys []orb.Polygon
	switch t := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{t}
	case orb.MultiPolygon:
		polys = t
	default:
		return nil
	}
	var out []geo.Ring
	for _, poly := range polys {
		if len(poly) == 0 || len(poly[0]) == 0 {
			continue
		}
		ring := make(geo.Ring, len(poly[0]))
		for i, p := range poly[0] {
			ring[i] = geo.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
		}
		out = append(out, ring)
	}
	return out
}
