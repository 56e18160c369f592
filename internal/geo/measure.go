package geo

import "math"

// 文档注释：坐标集合的包围盒
// 约束：空集合返回 ok=false，调用方应视为无效几何并跳过，不得回退到零面积包围盒。
func BoundingBox(points []Coordinate) (BBox, bool) {
	if len(points) == 0 {
		return BBox{}, false
	}
	b := BBox{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
	for _, p := range points {
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
	}
	return b, true
}

// 文档注释：算术平均质心
// 背景：边界点大体均匀采样，直接取均值即可，不做面积加权。
func Centroid(points []Coordinate) (Coordinate, bool) {
	if len(points) == 0 {
		return Coordinate{}, false
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.Lon
		sy += p.Lat
	}
	n := float64(len(points))
	return Coordinate{Lon: sx / n, Lat: sy / n}, true
}

// SquaredDistance：平面欧氏距离平方
func SquaredDistance(a, b Coordinate) float64 {
	dx := a.Lon - b.Lon
	dy := a.Lat - b.Lat
	return dx*dx + dy*dy
}
