package geo

import "math"

// 共线判定容差
const epsilon = 1e-9

// 文档注释：点入环判定（射线法 + 边界包含）
// 背景：逐边先做“点在线段上”检测，命中即视为在内；否则累计水平射线穿越奇偶。
// 约束：少于 3 个点的环一律视为不包含，不报错；纯函数，不分配内存。
func ContainsPoint(ring Ring, pt Coordinate) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	x, y := pt.Lon, pt.Lat
	inside := false
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if onSegment(pt, a, b) {
			return true
		}
		if (a.Lat > y) != (b.Lat > y) {
			xi := (b.Lon-a.Lon)*(y-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if xi > x {
				inside = !inside
			}
		}
	}
	return inside
}

// ContainsInAny：多面（多个外环）任一命中即返回
func ContainsInAny(rings []Ring, pt Coordinate) bool {
	for _, r := range rings {
		if ContainsPoint(r, pt) {
			return true
		}
	}
	return false
}

// onSegment：叉积判共线，点积判投影落在 [0, |ab|²] 内（两端各放宽 epsilon）
// 约束：零长度边（闭合环的回绕边、重复顶点）退化为端点比较，不得命中任意点
func onSegment(p, a, b Coordinate) bool {
	dx, dy := b.Lon-a.Lon, b.Lat-a.Lat
	if dx*dx+dy*dy <= epsilon {
		return math.Abs(p.Lon-a.Lon) <= epsilon && math.Abs(p.Lat-a.Lat) <= epsilon
	}
	cross := (p.Lat-a.Lat)*dx - (p.Lon-a.Lon)*dy
	if math.Abs(cross) > epsilon {
		return false
	}
	dot := (p.Lon-a.Lon)*dx + (p.Lat-a.Lat)*dy
	if dot < -epsilon {
		return false
	}
	return dot <= dx*dx+dy*dy+epsilon
}
