package geo

// 文档注释：几何内核的最小数据结构
// 背景：经纬度直接作为平面坐标使用（不做投影与单位换算），在市级尺度下误差可接受。
// 约束：环只表达外边界；首尾点不要求重复，判定时按下标回绕闭合。
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// BBox：包围盒（minLon, minLat, maxLon, maxLat）
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Area：平面面积（宽×高），仅用于同 ID 多边形的取舍
func (b BBox) Area() float64 { return (b.MaxLon - b.MinLon) * (b.MaxLat - b.MinLat) }

// Contains：包含边界
func (b BBox) Contains(c Coordinate) bool {
	return c.Lon >= b.MinLon && c.Lon <= b.MaxLon && c.Lat >= b.MinLat && c.Lat <= b.MaxLat
}

// Ring：闭合多边形边界的顶点序列
type Ring []Coordinate
