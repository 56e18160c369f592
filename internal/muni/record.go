package muni

import (
	"fmt"

	"muni-join/internal/geo"
)

// Meta：市级行政区的描述字段，随导出透传
type Meta struct {
	Name         string
	RefINE       string
	IneMunicipio string
	Wikidata     string
	Wikipedia    string
}

// Candidate：单个原始多边形要素（同一 ID 可能出现多次）
type Candidate struct {
	ID       string
	Meta     Meta
	Rings    []geo.Ring
	BBox     geo.BBox
	Centroid geo.Coordinate
}

// 文档注释：市级记录（构建后不可变）
// 背景：承载外环、包围盒、代表质心与包围盒面积；包含判定委托给可替换的 Coverer。
// 约束：只通过 Reduce 构建；字段只读访问。
type Record struct {
	id       string
	meta     Meta
	rings    []geo.Ring
	bbox     geo.BBox
	centroid geo.Coordinate
	area     float64
	cover    geo.Coverer
}

func (r *Record) ID() string               { return r.id }
func (r *Record) Meta() Meta               { return r.meta }
func (r *Record) Rings() []geo.Ring        { return r.rings }
func (r *Record) BBox() geo.BBox           { return r.bbox }
func (r *Record) Centroid() geo.Coordinate { return r.centroid }
func (r *Record) BBoxArea() float64        { return r.area }

// Covers：点是否落在任一外环内（含边界）
func (r *Record) Covers(pt geo.Coordinate) bool { return r.cover.Covers(pt) }

// 文档注释：同 ID 候选归并为唯一记录
// 背景：同一市可能由多个原始多边形表达，取包围盒面积更大的一个；面积相等时保留先出现者。
// 约束：纯归并，先选出胜者再统一构建记录，不回改已建记录；输出顺序为各 ID 首次出现的顺序。
func Reduce(cands []Candidate, backend string) ([]*Record, error) {
	winners := make(map[string]int, len(cands))
	var order []string
	for i, c := range cands {
		if len(c.Rings) == 0 {
			continue
		}
		j, ok := winners[c.ID]
		if !ok {
			order = append(order, c.ID)
			winners[c.ID] = i
			continue
		}
		if keepLarger(cands[j], c) {
			winners[c.ID] = i
		}
	}
	out := make([]*Record, 0, len(order))
	for _, id := range order {
		c := cands[winners[id]]
		cover, err := geo.NewCoverer(backend, c.Rings)
		if err != nil {
			return nil, fmt.Errorf("reduce municipalities: %w", err)
		}
		out = append(out, &Record{
			id:       c.ID,
			meta:     c.Meta,
			rings:    c.Rings,
			bbox:     c.BBox,
			centroid: c.Centroid,
			area:     c.BBox.Area(),
			cover:    cover,
		})
	}
	return out, nil
}

// keepLarger：next 的包围盒面积严格更大时替换
func keepLarger(cur, next Candidate) bool { return next.BBox.Area() > cur.BBox.Area() }
