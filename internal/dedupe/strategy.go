package dedupe

import (
	"math"

	"muni-join/internal/export"
)

// Weights：各信号的加权分
type Weights struct {
	Wikidata   float64
	Wikipedia  float64
	AdminLevel float64
	BBox       float64
	Place      float64
}

type Strategy struct {
	Name    string
	Weights Weights
}

// Strategies：候选策略，顺序即得分相同时的优先级
var Strategies = []Strategy{
	{Name: "metadata", Weights: Weights{Wikidata: 4, Wikipedia: 3, AdminLevel: 2, BBox: 1, Place: 1}},
	{Name: "geometry", Weights: Weights{Wikidata: 1, Wikipedia: 1, AdminLevel: 2, BBox: 4, Place: 0.5}},
	{Name: "place", Weights: Weights{Wikidata: 2, Wikipedia: 1, AdminLevel: 1, BBox: 1, Place: 4}},
	{Name: "balanced", Weights: Weights{Wikidata: 2, Wikipedia: 2, AdminLevel: 1, BBox: 2, Place: 2}},
}

// PlacePriority：place 类型的相对权重，未列出的类型为 0
var PlacePriority = map[string]float64{
	"suburb":        1.0,
	"neighbourhood": 0.8,
	"quarter":       0.6,
}

func bboxArea(e export.Entry) float64 {
	return math.Max(0, e.BBox.Area())
}

func qualityScore(e export.Entry) float64 {
	s := 0.0
	if e.Wikidata != "" {
		s += 2
	}
	if e.Wikipedia != "" {
		s += 2
	}
	if e.AdminLevel != "" {
		s++
	}
	if bboxArea(e) > 0 {
		s += 2
	}
	return s
}

// Score：按权重给条目打分
func Score(e export.Entry, w Weights) float64 {
	s := 0.0
	if e.Wikidata != "" {
		s += w.Wikidata
	}
	if e.Wikipedia != "" {
		s += w.Wikipedia
	}
	if e.AdminLevel != "" {
		s += w.AdminLevel
	}
	if bboxArea(e) > 0 {
		s += w.BBox
	}
	return s + w.Place*PlacePriority[string(e.Place)]
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// better：依次比较得分、包围盒面积、wikidata、wikipedia、ID
func better(a, b export.Entry, w Weights) bool {
	if sa, sb := Score(a, w), Score(b, w); sa != sb {
		return sa > sb
	}
	if aa, ab := bboxArea(a), bboxArea(b); aa != ab {
		return aa > ab
	}
	if da, db := boolInt(a.Wikidata != ""), boolInt(b.Wikidata != ""); da != db {
		return da > db
	}
	if pa, pb := boolInt(a.Wikipedia != ""), boolInt(b.Wikipedia != ""); pa != pb {
		return pa > pb
	}
	return a.ID > b.ID
}

// ChooseBest：组内最优条目；完全相同时保留先出现者
func ChooseBest(group []export.Entry, w Weights) export.Entry {
	best := group[0]
	for _, e := range group[1:] {
		if better(e, best, w) {
			best = e
		}
	}
	return best
}

// 文档注释：按策略在每个城市内选出同名条目中的最优者
// 约束：规范化名称为空的条目各自成组（键为 __empty__ 加 ID），不与其他条目合并；结果按小写名称稳定排序。
func ApplyStrategy(byCity map[string][]export.Entry, w Weights) map[string][]export.Entry {
	out := make(map[string][]export.Entry, len(byCity))
	for city, entries := range byCity {
		groups := make(map[string]int)
		var ordered [][]export.Entry
		for _, e := range entries {
			key := NormalizeName(e.Name)
			if key == "" {
				key = "__empty__" + e.ID
			}
			i, ok := groups[key]
			if !ok {
				i = len(ordered)
				groups[key] = i
				ordered = append(ordered, nil)
			}
			ordered[i] = append(ordered[i], e)
		}
		chosen := make([]export.Entry, 0, len(ordered))
		for _, g := range ordered {
			chosen = append(chosen, ChooseBest(g, w))
		}
		sortByLowerName(chosen)
		out[city] = chosen
	}
	return out
}

// Metrics：结果集的质量统计
type Metrics struct {
	Total          int     `json:"total"`
	WithWikidata   int     `json:"with_wikidata"`
	WithWikipedia  int     `json:"with_wikipedia"`
	WithAdminLevel int     `json:"with_admin_level"`
	WithPolygon    int     `json:"with_polygon"`
	TotalQuality   float64 `json:"total_quality"`
}

func Summarize(byCity map[string][]export.Entry) Metrics {
	var m Metrics
	for _, entries := range byCity {
		for _, e := range entries {
			m.Total++
			if e.Wikidata != "" {
				m.WithWikidata++
			}
			if e.Wikipedia != "" {
				m.WithWikipedia++
			}
			if e.AdminLevel != "" {
				m.WithAdminLevel++
			}
			if bboxArea(e) > 0 {
				m.WithPolygon++
			}
			m.TotalQuality += qualityScore(e)
		}
	}
	return m
}

func (m Metrics) outranks(o Metrics) bool {
	if m.TotalQuality != o.TotalQuality {
		return m.TotalQuality > o.TotalQuality
	}
	if m.WithWikidata != o.WithWikidata {
		return m.WithWikidata > o.WithWikidata
	}
	if m.WithWikipedia != o.WithWikipedia {
		return m.WithWikipedia > o.WithWikipedia
	}
	if m.WithAdminLevel != o.WithAdminLevel {
		return m.WithAdminLevel > o.WithAdminLevel
	}
	return m.WithPolygon > o.WithPolygon
}

// Result：单个策略的执行结果
type Result struct {
	Strategy string
	Metrics  Metrics
	Data     map[string][]export.Entry
}

// 文档注释：执行全部策略并选出质量最高的结果
// 约束：按质量分、wikidata、wikipedia、admin_level、有面数量依次比较；全部相同时取 Strategies 中靠前者。
func BestStrategy(byCity map[string][]export.Entry) (Result, []Result) {
	all := make([]Result, 0, len(Strategies))
	best := -1
	for _, s := range Strategies {
		data := ApplyStrategy(byCity, s.Weights)
		r := Result{Strategy: s.Name, Metrics: Summarize(data), Data: data}
		all = append(all, r)
		if best < 0 || r.Metrics.outranks(all[best].Metrics) {
			best = len(all) - 1
		}
	}
	return all[best], all
}
