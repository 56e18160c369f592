// 包 pipeline：把读取、归并、建索引、归属与分组串成命令行可直接调用的步骤
package pipeline

import (
	"context"
	"time"

	"muni-join/internal/export"
	"muni-join/internal/join"
	"muni-join/internal/logger"
	"muni-join/internal/metrics"
	"muni-join/internal/muni"
	"muni-join/internal/source"

	"github.com/paulmach/orb/geojson"
)

// BuildEngine：提取市级候选、按 ID 归并并构建归属引擎
func BuildEngine(fc *geojson.FeatureCollection, cfg join.Config) (*join.Engine, error) {
	cands := source.Municipalities(fc)
	records, err := muni.Reduce(cands, cfg.Backend)
	if err != nil {
		return nil, err
	}
	if dropped := len(cands) - len(records); dropped > 0 {
		metrics.FeaturesSkippedTotal.WithLabelValues("duplicate_municipality").Add(float64(dropped))
	}
	logger.L().Info("municipalities_loaded", "candidates", len(cands), "records", len(records))
	return join.NewEngine(records, cfg)
}

// assign：批量归属并按阶段输出统计日志
func assign(ctx context.Context, e *join.Engine, areas []source.Area, label string) ([]join.Assignment, error) {
	start := time.Now()
	as, err := e.AssignAll(ctx, source.Features(areas))
	if err != nil {
		return nil, err
	}
	s := join.Summarize(as)
	logger.L().Info("join_done",
		"set", label,
		"total", s.Total,
		"candidate", s.Candidate,
		"fallback", s.Fallback,
		"nearest", s.Nearest,
		"unassigned", s.Unassigned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return as, nil
}

// AreasResult：区划归属的全部导出
type AreasResult struct {
	Cities   []export.City
	Level10  map[string][]export.Entry
	Level9   map[string][]export.Entry
	Combined map[string][]export.Entry
}

// 文档注释：区划归属（10 级与 9 级）
// 背景：城市与区划来自同一份 GeoJSON；两级分别归属后合并，10 级在前。
// 约束：placeFilter 为 nil 时不按 place 过滤。
func JoinAreas(ctx context.Context, fc *geojson.FeatureCollection, cfg join.Config, placeFilter map[string]bool) (*AreasResult, error) {
	e, err := BuildEngine(fc, cfg)
	if err != nil {
		return nil, err
	}
	res := &AreasResult{Cities: export.Cities(e.Records())}
	for _, level := range []string{source.LevelSubdistrict, source.LevelDistrict} {
		areas := source.Areas(fc, level, placeFilter)
		as, err := assign(ctx, e, areas, "level"+level)
		if err != nil {
			return nil, err
		}
		grouped := export.Group(areas, as, nil, false)
		if level == source.LevelSubdistrict {
			res.Level10 = grouped
		} else {
			res.Level9 = grouped
		}
	}
	res.Combined = export.Merge(res.Level10, res.Level9)
	return res, nil
}

// 文档注释：地名归属
// 约束：每个城市内按名称排序并附带城市名；types 为 nil 时保留全部 place 类型。
func JoinPlaces(ctx context.Context, e *join.Engine, places *geojson.FeatureCollection, types map[string]bool) (map[string][]export.Entry, error) {
	areas := source.Places(places, types)
	as, err := assign(ctx, e, areas, "places")
	if err != nil {
		return nil, err
	}
	return export.Group(areas, as, export.Names(e.Records()), true), nil
}

// PlaceCounts：按 place 类型计数
func PlaceCounts(byCity map[string][]export.Entry) map[string]int {
	out := make(map[string]int)
	for _, entries := range byCity {
		for _, e := range entries {
			out[string(e.Place)]++
		}
	}
	return out
}
