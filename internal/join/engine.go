package join

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"muni-join/internal/geo"
	"muni-join/internal/grid"
	"muni-join/internal/logger"
	"muni-join/internal/metrics"
	"muni-join/internal/muni"

	"golang.org/x/sync/errgroup"
)

// Stage：产生归属结果的阶段，仅用于诊断
type Stage int

const (
	StageUnassigned Stage = iota
	StageCandidate
	StageFallback
	StageNearest
)

func (s Stage) String() string {
	switch s {
	case StageCandidate:
		return "candidate"
	case StageFallback:
		return "fallback"
	case StageNearest:
		return "nearest"
	}
	return "unassigned"
}

// Feature：待归属要素，只保留质心与包围盒
type Feature struct {
	ID       string
	Centroid geo.Coordinate
	BBox     geo.BBox
}

// Assignment：归属结果；MunicipalityID 为空表示未归属
type Assignment struct {
	FeatureID      string
	MunicipalityID string
	Stage          Stage
}

func (a Assignment) Assigned() bool { return a.MunicipalityID != "" }

// 文档注释：空间归属引擎（网格候选 → 外环命中 → 扩大半径重试 → 最近质心兜底）
// 背景：每个要素都得到明确结论（命中或未归属），几何不精确或相邻边界模糊时逐级降级。
// 约束：构建后只读，可被多个协程并发查询；重叠时按候选顺序先命中者胜出。
type Engine struct {
	cfg     Config
	index   *grid.Index
	records map[string]*muni.Record
	order   []*muni.Record
}

func NewEngine(records []*muni.Record, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	items := make([]grid.Item, 0, len(records))
	byID := make(map[string]*muni.Record, len(records))
	for _, r := range records {
		if _, dup := byID[r.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate municipality id %q", ErrInvalidConfig, r.ID())
		}
		byID[r.ID()] = r
		items = append(items, r)
	}
	ix, err := grid.Build(items, cfg.CellSize)
	if err != nil {
		return nil, err
	}
	ix.WithQueryCache(cfg.QueryCache)
	metrics.MunicipalitiesLoaded.Set(float64(len(records)))
	metrics.GridCells.Set(float64(ix.Len()))
	logger.L().Debug("grid_build_done", "municipalities", len(records), "cells", ix.Len(), "cell_size", cfg.CellSize)
	return &Engine{cfg: cfg, index: ix, records: byID, order: records}, nil
}

func (e *Engine) Config() Config          { return e.cfg }
func (e *Engine) Index() *grid.Index      { return e.index }
func (e *Engine) Records() []*muni.Record { return e.order }

func (e *Engine) Record(id string) (*muni.Record, bool) {
	r, ok := e.records[id]
	return r, ok
}

// 文档注释：单要素归属
// 返回：命中阶段与市级 ID；不会失败，也不修改引擎状态。
func (e *Engine) Assign(f Feature) Assignment {
	out := Assignment{FeatureID: f.ID}
	cell := e.index.KeyFor(f.Centroid)

	cands := e.index.Query(cell, e.cfg.CandidateRadius)
	if id, ok := e.firstCovering(cands, f.Centroid); ok {
		out.MunicipalityID, out.Stage = id, StageCandidate
		return out
	}
	if e.cfg.FallbackRadius > e.cfg.CandidateRadius {
		cands = e.index.Query(cell, e.cfg.FallbackRadius)
		if id, ok := e.firstCovering(cands, f.Centroid); ok {
			out.MunicipalityID, out.Stage = id, StageFallback
			return out
		}
	}
	if e.cfg.AllowNearestFallback && len(cands) > 0 {
		out.MunicipalityID, out.Stage = e.nearest(cands, f.Centroid), StageNearest
		return out
	}
	return out
}

func (e *Engine) firstCovering(ids []string, pt geo.Coordinate) (string, bool) {
	for _, id := range ids {
		if e.records[id].Covers(pt) {
			return id, true
		}
	}
	return "", false
}

// nearest：质心距离平方最小者；严格小于比较，距离相同保留先出现的候选
func (e *Engine) nearest(ids []string, pt geo.Coordinate) string {
	best := -1
	bestD := 0.0
	for i, id := range ids {
		d := geo.SquaredDistance(pt, e.records[id].Centroid())
		if best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return ids[best]
}

// 文档注释：批量归属（并发扇出）
// 背景：要素之间无共享可变状态，按 Workers 上限并发；结果下标与输入一一对应，与完成顺序无关。
// 约束：仅在上下文取消时返回错误。
func (e *Engine) AssignAll(ctx context.Context, features []Feature) ([]Assignment, error) {
	start := time.Now()
	out := make([]Assignment, len(features))
	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	const chunk = 256
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(features); lo += chunk {
		if err := gctx.Err(); err != nil {
			break
		}
		hi := min(lo+chunk, len(features))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = e.Assign(features[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	observe(out, time.Since(start))
	return out, nil
}

func observe(as []Assignment, took time.Duration) {
	s := Summarize(as)
	metrics.AssignmentsTotal.WithLabelValues(StageCandidate.String()).Add(float64(s.Candidate))
	metrics.AssignmentsTotal.WithLabelValues(StageFallback.String()).Add(float64(s.Fallback))
	metrics.AssignmentsTotal.WithLabelValues(StageNearest.String()).Add(float64(s.Nearest))
	metrics.AssignmentsTotal.WithLabelValues(StageUnassigned.String()).Add(float64(s.Unassigned))
	metrics.AssignDurationMs.Observe(float64(took.Milliseconds()))
}

// Summary：按阶段计数
type Summary struct {
	Total      int
	Candidate  int
	Fallback   int
	Nearest    int
	Unassigned int
}

func Summarize(as []Assignment) Summary {
	s := Summary{Total: len(as)}
	for _, a := range as {
		switch a.Stage {
		case StageCandidate:
			s.Candidate++
		case StageFallback:
			s.Fallback++
		case StageNearest:
			s.Nearest++
		default:
			s.Unassigned++
		}
	}
	return s
}
