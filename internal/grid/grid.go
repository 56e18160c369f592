package grid

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"muni-join/internal/cache"
	"muni-join/internal/geo"
)

var (
	ErrInvalidCellSize = errors.New("cell size must be a finite number no smaller than MinCellSize")
	ErrTooManyCells    = errors.New("bbox spans too many grid cells")
)

// 单元边长下限与单个对象可覆盖的单元数上限；经纬度输入下行列号远离 int 溢出
const (
	MinCellSize     = 1e-6
	MaxCellsPerItem = 1 << 20
)

// CellKey：网格单元键 (floor(lat/size), floor(lon/size))
type CellKey struct {
	Row int
	Col int
}

// KeyFor：坐标所在单元
func KeyFor(c geo.Coordinate, cellSize float64) CellKey {
	return CellKey{Row: floorDiv(c.Lat, cellSize), Col: floorDiv(c.Lon, cellSize)}
}

func floorDiv(v, size float64) int { return int(math.Floor(v / size)) }

// Item：可入索引的对象（市级多边形记录）
type Item interface {
	ID() string
	BBox() geo.BBox
}

// 文档注释：均匀网格空间索引
// 背景：按固定边长把平面切成方格，每格记录包围盒与之重叠的市级 ID；查询时按半径扫描邻域做候选裁剪。
// 约束：构建后只读；候选集只用于裁剪，不会漏掉查询半径内包围盒可能包含要素的记录。
type Index struct {
	cellSize float64
	cells    map[CellKey][]string
	qc       *cache.LRU
}

// Build：为每个对象枚举其包围盒覆盖的所有单元（两轴闭区间），按对象顺序追加 ID
func Build(items []Item, cellSize float64) (*Index, error) {
	if !(cellSize >= MinCellSize) || math.IsInf(cellSize, 1) {
		return nil, fmt.Errorf("build grid: %w (got %v)", ErrInvalidCellSize, cellSize)
	}
	ix := &Index{cellSize: cellSize, cells: make(map[CellKey][]string)}
	for _, it := range items {
		b := it.BBox()
		id := it.ID()
		if n := cellSpan(b, cellSize); !(n <= MaxCellsPerItem) {
			return nil, fmt.Errorf("build grid: %w: %q covers %v cells", ErrTooManyCells, id, n)
		}
		minRow, maxRow := floorDiv(b.MinLat, cellSize), floorDiv(b.MaxLat, cellSize)
		minCol, maxCol := floorDiv(b.MinLon, cellSize), floorDiv(b.MaxLon, cellSize)
		for r := minRow; r <= maxRow; r++ {
			for c := minCol; c <= maxCol; c++ {
				k := CellKey{Row: r, Col: c}
				ix.cells[k] = append(ix.cells[k], id)
			}
		}
	}
	return ix, nil
}

// cellSpan：包围盒覆盖的单元数，按浮点计算以免转换 int 前溢出
func cellSpan(b geo.BBox, size float64) float64 {
	rows := math.Floor(b.MaxLat/size) - math.Floor(b.MinLat/size) + 1
	cols := math.Floor(b.MaxLon/size) - math.Floor(b.MinLon/size) + 1
	return rows * cols
}

// WithQueryCache：为 Query 挂载 LRU；结果与未缓存时完全一致
func (ix *Index) WithQueryCache(capacity int) *Index {
	if capacity > 0 {
		ix.qc = cache.NewLRU(capacity, 0)
	}
	return ix
}

func (ix *Index) CellSize() float64 { return ix.cellSize }

// Len：已填充的单元数
func (ix *Index) Len() int { return len(ix.cells) }

// KeyFor：按本索引的单元边长计算坐标所在单元
func (ix *Index) KeyFor(c geo.Coordinate) CellKey { return KeyFor(c, ix.cellSize) }

// 文档注释：邻域候选查询
// 背景：半径以单元数计（1 即 3×3，2 即 5×5）；行优先扫描，缺失单元不贡献候选。
// 返回：按首次出现去重后的 ID 序列；返回值只读。
func (ix *Index) Query(cell CellKey, radius int) []string {
	if radius < 0 {
		return nil
	}
	var key string
	if ix.qc != nil {
		key = cacheKey(cell, radius)
		if v, ok := ix.qc.Get(key); ok {
			return v
		}
	}
	var out []string
	seen := make(map[string]struct{})
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			for _, id := range ix.cells[CellKey{Row: cell.Row + dr, Col: cell.Col + dc}] {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	if ix.qc != nil {
		ix.qc.Set(key, out)
	}
	return out
}

// CacheStats：查询缓存命中统计，未启用时为零
func (ix *Index) CacheStats() (hits, misses uint64) {
	if ix.qc == nil {
		return 0, 0
	}
	return ix.qc.Stats()
}

func cacheKey(cell CellKey, radius int) string {
	return strconv.Itoa(cell.Row) + ":" + strconv.Itoa(cell.Col) + ":" + strconv.Itoa(radius)
}
