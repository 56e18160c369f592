// 包 store: 城市与地名写入 PostgreSQL 的数据访问层，按批多行插入
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"muni-join/internal/export"
	"muni-join/internal/logger"
	"muni-join/internal/metrics"
	"muni-join/internal/source"

	_ "github.com/lib/pq"
)

// ErrBatchSize：批大小必须为正
var ErrBatchSize = errors.New("batch size must be positive")

// Execer：写入只依赖执行语句的能力，*sql.DB 与 *sql.Tx 均满足
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Store: 数据库写入入口
type Store struct {
	db Execer
}

func Attach(db Execer) *Store { return &Store{db: db} }

var cityColumns = []string{"id", "name", "ref_ine", "ine_municipio", "wikidata", "wikipedia", "centroid", "bbox"}

var placeColumns = []string{
	"id", "city_id", "name", "place", "admin_level", "ref_ine", "wikidata", "wikipedia",
	"population", "population_date", "name_es", "name_eu", "centroid", "bbox",
}

// buildInsert: 多行 INSERT 语句；upsert 为真时冲突更新非主键列，否则忽略冲突
func buildInsert(table string, cols []string, rows int, upsert bool) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString("(")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES ")
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := range cols {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			n++
		}
		b.WriteString(")")
	}
	if !upsert {
		b.WriteString(" ON CONFLICT (id) DO NOTHING")
		return b.String()
	}
	b.WriteString(" ON CONFLICT (id) DO UPDATE SET ")
	first := true
	for _, c := range cols {
		if c == "id" {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(c + "=EXCLUDED." + c)
	}
	b.WriteString(", updated_at=now()")
	return b.String()
}

func nullable(s source.Text) sql.NullString {
	return sql.NullString{String: string(s), Valid: s != ""}
}

func jsonText(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func cityArgs(c export.City) ([]interface{}, error) {
	centroid, err := jsonText(c.Centroid)
	if err != nil {
		return nil, err
	}
	bbox, err := jsonText(c.BBox)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		c.ID, c.Name, nullable(c.RefINE), nullable(c.IneMunicipio),
		nullable(c.Wikidata), nullable(c.Wikipedia), centroid, bbox,
	}, nil
}

func placeArgs(cityID string, e export.Entry) ([]interface{}, error) {
	centroid, err := jsonText(e.Centroid)
	if err != nil {
		return nil, err
	}
	bbox, err := jsonText(e.BBox)
	if err != nil {
		return nil, err
	}
	info := e.Info()
	return []interface{}{
		e.ID, cityID, e.Name, nullable(e.Place), nullable(e.AdminLevel), nullable(info.RefINE),
		nullable(e.Wikidata), nullable(e.Wikipedia), nullable(info.Population), nullable(info.PopulationDate),
		nullable(info.NameES), nullable(info.NameEU), centroid, bbox,
	}, nil
}

// writeBatches: 按 batchSize 切分并逐批执行，返回写入行数
func (s *Store) writeBatches(ctx context.Context, table string, cols []string, rows [][]interface{}, batchSize int, upsert bool) (int, error) {
	if batchSize <= 0 {
		return 0, ErrBatchSize
	}
	written := 0
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		args := make([]interface{}, 0, (end-start)*len(cols))
		for _, r := range rows[start:end] {
			args = append(args, r...)
		}
		if _, err := s.db.ExecContext(ctx, buildInsert(table, cols, end-start, upsert), args...); err != nil {
			return written, fmt.Errorf("insert %s rows %d-%d: %w", table, start, end, err)
		}
		written += end - start
		metrics.RowsWrittenTotal.WithLabelValues(table).Add(float64(end - start))
		logger.L().Debug("db_batch_done", "table", table, "rows", end-start, "written", written)
	}
	return written, nil
}

// 文档注释：批量写入城市
// 约束：upsert 为真时覆盖已存在的同 ID 行，否则保留旧行；_unassigned 不入库。
func (s *Store) UpsertCities(ctx context.Context, cities []export.City, batchSize int, upsert bool) (int, error) {
	rows := make([][]interface{}, 0, len(cities))
	for _, c := range cities {
		if c.ID == export.Unassigned {
			continue
		}
		args, err := cityArgs(c)
		if err != nil {
			return 0, err
		}
		rows = append(rows, args)
	}
	return s.writeBatches(ctx, "cities", cityColumns, rows, batchSize, upsert)
}

// Places: 分组结果展开为按城市 ID 排序的地名行，跳过 _unassigned
func Places(byCity map[string][]export.Entry) []export.Entry {
	keys := make([]string, 0, len(byCity))
	for k := range byCity {
		if k == export.Unassigned {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []export.Entry
	for _, k := range keys {
		for _, e := range byCity[k] {
			id := k
			e.CityID = &id
			out = append(out, e)
		}
	}
	return out
}

// 文档注释：批量写入地名
// 约束：city_id 取分组键；同一批内不应出现重复 ID（ON CONFLICT 不允许同语句内重复命中）。
func (s *Store) UpsertPlaces(ctx context.Context, byCity map[string][]export.Entry, batchSize int, upsert bool) (int, error) {
	places := Places(byCity)
	rows := make([][]interface{}, 0, len(places))
	for _, p := range places {
		args, err := placeArgs(*p.CityID, p)
		if err != nil {
			return 0, err
		}
		rows = append(rows, args)
	}
	return s.writeBatches(ctx, "city_places", placeColumns, rows, batchSize, upsert)
}
