// 包 export：归属结果的导出结构与 JSON 读写
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"muni-join/internal/geo"
	"muni-join/internal/join"
	"muni-join/internal/muni"
	"muni-join/internal/source"
)

// Unassigned：未归属要素在分组结果中的键
const Unassigned = "_unassigned"

// City：cities.json 中的一行
type City struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	AdminLevel   string         `json:"admin_level"`
	RefINE       source.Text    `json:"ref_ine"`
	IneMunicipio source.Text    `json:"ine_municipio"`
	Wikidata     source.Text    `json:"wikidata"`
	Wikipedia    source.Text    `json:"wikipedia"`
	BBox         geo.BBox       `json:"bbox"`
	Centroid     geo.Coordinate `json:"centroid"`
}

// Entry：分组后的区划或地名；CityID 为空指针时序列化为 null
// 约束：CityName 只在地名分组中出现，未归属地名写 null，区划分组不含该键
type Entry struct {
	source.Area
	CityID   *string      `json:"city_id"`
	CityName *source.Text `json:"city_name,omitempty"`
}

// UnmarshalJSON：city_name 为 null 时保留为非空指针，写回后键集合不变
func (e *Entry) UnmarshalJSON(b []byte) error {
	type plain Entry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.CityName == nil {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(b, &keys); err != nil {
			return err
		}
		if _, ok := keys["city_name"]; ok {
			p.CityName = new(source.Text)
		}
	}
	*e = Entry(p)
	return nil
}

// Cities：市级记录转导出行，按名称排序（稳定）
func Cities(records []*muni.Record) []City {
	out := make([]City, 0, len(records))
	for _, r := range records {
		m := r.Meta()
		out = append(out, City{
			ID:           r.ID(),
			Name:         m.Name,
			AdminLevel:   source.LevelMunicipality,
			RefINE:       source.Text(m.RefINE),
			IneMunicipio: source.Text(m.IneMunicipio),
			Wikidata:     source.Text(m.Wikidata),
			Wikipedia:    source.Text(m.Wikipedia),
			BBox:         r.BBox(),
			Centroid:     r.Centroid(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// 文档注释：按归属结果分组
// 参数：areas 与 as 下标一一对应；names 非空时为每个要素附带市名（未归属为 null）；sortByName 为真时各市内部按名称排序。
// 约束：未归属要素保持输入顺序放入 _unassigned，且仅在非空时出现该键。
func Group(areas []source.Area, as []join.Assignment, names map[string]string, sortByName bool) map[string][]Entry {
	out := make(map[string][]Entry)
	var unassigned []Entry
	for i, a := range areas {
		e := Entry{Area: a}
		if names != nil {
			e.CityName = new(source.Text)
		}
		if i < len(as) && as[i].Assigned() {
			id := as[i].MunicipalityID
			e.CityID = &id
			if names != nil {
				*e.CityName = source.Text(names[id])
			}
			out[id] = append(out[id], e)
			continue
		}
		unassigned = append(unassigned, e)
	}
	if sortByName {
		for k := range out {
			entries := out[k]
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		}
	}
	if len(unassigned) > 0 {
		out[Unassigned] = unassigned
	}
	return out
}

// Names：市级 ID 到名称的映射
func Names(records []*muni.Record) map[string]string {
	m := make(map[string]string, len(records))
	for _, r := range records {
		m[r.ID()] = r.Meta().Name
	}
	return m
}

// Merge：合并两个分组结果，b 的条目追加在 a 之后；不修改入参
func Merge(a, b map[string][]Entry) map[string][]Entry {
	out := make(map[string][]Entry, len(a)+len(b))
	for k, v := range a {
		out[k] = append([]Entry(nil), v...)
	}
	for k, v := range b {
		out[k] = append(out[k], v...)
	}
	return out
}

// FilterCities：仅保留至少有一个分组条目的城市，按名称（忽略大小写）排序
func FilterCities(cities []City, byCity map[string][]Entry) []City {
	out := make([]City, 0, len(cities))
	for _, c := range cities {
		if c.ID == Unassigned {
			continue
		}
		if len(byCity[c.ID]) > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Count：分组内条目总数（含 _unassigned）
func Count(byCity map[string][]Entry) int {
	n := 0
	for _, v := range byCity {
		n += len(v)
	}
	return n
}

// WriteJSON：两空格缩进写出，不转义 HTML 字符；自动创建父目录
func WriteJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func ReadJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
