// 包 source：从 OSM 导出的 GeoJSON 中提取市级边界、下级行政区与地名要素
package source

import (
	"fmt"
	"os"

	"muni-join/internal/geo"
	"muni-join/internal/join"
	"muni-join/internal/logger"
	"muni-join/internal/muni"

	"github.com/paulmach/orb/geojson"
)

// 行政区划常量
const (
	LevelMunicipality = "8"
	LevelDistrict     = "9"
	LevelSubdistrict  = "10"
)

// DefaultPlaceTypes：地名提取默认保留的 place 类型
var DefaultPlaceTypes = []string{"neighbourhood", "suburb", "quarter"}

// AreaPlaceFilter：区划提取开启 place 过滤时允许的类型
var AreaPlaceFilter = []string{"neighbourhood", "suburb", "quarter", "borough", "civil_parish"}

// LoadFile：读取 GeoJSON FeatureCollection
func LoadFile(path string) (*geojson.FeatureCollection, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	logger.L().Debug("geojson_loaded", "path", path, "features", len(fc.Features))
	return fc, nil
}

// Area：待归属的区划或地名要素，字段与导出 JSON 一一对应
// 约束：可缺失属性一律写 null；PlaceInfo 只有地名要素携带，区划导出不含这些键
type Area struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AdminLevel Text   `json:"admin_level"`
	Place      Text   `json:"place"`
	*PlaceInfo
	Wikidata  Text           `json:"wikidata"`
	Wikipedia Text           `json:"wikipedia"`
	BBox      geo.BBox       `json:"bbox"`
	Centroid  geo.Coordinate `json:"centroid"`
}

// PlaceInfo：地名要素独有的属性
type PlaceInfo struct {
	RefINE         Text `json:"ref_ine"`
	Population     Text `json:"population"`
	PopulationDate Text `json:"population_date"`
	NameES         Text `json:"name_es"`
	NameEU         Text `json:"name_eu"`
}

// Info：地名属性；区划要素返回零值
func (a Area) Info() PlaceInfo {
	if a.PlaceInfo == nil {
		return PlaceInfo{}
	}
	return *a.PlaceInfo
}

func (a Area) Feature() join.Feature {
	return join.Feature{ID: a.ID, Centroid: a.Centroid, BBox: a.BBox}
}

// Features：批量转换为归属引擎输入
func Features(areas []Area) []join.Feature {
	out := make([]join.Feature, len(areas))
	for i, a := range areas {
		out[i] = a.Feature()
	}
	return out
}

// Set：逗号分隔列表转集合；空列表返回 nil 表示不过滤
func Set(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

func isAdmin(props geojson.Properties, level string) bool {
	return Prop(props, "boundary") == "administrative" && Prop(props, "admin_level") == level
}

// 文档注释：提取市级候选
// 背景：boundary=administrative 且 admin_level=8，名称取 name 或 name:es；无外环的要素无法参与包含判定，直接跳过。
// 约束：ID 依次取 ine:municipio、ref:ine、名称 slug；同 ID 多个候选交给 muni.Reduce 归并。
func Municipalities(fc *geojson.FeatureCollection) []muni.Candidate {
	var out []muni.Candidate
	for _, f := range fc.Features {
		if !isAdmin(f.Properties, LevelMunicipality) {
			continue
		}
		name := firstProp(f.Properties, "name", "name:es")
		if name == "" {
			continue
		}
		rings := OuterRings(f.Geometry)
		if len(rings) == 0 {
			continue
		}
		pts := Points(f.Geometry)
		bbox, ok := geo.BoundingBox(pts)
		if !ok {
			continue
		}
		center, _ := geo.Centroid(pts)
		meta := muni.Meta{
			Name:         name,
			RefINE:       Prop(f.Properties, "ref:ine"),
			IneMunicipio: Prop(f.Properties, "ine:municipio"),
			Wikidata:     Prop(f.Properties, "wikidata"),
			Wikipedia:    Prop(f.Properties, "wikipedia"),
		}
		id := meta.IneMunicipio
		if id == "" {
			id = meta.RefINE
		}
		if id == "" {
			id = Slugify(name)
		}
		out = append(out, muni.Candidate{ID: id, Meta: meta, Rings: rings, BBox: bbox, Centroid: center})
	}
	return out
}

// 文档注释：提取指定级别的下级行政区
// 参数：level 为 "10" 或 "9"；placeFilter 非空时仅保留 place 在集合内的要素。
// 约束：ID 为 slug-级别-要素下标，下标取自整个集合，保证跨级别唯一。
func Areas(fc *geojson.FeatureCollection, level string, placeFilter map[string]bool) []Area {
	var out []Area
	skipped := 0
	for idx, f := range fc.Features {
		if !isAdmin(f.Properties, level) {
			continue
		}
		name := firstProp(f.Properties, "name", "name:es")
		if name == "" {
			continue
		}
		place := Prop(f.Properties, "place")
		if placeFilter != nil && !placeFilter[place] {
			continue
		}
		pts := Points(f.Geometry)
		bbox, ok := geo.BoundingBox(pts)
		if !ok {
			skipped++
			continue
		}
		center, _ := geo.Centroid(pts)
		out = append(out, Area{
			ID:         fmt.Sprintf("%s-%s-%d", Slugify(name), level, idx),
			Name:       name,
			AdminLevel: Text(level),
			Place:      Text(place),
			Wikidata:   Text(Prop(f.Properties, "wikidata")),
			Wikipedia:  Text(Prop(f.Properties, "wikipedia")),
			BBox:       bbox,
			Centroid:   center,
		})
	}
	if skipped > 0 {
		logger.L().Debug("areas_skipped_empty_geometry", "level", level, "count", skipped)
	}
	return out
}

// 文档注释：提取地名要素（任何带 place 的要素）
// 参数：types 非空时仅保留集合内的 place 类型。
// 约束：名称依次回退 name、name:es、name:eu、alt_name、official_name；无名称或无坐标的要素跳过。
func Places(fc *geojson.FeatureCollection, types map[string]bool) []Area {
	var out []Area
	for idx, f := range fc.Features {
		place := Prop(f.Properties, "place")
		if place == "" {
			continue
		}
		if types != nil && !types[place] {
			continue
		}
		name := firstProp(f.Properties, "name", "name:es", "name:eu", "alt_name", "official_name")
		if name == "" {
			continue
		}
		pts := Points(f.Geometry)
		bbox, ok := geo.BoundingBox(pts)
		if !ok {
			continue
		}
		center, _ := geo.Centroid(pts)
		out = append(out, Area{
			ID:         fmt.Sprintf("%s-%s-%d", Slugify(name), place, idx),
			Name:       name,
			AdminLevel: Text(Prop(f.Properties, "admin_level")),
			Place:      Text(place),
			PlaceInfo: &PlaceInfo{
				RefINE:         Text(Prop(f.Properties, "ref:ine")),
				Population:     Text(Prop(f.Properties, "population")),
				PopulationDate: Text(Prop(f.Properties, "population:date")),
				NameES:         Text(Prop(f.Properties, "name:es")),
				NameEU:         Text(Prop(f.Properties, "name:eu")),
			},
			Wikidata:  Text(Prop(f.Properties, "wikidata")),
			Wikipedia: Text(Prop(f.Properties, "wikipedia")),
			BBox:      bbox,
			Centroid:  center,
		})
	}
	return out
}
