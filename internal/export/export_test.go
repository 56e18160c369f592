package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"muni-join/internal/geo"
	"muni-join/internal/join"
	"muni-join/internal/muni"
	"muni-join/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 float64) geo.Ring {
	return geo.Ring{{Lon: x0, Lat: y0}, {Lon: x1, Lat: y0}, {Lon: x1, Lat: y1}, {Lon: x0, Lat: y1}}
}

func records(t *testing.T) []*muni.Record {
	t.Helper()
	cands := []muni.Candidate{
		{ID: "2", Meta: muni.Meta{Name: "Zamora"}, Rings: []geo.Ring{square(0, 0, 1, 1)},
			BBox: geo.BBox{MaxLon: 1, MaxLat: 1}, Centroid: geo.Coordinate{Lon: 0.5, Lat: 0.5}},
		{ID: "1", Meta: muni.Meta{Name: "Avila", RefINE: "05019"}, Rings: []geo.Ring{square(2, 0, 3, 1)},
			BBox: geo.BBox{MinLon: 2, MaxLon: 3, MaxLat: 1}, Centroid: geo.Coordinate{Lon: 2.5, Lat: 0.5}},
		{ID: "3", Meta: muni.Meta{Name: "burgos"}, Rings: []geo.Ring{square(4, 0, 5, 1)},
			BBox: geo.BBox{MinLon: 4, MaxLon: 5, MaxLat: 1}, Centroid: geo.Coordinate{Lon: 4.5, Lat: 0.5}},
	}
	rs, err := muni.Reduce(cands, geo.BackendRing)
	require.NoError(t, err)
	return rs
}

func TestCitiesSortedByName(t *testing.T) {
	cs := Cities(records(t))
	require.Len(t, cs, 3)
	assert.Equal(t, []string{"Avila", "Zamora", "burgos"}, []string{cs[0].Name, cs[1].Name, cs[2].Name})
	assert.Equal(t, "8", cs[0].AdminLevel)
	assert.Equal(t, source.Text("05019"), cs[0].RefINE)
}

func TestGroup(t *testing.T) {
	areas := []source.Area{{ID: "b", Name: "Beta"}, {ID: "x", Name: "Lost"}, {ID: "a", Name: "Alpha"}}
	as := []join.Assignment{
		{FeatureID: "b", MunicipalityID: "1", Stage: join.StageCandidate},
		{FeatureID: "x"},
		{FeatureID: "a", MunicipalityID: "1", Stage: join.StageNearest},
	}

	plain := Group(areas, as, nil, false)
	require.Len(t, plain["1"], 2)
	assert.Equal(t, "b", plain["1"][0].ID)
	assert.Nil(t, plain["1"][0].CityName)
	require.Len(t, plain[Unassigned], 1)
	assert.Nil(t, plain[Unassigned][0].CityID)

	named := Group(areas, as, Names(records(t)), true)
	assert.Equal(t, "a", named["1"][0].ID)
	require.NotNil(t, named["1"][0].CityName)
	assert.Equal(t, source.Text("Avila"), *named["1"][0].CityName)
	require.NotNil(t, named[Unassigned][0].CityName)
	assert.Equal(t, source.Text(""), *named[Unassigned][0].CityName)
	assert.Equal(t, "1", *named["1"][1].CityID)

	all := Group(areas[:1], as[:1], nil, false)
	_, ok := all[Unassigned]
	assert.False(t, ok)
}

func TestEntryJSON(t *testing.T) {
	id := "1"
	b, err := json.Marshal(Entry{Area: source.Area{ID: "a", Name: "Alpha", AdminLevel: "10"}, CityID: &id})
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "1", m["city_id"])
	assert.Equal(t, "10", m["admin_level"])
	assert.NotContains(t, m, "city_name")
	assert.Contains(t, m, "bbox")

	b, err = json.Marshal(Entry{Area: source.Area{ID: "x"}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"city_id":null`)
}

func TestExportKeepsNullKeys(t *testing.T) {
	cs := Cities(records(t))
	b, err := json.Marshal(cs[1])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"ref_ine":null`)
	assert.Contains(t, string(b), `"wikidata":null`)
	assert.Contains(t, string(b), `"ine_municipio":null`)

	// 区划：place 缺失写 null，不带地名专属键
	b, err = json.Marshal(Entry{Area: source.Area{ID: "a", Name: "Alpha", AdminLevel: "9"}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"place":null`)
	assert.NotContains(t, string(b), "population")

	// 未归属地名：city_id 与 city_name 均为 null
	areas := []source.Area{{ID: "p", Name: "Lost", Place: "suburb", PlaceInfo: &source.PlaceInfo{NameEU: "Galduta"}}}
	grouped := Group(areas, []join.Assignment{{FeatureID: "p"}}, map[string]string{}, true)
	b, err = json.Marshal(grouped[Unassigned][0])
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"city_id", "city_name", "ref_ine", "population", "population_date", "name_es", "wikidata"} {
		v, ok := m[k]
		assert.True(t, ok, "key %s", k)
		assert.Nil(t, v, "key %s", k)
	}
	assert.Equal(t, "Galduta", m["name_eu"])

	// 读回后键集合不变
	var back Entry
	require.NoError(t, json.Unmarshal(b, &back))
	require.NotNil(t, back.PlaceInfo)
	assert.Equal(t, source.Text("Galduta"), back.NameEU)
	again, err := json.Marshal(back)
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(again))
}

func TestMerge(t *testing.T) {
	a := map[string][]Entry{"1": {{Area: source.Area{ID: "a"}}}, Unassigned: {{Area: source.Area{ID: "u1"}}}}
	b := map[string][]Entry{"1": {{Area: source.Area{ID: "b"}}}, "2": {{Area: source.Area{ID: "c"}}}, Unassigned: {{Area: source.Area{ID: "u2"}}}}
	m := Merge(a, b)
	assert.Len(t, m["1"], 2)
	assert.Equal(t, "b", m["1"][1].ID)
	assert.Len(t, m["2"], 1)
	assert.Len(t, m[Unassigned], 2)
	assert.Len(t, a["1"], 1)
	assert.Equal(t, 5, Count(m))
}

func TestFilterCities(t *testing.T) {
	cs := Cities(records(t))
	byCity := map[string][]Entry{
		"2":        {{Area: source.Area{ID: "p"}}},
		"3":        {{Area: source.Area{ID: "q"}}},
		"1":        {},
		Unassigned: {{Area: source.Area{ID: "u"}}},
	}
	out := FilterCities(cs, byCity)
	require.Len(t, out, 2)
	assert.Equal(t, "burgos", out[0].Name)
	assert.Equal(t, "Zamora", out[1].Name)
}

func TestWriteReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	in := map[string][]Entry{"1": {{Area: source.Area{ID: "a", Name: "Añorga & Rekalde"}}}}
	require.NoError(t, WriteJSON(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Añorga & Rekalde")
	assert.Contains(t, string(raw), "\n  \"1\": [")

	var out map[string][]Entry
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, "Añorga & Rekalde", out["1"][0].Name)

	assert.Error(t, ReadJSON(filepath.Join(t.TempDir(), "none.json"), &out))
}
