// 包 dedupe：按规范化名称去重区划与地名，并在多种打分策略中挑选最优结果
package dedupe

import (
	"sort"
	"strings"
	"unicode"

	"muni-join/internal/export"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ReasonEmptyName：名称规范化后为空
const ReasonEmptyName = "empty_name"

// NormalizeName：小写、NFKD 分解并去掉组合附加符号；非字母数字下划线的字符与连字符视为空白，连续空白折叠
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ScoreArea：wikidata 2 分，wikipedia 1 分，admin_level 为 10 再加 1 分
func ScoreArea(e export.Entry) int {
	score := 0
	if e.Wikidata != "" {
		score += 2
	}
	if e.Wikipedia != "" {
		score++
	}
	if e.AdminLevel == "10" {
		score++
	}
	return score
}

// Duplicate：被去重的条目；DuplicateOf 为保留条目的 ID
type Duplicate struct {
	export.Entry
	DuplicateOf *string `json:"duplicate_of"`
	Reason      string  `json:"reason,omitempty"`
}

// 文档注释：单个城市内按规范化名称去重
// 背景：同名区划常由 9/10 两级重复表达，保留得分更高的一个；得分相同保留先出现者。
// 约束：名称规范化后为空的条目不保留，记为 empty_name；保留结果按小写名称稳定排序。
func DedupeCity(entries []export.Entry) ([]export.Entry, []Duplicate) {
	kept := make(map[string]int)
	var order []export.Entry
	var dupes []Duplicate
	for _, e := range entries {
		key := NormalizeName(e.Name)
		if key == "" {
			dupes = append(dupes, Duplicate{Entry: e, Reason: ReasonEmptyName})
			continue
		}
		i, ok := kept[key]
		if !ok {
			kept[key] = len(order)
			order = append(order, e)
			continue
		}
		existing := order[i]
		if ScoreArea(e) > ScoreArea(existing) {
			id := e.ID
			dupes = append(dupes, Duplicate{Entry: existing, DuplicateOf: &id})
			order[i] = e
			continue
		}
		id := existing.ID
		dupes = append(dupes, Duplicate{Entry: e, DuplicateOf: &id})
	}
	sortByLowerName(order)
	return order, dupes
}

// Normalize：对每个城市执行 DedupeCity；仅在有重复时写入重复报告
func Normalize(byCity map[string][]export.Entry) (map[string][]export.Entry, map[string][]Duplicate) {
	normalized := make(map[string][]export.Entry, len(byCity))
	duplicates := make(map[string][]Duplicate)
	for city, entries := range byCity {
		kept, dupes := DedupeCity(entries)
		normalized[city] = kept
		if len(dupes) > 0 {
			duplicates[city] = dupes
		}
	}
	return normalized, duplicates
}

func sortByLowerName(es []export.Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		return strings.ToLower(es[i].Name) < strings.ToLower(es[j].Name)
	})
}
