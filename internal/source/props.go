package source

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/paulmach/orb/geojson"
)

// Prop：读取属性；顶层不存在时回退到 tags 子对象
// 约束：顶层存在但为 null 时返回空串，不再查 tags；数字按最短形式输出（8 → "8"）
func Prop(props geojson.Properties, key string) string {
	if v, ok := props[key]; ok {
		return format(v)
	}
	if tags, ok := props["tags"].(map[string]interface{}); ok {
		return format(tags[key])
	}
	return ""
}

// firstProp：按顺序返回第一个非空属性
func firstProp(props geojson.Properties, keys ...string) string {
	for _, k := range keys {
		if v := Prop(props, k); v != "" {
			return v
		}
	}
	return ""
}

func format(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Slugify：小写字母数字保留，空格 - / 转为下划线，连续下划线合并，首尾下划线去除；结果为空时返回 unknown
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '/':
			b.WriteByte('_')
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.Trim(out, "_")
	if out == "" {
		return "unknown"
	}
	return out
}
