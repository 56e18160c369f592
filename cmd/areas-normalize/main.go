package main

import (
	"os"
	"path/filepath"

	"muni-join/internal/dedupe"
	"muni-join/internal/export"
	"muni-join/internal/logger"

	"github.com/joho/godotenv"
)

// 文档注释：区划同名去重
// 背景：同一城市下 9 级与 10 级常出现同名区划，按规范化名称保留信息更完整的一条，其余写入重复报告。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	input := os.Getenv("NORMALIZE_INPUT")
	if input == "" {
		input = filepath.Join("data", "exports", "areas_by_city.json")
	}
	out := os.Getenv("NORMALIZE_OUT")
	if out == "" {
		out = filepath.Join("data", "exports", "areas_by_city.normalized.json")
	}
	dupesPath := os.Getenv("NORMALIZE_DUPES")
	if dupesPath == "" {
		dupesPath = filepath.Join("data", "exports", "areas_by_city.duplicates.json")
	}

	var byCity map[string][]export.Entry
	if err := export.ReadJSON(input, &byCity); err != nil {
		l.Error("input_error", "err", err)
		os.Exit(1)
	}
	normalized, dupes := dedupe.Normalize(byCity)
	if err := export.WriteJSON(out, normalized); err != nil {
		l.Error("write_error", "err", err)
		os.Exit(1)
	}
	if err := export.WriteJSON(dupesPath, dupes); err != nil {
		l.Error("write_error", "err", err)
		os.Exit(1)
	}
	total := 0
	for _, d := range dupes {
		total += len(d)
	}
	l.Info("areas_normalize_done",
		"input", export.Count(byCity),
		"normalized", export.Count(normalized),
		"duplicates", total,
		"out", out,
		"dupes", dupesPath,
	)
}
