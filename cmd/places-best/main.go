package main

import (
	"os"
	"path/filepath"

	"muni-join/internal/dedupe"
	"muni-join/internal/export"
	"muni-join/internal/logger"

	"github.com/joho/godotenv"
)

// 文档注释：按多种打分策略去重地名，输出整体质量最高的一份
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	input := os.Getenv("BEST_INPUT")
	if input == "" {
		input = filepath.Join("data", "exports", "places_by_city.json")
	}
	out := os.Getenv("BEST_OUT")
	if out == "" {
		out = filepath.Join("data", "exports", "places_by_city.best.json")
	}

	var byCity map[string][]export.Entry
	if err := export.ReadJSON(input, &byCity); err != nil {
		l.Error("input_error", "err", err)
		os.Exit(1)
	}
	best, all := dedupe.BestStrategy(byCity)
	for _, r := range all {
		l.Debug("strategy_metrics", "strategy", r.Strategy, "total", r.Metrics.Total, "quality", r.Metrics.TotalQuality)
	}
	if err := export.WriteJSON(out, best.Data); err != nil {
		l.Error("write_error", "err", err)
		os.Exit(1)
	}
	l.Info("places_best_done",
		"strategy", best.Strategy,
		"total", best.Metrics.Total,
		"with_wikidata", best.Metrics.WithWikidata,
		"with_wikipedia", best.Metrics.WithWikipedia,
		"with_polygon", best.Metrics.WithPolygon,
		"quality", best.Metrics.TotalQuality,
		"out", out,
	)
}
