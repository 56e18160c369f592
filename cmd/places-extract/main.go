package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"muni-join/internal/export"
	"muni-join/internal/join"
	"muni-join/internal/logger"
	"muni-join/internal/metrics"
	"muni-join/internal/pipeline"
	"muni-join/internal/source"

	"github.com/joho/godotenv"
)

// parseTypes：逗号分隔的 place 类型；未设置时使用默认类型，显式设为空串表示不过滤
func parseTypes() map[string]bool {
	raw, ok := os.LookupEnv("PLACES_TYPES")
	if !ok {
		return source.Set(source.DefaultPlaceTypes)
	}
	var types []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return source.Set(types)
}

// 文档注释：地名归属
// 背景：地名（place=suburb/neighbourhood/quarter 等）与市级边界来自不同文件；市级文件复用区划归属的输入。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	input := os.Getenv("PLACES_INPUT")
	if input == "" {
		input = filepath.Join("data", "geojson", "spain-places.geojson")
	}
	citiesPath := os.Getenv("PLACES_CITIES")
	if citiesPath == "" {
		citiesPath = filepath.Join("data", "geojson", "spain-cities-areas.geojson")
	}
	out := os.Getenv("PLACES_OUT")
	if out == "" {
		out = filepath.Join("data", "exports", "places_by_city.json")
	}
	cfg, err := join.ConfigFromEnv()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := metrics.ServeFromEnv(ctx, l); err != nil {
			l.Error("metrics_error", "err", err)
		}
	}()

	cityFC, err := source.LoadFile(citiesPath)
	if err != nil {
		l.Error("input_error", "err", err)
		os.Exit(1)
	}
	e, err := pipeline.BuildEngine(cityFC, cfg)
	if err != nil {
		l.Error("engine_error", "err", err)
		os.Exit(1)
	}
	placeFC, err := source.LoadFile(input)
	if err != nil {
		l.Error("input_error", "err", err)
		os.Exit(1)
	}
	byCity, err := pipeline.JoinPlaces(ctx, e, placeFC, parseTypes())
	if err != nil {
		l.Error("join_error", "err", err)
		os.Exit(1)
	}
	if err := export.WriteJSON(out, byCity); err != nil {
		l.Error("write_error", "err", err)
		os.Exit(1)
	}
	l.Info("places_extract_done", "path", out, "places", export.Count(byCity), "counts", pipeline.PlaceCounts(byCity))
}
