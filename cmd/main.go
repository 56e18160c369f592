// 程序入口：区划归属。读取含市级边界与 9/10 级区划的 GeoJSON，输出 cities.json 与按城市分组的区划
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"muni-join/internal/export"
	"muni-join/internal/join"
	"muni-join/internal/logger"
	"muni-join/internal/metrics"
	"muni-join/internal/pipeline"
	"muni-join/internal/source"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	input := os.Getenv("JOIN_INPUT")
	if input == "" {
		input = filepath.Join("data", "geojson", "spain-cities-areas.geojson")
	}
	outDir := os.Getenv("JOIN_OUT_DIR")
	if outDir == "" {
		outDir = filepath.Join("data", "exports")
	}
	var placeFilter map[string]bool
	if v, _ := strconv.ParseBool(os.Getenv("JOIN_FILTER_PLACE")); v {
		placeFilter = source.Set(source.AreaPlaceFilter)
	}
	cfg, err := join.ConfigFromEnv()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_loaded", "input", input, "out_dir", outDir, "cell_size", cfg.CellSize, "backend", cfg.Backend, "workers", cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := metrics.ServeFromEnv(ctx, l); err != nil {
			l.Error("metrics_error", "err", err)
		}
	}()

	fc, err := source.LoadFile(input)
	if err != nil {
		l.Error("input_error", "err", err)
		os.Exit(1)
	}
	res, err := pipeline.JoinAreas(ctx, fc, cfg, placeFilter)
	if err != nil {
		l.Error("join_error", "err", err)
		os.Exit(1)
	}

	outputs := []struct {
		name string
		v    interface{}
	}{
		{"cities.json", res.Cities},
		{"areas_by_city.json", res.Combined},
		{"areas_level9_by_city.json", res.Level9},
	}
	for _, o := range outputs {
		p := filepath.Join(outDir, o.name)
		if err := export.WriteJSON(p, o.v); err != nil {
			l.Error("write_error", "err", err)
			os.Exit(1)
		}
		l.Info("write_done", "path", p)
	}
	l.Info("areas_join_done",
		"cities", len(res.Cities),
		"level10", export.Count(res.Level10),
		"level9", export.Count(res.Level9),
		"unassigned_level10", len(res.Level10[export.Unassigned]),
		"unassigned_level9", len(res.Level9[export.Unassigned]),
	)
}
