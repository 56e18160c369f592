package main

import (
	"os"
	"path/filepath"

	"muni-join/internal/export"
	"muni-join/internal/logger"

	"github.com/joho/godotenv"
)

// 文档注释：只保留有地名的城市
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	citiesPath := os.Getenv("FILTER_CITIES")
	if citiesPath == "" {
		citiesPath = filepath.Join("data", "exports", "cities.json")
	}
	placesPath := os.Getenv("FILTER_PLACES")
	if placesPath == "" {
		placesPath = filepath.Join("data", "exports", "places_by_city.best.json")
	}
	out := os.Getenv("FILTER_OUT")
	if out == "" {
		out = filepath.Join("data", "exports", "cities.filtered.json")
	}

	var cities []export.City
	if err := export.ReadJSON(citiesPath, &cities); err != nil {
		l.Error("input_error", "err", err)
		os.Exit(1)
	}
	var byCity map[string][]export.Entry
	if err := export.ReadJSON(placesPath, &byCity); err != nil {
		l.Error("input_error", "err", err)
		os.Exit(1)
	}
	filtered := export.FilterCities(cities, byCity)
	if err := export.WriteJSON(out, filtered); err != nil {
		l.Error("write_error", "err", err)
		os.Exit(1)
	}
	l.Info("cities_filter_done", "input", len(cities), "filtered", len(filtered), "out", out)
}
