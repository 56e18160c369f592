package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"muni-join/internal/export"
	"muni-join/internal/logger"
	"muni-join/internal/migrate"
	"muni-join/internal/sink"
	"muni-join/internal/store"
	"muni-join/internal/utils"

	"github.com/joho/godotenv"
)

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

// 文档注释：城市与地名入库
// 背景：读取过滤后的城市与最优地名，建表后分批写入 PostgreSQL；配置 Redis 时同步发布地名到城市的映射。
// 约束：IMPORT_DRY_RUN 只统计不写入；IMPORT_UPSERT 控制冲突时覆盖还是保留旧行。
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	citiesPath := os.Getenv("IMPORT_CITIES")
	if citiesPath == "" {
		citiesPath = filepath.Join("data", "exports", "cities.filtered.json")
	}
	placesPath := os.Getenv("IMPORT_PLACES")
	if placesPath == "" {
		placesPath = filepath.Join("data", "exports", "places_by_city.best.json")
	}
	batch := 500
	if s := os.Getenv("IMPORT_BATCH_SIZE"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			l.Error("config_error", "err", store.ErrBatchSize, "value", s)
			os.Exit(1)
		}
		batch = n
	}
	upsert := envBool("IMPORT_UPSERT")

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
	l.Info("import_loaded", "cities", len(cities), "places", len(store.Places(byCity)))
	if envBool("IMPORT_DRY_RUN") {
		l.Info("import_dry_run")
		return
	}

	ctx := context.Background()
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		os.Exit(1)
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("db_tx_error", "err", err)
		os.Exit(1)
	}
	st := store.Attach(tx)
	nc, err := st.UpsertCities(ctx, cities, batch, upsert)
	if err != nil {
		_ = tx.Rollback()
		l.Error("import_cities_error", "err", err, "written", nc)
		os.Exit(1)
	}
	np, err := st.UpsertPlaces(ctx, byCity, batch, upsert)
	if err != nil {
		_ = tx.Rollback()
		l.Error("import_places_error", "err", err, "written", np)
		os.Exit(1)
	}
	if err := tx.Commit(); err != nil {
		l.Error("db_commit_error", "err", err)
		os.Exit(1)
	}
	l.Info("import_db_done", "cities", nc, "places", np, "upsert", upsert)

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
		return
	}
	defer rc.Close()
	if err := sink.NewRedisSink(rc, os.Getenv("REDIS_PREFIX")).Publish(ctx, byCity); err != nil {
		l.Error("redis_publish_error", "err", err)
		os.Exit(1)
	}
}
