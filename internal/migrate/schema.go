package migrate

import (
	"context"
	"database/sql"

	"muni-join/internal/logger"
)

// Execer：EnsureSchema 只需要执行语句的能力
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Statements：建表语句，按顺序执行
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS cities (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            ref_ine TEXT,
            ine_municipio TEXT,
            wikidata TEXT,
            wikipedia TEXT,
            centroid JSONB NOT NULL,
            bbox JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	`CREATE INDEX IF NOT EXISTS idx_cities_name ON cities(lower(name))`,
	`CREATE TABLE IF NOT EXISTS city_places (
            id TEXT PRIMARY KEY,
            city_id TEXT NOT NULL,
            name TEXT NOT NULL,
            place TEXT,
            admin_level TEXT,
            ref_ine TEXT,
            wikidata TEXT,
            wikipedia TEXT,
            population TEXT,
            population_date TEXT,
            name_es TEXT,
            name_eu TEXT,
            centroid JSONB NOT NULL,
            bbox JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	`CREATE INDEX IF NOT EXISTS idx_city_places_city ON city_places(city_id)`,
	`ALTER TABLE city_places DROP CONSTRAINT IF EXISTS city_places_city_id_fkey`,
	`ALTER TABLE city_places ADD CONSTRAINT city_places_city_id_fkey FOREIGN KEY (city_id) REFERENCES cities(id) DEFERRABLE INITIALLY DEFERRED`,
}

// 背景：首次导入前自动创建城市与地名表
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；外键可延迟检查，允许城市与地名分批写入
func EnsureSchema(ctx context.Context, db Execer) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
