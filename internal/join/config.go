package join

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"muni-join/internal/geo"
	"muni-join/internal/grid"
)

var ErrInvalidConfig = errors.New("invalid join config")

// 文档注释：空间归属参数
// 背景：默认值沿用参考配置（单元 0.25°、初始半径 1、重试半径 2、允许最近质心兜底）。
// 约束：FallbackRadius 必须不小于 CandidateRadius，否则重试阶段会被静默跳过，构造期即拒绝。
type Config struct {
	CellSize             float64
	CandidateRadius      int
	FallbackRadius       int
	AllowNearestFallback bool
	Backend              string
	Workers              int
	QueryCache           int
}

func DefaultConfig() Config {
	return Config{
		CellSize:             0.25,
		CandidateRadius:      1,
		FallbackRadius:       2,
		AllowNearestFallback: true,
		Backend:              geo.BackendRing,
		Workers:              runtime.NumCPU(),
		QueryCache:           4096,
	}
}

func (c Config) Validate() error {
	if !(c.CellSize >= grid.MinCellSize) || math.IsInf(c.CellSize, 1) {
		return fmt.Errorf("%w: cell size must be finite and at least %v, got %v", ErrInvalidConfig, grid.MinCellSize, c.CellSize)
	}
	if c.CandidateRadius < 0 || c.FallbackRadius < 0 {
		return fmt.Errorf("%w: radii must be non-negative (candidate=%d, fallback=%d)", ErrInvalidConfig, c.CandidateRadius, c.FallbackRadius)
	}
	if c.FallbackRadius < c.CandidateRadius {
		return fmt.Errorf("%w: fallback radius %d is smaller than candidate radius %d", ErrInvalidConfig, c.FallbackRadius, c.CandidateRadius)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}
	switch c.Backend {
	case "", geo.BackendRing, geo.BackendOrb:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, geo.ErrUnknownBackend, c.Backend)
	}
	return nil
}

// 文档注释：从环境变量读取参数并校验
// 约束：未设置的变量保留默认值；已设置但无法解析的变量视为配置错误，不做静默回退。
func ConfigFromEnv() (Config, error) {
	c := DefaultConfig()
	var errs []error
	if s := os.Getenv("JOIN_CELL_SIZE"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		errs = append(errs, envErr("JOIN_CELL_SIZE", err))
		c.CellSize = f
	}
	if s := os.Getenv("JOIN_CANDIDATE_RADIUS"); s != "" {
		n, err := strconv.Atoi(s)
		errs = append(errs, envErr("JOIN_CANDIDATE_RADIUS", err))
		c.CandidateRadius = n
	}
	if s := os.Getenv("JOIN_FALLBACK_RADIUS"); s != "" {
		n, err := strconv.Atoi(s)
		errs = append(errs, envErr("JOIN_FALLBACK_RADIUS", err))
		c.FallbackRadius = n
	}
	if s := os.Getenv("JOIN_ALLOW_NEAREST"); s != "" {
		b, err := strconv.ParseBool(s)
		errs = append(errs, envErr("JOIN_ALLOW_NEAREST", err))
		c.AllowNearestFallback = b
	}
	if s := os.Getenv("JOIN_BACKEND"); s != "" {
		c.Backend = strings.ToLower(strings.TrimSpace(s))
	}
	if s := os.Getenv("JOIN_WORKERS"); s != "" {
		n, err := strconv.Atoi(s)
		errs = append(errs, envErr("JOIN_WORKERS", err))
		c.Workers = n
	}
	if s := os.Getenv("JOIN_QUERY_CACHE"); s != "" {
		n, err := strconv.Atoi(s)
		errs = append(errs, envErr("JOIN_QUERY_CACHE", err))
		c.QueryCache = n
	}
	if err := errors.Join(errs...); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func envErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
}
