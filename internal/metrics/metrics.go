package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AssignmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "munijoin_assignments_total",
		Help: "Total feature assignments by resolving stage",
	}, []string{"stage"})
	AssignDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "munijoin_assign_duration_ms",
		Help:    "Batch assignment duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 20000},
	})
	MunicipalitiesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "munijoin_municipalities",
		Help: "Number of municipality records after overlap reduction",
	})
	GridCells = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "munijoin_grid_cells",
		Help: "Number of non-empty grid cells in the spatial index",
	})
	FeaturesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "munijoin_features_skipped_total",
		Help: "Input features dropped before assignment",
	}, []string{"reason"})
	RowsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "munijoin_rows_written_total",
		Help: "Rows written to postgres by table",
	}, []string{"table"})
	RedisPublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "munijoin_redis_publish_total",
		Help: "Redis publish attempts by status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(AssignmentsTotal)
	prometheus.MustRegister(AssignDurationMs)
	prometheus.MustRegister(MunicipalitiesLoaded)
	prometheus.MustRegister(GridCells)
	prometheus.MustRegister(FeaturesSkippedTotal)
	prometheus.MustRegister(RowsWrittenTotal)
	prometheus.MustRegister(RedisPublishTotal)
}

// 文档注释：返回 Prometheus 指标处理器
// 背景：批处理命令在设置 METRICS_ADDR 时临时挂载 /metrics，便于长任务期间抓取进度。
func Handler() http.Handler { return promhttp.Handler() }
