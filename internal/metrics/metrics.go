// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。
// 外部データフェッチャーとダッシュボードアセンブラから利用する。
type Recorder interface {
	RecordFetchSuccess(source string)
	RecordFetchDegraded(source string, reason string)
	RecordHTTPStatus(source string, statusCode int)
	RecordFetchLatency(source string, duration time.Duration)
	RecordDashboardRender()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess    *prometheus.CounterVec
	fetchDegraded   *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	fetchLatency    *prometheus.HistogramVec
	dashboardRender prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirrordash_fetch_success_total",
			Help: "外部データ取得成功のソース別合計数",
		}, []string{"source"}),
		fetchDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirrordash_fetch_degraded_total",
			Help: "デフォルトデータへのフォールバック回数（ソース・理由別）",
		}, []string{"source", "reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirrordash_external_http_status_total",
			Help: "外部APIのHTTPステータスコード別レスポンス数",
		}, []string{"source", "status_code"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mirrordash_fetch_latency_seconds",
			Help:    "外部データ取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		dashboardRender: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mirrordash_dashboard_render_total",
			Help: "ダッシュボードコンテキスト組み立ての合計数",
		}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchDegraded,
		c.httpStatus,
		c.fetchLatency,
		c.dashboardRender,
	)

	return c
}

// RecordFetchSuccess は外部データ取得成功を記録する。
func (c *Collector) RecordFetchSuccess(source string) {
	c.fetchSuccess.WithLabelValues(source).Inc()
}

// RecordFetchDegraded はデフォルトデータへのフォールバックを記録する。
func (c *Collector) RecordFetchDegraded(source string, reason string) {
	c.fetchDegraded.WithLabelValues(source, reason).Inc()
}

// RecordHTTPStatus は外部APIのHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(source string, statusCode int) {
	c.httpStatus.WithLabelValues(source, strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency は外部データ取得のレイテンシを記録する。
func (c *Collector) RecordFetchLatency(source string, duration time.Duration) {
	c.fetchLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordDashboardRender はダッシュボードコンテキストの組み立てを記録する。
func (c *Collector) RecordDashboardRender() {
	c.dashboardRender.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ Recorder = (*Collector)(nil)
