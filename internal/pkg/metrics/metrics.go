package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 予約操作の結果ラベル
const (
	ResultSuccess     = "success"
	ResultConflict    = "conflict"
	ResultUnavailable = "unavailable"
	ResultInvalid     = "invalid"
	ResultLockFailed  = "lock_failed"
	ResultError       = "error"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約操作の総数（operation: create/update/cancel, result）
	BookingsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 有効な予約数
	ActiveBookings prometheus.Gauge

	// 本日の稼働率（%）
	OccupancyRate prometheus.Gauge

	// 空室検索キャッシュの参照結果（result: hit/miss/error）
	AvailabilityCacheTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking operations by outcome",
			},
			[]string{"operation", "result"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on room lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		ActiveBookings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_bookings",
				Help: "Current number of active bookings",
			},
		),
		OccupancyRate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "occupancy_rate",
				Help: "Percentage of active rooms occupied today",
			},
		),
		AvailabilityCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "availability_cache_requests_total",
				Help: "Availability cache lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.DistributedLockDuration,
		m.ActiveBookings,
		m.OccupancyRate,
		m.AvailabilityCacheTotal,
	)

	return m
}

// RecordBooking は予約操作の結果を記録する（nil の場合は何もしない）
func (m *Metrics) RecordBooking(operation, result string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveLock はロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

// RecordCache は空室キャッシュの参照結果を記録する
func (m *Metrics) RecordCache(result string) {
	if m == nil {
		return
	}
	m.AvailabilityCacheTotal.WithLabelValues(result).Inc()
}

// SetOccupancy は稼働状況のゲージを更新する
func (m *Metrics) SetOccupancy(activeBookings int, rate float64) {
	if m == nil {
		return
	}
	m.ActiveBookings.Set(float64(activeBookings))
	m.OccupancyRate.Set(rate)
}
