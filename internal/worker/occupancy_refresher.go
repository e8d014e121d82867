package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-booking/internal/application"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/logger"
)

// OccupancySource は当日の稼働状況を集計するインターフェース
type OccupancySource interface {
	Occupancy(ctx context.Context) (*application.OccupancyStats, error)
}

// OccupancyGauge は稼働状況を記録する先
type OccupancyGauge interface {
	SetOccupancy(activeBookings int, rate float64)
}

// OccupancyRefresher は稼働状況を定期的に集計してゲージに反映するワーカー
type OccupancyRefresher struct {
	source   OccupancySource
	gauge    OccupancyGauge
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewOccupancyRefresher は新しいワーカーを作成
func NewOccupancyRefresher(source OccupancySource, gauge OccupancyGauge, interval time.Duration) *OccupancyRefresher {
	return &OccupancyRefresher{
		source:   source,
		gauge:    gauge,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始する。起動直後に1回集計する
func (r *OccupancyRefresher) Start(ctx context.Context) {
	logger.Info("稼働状況の集計ワーカー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("稼働状況の集計ワーカー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("稼働状況の集計ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はワーカーを停止し、終了を待つ
func (r *OccupancyRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *OccupancyRefresher) refresh(ctx context.Context) {
	log := logger.Get()

	stats, err := r.source.Occupancy(ctx)
	if err != nil {
		log.Error("稼働状況の集計失敗", zap.Error(err))
		return
	}
	r.gauge.SetOccupancy(stats.ActiveBookings, stats.OccupancyRate)
	log.Debug("稼働状況を更新",
		zap.Int("active_bookings", stats.ActiveBookings),
		zap.Int("occupied_rooms", stats.OccupiedRooms),
		zap.Float64("occupancy_rate", stats.OccupancyRate),
	)
}
