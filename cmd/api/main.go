package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-booking/internal/config"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-hotel-booking/internal/server"
)

// @title Hotel Booking API
// @version 1.0
// @description 客室の空室検索と予約管理のAPI
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("設定の読み込みに失敗しました", zap.Error(err))
	}

	log := logger.Init(cfg.Log.Env, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	srv, err := server.New(cfg, server.Options{Metrics: metrics.New()})
	if err != nil {
		logger.Fatal("サーバーの初期化に失敗しました", zap.Error(err))
	}

	// シグナル待機
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("サーバーが異常終了しました", zap.Error(err))
		os.Exit(1)
	}
}
