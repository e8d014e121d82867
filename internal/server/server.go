package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-booking/internal/api"
	"github.com/sanosuguru/go-hotel-booking/internal/api/handler"
	"github.com/sanosuguru/go-hotel-booking/internal/api/middleware"
	"github.com/sanosuguru/go-hotel-booking/internal/application"
	"github.com/sanosuguru/go-hotel-booking/internal/config"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/lock"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-hotel-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-hotel-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-hotel-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-hotel-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-hotel-booking/internal/worker"
)

// Options は Server の任意設定
type Options struct {
	// Metrics が nil の場合 /metrics と稼働状況ワーカーを無効にする
	Metrics *metrics.Metrics
	// Gatherer は /metrics で公開するレジストリ。nil なら既定のレジストリ
	Gatherer prometheus.Gatherer
	// Now は「今日」の判定に使う時計。nil なら time.Now
	Now func() time.Time
}

// Server は設定に従って組み立てたAPIサーバー
type Server struct {
	cfg       *config.Config
	echo      *echo.Echo
	refresher *worker.OccupancyRefresher
	closers   []func() error
}

type storage struct {
	tx        transaction.Manager
	bookings  booking.Repository
	rooms     room.Repository
	customers customer.Repository
}

// New は設定されたドライバでストレージ・ロック・キャッシュ・イベント配信を組み立てる
func New(cfg *config.Config, opts Options) (*Server, error) {
	s := &Server{cfg: cfg}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	checks := map[string]handler.HealthCheck{}

	st, err := s.openStorage(cfg, checks)
	if err != nil {
		s.Close()
		return nil, err
	}

	lockManager, cache, err := s.openLocking(cfg, opts.Metrics, checks)
	if err != nil {
		s.Close()
		return nil, err
	}

	publisher, err := s.openPublisher(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	bookingOpts := []application.BookingOption{
		application.WithEventPublisher(publisher),
		application.WithMetrics(opts.Metrics),
		application.WithClock(opts.Now),
	}
	var roomCache application.AvailabilityCache
	if cache != nil {
		bookingOpts = append(bookingOpts, application.WithAvailabilityCache(cache))
		roomCache = cache
	}

	roomService := application.NewRoomService(st.rooms, roomCache)
	customerService := application.NewCustomerService(st.customers)
	bookingService := application.NewBookingService(st.tx, st.bookings, st.rooms, st.customers, lockManager, bookingOpts...)
	statsService := application.NewStatsService(st.rooms, st.bookings, opts.Now)

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	middleware.SetupMiddleware(e, opts.Metrics)

	var metricsHandler http.Handler
	if opts.Metrics != nil {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		metricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
		s.refresher = worker.NewOccupancyRefresher(statsService, opts.Metrics, cfg.Booking.OccupancyInterval)
	}

	handler.RegisterRoutes(e, handler.Handlers{
		Room:     handler.NewRoomHandler(roomService, bookingService),
		Customer: handler.NewCustomerHandler(customerService, bookingService),
		Booking:  handler.NewBookingHandler(bookingService),
		Stats:    handler.NewStatsHandler(statsService),
		Health:   handler.NewHealthHandler(checks),
	}, metricsHandler, middleware.MetricsBasicAuth(cfg.Metrics))

	s.echo = e
	return s, nil
}

func (s *Server) openStorage(cfg *config.Config, checks map[string]handler.HealthCheck) (*storage, error) {
	switch cfg.Booking.StorageDriver {
	case config.DriverMemory:
		store := memory.NewStore()
		logger.Info("インメモリストレージを使用します")
		return &storage{
			tx:        memory.NewTxManager(store),
			bookings:  memory.NewBookingRepository(store),
			rooms:     memory.NewRoomRepository(store),
			customers: memory.NewCustomerRepository(store),
		}, nil
	case config.DriverPostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if cfg.Database.MigrationsPath != "" {
			if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
				return nil, err
			}
		}
		checks["postgres"] = func(ctx context.Context) error { return postgres.Ping(ctx, db) }
		logger.Info("PostgreSQLに接続しました", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
		return postgresStorage(db), nil
	default:
		return nil, fmt.Errorf("未対応のストレージドライバです: %q", cfg.Booking.StorageDriver)
	}
}

func postgresStorage(db *sqlx.DB) *storage {
	return &storage{
		tx:        postgres.NewTxManager(db),
		bookings:  postgres.NewBookingRepository(db),
		rooms:     postgres.NewRoomRepository(db),
		customers: postgres.NewCustomerRepository(db),
	}
}

// openLocking は客室ロックと空室キャッシュを作成する
// 空室キャッシュは Redis 利用時のみ有効
func (s *Server) openLocking(cfg *config.Config, m *metrics.Metrics, checks map[string]handler.HealthCheck) (lock.Manager, *redisinfra.AvailabilityCache, error) {
	switch cfg.Booking.LockDriver {
	case config.DriverMemory:
		wait := time.Duration(cfg.Booking.LockRetries+1) * cfg.Booking.LockRetryInterval
		return memory.NewLockManager(wait), nil, nil
	case config.DriverRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := redisinfra.Connect(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, client.Close)
		checks["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, client) }
		logger.Info("Redisに接続しました", zap.String("addr", cfg.Redis.Addr()))

		lm := redisinfra.NewLockManager(client, redisinfra.LockOptions{
			TTL:           cfg.Booking.LockTTL,
			Retries:       cfg.Booking.LockRetries,
			RetryInterval: cfg.Booking.LockRetryInterval,
		}, m)
		return lm, newCache(client, cfg.Booking.AvailabilityTTL), nil
	default:
		return nil, nil, fmt.Errorf("未対応のロックドライバです: %q", cfg.Booking.LockDriver)
	}
}

// ttl が0以下の場合はキャッシュしない
func newCache(client *goredis.Client, ttl time.Duration) *redisinfra.AvailabilityCache {
	if ttl <= 0 {
		return nil
	}
	return redisinfra.NewAvailabilityCache(client, ttl)
}

func (s *Server) openPublisher(cfg *config.Config) (application.EventPublisher, error) {
	if cfg.AMQP.URL == "" {
		return rabbitmq.LogPublisher{}, nil
	}
	p, err := rabbitmq.NewPublisher(&cfg.AMQP)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, p.Close)
	logger.Info("RabbitMQに接続しました", zap.String("exchange", cfg.AMQP.Exchange))
	return p, nil
}

// Handler はHTTPハンドラーを返す
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run はサーバーと稼働状況ワーカーを起動し、ctx がキャンセルされるまで待つ
// キャンセル後は ShutdownTimeout 以内にリクエストを処理し終えて接続を閉じる
func (s *Server) Run(ctx context.Context) error {
	if s.refresher != nil {
		go s.refresher.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + s.cfg.Server.Port
		logger.Info("サーバー起動", zap.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case err := <-errCh:
		runErr = fmt.Errorf("サーバー起動エラー: %w", err)
	case <-ctx.Done():
		logger.Info("サーバーをシャットダウンしています...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("サーバーシャットダウンエラー: %w", err))
	}
	if s.refresher != nil {
		s.refresher.Stop()
	}
	if err := s.Close(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if runErr == nil {
		logger.Info("サーバーが正常にシャットダウンしました")
	}
	return runErr
}

// Close は接続を作成と逆順に閉じる
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
