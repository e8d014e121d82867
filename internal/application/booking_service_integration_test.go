//go:build integration

package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-booking/internal/config"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-hotel-booking/internal/infrastructure/redis"
)

type integrationEnv struct {
	bookings  *BookingService
	rooms     *RoomService
	customers *CustomerService
}

// setupTestEnv は PostgreSQL と Redis を使って全サービスを組み立てる
func setupTestEnv(t *testing.T) *integrationEnv {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}
	require.NoError(t, postgres.RunMigrations(db.DB, "../../migrations"))
	_, err = db.Exec(`TRUNCATE bookings, customers, rooms RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	redisClient := redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		db.Close()
		t.Skipf("Redis接続エラー: %v", err)
	}
	lockManager := redisinfra.NewLockManager(redisClient, redisinfra.LockOptions{
		TTL: 5 * time.Second, Retries: 50, RetryInterval: 20 * time.Millisecond,
	}, nil)
	cache := redisinfra.NewAvailabilityCache(redisClient, time.Minute)

	t.Cleanup(func() {
		redisClient.Close()
		db.Close()
	})

	roomRepo := postgres.NewRoomRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	return &integrationEnv{
		bookings: NewBookingService(postgres.NewTxManager(db), bookingRepo, roomRepo, customerRepo, lockManager,
			WithAvailabilityCache(cache)),
		rooms:     NewRoomService(roomRepo, cache),
		customers: NewCustomerService(customerRepo),
	}
}

func futureDay(offset int) time.Time {
	return booking.TruncateToDate(time.Now()).AddDate(0, 0, 30+offset)
}

func TestConcurrentBooking(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	r, err := env.rooms.CreateRoom(ctx, CreateRoomInput{
		Number: "C-101", TypeID: 1, MaxCapacity: 2, PricePerNight: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)

	t.Run("10並行リクエストで1件のみ予約成功", func(t *testing.T) {
		const numGoroutines = 10
		var successCount, failCount int32
		var wg sync.WaitGroup

		for i := 0; i < numGoroutines; i++ {
			c, err := env.customers.CreateCustomer(ctx, CreateCustomerInput{
				FullName: fmt.Sprintf("並行ユーザー%d", i),
				Email:    fmt.Sprintf("concurrent-%d@example.com", i),
			})
			require.NoError(t, err)

			wg.Add(1)
			go func(customerID int64) {
				defer wg.Done()
				_, err := env.bookings.CreateBooking(ctx, CreateBookingInput{
					CustomerID: customerID, RoomID: r.ID, CheckIn: futureDay(0), CheckOut: futureDay(2),
				})
				if err == nil {
					atomic.AddInt32(&successCount, 1)
				} else {
					atomic.AddInt32(&failCount, 1)
				}
			}(c.ID)
		}
		wg.Wait()

		assert.Equal(t, int32(1), successCount, "成功は1つだけ")
		assert.Equal(t, int32(numGoroutines-1), failCount, "残りは全て失敗")
	})
}

func TestAvailabilityCacheInvalidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	r, err := env.rooms.CreateRoom(ctx, CreateRoomInput{
		Number: "K-201", TypeID: 2, MaxCapacity: 2, PricePerNight: decimal.NewFromInt(15000),
	})
	require.NoError(t, err)
	c, err := env.customers.CreateCustomer(ctx, CreateCustomerInput{FullName: "キャッシュ確認", Email: "cache@example.com"})
	require.NoError(t, err)

	before, err := env.bookings.FindAvailableRooms(ctx, futureDay(0), futureDay(1), AvailabilityFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{r.ID}, roomIDs(before))

	_, err = env.bookings.CreateBooking(ctx, CreateBookingInput{
		CustomerID: c.ID, RoomID: r.ID, CheckIn: futureDay(0), CheckOut: futureDay(1),
	})
	require.NoError(t, err)

	// 予約後は古いキャッシュが使われない
	after, err := env.bookings.FindAvailableRooms(ctx, futureDay(0), futureDay(1), AvailabilityFilter{})
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestExclusionConstraintBackstop(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	r, err := env.rooms.CreateRoom(ctx, CreateRoomInput{
		Number: "X-301", TypeID: 1, MaxCapacity: 1, PricePerNight: decimal.NewFromInt(8000),
	})
	require.NoError(t, err)
	c, err := env.customers.CreateCustomer(ctx, CreateCustomerInput{FullName: "制約確認", Email: "constraint@example.com"})
	require.NoError(t, err)

	// ロック無しでも制約で重複が防がれる
	unlocked := NewBookingService(env.bookings.txManager, env.bookings.bookingRepo, env.bookings.roomRepo,
		env.bookings.customerRepo, nil)

	var wg sync.WaitGroup
	var successCount, conflictCount int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := unlocked.CreateBooking(ctx, CreateBookingInput{
				CustomerID: c.ID, RoomID: r.ID, CheckIn: futureDay(5), CheckOut: futureDay(8),
			})
			switch {
			case err == nil:
				atomic.AddInt32(&successCount, 1)
			case errors.Is(err, booking.ErrBookingConflict):
				atomic.AddInt32(&conflictCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount)
	assert.Equal(t, int32(4), conflictCount)
}
