//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-booking/internal/config"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/transaction"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skip("PostgreSQL not available")
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db.DB, "../../../migrations"))
	_, err = db.Exec(`TRUNCATE bookings, customers, rooms RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func seed(t *testing.T, db *sqlx.DB) (*room.Room, *customer.Customer) {
	t.Helper()
	ctx := context.Background()
	rm := room.NewRoom("101", "Garden view", 1, 2, decimal.RequireFromString("120.00"))
	require.NoError(t, NewRoomRepository(db).Create(ctx, rm))
	c := customer.NewCustomer("Hanako", fmt.Sprintf("hanako+%d@example.com", time.Now().UnixNano()), "", nil)
	require.NoError(t, NewCustomerRepository(db).Create(ctx, c))
	return rm, c
}

func stay(in, out int) booking.DateRange {
	base := time.Date(2035, 4, 1, 0, 0, 0, 0, time.UTC)
	return booking.NewDateRange(base.AddDate(0, 0, in), base.AddDate(0, 0, out))
}

func TestBookingRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	rm, c := seed(t, db)
	repo := NewBookingRepository(db)
	tm := NewTxManager(db)

	first := booking.NewBooking(c.ID, rm.ID, stay(0, 3), rm.PricePerNight, "", time.Now())
	require.NoError(t, transaction.Run(ctx, tm, func(tx transaction.Tx) error {
		return repo.Create(ctx, tx, first)
	}))
	assert.Positive(t, first.ID)

	t.Run("排他制約で重複が拒否される", func(t *testing.T) {
		dup := booking.NewBooking(c.ID, rm.ID, stay(2, 4), rm.PricePerNight, "", time.Now())
		err := transaction.Run(ctx, tm, func(tx transaction.Tx) error {
			return repo.Create(ctx, tx, dup)
		})
		assert.ErrorIs(t, err, booking.ErrBookingConflict)
	})

	t.Run("連続する期間は登録できる", func(t *testing.T) {
		next := booking.NewBooking(c.ID, rm.ID, stay(3, 5), rm.PricePerNight, "", time.Now())
		require.NoError(t, transaction.Run(ctx, tm, func(tx transaction.Tx) error {
			return repo.Create(ctx, tx, next)
		}))

		got, err := repo.FindOverlapping(ctx, rm.ID, stay(2, 4), 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = repo.FindOverlapping(ctx, 0, stay(2, 4), next.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, first.ID, got[0].ID)
	})

	t.Run("キャンセル後は同じ期間を登録できる", func(t *testing.T) {
		first.Cancel(time.Now())
		require.NoError(t, transaction.Run(ctx, tm, func(tx transaction.Tx) error {
			return repo.Update(ctx, tx, first)
		}))

		again := booking.NewBooking(c.ID, rm.ID, stay(0, 3), rm.PricePerNight, "", time.Now())
		require.NoError(t, transaction.Run(ctx, tm, func(tx transaction.Tx) error {
			return repo.Create(ctx, tx, again)
		}))

		stored, err := repo.GetByID(ctx, again.ID)
		require.NoError(t, err)
		assert.Equal(t, stay(0, 3).CheckIn, stored.CheckIn)
		assert.True(t, decimal.RequireFromString("360").Equal(stored.TotalAmount))
	})

	t.Run("一覧", func(t *testing.T) {
		window := stay(0, 10)
		active, err := repo.List(ctx, booking.Query{CustomerID: c.ID, Within: &window})
		require.NoError(t, err)
		assert.Len(t, active, 2)

		all, err := repo.List(ctx, booking.Query{CustomerID: c.ID, IncludeCancelled: true, Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestRoomRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	rm, _ := seed(t, db)
	repo := NewRoomRepository(db)

	err := repo.Create(ctx, room.NewRoom("101", "", 1, 1, decimal.Zero))
	assert.ErrorIs(t, err, room.ErrRoomNumberAlreadyExists)

	err = repo.Create(ctx, room.NewRoom("102", "", 999, 1, decimal.Zero))
	assert.ErrorIs(t, err, room.ErrRoomTypeNotFound)

	list, err := repo.List(ctx, room.Filter{Search: "garden", MinCapacity: 2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rm.ID, list[0].ID)

	list, err = repo.List(ctx, room.Filter{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, list, "% はワイルドカードとして扱わない")

	types, err := repo.ListTypes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, types)
}
