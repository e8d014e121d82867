package memory

import (
	"context"
	"sort"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/transaction"
)

// BookingRepository は予約台帳のメモリ実装
type BookingRepository struct {
	store *Store
}

var _ booking.Repository = (*BookingRepository)(nil)

func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// Create はIDを即時に採番し、挿入をコミットまで保留する
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	t, err := unwrapTx(tx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.ID = r.store.nextBookingID()
	row := *b
	return t.stage(func(bookings map[int64]booking.Booking) error {
		if err := checkNoOverlap(bookings, &row); err != nil {
			return err
		}
		bookings[row.ID] = row
		return nil
	})
}

// Update は予約の更新をコミットまで保留する
func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	t, err := unwrapTx(tx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	row := *b
	return t.stage(func(bookings map[int64]booking.Booking) error {
		if _, ok := bookings[row.ID]; !ok {
			return booking.ErrBookingNotFound
		}
		if err := checkNoOverlap(bookings, &row); err != nil {
			return err
		}
		bookings[row.ID] = row
		return nil
	})
}

// checkNoOverlap は同一客室の有効な予約と期間が重ならないことを確認する
func checkNoOverlap(bookings map[int64]booking.Booking, b *booking.Booking) error {
	if !b.IsActive() {
		return nil
	}
	for id, other := range bookings {
		if id == b.ID || other.RoomID != b.RoomID || !other.IsActive() {
			continue
		}
		if other.Stay().Overlaps(b.Stay()) {
			return booking.ErrBookingConflict
		}
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return &b, nil
}

// List は条件に一致する予約一覧をチェックイン日順に取得する
func (r *BookingRepository) List(ctx context.Context, q booking.Query) ([]*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	result := make([]*booking.Booking, 0)
	for _, b := range r.store.bookings {
		if !matchesQuery(&b, q) {
			continue
		}
		b := b
		result = append(result, &b)
	}
	r.store.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CheckIn.Equal(result[j].CheckIn) {
			return result[i].CheckIn.Before(result[j].CheckIn)
		}
		return result[i].ID < result[j].ID
	})
	return paginate(result, q.Offset, q.Limit), nil
}

func matchesQuery(b *booking.Booking, q booking.Query) bool {
	if !q.IncludeCancelled && b.IsCancelled() {
		return false
	}
	if q.CustomerID > 0 && b.CustomerID != q.CustomerID {
		return false
	}
	if q.RoomID > 0 && b.RoomID != q.RoomID {
		return false
	}
	if q.Within != nil && !q.Within.Contains(b.Stay()) {
		return false
	}
	return true
}

// FindOverlapping は期間が重なる有効な予約を客室ID・チェックイン日順に取得する
func (r *BookingRepository) FindOverlapping(ctx context.Context, roomID int64, stay booking.DateRange, excludeID int64) ([]*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	result := make([]*booking.Booking, 0)
	for _, b := range r.store.bookings {
		if !b.IsActive() || b.ID == excludeID {
			continue
		}
		if roomID > 0 && b.RoomID != roomID {
			continue
		}
		if !b.Stay().Overlaps(stay) {
			continue
		}
		b := b
		result = append(result, &b)
	}
	r.store.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].RoomID != result[j].RoomID {
			return result[i].RoomID < result[j].RoomID
		}
		return result[i].CheckIn.Before(result[j].CheckIn)
	})
	return result, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
