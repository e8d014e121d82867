package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID          int64           `db:"id"`
	CustomerID  int64           `db:"customer_id"`
	RoomID      int64           `db:"room_id"`
	CheckIn     time.Time       `db:"check_in"`
	CheckOut    time.Time       `db:"check_out"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
	Notes       string          `db:"notes"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		RoomID:      r.RoomID,
		CheckIn:     booking.TruncateToDate(r.CheckIn),
		CheckOut:    booking.TruncateToDate(r.CheckOut),
		TotalAmount: r.TotalAmount,
		Status:      booking.Status(r.Status),
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const bookingColumns = `id, customer_id, room_id, check_in, check_out, total_amount, status, notes, created_at, updated_at`

// BookingRepository は予約台帳のPostgreSQL実装
// 重複の最終的な防止は bookings_no_overlap 排他制約が担う
type BookingRepository struct{ db *sqlx.DB }

var _ booking.Repository = (*BookingRepository)(nil)

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `INSERT INTO bookings (customer_id, room_id, check_in, check_out, total_amount, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err = sqlTx.QueryRowContext(ctx, query,
		b.CustomerID, b.RoomID, dateParam(b.CheckIn), dateParam(b.CheckOut), b.TotalAmount, string(b.Status), b.Notes, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return mapBookingWriteError("予約作成に失敗", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE bookings SET room_id = $1, check_in = $2, check_out = $3, total_amount = $4,
		status = $5, notes = $6, updated_at = $7 WHERE id = $8`
	result, err := sqlTx.ExecContext(ctx, query,
		b.RoomID, dateParam(b.CheckIn), dateParam(b.CheckOut), b.TotalAmount, string(b.Status), b.Notes, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return mapBookingWriteError("予約更新に失敗", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*booking.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) List(ctx context.Context, q booking.Query) ([]*booking.Booking, error) {
	var w whereBuilder
	if !q.IncludeCancelled {
		w.add("status = 'active'")
	}
	if q.CustomerID > 0 {
		w.add("customer_id = ?", q.CustomerID)
	}
	if q.RoomID > 0 {
		w.add("room_id = ?", q.RoomID)
	}
	if q.Within != nil {
		w.add("check_in >= ?", dateParam(q.Within.CheckIn))
		w.add("check_out <= ?", dateParam(q.Within.CheckOut))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings` + w.String() + ` ORDER BY check_in, id` + w.page(q.Limit, q.Offset)
	return r.selectBookings(ctx, "予約一覧取得に失敗", r.db.Rebind(query), w.args...)
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, roomID int64, stay booking.DateRange, excludeID int64) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'active' AND check_in < $2::date AND check_out > $1::date
		AND ($3::bigint = 0 OR room_id = $3) AND id <> $4
		ORDER BY room_id, check_in`
	return r.selectBookings(ctx, "重複予約の検索に失敗", query, dateParam(stay.CheckIn), dateParam(stay.CheckOut), roomID, excludeID)
}

func (r *BookingRepository) selectBookings(ctx context.Context, msg, query string, args ...any) ([]*booking.Booking, error) {
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// mapBookingWriteError は排他制約違反を予約の重複として扱う
func mapBookingWriteError(msg string, err error) error {
	if pgCode(err) == codeExclusionViolation && pgConstraint(err) == "bookings_no_overlap" {
		return booking.ErrBookingConflict
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// dateParam はセッションのタイムゾーンに影響されないよう日付を文字列で渡す
func dateParam(t time.Time) string {
	return t.Format(booking.DateLayout)
}
