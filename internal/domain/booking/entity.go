package booking

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Status は予約の状態を表す
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// MaxNotesLength は備考の最大文字数
const MaxNotesLength = 500

// Booking は1顧客による1客室の予約を表す
type Booking struct {
	ID          int64
	CustomerID  int64
	RoomID      int64
	CheckIn     time.Time
	CheckOut    time.Time
	TotalAmount decimal.Decimal
	Status      Status
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBooking は新しい有効な予約を作成する（IDはストレージが採番する）
func NewBooking(customerID, roomID int64, stay DateRange, pricePerNight decimal.Decimal, notes string, now time.Time) *Booking {
	return &Booking{
		CustomerID:  customerID,
		RoomID:      roomID,
		CheckIn:     stay.CheckIn,
		CheckOut:    stay.CheckOut,
		TotalAmount: CalculateAmount(stay, pricePerNight),
		Status:      StatusActive,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CalculateAmount は宿泊数 × 1泊料金 を返す
func CalculateAmount(stay DateRange, pricePerNight decimal.Decimal) decimal.Decimal {
	return pricePerNight.Mul(decimal.NewFromInt(int64(stay.Nights())))
}

// Stay は宿泊期間を返す
func (b *Booking) Stay() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// IsActive は重複判定の対象となる状態かを返す
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// IsCancelled はキャンセル済みかを返す
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// Reschedule は客室・期間・備考を変更し、金額を再計算する
// ID・作成日時・状態は変更しない
func (b *Booking) Reschedule(roomID int64, stay DateRange, pricePerNight decimal.Decimal, notes string, now time.Time) {
	b.RoomID = roomID
	b.CheckIn = stay.CheckIn
	b.CheckOut = stay.CheckOut
	b.TotalAmount = CalculateAmount(stay, pricePerNight)
	b.Notes = notes
	b.UpdatedAt = now
}

// Cancel は予約をキャンセルする
// 既にキャンセル済みの場合は何もせず false を返す
func (b *Booking) Cancel(now time.Time) bool {
	if b.Status == StatusCancelled {
		return false
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now
	return true
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.CustomerID <= 0 {
		return ErrCustomerIDRequired
	}
	if b.RoomID <= 0 {
		return ErrRoomIDRequired
	}
	if err := b.Stay().Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(b.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	if b.TotalAmount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
