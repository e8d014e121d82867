package room

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Status は客室の状態を表す
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// Room は予約可能な客室を表す
type Room struct {
	ID            int64
	Number        string
	Description   string
	TypeID        int64
	MaxCapacity   int
	PricePerNight decimal.Decimal
	Status        Status
}

// RoomType は客室タイプを表す
type RoomType struct {
	ID          int64
	Name        string
	Description string
	Note        string
}

// NewRoom は新しい客室を作成する
func NewRoom(number, description string, typeID int64, maxCapacity int, price decimal.Decimal) *Room {
	return &Room{
		Number:        strings.TrimSpace(number),
		Description:   description,
		TypeID:        typeID,
		MaxCapacity:   maxCapacity,
		PricePerNight: price,
		Status:        StatusActive,
	}
}

// IsBookable は予約可能な状態かを返す
func (r *Room) IsBookable() bool {
	return r.Status == StatusActive
}

// IsDeleted は論理削除済みかを返す
func (r *Room) IsDeleted() bool {
	return r.Status == StatusDeleted
}

// Delete は客室を論理削除する
func (r *Room) Delete() {
	r.Status = StatusDeleted
}

// Fits は指定人数を収容できるかを返す
func (r *Room) Fits(guests int) bool {
	return r.MaxCapacity >= guests
}

// Matches は部屋番号または説明に検索語が含まれるかを返す（大文字小文字を区別しない）
func (r *Room) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Number), term) ||
		strings.Contains(strings.ToLower(r.Description), term)
}

// Validate は客室の検証を行う
func (r *Room) Validate() error {
	if r.Number == "" {
		return ErrRoomNumberRequired
	}
	if r.TypeID <= 0 {
		return ErrRoomTypeRequired
	}
	if r.MaxCapacity <= 0 {
		return ErrInvalidCapacity
	}
	if r.PricePerNight.IsNegative() {
		return ErrInvalidPrice
	}
	switch r.Status {
	case StatusActive, StatusInactive, StatusDeleted:
	default:
		return ErrInvalidStatus
	}
	return nil
}
