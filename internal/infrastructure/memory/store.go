package memory

import (
	"sync"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

// Store はプロセス内で全データを保持するストレージ
// 値はコピーで保存し、呼び出し側へもコピーを返す
type Store struct {
	mu        sync.RWMutex
	rooms     map[int64]room.Room
	roomTypes map[int64]room.RoomType
	customers map[int64]customer.Customer
	bookings  map[int64]booking.Booking

	roomSeq     int64
	roomTypeSeq int64
	customerSeq int64
	bookingSeq  int64
}

// DefaultRoomTypes は初期登録する客室タイプ
var DefaultRoomTypes = []room.RoomType{
	{Name: "Standard", Description: "Standard room", Note: "Queen bed"},
	{Name: "Deluxe", Description: "Deluxe room", Note: "King bed, city view"},
	{Name: "Suite", Description: "Suite", Note: "Separate living area"},
	{Name: "Family", Description: "Family room", Note: "Two queen beds"},
}

// NewStore は客室タイプを登録済みの空のストアを作成する
func NewStore() *Store {
	s := &Store{
		rooms:     make(map[int64]room.Room),
		roomTypes: make(map[int64]room.RoomType),
		customers: make(map[int64]customer.Customer),
		bookings:  make(map[int64]booking.Booking),
	}
	for _, rt := range DefaultRoomTypes {
		s.roomTypeSeq++
		rt.ID = s.roomTypeSeq
		s.roomTypes[rt.ID] = rt
	}
	return s
}

func (s *Store) nextBookingID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookingSeq++
	return s.bookingSeq
}
