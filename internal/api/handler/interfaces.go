package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-booking/internal/application"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

// RoomServiceInterface は客室サービスのインターフェース
type RoomServiceInterface interface {
	CreateRoom(ctx context.Context, input application.CreateRoomInput) (*room.Room, error)
	GetRoom(ctx context.Context, id int64) (*room.Room, error)
	ListRooms(ctx context.Context, f room.Filter) ([]*room.Room, error)
	ListRoomTypes(ctx context.Context) ([]*room.RoomType, error)
	UpdateRoom(ctx context.Context, input application.UpdateRoomInput) (*room.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
}

// CustomerServiceInterface は顧客サービスのインターフェース
type CustomerServiceInterface interface {
	CreateCustomer(ctx context.Context, input application.CreateCustomerInput) (*customer.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*customer.Customer, error)
	ListCustomers(ctx context.Context, f customer.Filter) ([]*customer.Customer, error)
	UpdateCustomer(ctx context.Context, input application.UpdateCustomerInput) (*customer.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	FindAvailableRooms(ctx context.Context, checkIn, checkOut time.Time, f application.AvailabilityFilter) ([]*room.Room, error)
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	UpdateBooking(ctx context.Context, input application.UpdateBookingInput) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id int64) (*booking.Booking, error)
	GetBooking(ctx context.Context, id int64) (*booking.Booking, error)
	ListBookings(ctx context.Context, q application.BookingQuery) ([]*booking.Booking, error)
	GetCustomerBookings(ctx context.Context, customerID int64, includeCancelled bool) ([]*booking.Booking, error)
}

// StatsServiceInterface は稼働状況サービスのインターフェース
type StatsServiceInterface interface {
	Occupancy(ctx context.Context) (*application.OccupancyStats, error)
}
