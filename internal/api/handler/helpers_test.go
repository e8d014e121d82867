package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-hotel-booking/internal/api"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

// NewTestEcho は本番と同じバリデータとエラーハンドラを持つEchoを作る
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}

type testRouter struct {
	e        *echo.Echo
	rooms    *MockRoomService
	customer *MockCustomerService
	bookings *MockBookingService
	stats    *MockStatsService
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	r := &testRouter{
		e:        NewTestEcho(),
		rooms:    new(MockRoomService),
		customer: new(MockCustomerService),
		bookings: new(MockBookingService),
		stats:    new(MockStatsService),
	}
	RegisterRoutes(r.e, Handlers{
		Room:     NewRoomHandler(r.rooms, r.bookings),
		Customer: NewCustomerHandler(r.customer, r.bookings),
		Booking:  NewBookingHandler(r.bookings),
		Stats:    NewStatsHandler(r.stats),
		Health:   NewHealthHandler(nil),
	}, nil, nil)
	t.Cleanup(func() {
		r.rooms.AssertExpectations(t)
		r.customer.AssertExpectations(t)
		r.bookings.AssertExpectations(t)
		r.stats.AssertExpectations(t)
	})
	return r
}

func (r *testRouter) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	r.e.ServeHTTP(rec, req)
	return rec
}

func date(s string) time.Time {
	t, err := time.Parse(booking.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testRoom(id int64) *room.Room {
	return &room.Room{
		ID: id, Number: "101", Description: "庭園側ツイン", TypeID: 1,
		MaxCapacity: 2, PricePerNight: decimal.NewFromInt(12000), Status: room.StatusActive,
	}
}

func testCustomer(id int64) *customer.Customer {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return &customer.Customer{
		ID: id, FullName: "山田 太郎", Email: "taro@example.com",
		Status: customer.StatusActive, CreatedAt: now, UpdatedAt: now,
	}
}

func testBooking(id int64) *booking.Booking {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return &booking.Booking{
		ID: id, CustomerID: 1, RoomID: 101,
		CheckIn: date("2030-04-01"), CheckOut: date("2030-04-03"),
		TotalAmount: decimal.NewFromInt(24000), Status: booking.StatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
}
