package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Room     *RoomHandler
	Customer *CustomerHandler
	Booking  *BookingHandler
	Stats    *StatsHandler
	Health   *HealthHandler
}

// RegisterRoutes はAPIのルートを登録する
// metrics が nil の場合 /metrics は登録しない
func RegisterRoutes(e *echo.Echo, h Handlers, metrics http.Handler, metricsAuth echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Check)
	if metrics != nil {
		mw := []echo.MiddlewareFunc{}
		if metricsAuth != nil {
			mw = append(mw, metricsAuth)
		}
		e.GET("/metrics", echo.WrapHandler(metrics), mw...)
	}

	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)

	v1.GET("/room-types", h.Room.ListTypes)
	v1.GET("/rooms", h.Room.List)
	v1.POST("/rooms", h.Room.Create)
	v1.GET("/rooms/available", h.Room.Available)
	v1.GET("/rooms/:id", h.Room.GetByID)
	v1.PUT("/rooms/:id", h.Room.Update)
	v1.DELETE("/rooms/:id", h.Room.Delete)

	v1.GET("/customers", h.Customer.List)
	v1.POST("/customers", h.Customer.Create)
	v1.GET("/customers/:id", h.Customer.GetByID)
	v1.PUT("/customers/:id", h.Customer.Update)
	v1.DELETE("/customers/:id", h.Customer.Delete)
	v1.GET("/customers/:id/bookings", h.Customer.Bookings)

	v1.GET("/bookings", h.Booking.List)
	v1.POST("/bookings", h.Booking.Create)
	v1.GET("/bookings/:id", h.Booking.GetByID)
	v1.PUT("/bookings/:id", h.Booking.Update)
	v1.POST("/bookings/:id/cancel", h.Booking.Cancel)

	v1.GET("/stats/occupancy", h.Stats.Occupancy)
}
