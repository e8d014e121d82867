package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-booking/internal/api"
)

type StatsHandler struct {
	service StatsServiceInterface
}

func NewStatsHandler(s StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: s}
}

type OccupancyResponse struct {
	Date           string  `json:"date" example:"2030-04-01"`
	TotalRooms     int     `json:"total_rooms" example:"50"`
	OccupiedRooms  int     `json:"occupied_rooms" example:"35"`
	OccupancyRate  float64 `json:"occupancy_rate" example:"70"`
	ActiveBookings int     `json:"active_bookings" example:"120"`
	TotalRevenue   string  `json:"total_revenue" example:"1440000.00"`
}

// Occupancy godoc
// @Summary 当日の稼働状況を取得
// @Description 客室数・稼働客室数・稼働率(%)・有効予約数・売上合計を返す
// @Tags stats
// @Produce json
// @Success 200 {object} OccupancyResponse
// @Router /stats/occupancy [get]
func (h *StatsHandler) Occupancy(c echo.Context) error {
	s, err := h.service.Occupancy(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OccupancyResponse{
		Date:           api.FormatDate(s.Date),
		TotalRooms:     s.TotalRooms,
		OccupiedRooms:  s.OccupiedRooms,
		OccupancyRate:  s.OccupancyRate,
		ActiveBookings: s.ActiveBookings,
		TotalRevenue:   s.TotalRevenue.StringFixed(2),
	})
}
