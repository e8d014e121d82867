package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-booking/internal/api"
	"github.com/sanosuguru/go-hotel-booking/internal/application"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	CustomerID int64  `json:"customer_id" validate:"required,gt=0" example:"1"`
	RoomID     int64  `json:"room_id" validate:"required,gt=0" example:"101"`
	CheckIn    string `json:"check_in" validate:"required,date" example:"2030-04-01"`
	CheckOut   string `json:"check_out" validate:"required,date" example:"2030-04-03"`
	Notes      string `json:"notes" example:"禁煙ルーム希望"`
}

type UpdateBookingRequest struct {
	RoomID   int64  `json:"room_id" validate:"required,gt=0" example:"101"`
	CheckIn  string `json:"check_in" validate:"required,date" example:"2030-04-01"`
	CheckOut string `json:"check_out" validate:"required,date" example:"2030-04-03"`
	Notes    string `json:"notes" example:"禁煙ルーム希望"`
}

type BookingResponse struct {
	ID          int64     `json:"id" example:"1"`
	CustomerID  int64     `json:"customer_id" example:"1"`
	RoomID      int64     `json:"room_id" example:"101"`
	CheckIn     string    `json:"check_in" example:"2030-04-01"`
	CheckOut    string    `json:"check_out" example:"2030-04-03"`
	Nights      int       `json:"nights" example:"2"`
	TotalAmount string    `json:"total_amount" example:"24000.00"`
	Status      string    `json:"status" example:"active"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		RoomID:      b.RoomID,
		CheckIn:     api.FormatDate(b.CheckIn),
		CheckOut:    api.FormatDate(b.CheckOut),
		Nights:      b.Stay().Nights(),
		TotalAmount: b.TotalAmount.StringFixed(2),
		Status:      string(b.Status),
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBookingResponses(list []*booking.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(list))
	for i, b := range list {
		resp[i] = toBookingResponse(b)
	}
	return resp
}

// 日付は validate:"date" で検証済み
func mustDate(s string) time.Time {
	t, _ := api.ParseDate(s)
	return t
}

// Create godoc
// @Summary 予約を作成
// @Description 期間 [check_in, check_out) で客室を予約する。金額は1泊料金 × 宿泊数
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "期間が重複、または客室が処理中"
// @Failure 422 {object} api.ErrorResponse "客室または顧客が利用不可"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		CustomerID: req.CustomerID,
		RoomID:     req.RoomID,
		CheckIn:    mustDate(req.CheckIn),
		CheckOut:   mustDate(req.CheckOut),
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path int true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.service.GetBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// List godoc
// @Summary 予約一覧を取得
// @Description from/to を指定した場合は期間内に完全に収まる予約のみを返す
// @Tags bookings
// @Produce json
// @Param customer_id query int false "顧客ID"
// @Param room_id query int false "客室ID"
// @Param from query string false "開始日 (YYYY-MM-DD)"
// @Param to query string false "終了日 (YYYY-MM-DD)"
// @Param include_cancelled query bool false "キャンセル済みを含める"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Router /bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	var q application.BookingQuery

	customerID, err := queryInt64(c, "customer_id")
	if err != nil {
		return err
	}
	roomID, err := queryInt64(c, "room_id")
	if err != nil {
		return err
	}
	if customerID != nil {
		q.CustomerID = *customerID
	}
	if roomID != nil {
		q.RoomID = *roomID
	}
	if q.From, err = queryDate(c, "from"); err != nil {
		return err
	}
	if q.To, err = queryDate(c, "to"); err != nil {
		return err
	}
	if q.IncludeCancelled, err = queryBool(c, "include_cancelled"); err != nil {
		return err
	}
	if q.Limit, q.Offset, err = pagination(c); err != nil {
		return err
	}

	list, err := h.service.ListBookings(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponses(list))
}

// Update godoc
// @Summary 予約を変更
// @Description 客室・期間・備考を変更し金額を再計算する。顧客は変更できない
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path int true "予約ID"
// @Param request body UpdateBookingRequest true "変更内容"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /bookings/{id} [put]
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.UpdateBooking(c.Request().Context(), application.UpdateBookingInput{
		ID:       id,
		RoomID:   req.RoomID,
		CheckIn:  mustDate(req.CheckIn),
		CheckOut: mustDate(req.CheckOut),
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description キャンセル済みの予約に対しては何もせず200を返す
// @Tags bookings
// @Produce json
// @Param id path int true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.service.CancelBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}
