package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-hotel-booking/internal/application"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

type RoomHandler struct {
	roomService    RoomServiceInterface
	bookingService BookingServiceInterface
}

func NewRoomHandler(rs RoomServiceInterface, bs BookingServiceInterface) *RoomHandler {
	return &RoomHandler{roomService: rs, bookingService: bs}
}

type CreateRoomRequest struct {
	Number        string          `json:"number" validate:"required,max=10" example:"101"`
	Description   string          `json:"description" example:"庭園側ツイン"`
	TypeID        int64           `json:"type_id" validate:"required,gt=0" example:"1"`
	MaxCapacity   int             `json:"max_capacity" validate:"required,gt=0" example:"2"`
	PricePerNight decimal.Decimal `json:"price_per_night" swaggertype:"string" example:"12000.00"`
}

type UpdateRoomRequest struct {
	Number        string          `json:"number" validate:"required,max=10" example:"101"`
	Description   string          `json:"description" example:"庭園側ツイン"`
	TypeID        int64           `json:"type_id" validate:"required,gt=0" example:"1"`
	MaxCapacity   int             `json:"max_capacity" validate:"required,gt=0" example:"2"`
	PricePerNight decimal.Decimal `json:"price_per_night" swaggertype:"string" example:"12000.00"`
	Status        string          `json:"status" validate:"omitempty,oneof=active inactive" example:"active"`
}

type RoomResponse struct {
	ID            int64  `json:"id" example:"1"`
	Number        string `json:"number" example:"101"`
	Description   string `json:"description" example:"庭園側ツイン"`
	TypeID        int64  `json:"type_id" example:"1"`
	MaxCapacity   int    `json:"max_capacity" example:"2"`
	PricePerNight string `json:"price_per_night" example:"12000.00"`
	Status        string `json:"status" example:"active"`
}

type RoomTypeResponse struct {
	ID          int64  `json:"id" example:"1"`
	Name        string `json:"name" example:"Standard"`
	Description string `json:"description"`
	Note        string `json:"note"`
}

func toRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:            r.ID,
		Number:        r.Number,
		Description:   r.Description,
		TypeID:        r.TypeID,
		MaxCapacity:   r.MaxCapacity,
		PricePerNight: r.PricePerNight.StringFixed(2),
		Status:        string(r.Status),
	}
}

func toRoomResponses(rooms []*room.Room) []RoomResponse {
	resp := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		resp[i] = toRoomResponse(r)
	}
	return resp
}

// Create godoc
// @Summary 客室を登録
// @Tags rooms
// @Accept json
// @Produce json
// @Param request body CreateRoomRequest true "客室情報"
// @Success 201 {object} RoomResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "部屋番号が重複"
// @Router /rooms [post]
func (h *RoomHandler) Create(c echo.Context) error {
	var req CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.roomService.CreateRoom(c.Request().Context(), application.CreateRoomInput{
		Number:        req.Number,
		Description:   req.Description,
		TypeID:        req.TypeID,
		MaxCapacity:   req.MaxCapacity,
		PricePerNight: req.PricePerNight,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRoomResponse(r))
}

// GetByID godoc
// @Summary 客室を取得
// @Tags rooms
// @Produce json
// @Param id path int true "客室ID"
// @Success 200 {object} RoomResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /rooms/{id} [get]
func (h *RoomHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.roomService.GetRoom(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if r.IsDeleted() {
		return room.ErrRoomNotFound
	}
	return c.JSON(http.StatusOK, toRoomResponse(r))
}

// List godoc
// @Summary 客室一覧を取得
// @Description 削除済み以外の客室を部屋番号・説明の部分一致やタイプ・収容人数で絞り込む
// @Tags rooms
// @Produce json
// @Param q query string false "検索語"
// @Param type_id query int false "客室タイプID"
// @Param min_capacity query int false "最低収容人数"
// @Param status query string false "状態 (active, inactive)"
// @Success 200 {array} RoomResponse
// @Router /rooms [get]
func (h *RoomHandler) List(c echo.Context) error {
	typeID, err := queryInt64(c, "type_id")
	if err != nil {
		return err
	}
	minCap, err := queryInt(c, "min_capacity")
	if err != nil {
		return err
	}

	f := room.Filter{Search: strings.TrimSpace(c.QueryParam("q"))}
	if typeID != nil {
		f.TypeID = *typeID
	}
	if minCap != nil {
		f.MinCapacity = *minCap
	}
	switch status := room.Status(c.QueryParam("status")); status {
	case "":
	case room.StatusActive, room.StatusInactive:
		f.Statuses = []room.Status{status}
	default:
		return room.ErrInvalidStatus
	}

	rooms, err := h.roomService.ListRooms(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoomResponses(rooms))
}

// Update godoc
// @Summary 客室を更新
// @Tags rooms
// @Accept json
// @Produce json
// @Param id path int true "客室ID"
// @Param request body UpdateRoomRequest true "客室情報"
// @Success 200 {object} RoomResponse
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.roomService.UpdateRoom(c.Request().Context(), application.UpdateRoomInput{
		ID:            id,
		Number:        req.Number,
		Description:   req.Description,
		TypeID:        req.TypeID,
		MaxCapacity:   req.MaxCapacity,
		PricePerNight: req.PricePerNight,
		Status:        room.Status(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoomResponse(r))
}

// Delete godoc
// @Summary 客室を削除
// @Description 論理削除のため既存の予約は残る
// @Tags rooms
// @Param id path int true "客室ID"
// @Success 204
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.roomService.DeleteRoom(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTypes は客室タイプ一覧を返す
func (h *RoomHandler) ListTypes(c echo.Context) error {
	types, err := h.roomService.ListRoomTypes(c.Request().Context())
	if err != nil {
		return err
	}
	resp := make([]RoomTypeResponse, len(types))
	for i, t := range types {
		resp[i] = RoomTypeResponse{ID: t.ID, Name: t.Name, Description: t.Description, Note: t.Note}
	}
	return c.JSON(http.StatusOK, resp)
}

// Available godoc
// @Summary 空室を検索
// @Description 期間 [check_in, check_out) に有効な予約が無い予約可能な客室を返す
// @Tags rooms
// @Produce json
// @Param check_in query string true "チェックイン日 (YYYY-MM-DD)"
// @Param check_out query string true "チェックアウト日 (YYYY-MM-DD)"
// @Param type_id query int false "客室タイプID"
// @Param min_capacity query int false "最低収容人数"
// @Success 200 {array} RoomResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /rooms/available [get]
func (h *RoomHandler) Available(c echo.Context) error {
	checkIn, err := queryDate(c, "check_in")
	if err != nil {
		return err
	}
	checkOut, err := queryDate(c, "check_out")
	if err != nil {
		return err
	}
	if checkIn == nil || checkOut == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_in と check_out は必須です")
	}

	var f application.AvailabilityFilter
	if f.TypeID, err = queryInt64(c, "type_id"); err != nil {
		return err
	}
	if f.MinCapacity, err = queryInt(c, "min_capacity"); err != nil {
		return err
	}

	rooms, err := h.bookingService.FindAvailableRooms(c.Request().Context(), *checkIn, *checkOut, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoomResponses(rooms))
}
