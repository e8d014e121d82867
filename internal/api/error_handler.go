package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/logger"
)

// エラー種別
const (
	KindInvalidDateRange = "invalid_date_range"
	KindPastCheckIn      = "past_check_in"
	KindValidation       = "validation"
	KindRoomUnavailable  = "room_unavailable"
	KindCustomerInactive = "customer_inactive"
	KindBookingConflict  = "booking_conflict"
	KindRoomBusy         = "room_busy"
	KindAlreadyExists    = "already_exists"
	KindNotFound         = "not_found"
	KindStorage          = "storage"
	KindHTTP             = "http"
	KindInternal         = "internal"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

type errorMapping struct {
	target error
	status int
	kind   string
}

var errorMappings = []errorMapping{
	{booking.ErrInvalidDateRange, http.StatusBadRequest, KindInvalidDateRange},
	{booking.ErrPastCheckIn, http.StatusBadRequest, KindPastCheckIn},
	{booking.ErrNotesTooLong, http.StatusBadRequest, KindValidation},
	{booking.ErrCustomerIDRequired, http.StatusBadRequest, KindValidation},
	{booking.ErrRoomIDRequired, http.StatusBadRequest, KindValidation},
	{booking.ErrInvalidAmount, http.StatusBadRequest, KindValidation},
	{room.ErrRoomNumberRequired, http.StatusBadRequest, KindValidation},
	{room.ErrRoomTypeRequired, http.StatusBadRequest, KindValidation},
	{room.ErrInvalidCapacity, http.StatusBadRequest, KindValidation},
	{room.ErrInvalidPrice, http.StatusBadRequest, KindValidation},
	{room.ErrInvalidStatus, http.StatusBadRequest, KindValidation},
	{customer.ErrFullNameRequired, http.StatusBadRequest, KindValidation},
	{customer.ErrInvalidEmail, http.StatusBadRequest, KindValidation},
	{customer.ErrInvalidStatus, http.StatusBadRequest, KindValidation},

	{room.ErrRoomUnavailable, http.StatusUnprocessableEntity, KindRoomUnavailable},
	{room.ErrRoomTypeNotFound, http.StatusUnprocessableEntity, KindValidation},
	{customer.ErrCustomerInactive, http.StatusUnprocessableEntity, KindCustomerInactive},

	{booking.ErrBookingConflict, http.StatusConflict, KindBookingConflict},
	{booking.ErrRoomBusy, http.StatusConflict, KindRoomBusy},
	{room.ErrRoomNumberAlreadyExists, http.StatusConflict, KindAlreadyExists},
	{customer.ErrEmailAlreadyExists, http.StatusConflict, KindAlreadyExists},

	{booking.ErrBookingNotFound, http.StatusNotFound, KindNotFound},
	{room.ErrRoomNotFound, http.StatusNotFound, KindNotFound},
	{customer.ErrCustomerNotFound, http.StatusNotFound, KindNotFound},

	{booking.ErrStorage, http.StatusInternalServerError, KindStorage},
}

// StatusOf はエラーに対応するHTTPステータスと種別を返す
func StatusOf(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, KindHTTP
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.kind
		}
	}
	return http.StatusInternalServerError, KindInternal
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// ドメインエラーはステータスに変換し、5xx の詳細はクライアントに返さない
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, kind := StatusOf(err)
	message := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("kind", kind),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		message = "内部サーバーエラー"
	}

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(code)
	} else {
		sendErr = c.JSON(code, ErrorResponse{Error: message, Code: code, Kind: kind})
	}
	if sendErr != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(sendErr))
	}
}
