package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-booking/internal/api"
	"github.com/sanosuguru/go-hotel-booking/internal/application"
	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
)

type CustomerHandler struct {
	customerService CustomerServiceInterface
	bookingService  BookingServiceInterface
}

func NewCustomerHandler(cs CustomerServiceInterface, bs BookingServiceInterface) *CustomerHandler {
	return &CustomerHandler{customerService: cs, bookingService: bs}
}

type CreateCustomerRequest struct {
	FullName  string `json:"full_name" validate:"required,max=100" example:"山田 太郎"`
	Email     string `json:"email" validate:"required,email" example:"taro@example.com"`
	Telephone string `json:"telephone" validate:"max=20" example:"090-1234-5678"`
	Birthday  string `json:"birthday" validate:"omitempty,date" example:"1990-04-01"`
}

type UpdateCustomerRequest struct {
	FullName  string `json:"full_name" validate:"required,max=100" example:"山田 太郎"`
	Email     string `json:"email" validate:"required,email" example:"taro@example.com"`
	Telephone string `json:"telephone" validate:"max=20" example:"090-1234-5678"`
	Birthday  string `json:"birthday" validate:"omitempty,date" example:"1990-04-01"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive" example:"active"`
}

type CustomerResponse struct {
	ID        int64     `json:"id" example:"1"`
	FullName  string    `json:"full_name" example:"山田 太郎"`
	Email     string    `json:"email" example:"taro@example.com"`
	Telephone string    `json:"telephone,omitempty" example:"090-1234-5678"`
	Birthday  string    `json:"birthday,omitempty" example:"1990-04-01"`
	Status    string    `json:"status" example:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerResponse(c *customer.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:        c.ID,
		FullName:  c.FullName,
		Email:     c.Email,
		Telephone: c.Telephone,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Birthday != nil {
		resp.Birthday = api.FormatDate(*c.Birthday)
	}
	return resp
}

func parseBirthday(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := api.ParseDate(s)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return &t, nil
}

// Create godoc
// @Summary 顧客を登録
// @Tags customers
// @Accept json
// @Produce json
// @Param request body CreateCustomerRequest true "顧客情報"
// @Success 201 {object} CustomerResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "メールアドレスが登録済み"
// @Router /customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	var req CreateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return err
	}
	cust, err := h.customerService.CreateCustomer(c.Request().Context(), application.CreateCustomerInput{
		FullName: req.FullName, Email: req.Email, Telephone: req.Telephone, Birthday: birthday,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCustomerResponse(cust))
}

func (h *CustomerHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cust, err := h.customerService.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if cust.Status == customer.StatusDeleted {
		return customer.ErrCustomerNotFound
	}
	return c.JSON(http.StatusOK, toCustomerResponse(cust))
}

// List は氏名・メール・電話番号の部分一致で顧客を検索する
func (h *CustomerHandler) List(c echo.Context) error {
	f := customer.Filter{Search: strings.TrimSpace(c.QueryParam("q"))}
	switch status := customer.Status(c.QueryParam("status")); status {
	case "":
	case customer.StatusActive, customer.StatusInactive:
		f.Statuses = []customer.Status{status}
	default:
		return customer.ErrInvalidStatus
	}

	list, err := h.customerService.ListCustomers(c.Request().Context(), f)
	if err != nil {
		return err
	}
	resp := make([]CustomerResponse, len(list))
	for i, cust := range list {
		resp[i] = toCustomerResponse(cust)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return err
	}
	cust, err := h.customerService.UpdateCustomer(c.Request().Context(), application.UpdateCustomerInput{
		ID: id, FullName: req.FullName, Email: req.Email, Telephone: req.Telephone,
		Birthday: birthday, Status: customer.Status(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustomerResponse(cust))
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.customerService.DeleteCustomer(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Bookings godoc
// @Summary 顧客の予約一覧を取得
// @Tags customers
// @Produce json
// @Param id path int true "顧客ID"
// @Param include_cancelled query bool false "キャンセル済みを含める"
// @Success 200 {array} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /customers/{id}/bookings [get]
func (h *CustomerHandler) Bookings(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	includeCancelled, err := queryBool(c, "include_cancelled")
	if err != nil {
		return err
	}
	list, err := h.bookingService.GetCustomerBookings(c.Request().Context(), id, includeCancelled)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponses(list))
}
