package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-booking/internal/api"
)

// 一覧取得の件数
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "IDが不正です")
	}
	return id, nil
}

// queryInt64 はクエリパラメータを整数として返す。未指定の場合は nil
func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" は整数で指定してください")
	}
	return &v, nil
}

func queryInt(c echo.Context, name string) (*int, error) {
	v, err := queryInt64(c, name)
	if err != nil || v == nil {
		return nil, err
	}
	n := int(*v)
	return &n, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, name+" は true/false で指定してください")
	}
	return v, nil
}

func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := api.ParseDate(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+": "+err.Error())
	}
	return &t, nil
}

// pagination は limit/offset を読み取り、limit を [1, MaxLimit] に丸める
func pagination(c echo.Context) (limit, offset int, err error) {
	l, err := queryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	o, err := queryInt(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	limit = DefaultLimit
	if l != nil && *l > 0 {
		limit = min(*l, MaxLimit)
	}
	if o != nil && *o > 0 {
		offset = *o
	}
	return limit, offset, nil
}
