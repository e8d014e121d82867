package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Check(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name: "依存先なし", checks: nil,
			wantCode: http.StatusOK, wantStatus: "ok",
		},
		{
			name:     "すべて正常",
			checks:   map[string]HealthCheck{"postgres": ok, "redis": ok},
			wantCode: http.StatusOK, wantStatus: "ok",
			wantChecks: map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name:     "ひとつでも失敗すると503",
			checks:   map[string]HealthCheck{"postgres": ok, "redis": down},
			wantCode: http.StatusServiceUnavailable, wantStatus: "unavailable",
			wantChecks: map[string]string{"postgres": "ok", "redis": "connection refused"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewTestEcho()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := NewHealthHandler(tt.checks).Check(c)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.NotEmpty(t, resp.Timestamp)
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

func TestHealthHandler_CheckTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	h := NewHealthHandler(map[string]HealthCheck{"slow": slow})
	h.timeout = 10 * time.Millisecond

	e := NewTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, h.Check(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegisterRoutes_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized)
		}
	}
	health := NewHealthHandler(nil)

	t.Run("認証なしで公開", func(t *testing.T) {
		e := NewTestEcho()
		RegisterRoutes(e, Handlers{Health: health}, metrics, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "# metrics", rec.Body.String())
	})

	t.Run("認証ミドルウェアを適用", func(t *testing.T) {
		e := NewTestEcho()
		RegisterRoutes(e, Handlers{Health: health}, metrics, deny)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("metricsがnilなら登録しない", func(t *testing.T) {
		e := NewTestEcho()
		RegisterRoutes(e, Handlers{Health: health}, nil, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
