package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

type fixedRate struct{ rate model.ExchangeRate }

func (f fixedRate) Latest(context.Context) (model.ExchangeRate, error) { return f.rate, nil }

func serveHealth(h *HealthHandler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy with estimated rate", func(t *testing.T) {
		w := serveHealth(NewHealthHandler(okPinger{}, fixedRate{model.ExchangeRate{USDRate: 1470, CNYRate: 201, Estimated: true}}))
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp["status"])
		assert.Equal(t, "connected", resp["database"])
		assert.Equal(t, true, resp["exchange_rate_estimated"])
	})

	t.Run("database down", func(t *testing.T) {
		w := serveHealth(NewHealthHandler(okPinger{err: errors.New("refused")}, fixedRate{}))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","database":"disconnected"}`, w.Body.String())
	})
}

// Integration test: requires running database
func TestHealthHandler_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool := getTestPool(t)
	if pool == nil {
		t.Skip("no database available")
	}
	defer pool.Close()

	w := serveHealth(NewHealthHandler(pool, fixedRate{}))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "connected", resp["database"])
}
