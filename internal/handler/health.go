package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/trade-cost-backoffice/internal/service"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	rates service.RateSource
}

func NewHealthHandler(db Pinger, rates service.RateSource) *HealthHandler {
	return &HealthHandler{db: db, rates: rates}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	resp := gin.H{
		"status":   "healthy",
		"database": "connected",
	}
	if rate, err := h.rates.Latest(ctx); err == nil {
		resp["exchange_rate_date"] = rate.Date.Format("2006-01-02")
		resp["exchange_rate_estimated"] = rate.Estimated
	}
	c.JSON(http.StatusOK, resp)
}
