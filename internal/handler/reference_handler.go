package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/trade-cost-backoffice/internal/dto"
	"github.com/anyulbade/trade-cost-backoffice/internal/service"
)

type ReferenceHandler struct {
	rates   *service.RateService
	tariffs *service.TariffService
}

func NewReferenceHandler(rates *service.RateService, tariffs *service.TariffService) *ReferenceHandler {
	return &ReferenceHandler{rates: rates, tariffs: tariffs}
}

func (h *ReferenceHandler) LatestRate(c *gin.Context) {
	rate, err := h.rates.Latest(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (h *ReferenceHandler) RateTrend(c *gin.Context) {
	currency := c.DefaultQuery("currency", "CNY")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	trend, err := h.rates.Trend(c.Request.Context(), currency, days)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (h *ReferenceHandler) SearchHSCodes(c *gin.Context) {
	query := c.Query("q")
	results, err := h.tariffs.Classify(c.Request.Context(), query)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.HSCodeSearchResponse{Query: query, Results: results})
}

func (h *ReferenceHandler) Tariff(c *gin.Context) {
	res, err := h.tariffs.Resolve(c.Request.Context(), c.Param("hsCode"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}
