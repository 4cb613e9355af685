package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/trade-cost-backoffice/internal/dto"
	"github.com/anyulbade/trade-cost-backoffice/internal/service"
)

type CalculatorHandler struct {
	svc *service.CalculatorService
}

func NewCalculatorHandler(svc *service.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{svc: svc}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed: " + err.Error()})
		return false
	}
	return true
}

func (h *CalculatorHandler) CBM(c *gin.Context) {
	var req dto.CBMRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.CBM(&req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CalculatorHandler) VolumetricWeight(c *gin.Context) {
	var req dto.VolumetricWeightRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.VolumetricWeight(&req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CalculatorHandler) Currency(c *gin.Context) {
	var req dto.CurrencyRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Convert(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CalculatorHandler) LandedCost(c *gin.Context) {
	var req dto.LandedCostRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.LandedCost(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CalculatorHandler) Derive(c *gin.Context) {
	var req dto.QuoteInputs
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Derive(&req))
}
