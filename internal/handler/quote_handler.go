package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/trade-cost-backoffice/internal/dto"
	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuoteHandler struct {
	quotes  *service.QuoteService
	tariffs *service.TariffService
	sheets  *service.QuoteSheetService
}

func NewQuoteHandler(quotes *service.QuoteService, tariffs *service.TariffService, sheets *service.QuoteSheetService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, tariffs: tariffs, sheets: sheets}
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.quotes.Create(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *QuoteHandler) List(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", model.QuoteStatusSubmitted, model.QuoteStatusInProgress, model.QuoteStatusCompleted, model.QuoteStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	p := dto.ParsePagination(c)
	quotes, total, err := h.quotes.List(c.Request.Context(), status, p.PageSize, p.Offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if quotes == nil {
		quotes = []model.Quote{}
	}
	c.JSON(http.StatusOK, dto.QuoteListResponse{
		Data:       quotes,
		Pagination: p.Result(total),
	})
}

func (h *QuoteHandler) Get(c *gin.Context) {
	q, err := h.quotes.Get(c.Request.Context(), c.Param("reservationNumber"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuoteHandler) Preview(c *gin.Context) {
	var req dto.QuoteInputs
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.quotes.Preview(c.Request.Context(), c.Param("reservationNumber"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *QuoteHandler) Save(c *gin.Context) {
	var req dto.QuoteInputs
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.quotes.Save(c.Request.Context(), c.Param("reservationNumber"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuoteHandler) SetHSCode(c *gin.Context) {
	var req dto.SetHSCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	q, res, err := h.tariffs.ApplyToQuote(c.Request.Context(), c.Param("reservationNumber"), req.HSCode)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": q, "tariff": res})
}

func (h *QuoteHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	rn := c.Param("reservationNumber")

	events, err := h.quotes.Watch(ctx, rn)
	if err != nil {
		_ = c.Error(err)
		return
	}
	q, err := h.quotes.Get(ctx, rn)
	if err != nil {
		_ = c.Error(err)
		return
	}

	log.Debug().Str("reservation_number", rn).Msg("change stream opened")
	c.SSEvent("snapshot", q)
	c.Writer.Flush()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				log.Debug().Str("reservation_number", rn).Msg("change stream closed")
				return
			}
			c.SSEvent("change", ev)
			c.Writer.Flush()
		case <-ctx.Done():
			log.Debug().Str("reservation_number", rn).Msg("change stream closed")
			return
		}
	}
}

func (h *QuoteHandler) Sheet(c *gin.Context) {
	rn := c.Param("reservationNumber")
	format := c.Query("format")
	if format == "" && strings.Contains(c.GetHeader("Accept"), "spreadsheetml") {
		format = "xlsx"
	}

	switch format {
	case "", "html":
		page, err := h.sheets.RenderHTML(c.Request.Context(), rn)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	case "xlsx":
		book, err := h.sheets.RenderXLSX(c.Request.Context(), rn)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+rn+`.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, book)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be html or xlsx"})
	}
}
