package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/service"
)

type PipelineHandler struct {
	svc *service.PipelineService
}

func NewPipelineHandler(svc *service.PipelineService) *PipelineHandler {
	return &PipelineHandler{svc: svc}
}

// parseBound accepts RFC3339 or YYYY-MM-DD. As an upper bound a plain date
// covers the whole day, and an instant is kept inclusive at the
// microsecond precision of timestamptz.
func parseBound(s string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if upper {
			return t.Add(time.Microsecond), nil
		}
		return t, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		return d.AddDate(0, 0, 1), nil
	}
	return d, nil
}

func parseDateRange(dateFrom, dateTo string) (model.DateRange, error) {
	var r model.DateRange
	var err error
	if dateFrom != "" {
		if r.From, err = parseBound(dateFrom, false); err != nil {
			return r, errors.New("invalid date_from format")
		}
	}
	if dateTo != "" {
		if r.Until, err = parseBound(dateTo, true); err != nil {
			return r, errors.New("invalid date_to format")
		}
	}
	if !r.From.IsZero() && !r.Until.IsZero() && !r.From.Before(r.Until) {
		return r, errors.New("date_from must be before date_to")
	}
	return r, nil
}

func (h *PipelineHandler) Summary(c *gin.Context) {
	period, err := parseDateRange(c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groups, summary, err := h.svc.Summary(c.Request.Context(), period)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if groups == nil {
		groups = []service.PipelineGroup{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    groups,
		"summary": summary,
	})
}
