package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/trade-cost-backoffice/internal/lookup"
	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
	"github.com/anyulbade/trade-cost-backoffice/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MapError translates service, lookup and database errors into an HTTP
// status and body. Anything unrecognised is logged and reported as 500.
func MapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return http.StatusNotFound, ErrorResponse{Error: "quote not found"}
	case errors.Is(err, service.ErrInvalidHSCode),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, pricing.ErrMissingInput),
		errors.Is(err, pricing.ErrUnknownUnit):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, service.ErrStaleLookup):
		return http.StatusConflict, ErrorResponse{Error: "hs code changed while the lookup was running"}
	case errors.Is(err, lookup.ErrUnavailable):
		return http.StatusBadGateway, ErrorResponse{Error: "lookup service unavailable", Details: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "resource already exists",
				Details: pgErr.Detail,
			}
		case "23502": // not_null_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "missing required value",
				Details: pgErr.ColumnName,
			}
		case "23514": // check_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "constraint violation",
				Details: pgErr.ConstraintName,
			}
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		status, resp := MapError(c.Errors.Last().Err)
		c.JSON(status, resp)
	}
}
