package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

// PipelineRow aggregates quotes sharing a status and shipping method.
// ShippingMethod is empty for quotes with no derived volume yet.
type PipelineRow struct {
	Status           string
	ShippingMethod   string
	QuoteCount       int
	PricedCount      int
	EstimatedCount   int
	TotalCBM         float64
	TotalSupplyPrice float64
	AvgUnitPrice     float64
}

type PipelineRepository struct {
	pool *pgxpool.Pool
}

func NewPipelineRepository(pool *pgxpool.Pool) *PipelineRepository {
	return &PipelineRepository{pool: pool}
}

func (r *PipelineRepository) Summary(ctx context.Context, period model.DateRange) ([]PipelineRow, error) {
	var from, until *time.Time
	if !period.From.IsZero() {
		from = &period.From
	}
	if !period.Until.IsZero() {
		until = &period.Until
	}

	rows, err := r.pool.Query(ctx, `
		SELECT
			status,
			COALESCE(shipping_method, '') AS shipping_method,
			COUNT(*) AS quote_count,
			COUNT(*) FILTER (WHERE expected_total_supply_price IS NOT NULL) AS priced_count,
			COUNT(*) FILTER (WHERE exchange_rate_estimated OR customs_rate_estimated) AS estimated_count,
			COALESCE(ROUND(SUM(total_cbm)::numeric, 4), 0)::float8 AS total_cbm,
			COALESCE(SUM(expected_total_supply_price), 0)::float8 AS total_supply_price,
			COALESCE(ROUND(AVG(expected_unit_price)::numeric, 0), 0)::float8 AS avg_unit_price
		FROM market_research_requests
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
			AND ($2::timestamptz IS NULL OR created_at < $2)
		GROUP BY status, COALESCE(shipping_method, '')
		ORDER BY status, shipping_method`, from, until)
	if err != nil {
		return nil, fmt.Errorf("query pipeline summary: %w", err)
	}
	defer rows.Close()

	var results []PipelineRow
	for rows.Next() {
		var p PipelineRow
		if err := rows.Scan(
			&p.Status, &p.ShippingMethod, &p.QuoteCount, &p.PricedCount, &p.EstimatedCount,
			&p.TotalCBM, &p.TotalSupplyPrice, &p.AvgUnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan pipeline row: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
