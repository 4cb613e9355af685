package service

import (
	"context"
	"math"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/repository"
)

type PipelineStore interface {
	Summary(ctx context.Context, period model.DateRange) ([]repository.PipelineRow, error)
}

type PipelineService struct {
	store PipelineStore
}

func NewPipelineService(store PipelineStore) *PipelineService {
	return &PipelineService{store: store}
}

type PipelineGroup struct {
	Status           string  `json:"status"`
	ShippingMethod   string  `json:"shipping_method,omitempty"`
	QuoteCount       int     `json:"quote_count"`
	PricedCount      int     `json:"priced_count"`
	EstimatedCount   int     `json:"estimated_count"`
	TotalCBM         float64 `json:"total_cbm"`
	TotalSupplyPrice float64 `json:"total_supply_price"`
	AvgUnitPrice     float64 `json:"avg_unit_price"`
}

type PipelineSummary struct {
	TotalQuotes      int            `json:"total_quotes"`
	PricedQuotes     int            `json:"priced_quotes"`
	PricedPercent    float64        `json:"priced_pct"`
	EstimatedQuotes  int            `json:"estimated_quotes"`
	TotalSupplyPrice float64        `json:"total_supply_price"`
	OpenSupplyPrice  float64        `json:"open_supply_price"`
	ByStatus         map[string]int `json:"by_status"`
	LCLCount         int            `json:"lcl_quotes"`
	FCLCount         int            `json:"fcl_quotes"`
}

func (s *PipelineService) Summary(ctx context.Context, period model.DateRange) ([]PipelineGroup, PipelineSummary, error) {
	rows, err := s.store.Summary(ctx, period)
	if err != nil {
		return nil, PipelineSummary{}, err
	}

	groups := make([]PipelineGroup, len(rows))
	summary := PipelineSummary{ByStatus: map[string]int{}}

	for i, row := range rows {
		groups[i] = PipelineGroup{
			Status:           row.Status,
			ShippingMethod:   row.ShippingMethod,
			QuoteCount:       row.QuoteCount,
			PricedCount:      row.PricedCount,
			EstimatedCount:   row.EstimatedCount,
			TotalCBM:         row.TotalCBM,
			TotalSupplyPrice: row.TotalSupplyPrice,
			AvgUnitPrice:     row.AvgUnitPrice,
		}

		summary.TotalQuotes += row.QuoteCount
		summary.PricedQuotes += row.PricedCount
		summary.EstimatedQuotes += row.EstimatedCount
		summary.TotalSupplyPrice += row.TotalSupplyPrice
		summary.ByStatus[row.Status] += row.QuoteCount

		// Open means still being worked: neither completed nor cancelled.
		if row.Status == "submitted" || row.Status == "in_progress" {
			summary.OpenSupplyPrice += row.TotalSupplyPrice
		}

		switch row.ShippingMethod {
		case "LCL":
			summary.LCLCount += row.QuoteCount
		case "FCL":
			summary.FCLCount += row.QuoteCount
		}
	}

	if summary.TotalQuotes > 0 {
		summary.PricedPercent = math.Round(float64(summary.PricedQuotes)/float64(summary.TotalQuotes)*10000) / 100
	}

	return groups, summary, nil
}
