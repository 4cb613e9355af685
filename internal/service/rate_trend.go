package service

import (
	"context"
	"fmt"
	"math"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
)

type RatePoint struct {
	Date             string  `json:"date"`
	Rate             float64 `json:"rate"`
	PreviousRate     float64 `json:"previous_rate,omitempty"`
	AbsoluteChange   float64 `json:"absolute_change"`
	PercentageChange float64 `json:"percentage_change"`
	Direction        string  `json:"direction"`
}

type RateTrend struct {
	Currency     string      `json:"currency"`
	Points       []RatePoint `json:"points"`
	OverallTrend string      `json:"overall_trend"`
	Slope        float64     `json:"slope"`
	RSquared     float64     `json:"r_squared"`
}

func (s *RateService) Trend(ctx context.Context, currency string, days int) (*RateTrend, error) {
	if days < 1 {
		days = defaultTrendDays
	}
	if days > maxTrendDays {
		days = maxTrendDays
	}

	cur := pricing.ParseCurrency(currency)
	if cur != pricing.USD && cur != pricing.CNY {
		return nil, fmt.Errorf("%w: currency %q", pricing.ErrMissingInput, currency)
	}

	history, err := s.store.History(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("load exchange rate history: %w", err)
	}

	values := make([]float64, len(history))
	for i, r := range history {
		values[i] = rateOf(r, cur)
	}

	points := make([]RatePoint, len(values))
	for i, v := range values {
		p := RatePoint{Date: history[i].Date.Format("2006-01-02"), Rate: v}
		if i > 0 {
			p.PreviousRate = values[i-1]
			p.AbsoluteChange = pricing.RoundPlaces(v-values[i-1], 4)
			if values[i-1] != 0 {
				p.PercentageChange = math.Round((v-values[i-1])/values[i-1]*10000) / 100
			}
			switch {
			case math.Abs(p.PercentageChange) < 0.1:
				p.Direction = "FLAT"
			case p.AbsoluteChange > 0:
				p.Direction = "UP"
			default:
				p.Direction = "DOWN"
			}
		}
		points[i] = p
	}

	slope, r2 := linearRegression(values)
	overall := "VOLATILE"
	if len(values) >= 2 && r2 >= 0.5 {
		switch {
		case slope > 0:
			overall = "RISING"
		case slope < 0:
			overall = "FALLING"
		default:
			overall = "STABLE"
		}
	}

	return &RateTrend{
		Currency:     string(cur),
		Points:       points,
		OverallTrend: overall,
		Slope:        math.Round(slope*10000) / 10000,
		RSquared:     math.Round(r2*10000) / 10000,
	}, nil
}

func rateOf(r model.ExchangeRate, c pricing.Currency) float64 {
	if c == pricing.USD {
		return r.USDRate
	}
	return r.CNYRate
}

func linearRegression(values []float64) (slope, rSquared float64) {
	n := float64(len(values))
	if n < 2 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, 0
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, v := range values {
		predicted := slope*float64(i) + intercept
		ssRes += (v - predicted) * (v - predicted)
		ssTot += (v - meanY) * (v - meanY)
	}

	if ssTot == 0 {
		return slope, 1.0
	}
	return slope, 1 - ssRes/ssTot
}
