package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
)

func TestRateService_Trend(t *testing.T) {
	day := func(n int) model.ExchangeRate {
		return model.ExchangeRate{Date: testNow.AddDate(0, 0, n-5), USDRate: 1400 + float64(n)*10, CNYRate: 200}
	}
	store := newFakeRateStore(day(1), day(2), day(3), day(4))
	svc := newTestRateService(store, &fakeLookup{})

	t.Run("rising usd", func(t *testing.T) {
		trend, err := svc.Trend(context.Background(), "usd", 0)
		require.NoError(t, err)

		assert.Equal(t, "USD", trend.Currency)
		require.Len(t, trend.Points, 4)
		assert.Equal(t, "", trend.Points[0].Direction)
		assert.Equal(t, "UP", trend.Points[1].Direction)
		assert.Equal(t, 10.0, trend.Points[1].AbsoluteChange)
		assert.Equal(t, 0.71, trend.Points[1].PercentageChange)
		assert.Equal(t, "RISING", trend.OverallTrend)
		assert.Equal(t, 10.0, trend.Slope)
		assert.Equal(t, 1.0, trend.RSquared)
	})

	t.Run("flat cny", func(t *testing.T) {
		trend, err := svc.Trend(context.Background(), "CNY", 2)
		require.NoError(t, err)
		require.Len(t, trend.Points, 2)
		assert.Equal(t, "FLAT", trend.Points[1].Direction)
		assert.Equal(t, "STABLE", trend.OverallTrend)
	})

	t.Run("unsupported currency", func(t *testing.T) {
		_, err := svc.Trend(context.Background(), "JPY", 10)
		assert.ErrorIs(t, err, pricing.ErrMissingInput)
	})

	t.Run("no history", func(t *testing.T) {
		trend, err := newTestRateService(newFakeRateStore(), &fakeLookup{}).Trend(context.Background(), "USD", 10)
		require.NoError(t, err)
		assert.Empty(t, trend.Points)
		assert.Equal(t, "VOLATILE", trend.OverallTrend)
	})
}

func TestLinearRegression(t *testing.T) {
	slope, r2 := linearRegression([]float64{1, 2, 3, 4})
	assert.InDelta(t, 1.0, slope, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)

	slope, r2 = linearRegression([]float64{5})
	assert.Zero(t, slope)
	assert.Zero(t, r2)
}
