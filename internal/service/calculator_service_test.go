package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/trade-cost-backoffice/internal/dto"
	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
)

func newTestCalculator(lookup *fakeLookup) *CalculatorService {
	rates := staticRates{rate: model.ExchangeRate{USDRate: 1000, CNYRate: 200, Source: "test"}}
	tariffs := NewTariffService(lookup, lookup, newFakeQuoteStore(), nil, 8)
	return NewCalculatorService(rates, tariffs, pricing.NewEngine(pricing.DefaultConfig()), 8, 50000)
}

func TestCalculatorService_Convert(t *testing.T) {
	svc := newTestCalculator(&fakeLookup{})

	res, err := svc.Convert(context.Background(), &dto.CurrencyRequest{Amount: 100, From: "USD", To: "KRW"})
	require.NoError(t, err)
	assert.Equal(t, 100000.0, res.Result)
	assert.False(t, res.Estimated)

	res, err = svc.Convert(context.Background(), &dto.CurrencyRequest{Amount: 100, From: "USD", To: "CNY"})
	require.NoError(t, err)
	assert.Equal(t, 500.0, res.Result)
}

func TestCalculatorService_LandedCost(t *testing.T) {
	req := dto.LandedCostRequest{UnitPrice: 10, Quantity: 100, Currency: "USD", ShippingCost: 100}

	t.Run("default rate is an estimate", func(t *testing.T) {
		svc := newTestCalculator(&fakeLookup{})
		r := req
		res, err := svc.LandedCost(context.Background(), &r)
		require.NoError(t, err)
		assert.Equal(t, 1100000.0, res.CIFLocal)
		assert.Equal(t, 88000.0, res.CustomsDuty)
		assert.True(t, res.Tariff.Estimated)
		assert.Equal(t, 1306800.0, res.Total)
	})

	t.Run("explicit rate", func(t *testing.T) {
		svc := newTestCalculator(&fakeLookup{})
		r := req
		r.TariffRate = floatp(0)
		res, err := svc.LandedCost(context.Background(), &r)
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.CustomsDuty)
		assert.False(t, res.Tariff.Estimated)
	})

	t.Run("hs code resolves FTA with certificate cost", func(t *testing.T) {
		lookup := &fakeLookup{
			rates: map[string]model.TariffRates{"3924100000": {Basic: floatp(8), FTA: floatp(0)}},
			certs: map[string][]string{},
		}
		svc := newTestCalculator(lookup)
		r := req
		r.HSCode = "3924100000"
		res, err := svc.LandedCost(context.Background(), &r)
		require.NoError(t, err)
		assert.Equal(t, pricing.TierFTA, res.Tariff.Tier)
		assert.Equal(t, 50000.0, res.CertificateFee)
		assert.Equal(t, 1265000.0, res.Total)
	})
}

func TestCalculatorService_Derive(t *testing.T) {
	svc := newTestCalculator(&fakeLookup{})

	d := svc.Derive(&dto.QuoteInputs{QuotedQuantity: intp(1000), UnitsPerBox: intp(0)})
	assert.Nil(t, d.TotalBoxes)
	require.NotNil(t, d.CommissionRatePercent)

	in := completeEdit()
	d = svc.Derive(&in)
	assert.Equal(t, 1371.0, *d.ExpectedUnitPriceLocal)
}

func TestCalculatorService_Dimensions(t *testing.T) {
	svc := newTestCalculator(&fakeLookup{})

	cbm, err := svc.CBM(&dto.CBMRequest{Length: 50, Width: 40, Height: 30, Quantity: 100})
	require.NoError(t, err)
	assert.Equal(t, 6.0, cbm.TotalCBM)

	w, err := svc.VolumetricWeight(&dto.VolumetricWeightRequest{Length: 0.5, Width: 0.4, Height: 0.3, Unit: "m", ActualWeightKg: 12})
	require.NoError(t, err)
	assert.Equal(t, 12.0, w.ChargeableKg)
}
