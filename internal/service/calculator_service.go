package service

import (
	"context"
	"fmt"

	"github.com/anyulbade/trade-cost-backoffice/internal/dto"
	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
)

type TariffResolver interface {
	Resolve(ctx context.Context, hsCode string) (model.TariffResolution, error)
}

type CalculatorService struct {
	rates    RateSource
	tariffs  TariffResolver
	engine   *pricing.Engine
	defaults pricing.LandedCostOptions

	defaultTariffRate float64
}

func NewCalculatorService(rates RateSource, tariffs TariffResolver, engine *pricing.Engine, defaultTariffRate, certificateOfOriginCost float64) *CalculatorService {
	return &CalculatorService{
		rates:   rates,
		tariffs: tariffs,
		engine:  engine,
		defaults: pricing.LandedCostOptions{
			CertificateOfOriginCost: certificateOfOriginCost,
			ImportVATRate:           engine.Config().ImportVATRate,
		},
		defaultTariffRate: defaultTariffRate,
	}
}

func (s *CalculatorService) CBM(req *dto.CBMRequest) (pricing.CBMResult, error) {
	dims := pricing.Dimensions{Length: req.Length, Width: req.Width, Height: req.Height, Unit: pricing.LengthUnit(req.Unit)}
	return pricing.CBM(dims, req.Quantity)
}

func (s *CalculatorService) VolumetricWeight(req *dto.VolumetricWeightRequest) (pricing.WeightResult, error) {
	dims := pricing.Dimensions{Length: req.Length, Width: req.Width, Height: req.Height, Unit: pricing.LengthUnit(req.Unit)}
	return pricing.VolumetricWeight(dims, req.ActualWeightKg)
}

func (s *CalculatorService) Convert(ctx context.Context, req *dto.CurrencyRequest) (*dto.ConversionResponse, error) {
	rate, err := s.rates.Latest(ctx)
	if err != nil {
		return nil, err
	}

	from, to := pricing.ParseCurrency(req.From), pricing.ParseCurrency(req.To)
	v, err := pricing.Convert(req.Amount, from, to, pricing.RatesFrom(rate))
	if err != nil {
		return nil, err
	}

	places := int32(2)
	if to == pricing.KRW {
		places = 0
	}
	return &dto.ConversionResponse{
		Amount:    req.Amount,
		From:      string(from),
		To:        string(to),
		Result:    pricing.RoundPlaces(v, places),
		Rate:      rate,
		Estimated: rate.Estimated,
	}, nil
}

func (s *CalculatorService) LandedCost(ctx context.Context, req *dto.LandedCostRequest) (pricing.LandedCostResult, error) {
	rate, err := s.rates.Latest(ctx)
	if err != nil {
		return pricing.LandedCostResult{}, err
	}

	var tariff pricing.AppliedTariff
	switch {
	case req.HSCode != "":
		res, err := s.tariffs.Resolve(ctx, req.HSCode)
		if err != nil {
			return pricing.LandedCostResult{}, fmt.Errorf("resolve tariff: %w", err)
		}
		tariff = pricing.AppliedTariff{
			Tier:                        res.AppliedTier,
			RatePercent:                 res.AppliedRate,
			RequiresCertificateOfOrigin: res.RequiresCertificateOfOrigin,
			Estimated:                   res.Estimated,
		}
	case req.TariffRate != nil:
		tariff = pricing.AppliedTariff{Tier: pricing.TierBasic, RatePercent: *req.TariffRate}
	default:
		tariff = pricing.SelectTariff(model.TariffRates{}, s.defaultTariffRate)
	}

	shippingCurrency := req.ShippingCurrency
	if shippingCurrency == "" {
		shippingCurrency = req.Currency
	}

	in := pricing.LandedCostInput{
		UnitPrice:        req.UnitPrice,
		Quantity:         req.Quantity,
		Currency:         pricing.ParseCurrency(req.Currency),
		ShippingCost:     req.ShippingCost,
		ShippingCurrency: pricing.ParseCurrency(shippingCurrency),
		InsuranceCost:    req.InsuranceCost,
		OtherCostsLocal:  req.OtherCostsLocal,
	}
	return pricing.LandedCost(in, pricing.RatesFrom(rate), tariff, s.defaults)
}

func (s *CalculatorService) Derive(req *dto.QuoteInputs) pricing.Derived {
	var q model.Quote
	mergeInputs(&q, *req)
	return s.engine.Derive(inputsOf(&q)).Rounded()
}
