package pricing

import "fmt"

type LandedCostInput struct {
	UnitPrice        float64  `json:"unit_price"`
	Quantity         float64  `json:"quantity"`
	Currency         Currency `json:"currency"`
	ShippingCost     float64  `json:"shipping_cost"`
	ShippingCurrency Currency `json:"shipping_currency"`
	InsuranceCost    float64  `json:"insurance_cost"`
	OtherCostsLocal  float64  `json:"other_costs_local"`
}

type LandedCostOptions struct {
	CertificateOfOriginCost float64
	ImportVATRate           float64
}

type LandedCostResult struct {
	GoodsLocal     float64       `json:"goods_local"`
	ShippingLocal  float64       `json:"shipping_local"`
	InsuranceLocal float64       `json:"insurance_local"`
	CIFLocal       float64       `json:"cif_local"`
	CustomsDuty    float64       `json:"customs_duty"`
	CertificateFee float64       `json:"certificate_of_origin_fee"`
	OtherCosts     float64       `json:"other_costs"`
	VATBase        float64       `json:"vat_base"`
	VAT            float64       `json:"vat"`
	Total          float64       `json:"total"`
	PerUnit        float64       `json:"per_unit"`
	Tariff         AppliedTariff `json:"tariff"`
}

// LandedCost estimates the full import cost of a shipment. Insurance is
// quoted in the goods currency. Duty is assessed on CIF value and VAT on
// CIF plus duty, other costs and the certificate-of-origin fee.
func LandedCost(in LandedCostInput, rates RateTable, tariff AppliedTariff, opts LandedCostOptions) (LandedCostResult, error) {
	if in.UnitPrice <= 0 {
		return LandedCostResult{}, fmt.Errorf("%w: unit_price", ErrMissingInput)
	}
	if in.Quantity <= 0 {
		return LandedCostResult{}, fmt.Errorf("%w: quantity", ErrMissingInput)
	}

	goodsRate, err := rates.ToLocal(in.Currency)
	if err != nil {
		return LandedCostResult{}, err
	}
	shippingRate, err := rates.ToLocal(in.ShippingCurrency)
	if err != nil {
		return LandedCostResult{}, err
	}

	goods := in.UnitPrice * in.Quantity * goodsRate
	shipping := in.ShippingCost * shippingRate
	insurance := in.InsuranceCost * goodsRate
	cif := goods + shipping + insurance

	certificate := 0.0
	if tariff.RequiresCertificateOfOrigin {
		certificate = opts.CertificateOfOriginCost
	}

	duty := cif * tariff.RatePercent / 100
	vatBase := cif + duty + in.OtherCostsLocal + certificate
	vat := vatBase * opts.ImportVATRate
	total := vatBase + vat

	return LandedCostResult{
		GoodsLocal:     RoundCurrency(goods),
		ShippingLocal:  RoundCurrency(shipping),
		InsuranceLocal: RoundCurrency(insurance),
		CIFLocal:       RoundCurrency(cif),
		CustomsDuty:    RoundCurrency(duty),
		CertificateFee: RoundCurrency(certificate),
		OtherCosts:     RoundCurrency(in.OtherCostsLocal),
		VATBase:        RoundCurrency(vatBase),
		VAT:            RoundCurrency(vat),
		Total:          RoundCurrency(total),
		PerUnit:        RoundCurrency(total / in.Quantity),
		Tariff:         tariff,
	}, nil
}
