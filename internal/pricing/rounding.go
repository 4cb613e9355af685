package pricing

import "github.com/shopspring/decimal"

const cbmPlaces = 4

func RoundCurrency(v float64) float64 {
	return decimal.NewFromFloat(v).Round(0).InexactFloat64()
}

func RoundPlaces(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Rounded returns a copy of d rounded for presentation or persistence.
// Derive itself never rounds, so rounding happens exactly once.
func (d Derived) Rounded() Derived {
	r := d
	r.TotalCBM = roundPtr(d.TotalCBM, cbmPlaces)
	r.LCLShippingFeeLocal = roundPtr(d.LCLShippingFeeLocal, 0)
	r.CommissionAmountLocal = roundPtr(d.CommissionAmountLocal, 0)
	r.EXWTotalLocal = roundPtr(d.EXWTotalLocal, 0)
	r.FirstPaymentAmountLocal = roundPtr(d.FirstPaymentAmountLocal, 0)
	r.EffectiveShippingFeeLocal = roundPtr(d.EffectiveShippingFeeLocal, 0)
	r.CustomsDutyLocal = roundPtr(d.CustomsDutyLocal, 0)
	r.ImportVATLocal = roundPtr(d.ImportVATLocal, 0)
	r.ExpectedSecondPaymentLocal = roundPtr(d.ExpectedSecondPaymentLocal, 0)
	r.ExpectedTotalSupplyPriceLocal = roundPtr(d.ExpectedTotalSupplyPriceLocal, 0)
	r.ExpectedUnitPriceLocal = roundPtr(d.ExpectedUnitPriceLocal, 0)
	return r
}

func roundPtr(p *float64, places int32) *float64 {
	if p == nil {
		return nil
	}
	return ptr(RoundPlaces(*p, places))
}
