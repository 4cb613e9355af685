package pricing

import "math"

// Inputs is the editable part of a trade cost record. A nil field has not
// been entered yet; an entered zero is kept distinct from it.
//
// The engine assumes non-negative values. Negative inputs are rejected at
// the request boundary; if one slips through, Derive still returns without
// panicking but the figures are meaningless.
type Inputs struct {
	QuotedQuantity *int `json:"quoted_quantity,omitempty"`
	UnitsPerBox    *int `json:"units_per_box,omitempty"`

	BoxLengthCm *float64 `json:"box_length_cm,omitempty"`
	BoxWidthCm  *float64 `json:"box_width_cm,omitempty"`
	BoxHeightCm *float64 `json:"box_height_cm,omitempty"`

	OriginUnitPrice           *float64 `json:"origin_unit_price,omitempty"`
	ExchangeRate              *float64 `json:"exchange_rate,omitempty"`
	OriginShippingFeePerOrder *float64 `json:"origin_shipping_fee_per_order,omitempty"`

	CustomsRatePercent  *float64 `json:"customs_rate_percent,omitempty"`
	FCLShippingFeeLocal *float64 `json:"fcl_shipping_fee_local,omitempty"`
}

// Derived holds every computed field. A nil field could not be computed
// from the inputs; it is never reported as zero.
type Derived struct {
	TotalBoxes                    *int     `json:"total_boxes"`
	TotalCBM                      *float64 `json:"total_cbm"`
	ShippingMethod                *string  `json:"shipping_method"`
	LCLShippingFeeLocal           *float64 `json:"lcl_shipping_fee_local"`
	CommissionRatePercent         *float64 `json:"commission_rate_percent"`
	CommissionAmountLocal         *float64 `json:"commission_amount_local"`
	EXWTotalLocal                 *float64 `json:"exw_total_local"`
	FirstPaymentAmountLocal       *float64 `json:"first_payment_amount_local"`
	EffectiveShippingFeeLocal     *float64 `json:"effective_shipping_fee_local"`
	CustomsDutyLocal              *float64 `json:"customs_duty_local"`
	ImportVATLocal                *float64 `json:"import_vat_local"`
	ExpectedSecondPaymentLocal    *float64 `json:"expected_second_payment_local"`
	ExpectedTotalSupplyPriceLocal *float64 `json:"expected_total_supply_price_local"`
	ExpectedUnitPriceLocal        *float64 `json:"expected_unit_price_local"`
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Derive computes every derived field in dependency order. It does no I/O,
// does not modify in, and returns the same result for the same inputs
// regardless of how they were arrived at.
func (e *Engine) Derive(in Inputs) Derived {
	var d Derived

	qty, hasQty := positiveInt(in.QuotedQuantity)
	perBox, hasPerBox := positiveInt(in.UnitsPerBox)
	if hasQty && hasPerBox {
		d.TotalBoxes = ptr(int(math.Ceil(float64(qty) / float64(perBox))))
	}

	length, okL := positive(in.BoxLengthCm)
	width, okW := positive(in.BoxWidthCm)
	height, okH := positive(in.BoxHeightCm)
	if d.TotalBoxes != nil && okL && okW && okH {
		d.TotalCBM = ptr(float64(*d.TotalBoxes) * length * width * height / 1_000_000)
	}

	if d.TotalCBM != nil {
		if *d.TotalCBM >= e.cfg.FCLThresholdCBM {
			d.ShippingMethod = ptr(ShippingFCL)
		} else {
			d.ShippingMethod = ptr(ShippingLCL)
			d.LCLShippingFeeLocal = ptr(*d.TotalCBM * e.cfg.LCLRatePerCBM)
		}
	}

	d.CommissionRatePercent = ptr(e.cfg.CommissionRate * 100)

	price, hasPrice := positive(in.OriginUnitPrice)
	rate, hasRate := positive(in.ExchangeRate)
	if hasPrice && hasQty && hasRate {
		goods := price * float64(qty) * rate
		originShipping := 0.0
		if in.OriginShippingFeePerOrder != nil {
			originShipping = *in.OriginShippingFeePerOrder * rate
		}
		d.CommissionAmountLocal = ptr(goods * e.cfg.CommissionRate)
		d.EXWTotalLocal = ptr(goods + originShipping)
	}

	if d.EXWTotalLocal != nil && d.CommissionAmountLocal != nil {
		commission := *d.CommissionAmountLocal
		d.FirstPaymentAmountLocal = ptr(*d.EXWTotalLocal + commission + commission*e.cfg.CommissionVATRate)
	}

	shipping := 0.0
	if d.ShippingMethod != nil {
		switch *d.ShippingMethod {
		case ShippingLCL:
			shipping = *d.LCLShippingFeeLocal
		case ShippingFCL:
			if in.FCLShippingFeeLocal != nil {
				shipping = *in.FCLShippingFeeLocal
			}
		}
	}
	d.EffectiveShippingFeeLocal = ptr(shipping)

	shippingKnown := shipping > 0
	if in.CustomsRatePercent != nil && d.EXWTotalLocal != nil && (shippingKnown || !e.cfg.DutyRequiresShipping) {
		d.CustomsDutyLocal = ptr(*in.CustomsRatePercent / 100 * (*d.EXWTotalLocal + shipping))
	}

	if d.EXWTotalLocal != nil && d.CustomsDutyLocal != nil {
		d.ImportVATLocal = ptr((*d.EXWTotalLocal + shipping + *d.CustomsDutyLocal) * e.cfg.ImportVATRate)
	}

	if shippingKnown && d.CustomsDutyLocal != nil && d.ImportVATLocal != nil {
		d.ExpectedSecondPaymentLocal = ptr(shipping + *d.CustomsDutyLocal + *d.ImportVATLocal)
	}

	if d.FirstPaymentAmountLocal != nil && d.ExpectedSecondPaymentLocal != nil {
		d.ExpectedTotalSupplyPriceLocal = ptr(*d.FirstPaymentAmountLocal + *d.ExpectedSecondPaymentLocal)
	}

	if d.ExpectedTotalSupplyPriceLocal != nil && hasQty {
		d.ExpectedUnitPriceLocal = ptr(*d.ExpectedTotalSupplyPriceLocal / float64(qty))
	}

	return d
}

type namedValue struct {
	name  string
	value any
}

func (d Derived) values() []namedValue {
	return []namedValue{
		{"total_boxes", deref(d.TotalBoxes)},
		{"total_cbm", deref(d.TotalCBM)},
		{"shipping_method", deref(d.ShippingMethod)},
		{"lcl_shipping_fee_local", deref(d.LCLShippingFeeLocal)},
		{"commission_rate_percent", deref(d.CommissionRatePercent)},
		{"commission_amount_local", deref(d.CommissionAmountLocal)},
		{"exw_total_local", deref(d.EXWTotalLocal)},
		{"first_payment_amount_local", deref(d.FirstPaymentAmountLocal)},
		{"effective_shipping_fee_local", deref(d.EffectiveShippingFeeLocal)},
		{"customs_duty_local", deref(d.CustomsDutyLocal)},
		{"import_vat_local", deref(d.ImportVATLocal)},
		{"expected_second_payment_local", deref(d.ExpectedSecondPaymentLocal)},
		{"expected_total_supply_price_local", deref(d.ExpectedTotalSupplyPriceLocal)},
		{"expected_unit_price_local", deref(d.ExpectedUnitPriceLocal)},
	}
}

func ChangedFields(prev, next Derived) []string {
	a, b := prev.values(), next.values()
	var changed []string
	for i := range a {
		if a[i].value != b[i].value {
			changed = append(changed, a[i].name)
		}
	}
	return changed
}

func positive(p *float64) (float64, bool) {
	if p == nil || *p <= 0 || math.IsNaN(*p) {
		return 0, false
	}
	return *p, true
}

func positiveInt(p *int) (int, bool) {
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
