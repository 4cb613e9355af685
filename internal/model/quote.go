package model

import (
	"time"
)

const (
	QuoteStatusSubmitted  = "submitted"
	QuoteStatusInProgress = "in_progress"
	QuoteStatusCompleted  = "completed"
	QuoteStatusCancelled  = "cancelled"
)

// Quote is a row of market_research_requests: the staff-edited pricing
// inputs of a market-research request together with the derived snapshot
// that was computed from them at save time.
type Quote struct {
	ID                string `json:"id"`
	ReservationNumber string `json:"reservation_number"`
	ProductName       string `json:"product_name"`
	Status            string `json:"status"`

	HSCode                 *string `json:"hs_code,omitempty"`
	CertificationRequired  *bool   `json:"certification_required,omitempty"`
	RequiredCertifications *string `json:"required_certifications,omitempty"`

	QuotedQuantity        *int       `json:"quoted_quantity,omitempty"`
	UnitsPerBox           *int       `json:"units_per_box,omitempty"`
	BoxLength             *float64   `json:"box_length,omitempty"`
	BoxWidth              *float64   `json:"box_width,omitempty"`
	BoxHeight             *float64   `json:"box_height,omitempty"`
	OriginUnitPrice       *float64   `json:"china_unit_price,omitempty"`
	OriginShippingFee     *float64   `json:"china_shipping_fee,omitempty"`
	ExchangeRate          *float64   `json:"exchange_rate,omitempty"`
	ExchangeRateEstimated bool       `json:"exchange_rate_estimated"`
	ExchangeRateDate      *time.Time `json:"exchange_rate_date,omitempty"`
	CustomsRate           *float64   `json:"customs_rate,omitempty"`
	CustomsRateType       *string    `json:"customs_rate_type,omitempty"`
	CustomsRateEstimated  bool       `json:"customs_rate_estimated"`
	FCLShippingFee        *float64   `json:"fcl_shipping_fee,omitempty"`

	TotalBoxes               *int     `json:"total_boxes,omitempty"`
	TotalCBM                 *float64 `json:"total_cbm,omitempty"`
	ShippingMethod           *string  `json:"shipping_method,omitempty"`
	LCLShippingFee           *float64 `json:"lcl_shipping_fee,omitempty"`
	CommissionRate           *float64 `json:"commission_rate,omitempty"`
	CommissionAmount         *float64 `json:"commission_amount,omitempty"`
	EXWTotal                 *float64 `json:"exw_total,omitempty"`
	FirstPaymentAmount       *float64 `json:"first_payment_amount,omitempty"`
	CustomsDuty              *float64 `json:"customs_duty,omitempty"`
	ImportVAT                *float64 `json:"import_vat,omitempty"`
	ExpectedSecondPayment    *float64 `json:"expected_second_payment,omitempty"`
	ExpectedTotalSupplyPrice *float64 `json:"expected_total_supply_price,omitempty"`
	ExpectedUnitPrice        *float64 `json:"expected_unit_price,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type QuoteEvent struct {
	ReservationNumber string    `json:"reservation_number"`
	Operation         string    `json:"operation"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DateRange filters by creation time. From is inclusive, Until exclusive;
// a zero bound is open.
type DateRange struct {
	From  time.Time
	Until time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return (r.From.IsZero() || !t.Before(r.From)) && (r.Until.IsZero() || t.Before(r.Until))
}
