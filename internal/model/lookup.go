package model

import "time"

type ExchangeRate struct {
	Date      time.Time `json:"date"`
	USDRate   float64   `json:"usd_rate"`
	CNYRate   float64   `json:"cny_rate"`
	EURRate   *float64  `json:"eur_rate,omitempty"`
	JPYRate   *float64  `json:"jpy_rate,omitempty"`
	Source    string    `json:"source"`
	Estimated bool      `json:"estimated"`
}

// TariffRates holds the tiers published for one HS code, as percentages.
// A nil tier is not available for the code.
type TariffRates struct {
	Basic        *float64 `json:"basic,omitempty"`
	WTO          *float64 `json:"wto,omitempty"`
	FTA          *float64 `json:"fta,omitempty"`
	BilateralFTA *float64 `json:"bilateral_fta,omitempty"`
}

type TariffResolution struct {
	HSCode                      string      `json:"hs_code"`
	Rates                       TariffRates `json:"rates"`
	AppliedTier                 string      `json:"applied_tier"`
	AppliedRate                 float64     `json:"applied_rate"`
	RequiresCertificateOfOrigin bool        `json:"requires_certificate_of_origin"`
	Estimated                   bool        `json:"estimated"`
	CertificationRequired       *bool       `json:"certification_required,omitempty"`
	RequiredCertifications      []string    `json:"required_certifications,omitempty"`
}

type HSCandidate struct {
	Code       string  `json:"code"`
	LocalName  string  `json:"local_name"`
	Confidence float64 `json:"confidence"`
}
