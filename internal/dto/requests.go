package dto

type CreateQuoteRequest struct {
	ProductName    string `json:"product_name" binding:"required,max=200"`
	QuotedQuantity *int   `json:"quoted_quantity" binding:"omitempty,gte=0"`
}

// QuoteInputs is a partial edit of a quote. Only fields present in the
// request body are applied; negative values are rejected here so the
// engine only ever sees non-negative inputs.
type QuoteInputs struct {
	ProductName *string `json:"product_name" binding:"omitempty,min=1,max=200"`
	Status      *string `json:"status" binding:"omitempty,oneof=submitted in_progress completed cancelled"`

	QuotedQuantity *int     `json:"quoted_quantity" binding:"omitempty,gte=0"`
	UnitsPerBox    *int     `json:"units_per_box" binding:"omitempty,gte=0"`
	BoxLength      *float64 `json:"box_length" binding:"omitempty,gte=0"`
	BoxWidth       *float64 `json:"box_width" binding:"omitempty,gte=0"`
	BoxHeight      *float64 `json:"box_height" binding:"omitempty,gte=0"`

	OriginUnitPrice   *float64 `json:"china_unit_price" binding:"omitempty,gte=0"`
	OriginShippingFee *float64 `json:"china_shipping_fee" binding:"omitempty,gte=0"`
	ExchangeRate      *float64 `json:"exchange_rate" binding:"omitempty,gt=0"`

	CustomsRate    *float64 `json:"customs_rate" binding:"omitempty,gte=0,lte=1000"`
	FCLShippingFee *float64 `json:"fcl_shipping_fee" binding:"omitempty,gte=0"`
}

// SetHSCodeRequest accepts dotted or dashed codes; they are normalised to
// ten digits before lookup.
type SetHSCodeRequest struct {
	HSCode string `json:"hs_code" binding:"required,max=20"`
}

type CBMRequest struct {
	Length   float64 `json:"length" binding:"required,gt=0"`
	Width    float64 `json:"width" binding:"required,gt=0"`
	Height   float64 `json:"height" binding:"required,gt=0"`
	Unit     string  `json:"unit" binding:"omitempty,oneof=cm m mm"`
	Quantity int     `json:"quantity" binding:"gte=0"`
}

type VolumetricWeightRequest struct {
	Length         float64 `json:"length" binding:"required,gt=0"`
	Width          float64 `json:"width" binding:"required,gt=0"`
	Height         float64 `json:"height" binding:"required,gt=0"`
	Unit           string  `json:"unit" binding:"omitempty,oneof=cm m mm"`
	ActualWeightKg float64 `json:"actual_weight_kg" binding:"gte=0"`
}

type CurrencyRequest struct {
	Amount float64 `json:"amount" binding:"gte=0"`
	From   string  `json:"from" binding:"required,oneof=KRW USD CNY"`
	To     string  `json:"to" binding:"required,oneof=KRW USD CNY"`
}

// LandedCostRequest prices a shipment. The tariff comes from HSCode when
// given, otherwise from TariffRate, otherwise the default basic rate.
type LandedCostRequest struct {
	UnitPrice        float64  `json:"unit_price" binding:"required,gt=0"`
	Quantity         float64  `json:"quantity" binding:"required,gt=0"`
	Currency         string   `json:"currency" binding:"required,oneof=KRW USD CNY"`
	ShippingCost     float64  `json:"shipping_cost" binding:"gte=0"`
	ShippingCurrency string   `json:"shipping_currency" binding:"omitempty,oneof=KRW USD CNY"`
	InsuranceCost    float64  `json:"insurance_cost" binding:"gte=0"`
	OtherCostsLocal  float64  `json:"other_costs_local" binding:"gte=0"`
	HSCode           string   `json:"hs_code" binding:"omitempty,len=10,numeric"`
	TariffRate       *float64 `json:"tariff_rate" binding:"omitempty,gte=0"`
}
