package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrMissingInput = errors.New("missing required input")
	ErrUnknownUnit  = errors.New("unknown unit")
)

type LengthUnit string

const (
	UnitCentimeter LengthUnit = "cm"
	UnitMeter      LengthUnit = "m"
	UnitMillimeter LengthUnit = "mm"
)

const (
	Container20ft = "20ft"
	Container40ft = "40ft"
	Container40HC = "40hc"

	capacity20ftCBM = 33.0
	capacity40ftCBM = 67.0

	// cm³ per kg used by air/express carriers
	volumetricDivisorCm = 6000.0
)

// Dimensions of a single box. An empty Unit means centimeters.
type Dimensions struct {
	Length float64    `json:"length"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Unit   LengthUnit `json:"unit"`
}

func (d Dimensions) toCentimeters() (float64, float64, float64, error) {
	var factor float64
	switch d.Unit {
	case "", UnitCentimeter:
		factor = 1
	case UnitMeter:
		factor = 100
	case UnitMillimeter:
		factor = 0.1
	default:
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrUnknownUnit, d.Unit)
	}
	edges := []struct {
		name  string
		value float64
	}{{"length", d.Length}, {"width", d.Width}, {"height", d.Height}}
	for _, e := range edges {
		if e.value <= 0 || math.IsNaN(e.value) {
			return 0, 0, 0, fmt.Errorf("%w: %s", ErrMissingInput, e.name)
		}
	}
	return d.Length * factor, d.Width * factor, d.Height * factor, nil
}

type CBMResult struct {
	PerBoxCBM       float64 `json:"per_box_cbm"`
	TotalCBM        float64 `json:"total_cbm"`
	Container       string  `json:"container"`
	Utilization20ft float64 `json:"utilization_20ft_pct"`
	Utilization40ft float64 `json:"utilization_40ft_pct"`
}

func CBM(dims Dimensions, quantity int) (CBMResult, error) {
	l, w, h, err := dims.toCentimeters()
	if err != nil {
		return CBMResult{}, err
	}
	if quantity < 1 {
		quantity = 1
	}

	perBox := l * w * h / 1_000_000
	total := perBox * float64(quantity)

	container := Container40HC
	switch {
	case total <= capacity20ftCBM:
		container = Container20ft
	case total <= capacity40ftCBM:
		container = Container40ft
	}

	return CBMResult{
		PerBoxCBM:       RoundPlaces(perBox, 6),
		TotalCBM:        RoundPlaces(total, cbmPlaces),
		Container:       container,
		Utilization20ft: RoundPlaces(total/capacity20ftCBM*100, 1),
		Utilization40ft: RoundPlaces(total/capacity40ftCBM*100, 1),
	}, nil
}

type WeightResult struct {
	VolumetricKg float64 `json:"volumetric_kg"`
	ActualKg     float64 `json:"actual_kg"`
	ChargeableKg float64 `json:"chargeable_kg"`
}

func VolumetricWeight(dims Dimensions, actualKg float64) (WeightResult, error) {
	l, w, h, err := dims.toCentimeters()
	if err != nil {
		return WeightResult{}, err
	}
	if actualKg < 0 || math.IsNaN(actualKg) {
		actualKg = 0
	}

	volumetric := l * w * h / volumetricDivisorCm
	return WeightResult{
		VolumetricKg: RoundPlaces(volumetric, 2),
		ActualKg:     actualKg,
		ChargeableKg: RoundPlaces(math.Max(volumetric, actualKg), 2),
	}, nil
}
