package pricing

const (
	ShippingLCL = "LCL"
	ShippingFCL = "FCL"
)

// Config holds the constants of the derivation chain that a deployment may
// retune without code changes.
type Config struct {
	FCLThresholdCBM   float64
	LCLRatePerCBM     float64
	CommissionRate    float64
	CommissionVATRate float64
	ImportVATRate     float64

	// DutyRequiresShipping skips the customs duty estimate until a shipping
	// fee is known. Duty is legally assessed on CIF value, so turning this
	// off estimates duty on the EXW value alone.
	DutyRequiresShipping bool
}

func DefaultConfig() Config {
	return Config{
		FCLThresholdCBM:      15,
		LCLRatePerCBM:        90000,
		CommissionRate:       0.05,
		CommissionVATRate:    0.10,
		ImportVATRate:        0.10,
		DutyRequiresShipping: true,
	}
}
