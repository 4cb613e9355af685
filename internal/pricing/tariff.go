package pricing

import "github.com/anyulbade/trade-cost-backoffice/internal/model"

const (
	TierBasic        = "basic"
	TierWTO          = "wto"
	TierFTA          = "fta"
	TierBilateralFTA = "bilateral_fta"
)

type AppliedTariff struct {
	Tier                        string  `json:"tier"`
	RatePercent                 float64 `json:"rate_percent"`
	RequiresCertificateOfOrigin bool    `json:"requires_certificate_of_origin"`
	Estimated                   bool    `json:"estimated"`
}

// SelectTariff picks the lowest available tier. Ties keep the earlier tier
// in basic, WTO, FTA, bilateral FTA order. Preferential (FTA) tiers need a
// certificate of origin. With no tier available the fallback basic rate is
// returned and marked as an estimate.
func SelectTariff(rates model.TariffRates, fallbackPercent float64) AppliedTariff {
	candidates := []struct {
		tier string
		rate *float64
	}{
		{TierBasic, rates.Basic},
		{TierWTO, rates.WTO},
		{TierFTA, rates.FTA},
		{TierBilateralFTA, rates.BilateralFTA},
	}

	var best *AppliedTariff
	for _, c := range candidates {
		if c.rate == nil || *c.rate < 0 {
			continue
		}
		if best == nil || *c.rate < best.RatePercent {
			best = &AppliedTariff{
				Tier:                        c.tier,
				RatePercent:                 *c.rate,
				RequiresCertificateOfOrigin: c.tier == TierFTA || c.tier == TierBilateralFTA,
			}
		}
	}

	if best == nil {
		return AppliedTariff{Tier: TierBasic, RatePercent: fallbackPercent, Estimated: true}
	}
	return *best
}
