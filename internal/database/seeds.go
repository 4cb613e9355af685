package database

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
)

type quoteProfile struct {
	ReservationNumber string
	ProductName       string
	Status            string
	HSCode            string
	QuantityRange     [2]int     // min, max quoted quantity
	UnitsPerBox       int
	Box               [3]float64 // length, width, height in cm
	UnitPriceRange    [2]float64 // min, max CNY per unit
	CustomsRate       float64
	FCLShippingFee    float64 // only used when the quote resolves to FCL
}

var quoteProfiles = []quoteProfile{
	// Small LCL orders
	{ReservationNumber: "MR-20250811-100001", ProductName: "Silicone kitchen spatula set", Status: "completed", HSCode: "3924100000", QuantityRange: [2]int{500, 1500}, UnitsPerBox: 50, Box: [3]float64{50, 40, 30}, UnitPriceRange: [2]float64{4, 7}, CustomsRate: 6.5},
	{ReservationNumber: "MR-20250811-100002", ProductName: "Bluetooth earbuds charging case", Status: "completed", HSCode: "8518300000", QuantityRange: [2]int{1000, 3000}, UnitsPerBox: 100, Box: [3]float64{45, 35, 30}, UnitPriceRange: [2]float64{18, 30}, CustomsRate: 8},
	{ReservationNumber: "MR-20250812-100003", ProductName: "Cotton tote bag with print", Status: "in_progress", HSCode: "4202220000", QuantityRange: [2]int{2000, 5000}, UnitsPerBox: 200, Box: [3]float64{60, 40, 40}, UnitPriceRange: [2]float64{3, 6}, CustomsRate: 8},

	// FCL-sized orders
	{ReservationNumber: "MR-20250813-100004", ProductName: "Folding camping chair", Status: "in_progress", HSCode: "9401710000", QuantityRange: [2]int{3000, 4000}, UnitsPerBox: 4, Box: [3]float64{90, 60, 40}, UnitPriceRange: [2]float64{35, 55}, CustomsRate: 8, FCLShippingFee: 3200000},
	{ReservationNumber: "MR-20250814-100005", ProductName: "Plastic storage container 20L", Status: "submitted", HSCode: "3923100000", QuantityRange: [2]int{5000, 8000}, UnitsPerBox: 6, Box: [3]float64{70, 50, 45}, UnitPriceRange: [2]float64{8, 12}, CustomsRate: 6.5},

	// Drafts without dimensions yet
	{ReservationNumber: "MR-20250815-100006", ProductName: "Stainless tumbler 600ml", Status: "submitted", QuantityRange: [2]int{800, 1200}},
}

func SeedData(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Check if data already exists (idempotency)
	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM market_research_requests").Scan(&count)
	if err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed data already exists, skipping")
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 30 days of exchange rates ending on the seed base date
	baseDate := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	usd, cny := 1385.0, 192.0
	for i := 29; i >= 0; i-- {
		usd += (rng.Float64() - 0.5) * 8
		cny += (rng.Float64() - 0.5) * 1.2
		_, err := tx.Exec(ctx,
			`INSERT INTO exchange_rates (date, usd_rate, cny_rate, source) VALUES ($1, $2, $3, 'seed')
			ON CONFLICT (date) DO NOTHING`,
			baseDate.AddDate(0, 0, -i), math.Round(usd*100)/100, math.Round(cny*100)/100)
		if err != nil {
			return fmt.Errorf("insert exchange rate: %w", err)
		}
	}
	log.Info().Int("count", 30).Msg("inserted exchange rates")

	engine := pricing.NewEngine(pricing.DefaultConfig())
	for _, p := range quoteProfiles {
		qty := p.QuantityRange[0] + rng.Intn(p.QuantityRange[1]-p.QuantityRange[0]+1)
		in := pricing.Inputs{QuotedQuantity: &qty}

		var hsCode, rateType *string
		var exchangeRateDate *time.Time
		if p.UnitsPerBox > 0 {
			perBox := p.UnitsPerBox
			price := math.Round((p.UnitPriceRange[0]+rng.Float64()*(p.UnitPriceRange[1]-p.UnitPriceRange[0]))*100) / 100
			rate := math.Round(cny*100) / 100
			customs := p.CustomsRate
			in.UnitsPerBox = &perBox
			in.BoxLengthCm, in.BoxWidthCm, in.BoxHeightCm = &p.Box[0], &p.Box[1], &p.Box[2]
			in.OriginUnitPrice = &price
			in.ExchangeRate = &rate
			in.CustomsRatePercent = &customs
			if p.FCLShippingFee > 0 {
				fee := p.FCLShippingFee
				in.FCLShippingFeeLocal = &fee
			}
			code, tier := p.HSCode, pricing.TierBasic
			hsCode, rateType = &code, &tier
			exchangeRateDate = &baseDate
		}

		d := engine.Derive(in).Rounded()
		_, err := tx.Exec(ctx,
			`INSERT INTO market_research_requests (
				reservation_number, product_name, status, hs_code,
				quoted_quantity, units_per_box, box_length, box_width, box_height,
				china_unit_price, exchange_rate, exchange_rate_date, customs_rate, customs_rate_type, fcl_shipping_fee,
				total_boxes, total_cbm, shipping_method, lcl_shipping_fee, commission_rate, commission_amount,
				exw_total, first_payment_amount, customs_duty, import_vat,
				expected_second_payment, expected_total_supply_price, expected_unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
				$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`,
			p.ReservationNumber, p.ProductName, p.Status, hsCode,
			in.QuotedQuantity, in.UnitsPerBox, in.BoxLengthCm, in.BoxWidthCm, in.BoxHeightCm,
			in.OriginUnitPrice, in.ExchangeRate, exchangeRateDate, in.CustomsRatePercent, rateType, in.FCLShippingFeeLocal,
			d.TotalBoxes, d.TotalCBM, d.ShippingMethod, d.LCLShippingFeeLocal, d.CommissionRatePercent, d.CommissionAmountLocal,
			d.EXWTotalLocal, d.FirstPaymentAmountLocal, d.CustomsDutyLocal, d.ImportVATLocal,
			d.ExpectedSecondPaymentLocal, d.ExpectedTotalSupplyPriceLocal, d.ExpectedUnitPriceLocal)
		if err != nil {
			return fmt.Errorf("insert quote %s: %w", p.ReservationNumber, err)
		}
	}
	log.Info().Int("count", len(quoteProfiles)).Msg("inserted market research quotes")

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed data: %w", err)
	}

	log.Info().Msg("seed data generation complete")
	return nil
}
