package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

// ChangeChannel is the LISTEN/NOTIFY channel fed by the
// market_research_changes trigger.
const ChangeChannel = "market_research_changes"

const quoteColumns = `id, reservation_number, product_name, status,
	hs_code, certification_required, required_certifications,
	quoted_quantity, units_per_box, box_length, box_width, box_height,
	china_unit_price, china_shipping_fee, exchange_rate, exchange_rate_estimated, exchange_rate_date,
	customs_rate, customs_rate_type, customs_rate_estimated, fcl_shipping_fee,
	total_boxes, total_cbm, shipping_method, lcl_shipping_fee, commission_rate, commission_amount,
	exw_total, first_payment_amount, customs_duty, import_vat,
	expected_second_payment, expected_total_supply_price, expected_unit_price,
	created_at, updated_at`

type QuoteRepository struct {
	pool *pgxpool.Pool
}

func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

func scanQuote(row pgx.Row) (*model.Quote, error) {
	q := &model.Quote{}
	err := row.Scan(
		&q.ID, &q.ReservationNumber, &q.ProductName, &q.Status,
		&q.HSCode, &q.CertificationRequired, &q.RequiredCertifications,
		&q.QuotedQuantity, &q.UnitsPerBox, &q.BoxLength, &q.BoxWidth, &q.BoxHeight,
		&q.OriginUnitPrice, &q.OriginShippingFee, &q.ExchangeRate, &q.ExchangeRateEstimated, &q.ExchangeRateDate,
		&q.CustomsRate, &q.CustomsRateType, &q.CustomsRateEstimated, &q.FCLShippingFee,
		&q.TotalBoxes, &q.TotalCBM, &q.ShippingMethod, &q.LCLShippingFee, &q.CommissionRate, &q.CommissionAmount,
		&q.EXWTotal, &q.FirstPaymentAmount, &q.CustomsDuty, &q.ImportVAT,
		&q.ExpectedSecondPayment, &q.ExpectedTotalSupplyPrice, &q.ExpectedUnitPrice,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Get returns pgx.ErrNoRows unwrapped when the reservation number is unknown.
func (r *QuoteRepository) Get(ctx context.Context, reservationNumber string) (*model.Quote, error) {
	return scanQuote(r.pool.QueryRow(ctx,
		`SELECT `+quoteColumns+` FROM market_research_requests WHERE reservation_number = $1`,
		reservationNumber))
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *QuoteRepository) Upsert(ctx context.Context, q *model.Quote) error {
	return upsertQuote(ctx, r.pool, q)
}

// Update locks the quote row, lets apply modify it and writes it back in
// the same transaction. Tariff results and other saves on the same quote
// wait for the lock instead of being overwritten by a stale read.
func (r *QuoteRepository) Update(ctx context.Context, reservationNumber string, apply func(*model.Quote) error) (*model.Quote, error) {
	var q *model.Quote
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		q, err = scanQuote(tx.QueryRow(ctx,
			`SELECT `+quoteColumns+` FROM market_research_requests WHERE reservation_number = $1 FOR UPDATE`,
			reservationNumber))
		if err != nil {
			return err
		}
		if err := apply(q); err != nil {
			return err
		}
		return upsertQuote(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func upsertQuote(ctx context.Context, db rowQuerier, q *model.Quote) error {
	return db.QueryRow(ctx,
		`INSERT INTO market_research_requests (
			reservation_number, product_name, status,
			hs_code, certification_required, required_certifications,
			quoted_quantity, units_per_box, box_length, box_width, box_height,
			china_unit_price, china_shipping_fee, exchange_rate, exchange_rate_estimated, exchange_rate_date,
			customs_rate, customs_rate_type, customs_rate_estimated, fcl_shipping_fee,
			total_boxes, total_cbm, shipping_method, lcl_shipping_fee, commission_rate, commission_amount,
			exw_total, first_payment_amount, customs_duty, import_vat,
			expected_second_payment, expected_total_supply_price, expected_unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33)
		ON CONFLICT (reservation_number) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			status = EXCLUDED.status,
			hs_code = EXCLUDED.hs_code,
			certification_required = EXCLUDED.certification_required,
			required_certifications = EXCLUDED.required_certifications,
			quoted_quantity = EXCLUDED.quoted_quantity,
			units_per_box = EXCLUDED.units_per_box,
			box_length = EXCLUDED.box_length,
			box_width = EXCLUDED.box_width,
			box_height = EXCLUDED.box_height,
			china_unit_price = EXCLUDED.china_unit_price,
			china_shipping_fee = EXCLUDED.china_shipping_fee,
			exchange_rate = EXCLUDED.exchange_rate,
			exchange_rate_estimated = EXCLUDED.exchange_rate_estimated,
			exchange_rate_date = EXCLUDED.exchange_rate_date,
			customs_rate = EXCLUDED.customs_rate,
			customs_rate_type = EXCLUDED.customs_rate_type,
			customs_rate_estimated = EXCLUDED.customs_rate_estimated,
			fcl_shipping_fee = EXCLUDED.fcl_shipping_fee,
			total_boxes = EXCLUDED.total_boxes,
			total_cbm = EXCLUDED.total_cbm,
			shipping_method = EXCLUDED.shipping_method,
			lcl_shipping_fee = EXCLUDED.lcl_shipping_fee,
			commission_rate = EXCLUDED.commission_rate,
			commission_amount = EXCLUDED.commission_amount,
			exw_total = EXCLUDED.exw_total,
			first_payment_amount = EXCLUDED.first_payment_amount,
			customs_duty = EXCLUDED.customs_duty,
			import_vat = EXCLUDED.import_vat,
			expected_second_payment = EXCLUDED.expected_second_payment,
			expected_total_supply_price = EXCLUDED.expected_total_supply_price,
			expected_unit_price = EXCLUDED.expected_unit_price,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		q.ReservationNumber, q.ProductName, q.Status,
		q.HSCode, q.CertificationRequired, q.RequiredCertifications,
		q.QuotedQuantity, q.UnitsPerBox, q.BoxLength, q.BoxWidth, q.BoxHeight,
		q.OriginUnitPrice, q.OriginShippingFee, q.ExchangeRate, q.ExchangeRateEstimated, q.ExchangeRateDate,
		q.CustomsRate, q.CustomsRateType, q.CustomsRateEstimated, q.FCLShippingFee,
		q.TotalBoxes, q.TotalCBM, q.ShippingMethod, q.LCLShippingFee, q.CommissionRate, q.CommissionAmount,
		q.EXWTotal, q.FirstPaymentAmount, q.CustomsDuty, q.ImportVAT,
		q.ExpectedSecondPayment, q.ExpectedTotalSupplyPrice, q.ExpectedUnitPrice,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

func (r *QuoteRepository) List(ctx context.Context, status string, limit, offset int) ([]model.Quote, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM market_research_requests WHERE ($1 = '' OR status = $1)`, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+quoteColumns+` FROM market_research_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, reservation_number
		LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []model.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, total, nil
}

func (r *QuoteRepository) SetHSCode(ctx context.Context, reservationNumber, hsCode string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE market_research_requests SET hs_code = $2, updated_at = NOW()
		WHERE reservation_number = $1`, reservationNumber, hsCode)
	if err != nil {
		return fmt.Errorf("update hs code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ApplyTariff stores a resolved tariff only while the quote still carries
// hsCode. It reports false when the HS code has moved on since the lookup
// started.
func (r *QuoteRepository) ApplyTariff(ctx context.Context, reservationNumber, hsCode string, res model.TariffResolution) (bool, error) {
	var certs *string
	if len(res.RequiredCertifications) > 0 {
		joined := strings.Join(res.RequiredCertifications, ", ")
		certs = &joined
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE market_research_requests SET
			customs_rate = $3,
			customs_rate_type = $4,
			customs_rate_estimated = $5,
			certification_required = $6,
			required_certifications = $7,
			updated_at = NOW()
		WHERE reservation_number = $1 AND hs_code = $2`,
		reservationNumber, hsCode, res.AppliedRate, res.AppliedTier, res.Estimated,
		res.CertificationRequired, certs)
	if err != nil {
		return false, fmt.Errorf("apply tariff: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *QuoteRepository) Subscribe(ctx context.Context, reservationNumber string) (<-chan model.QuoteEvent, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}

	events := make(chan model.QuoteEvent)
	go func() {
		defer close(events)
		defer func() {
			// The connection may already be closed after a cancelled wait;
			// the pool discards it on release in that case.
			_, _ = conn.Exec(context.Background(), "UNLISTEN "+ChangeChannel)
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Error().Err(err).Str("reservation_number", reservationNumber).Msg("wait for quote notification")
				}
				return
			}

			var ev model.QuoteEvent
			if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
				log.Warn().Err(err).Str("payload", n.Payload).Msg("decode quote notification")
				continue
			}
			if ev.ReservationNumber != reservationNumber {
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
