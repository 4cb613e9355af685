package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/trade-cost-backoffice/internal/dto"
	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
)

const reservationAttempts = 3

type QuoteService struct {
	store  QuoteStore
	rates  RateSource
	engine *pricing.Engine
	now    func() time.Time
}

func NewQuoteService(store QuoteStore, rates RateSource, engine *pricing.Engine) *QuoteService {
	return &QuoteService{store: store, rates: rates, engine: engine, now: time.Now}
}

type QuotePreview struct {
	Quote                     *model.Quote    `json:"quote"`
	Derived                   pricing.Derived `json:"derived"`
	EffectiveShippingFeeLocal float64         `json:"effective_shipping_fee_local"`
	ChangedFields             []string        `json:"changed_fields"`
}

func (s *QuoteService) newReservationNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("MR-%s-%s", s.now().Format("20060102"), suffix)
}

func (s *QuoteService) Create(ctx context.Context, req *dto.CreateQuoteRequest) (*model.Quote, error) {
	q := &model.Quote{
		ProductName:    strings.TrimSpace(req.ProductName),
		Status:         model.QuoteStatusSubmitted,
		QuotedQuantity: req.QuotedQuantity,
	}

	for attempt := 0; ; attempt++ {
		q.ReservationNumber = s.newReservationNumber()
		_, err := s.store.Get(ctx, q.ReservationNumber)
		if errors.Is(err, pgx.ErrNoRows) {
			break
		}
		if err != nil {
			return nil, err
		}
		if attempt+1 >= reservationAttempts {
			return nil, fmt.Errorf("allocate reservation number: %d collisions", reservationAttempts)
		}
	}

	applyDerived(q, s.engine.Derive(inputsOf(q)).Rounded())
	if err := s.store.Upsert(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuoteService) Get(ctx context.Context, reservationNumber string) (*model.Quote, error) {
	return s.store.Get(ctx, reservationNumber)
}

func (s *QuoteService) List(ctx context.Context, status string, limit, offset int) ([]model.Quote, int, error) {
	return s.store.List(ctx, status, limit, offset)
}

func (s *QuoteService) edit(ctx context.Context, reservationNumber string, patch dto.QuoteInputs) (stored, edited *model.Quote, err error) {
	stored, err = s.store.Get(ctx, reservationNumber)
	if err != nil {
		return nil, nil, err
	}

	cp := *stored
	edited = &cp
	mergeInputs(edited, patch)

	if edited.ExchangeRate == nil {
		rate, err := s.estimatedRate(ctx, reservationNumber)
		if err != nil {
			return nil, nil, err
		}
		edited.ExchangeRate = &rate
		edited.ExchangeRateEstimated = true
	}
	return stored, edited, nil
}

func (s *QuoteService) estimatedRate(ctx context.Context, reservationNumber string) (float64, error) {
	rate, err := s.rates.Latest(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve exchange rate: %w", err)
	}
	log.Warn().
		Str("reservation_number", reservationNumber).
		Float64("cny_rate", rate.CNYRate).
		Str("source", rate.Source).
		Msg("exchange rate not entered, using estimate")
	return rate.CNYRate, nil
}

func (s *QuoteService) Preview(ctx context.Context, reservationNumber string, patch dto.QuoteInputs) (*QuotePreview, error) {
	stored, edited, err := s.edit(ctx, reservationNumber, patch)
	if err != nil {
		return nil, err
	}

	next := s.engine.Derive(inputsOf(edited)).Rounded()
	applyDerived(edited, next)

	prev := snapshotOf(stored)
	prev.EffectiveShippingFeeLocal = s.engine.Derive(inputsOf(stored)).Rounded().EffectiveShippingFeeLocal

	return &QuotePreview{
		Quote:                     edited,
		Derived:                   next,
		EffectiveShippingFeeLocal: *next.EffectiveShippingFeeLocal,
		ChangedFields:             pricing.ChangedFields(prev, next),
	}, nil
}

// Save merges patch into the current stored quote, recomputes every
// derived field and persists it, all under the store's row lock. Fields the
// patch leaves out keep whatever a concurrent writer stored, including a
// tariff applied meanwhile. Store errors are returned without retry.
func (s *QuoteService) Save(ctx context.Context, reservationNumber string, patch dto.QuoteInputs) (*model.Quote, error) {
	stored, err := s.store.Get(ctx, reservationNumber)
	if err != nil {
		return nil, err
	}

	// Rates are never cleared, so a quote that has one now still has it
	// under the lock. Fetch the estimate before locking.
	var estimate *float64
	if patch.ExchangeRate == nil && stored.ExchangeRate == nil {
		rate, err := s.estimatedRate(ctx, reservationNumber)
		if err != nil {
			return nil, err
		}
		estimate = &rate
	}

	return s.store.Update(ctx, reservationNumber, func(q *model.Quote) error {
		mergeInputs(q, patch)
		if q.ExchangeRate == nil && estimate != nil {
			q.ExchangeRate = estimate
			q.ExchangeRateEstimated = true
		}

		applyDerived(q, s.engine.Derive(inputsOf(q)).Rounded())

		t := s.now()
		rateDate := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		q.ExchangeRateDate = &rateDate
		return nil
	})
}

func (s *QuoteService) Recompute(ctx context.Context, reservationNumber string) (*model.Quote, error) {
	return s.Save(ctx, reservationNumber, dto.QuoteInputs{})
}

func (s *QuoteService) Watch(ctx context.Context, reservationNumber string) (<-chan model.QuoteEvent, error) {
	if _, err := s.store.Get(ctx, reservationNumber); err != nil {
		return nil, err
	}
	return s.store.Subscribe(ctx, reservationNumber)
}

func mergeInputs(q *model.Quote, p dto.QuoteInputs) {
	if p.ProductName != nil {
		q.ProductName = strings.TrimSpace(*p.ProductName)
	}
	if p.Status != nil {
		q.Status = *p.Status
	}
	if p.QuotedQuantity != nil {
		q.QuotedQuantity = p.QuotedQuantity
	}
	if p.UnitsPerBox != nil {
		q.UnitsPerBox = p.UnitsPerBox
	}
	if p.BoxLength != nil {
		q.BoxLength = p.BoxLength
	}
	if p.BoxWidth != nil {
		q.BoxWidth = p.BoxWidth
	}
	if p.BoxHeight != nil {
		q.BoxHeight = p.BoxHeight
	}
	if p.OriginUnitPrice != nil {
		q.OriginUnitPrice = p.OriginUnitPrice
	}
	if p.OriginShippingFee != nil {
		q.OriginShippingFee = p.OriginShippingFee
	}
	if p.ExchangeRate != nil {
		q.ExchangeRate = p.ExchangeRate
		q.ExchangeRateEstimated = false
	}
	if p.CustomsRate != nil {
		q.CustomsRate = p.CustomsRate
		q.CustomsRateEstimated = false
	}
	if p.FCLShippingFee != nil {
		q.FCLShippingFee = p.FCLShippingFee
	}
}

func inputsOf(q *model.Quote) pricing.Inputs {
	return pricing.Inputs{
		QuotedQuantity:            q.QuotedQuantity,
		UnitsPerBox:               q.UnitsPerBox,
		BoxLengthCm:               q.BoxLength,
		BoxWidthCm:                q.BoxWidth,
		BoxHeightCm:               q.BoxHeight,
		OriginUnitPrice:           q.OriginUnitPrice,
		ExchangeRate:              q.ExchangeRate,
		OriginShippingFeePerOrder: q.OriginShippingFee,
		CustomsRatePercent:        q.CustomsRate,
		FCLShippingFeeLocal:       q.FCLShippingFee,
	}
}

func snapshotOf(q *model.Quote) pricing.Derived {
	return pricing.Derived{
		TotalBoxes:                    q.TotalBoxes,
		TotalCBM:                      q.TotalCBM,
		ShippingMethod:                q.ShippingMethod,
		LCLShippingFeeLocal:           q.LCLShippingFee,
		CommissionRatePercent:         q.CommissionRate,
		CommissionAmountLocal:         q.CommissionAmount,
		EXWTotalLocal:                 q.EXWTotal,
		FirstPaymentAmountLocal:       q.FirstPaymentAmount,
		CustomsDutyLocal:              q.CustomsDuty,
		ImportVATLocal:                q.ImportVAT,
		ExpectedSecondPaymentLocal:    q.ExpectedSecondPayment,
		ExpectedTotalSupplyPriceLocal: q.ExpectedTotalSupplyPrice,
		ExpectedUnitPriceLocal:        q.ExpectedUnitPrice,
	}
}

func applyDerived(q *model.Quote, d pricing.Derived) {
	q.TotalBoxes = d.TotalBoxes
	q.TotalCBM = d.TotalCBM
	q.ShippingMethod = d.ShippingMethod
	q.LCLShippingFee = d.LCLShippingFeeLocal
	q.CommissionRate = d.CommissionRatePercent
	q.CommissionAmount = d.CommissionAmountLocal
	q.EXWTotal = d.EXWTotalLocal
	q.FirstPaymentAmount = d.FirstPaymentAmountLocal
	q.CustomsDuty = d.CustomsDutyLocal
	q.ImportVAT = d.ImportVATLocal
	q.ExpectedSecondPayment = d.ExpectedSecondPaymentLocal
	q.ExpectedTotalSupplyPrice = d.ExpectedTotalSupplyPriceLocal
	q.ExpectedUnitPrice = d.ExpectedUnitPriceLocal
}
