package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
)

var (
	ErrInvalidHSCode = errors.New("hs code must have exactly 10 digits")
	ErrStaleLookup   = errors.New("tariff lookup superseded by a newer hs code")
	ErrEmptyQuery    = errors.New("search query is empty")
)

var hsCodePattern = regexp.MustCompile(`^[0-9]{10}$`)

type Recomputer interface {
	Recompute(ctx context.Context, reservationNumber string) (*model.Quote, error)
}

type TariffService struct {
	lookup       TariffLookup
	classifier   Classifier
	store        QuoteStore
	recomputer   Recomputer
	guard        *LookupGuard
	fallbackRate float64
}

func NewTariffService(lookup TariffLookup, classifier Classifier, store QuoteStore, recomputer Recomputer, fallbackRate float64) *TariffService {
	return &TariffService{
		lookup:       lookup,
		classifier:   classifier,
		store:        store,
		recomputer:   recomputer,
		guard:        NewLookupGuard(),
		fallbackRate: fallbackRate,
	}
}

func NormalizeHSCode(raw string) (string, error) {
	code := strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(raw))
	if !hsCodePattern.MatchString(code) {
		return "", ErrInvalidHSCode
	}
	return code, nil
}

// Resolve looks up tariff tiers and certification requirements in
// parallel. A failed tariff lookup degrades to the default basic rate
// flagged as estimated; a failed certification lookup leaves the
// requirements unknown.
func (s *TariffService) Resolve(ctx context.Context, hsCode string) (model.TariffResolution, error) {
	code, err := NormalizeHSCode(hsCode)
	if err != nil {
		return model.TariffResolution{}, err
	}

	var (
		rates    model.TariffRates
		ratesErr error
		certs    []string
		certsErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		rates, ratesErr = s.lookup.LookupRates(ctx, code)
		return nil
	})
	g.Go(func() error {
		certs, certsErr = s.lookup.Certifications(ctx, code)
		return nil
	})
	_ = g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.TariffResolution{}, ctxErr
	}

	if ratesErr != nil {
		log.Warn().Err(ratesErr).Str("hs_code", code).Float64("rate", s.fallbackRate).
			Msg("tariff lookup failed, using estimated basic rate")
		rates = model.TariffRates{}
	}
	applied := pricing.SelectTariff(rates, s.fallbackRate)

	res := model.TariffResolution{
		HSCode:                      code,
		Rates:                       rates,
		AppliedTier:                 applied.Tier,
		AppliedRate:                 applied.RatePercent,
		RequiresCertificateOfOrigin: applied.RequiresCertificateOfOrigin,
		Estimated:                   applied.Estimated,
	}

	if certsErr != nil {
		log.Warn().Err(certsErr).Str("hs_code", code).Msg("certification lookup failed")
	} else {
		required := len(certs) > 0
		res.CertificationRequired = &required
		res.RequiredCertifications = certs
	}
	return res, nil
}

// ApplyToQuote records hsCode on the quote, resolves it and stores the
// result only if no newer HS code was entered meanwhile. A superseded
// result is discarded with ErrStaleLookup.
func (s *TariffService) ApplyToQuote(ctx context.Context, reservationNumber, hsCode string) (*model.Quote, model.TariffResolution, error) {
	code, err := NormalizeHSCode(hsCode)
	if err != nil {
		return nil, model.TariffResolution{}, err
	}

	token, err := s.guard.Begin(reservationNumber, code, func() error {
		return s.store.SetHSCode(ctx, reservationNumber, code)
	})
	if err != nil {
		return nil, model.TariffResolution{}, err
	}
	defer s.guard.Done(reservationNumber, token)

	res, err := s.Resolve(ctx, code)
	if err != nil {
		return nil, model.TariffResolution{}, err
	}

	if !s.guard.Current(reservationNumber, token, code) {
		log.Warn().Str("reservation_number", reservationNumber).Str("hs_code", code).Msg("discarding stale tariff lookup")
		return nil, res, ErrStaleLookup
	}
	applied, err := s.store.ApplyTariff(ctx, reservationNumber, code, res)
	if err != nil {
		return nil, res, err
	}
	if !applied {
		log.Warn().Str("reservation_number", reservationNumber).Str("hs_code", code).Msg("hs code changed during lookup, discarding result")
		return nil, res, ErrStaleLookup
	}

	q, err := s.recomputer.Recompute(ctx, reservationNumber)
	if err != nil {
		return nil, res, err
	}
	return q, res, nil
}

func (s *TariffService) Classify(ctx context.Context, productName string) ([]model.HSCandidate, error) {
	query := strings.TrimSpace(productName)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return s.classifier.Classify(ctx, query)
}
