package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

const sourceDefault = "default"

type RateService struct {
	store    RateStore
	lookup   RateLookup
	fallback model.ExchangeRate
	now      func() time.Time
}

func NewRateService(store RateStore, lookup RateLookup, defaultUSD, defaultCNY float64) *RateService {
	return &RateService{
		store:    store,
		lookup:   lookup,
		fallback: model.ExchangeRate{USDRate: defaultUSD, CNYRate: defaultCNY, Source: sourceDefault, Estimated: true},
		now:      time.Now,
	}
}

func (s *RateService) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Latest returns the newest stored snapshot, then asks the currency
// service, and finally falls back to the configured defaults flagged as
// estimated. Only a cancelled context is reported as an error.
func (s *RateService) Latest(ctx context.Context) (model.ExchangeRate, error) {
	stored, err := s.store.Latest(ctx)
	if err == nil {
		return *stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Warn().Err(err).Msg("read latest exchange rate")
	}

	fetched, err := s.lookup.LatestRate(ctx, nil)
	if err == nil {
		if _, err := s.store.Insert(ctx, &fetched); err != nil {
			log.Warn().Err(err).Msg("store fetched exchange rate")
		}
		return fetched, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.ExchangeRate{}, ctxErr
	}

	log.Warn().Err(err).
		Float64("usd_rate", s.fallback.USDRate).
		Float64("cny_rate", s.fallback.CNYRate).
		Msg("exchange rate unavailable, using estimated defaults")
	rate := s.fallback
	rate.Date = s.today()
	return rate, nil
}

func (s *RateService) Sync(ctx context.Context) (bool, error) {
	today := s.today()

	_, err := s.store.ForDate(ctx, today)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("check stored rate: %w", err)
	}

	rate, err := s.lookup.LatestRate(ctx, &today)
	if err != nil {
		return false, fmt.Errorf("fetch exchange rate: %w", err)
	}
	rate.Date = today

	inserted, err := s.store.Insert(ctx, &rate)
	if err != nil {
		return false, err
	}
	if inserted {
		log.Info().
			Time("date", today).
			Float64("usd_rate", rate.USDRate).
			Float64("cny_rate", rate.CNYRate).
			Msg("exchange rate synced")
	}
	return inserted, nil
}

// RunDailySync calls Sync immediately and then on every tick until ctx is
// done. Failures are logged and retried on the next tick. A non-positive
// interval disables the loop.
func (s *RateService) RunDailySync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Info().Msg("exchange rate sync disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sync(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("exchange rate sync failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
