package service

import (
	"context"
	"time"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

type QuoteStore interface {
	Get(ctx context.Context, reservationNumber string) (*model.Quote, error)
	Upsert(ctx context.Context, q *model.Quote) error
	// Update reads, modifies and writes one quote atomically. Errors from
	// apply abort the write and are returned as they are.
	Update(ctx context.Context, reservationNumber string, apply func(*model.Quote) error) (*model.Quote, error)
	List(ctx context.Context, status string, limit, offset int) ([]model.Quote, int, error)
	Subscribe(ctx context.Context, reservationNumber string) (<-chan model.QuoteEvent, error)
	SetHSCode(ctx context.Context, reservationNumber, hsCode string) error
	ApplyTariff(ctx context.Context, reservationNumber, hsCode string, res model.TariffResolution) (bool, error)
}

type RateStore interface {
	Latest(ctx context.Context) (*model.ExchangeRate, error)
	ForDate(ctx context.Context, date time.Time) (*model.ExchangeRate, error)
	Insert(ctx context.Context, rate *model.ExchangeRate) (bool, error)
	History(ctx context.Context, limit int) ([]model.ExchangeRate, error)
}

// The lookup interfaces below are implemented by lookup.Client.

type Classifier interface {
	Classify(ctx context.Context, productName string) ([]model.HSCandidate, error)
}

type TariffLookup interface {
	LookupRates(ctx context.Context, hsCode string) (model.TariffRates, error)
	Certifications(ctx context.Context, hsCode string) ([]string, error)
}

type RateLookup interface {
	LatestRate(ctx context.Context, date *time.Time) (model.ExchangeRate, error)
}

type RateSource interface {
	Latest(ctx context.Context) (model.ExchangeRate, error)
}
