package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

type fakeQuoteStore struct {
	mu        sync.Mutex
	quotes    map[string]model.Quote
	upserts   int
	upsertErr error
	events    chan model.QuoteEvent
	// onSetHSCode runs after the HS code is recorded, outside the lock.
	onSetHSCode func(reservationNumber, hsCode string)
	// afterGet runs once after the next Get, outside the lock.
	afterGet func()
}

func newFakeQuoteStore(quotes ...model.Quote) *fakeQuoteStore {
	s := &fakeQuoteStore{quotes: map[string]model.Quote{}, events: make(chan model.QuoteEvent, 8)}
	for _, q := range quotes {
		s.quotes[q.ReservationNumber] = q
	}
	return s
}

func (s *fakeQuoteStore) Get(_ context.Context, reservationNumber string) (*model.Quote, error) {
	s.mu.Lock()
	q, ok := s.quotes[reservationNumber]
	hook := s.afterGet
	s.afterGet = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &q, nil
}

func (s *fakeQuoteStore) Update(_ context.Context, reservationNumber string, apply func(*model.Quote) error) (*model.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[reservationNumber]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if err := apply(&q); err != nil {
		return nil, err
	}
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	s.upserts++
	q.UpdatedAt = time.Now()
	s.quotes[reservationNumber] = q
	return &q, nil
}

func (s *fakeQuoteStore) Upsert(_ context.Context, q *model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts++
	if q.ID == "" {
		q.ID = "id-" + q.ReservationNumber
		q.CreatedAt = time.Now()
	}
	q.UpdatedAt = time.Now()
	s.quotes[q.ReservationNumber] = *q
	return nil
}

func (s *fakeQuoteStore) List(_ context.Context, status string, limit, offset int) ([]model.Quote, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Quote
	for _, q := range s.quotes {
		if status == "" || q.Status == status {
			all = append(all, q)
		}
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *fakeQuoteStore) Subscribe(ctx context.Context, reservationNumber string) (<-chan model.QuoteEvent, error) {
	out := make(chan model.QuoteEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.events:
				if ev.ReservationNumber != reservationNumber {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *fakeQuoteStore) SetHSCode(_ context.Context, reservationNumber, hsCode string) error {
	s.mu.Lock()
	q, ok := s.quotes[reservationNumber]
	if !ok {
		s.mu.Unlock()
		return pgx.ErrNoRows
	}
	q.HSCode = &hsCode
	s.quotes[reservationNumber] = q
	hook := s.onSetHSCode
	s.mu.Unlock()

	if hook != nil {
		hook(reservationNumber, hsCode)
	}
	return nil
}

func (s *fakeQuoteStore) ApplyTariff(_ context.Context, reservationNumber, hsCode string, res model.TariffResolution) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[reservationNumber]
	if !ok || q.HSCode == nil || *q.HSCode != hsCode {
		return false, nil
	}
	rate, tier := res.AppliedRate, res.AppliedTier
	q.CustomsRate = &rate
	q.CustomsRateType = &tier
	q.CustomsRateEstimated = res.Estimated
	q.CertificationRequired = res.CertificationRequired
	if len(res.RequiredCertifications) > 0 {
		joined := strings.Join(res.RequiredCertifications, ", ")
		q.RequiredCertifications = &joined
	}
	s.quotes[reservationNumber] = q
	return true, nil
}

func (s *fakeQuoteStore) stored(reservationNumber string) model.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotes[reservationNumber]
}

type fakeRateStore struct {
	mu      sync.Mutex
	rates   map[string]model.ExchangeRate
	readErr error
}

func newFakeRateStore(rates ...model.ExchangeRate) *fakeRateStore {
	s := &fakeRateStore{rates: map[string]model.ExchangeRate{}}
	for _, r := range rates {
		s.rates[r.Date.Format("2006-01-02")] = r
	}
	return s
}

func (s *fakeRateStore) Latest(_ context.Context) (*model.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	var latest *model.ExchangeRate
	for _, r := range s.rates {
		r := r
		if latest == nil || r.Date.After(latest.Date) {
			latest = &r
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	return latest, nil
}

func (s *fakeRateStore) ForDate(_ context.Context, date time.Time) (*model.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	r, ok := s.rates[date.Format("2006-01-02")]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &r, nil
}

func (s *fakeRateStore) Insert(_ context.Context, rate *model.ExchangeRate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rate.Date.Format("2006-01-02")
	if _, ok := s.rates[key]; ok {
		return false, nil
	}
	s.rates[key] = *rate
	return true, nil
}

func (s *fakeRateStore) History(_ context.Context, limit int) ([]model.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	var all []model.ExchangeRate
	for _, r := range s.rates {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

var errLookupDown = errors.New("edge function down")

type fakeLookup struct {
	mu         sync.Mutex
	rates      map[string]model.TariffRates
	certs      map[string][]string
	ratesErr   error
	certsErr   error
	rate       model.ExchangeRate
	rateErr    error
	rateCalls  int
	candidates []model.HSCandidate
	// gate, when set, blocks LookupRates for the given HS code until closed.
	gate map[string]chan struct{}
	// blocked counts lookups currently waiting on a gate.
	blocked int
}

func (f *fakeLookup) LookupRates(ctx context.Context, hsCode string) (model.TariffRates, error) {
	f.mu.Lock()
	gate := f.gate[hsCode]
	if gate != nil {
		f.blocked++
	}
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.TariffRates{}, ctx.Err()
		}
		f.mu.Lock()
		f.blocked--
		f.mu.Unlock()
	}
	if f.ratesErr != nil {
		return model.TariffRates{}, f.ratesErr
	}
	return f.rates[hsCode], nil
}

func (f *fakeLookup) waiting() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocked
}

func (f *fakeLookup) Certifications(_ context.Context, hsCode string) ([]string, error) {
	if f.certsErr != nil {
		return nil, f.certsErr
	}
	return f.certs[hsCode], nil
}

func (f *fakeLookup) LatestRate(_ context.Context, _ *time.Time) (model.ExchangeRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateCalls++
	if f.rateErr != nil {
		return model.ExchangeRate{}, f.rateErr
	}
	return f.rate, nil
}

func (f *fakeLookup) Classify(_ context.Context, _ string) ([]model.HSCandidate, error) {
	return f.candidates, nil
}

type staticRates struct {
	rate model.ExchangeRate
}

func (s staticRates) Latest(context.Context) (model.ExchangeRate, error) {
	return s.rate, nil
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
