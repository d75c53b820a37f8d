// Package mock is a synthetic rate source used when no live provider is usable.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/core/ports/providers"
	"github.com/SscSPs/mycurrency/internal/utils/dates"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// rateMask yields values in [0.000001, 9.999999].
const rateMask = "#.######"

// Provider generates pseudo-random rates. A fixed seed makes the sequence reproducible.
type Provider struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	now   func() time.Time
}

var _ providers.RateProvider = (*Provider)(nil)

// Option customizes a Provider.
type Option func(*Provider)

// WithClock overrides the clock used for the future-date check.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New returns a mock provider. Seed 0 picks a random seed.
func New(seed uint64, opts ...Option) *Provider {
	p := &Provider{
		faker: gofakeit.New(seed),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return domain.ProviderMock }

// Fetch returns a random positive rate for any date before tomorrow.
func (p *Provider) Fetch(ctx context.Context, fromCode, toCode string, valuationDate time.Time) (*domain.RateQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dates.IsFuture(valuationDate, p.now()) {
		return nil, fmt.Errorf("%w: the rate cannot be retrieved from the future", apperrors.ErrFutureDate)
	}

	return &domain.RateQuote{
		ProviderName:     p.Name(),
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		ValuationDate:    dates.DateOnly(valuationDate),
		Rate:             p.nextRate(),
		Origin:           domain.RateOriginProvider,
	}, nil
}

// FetchSeries returns one random rate per day and target.
func (p *Provider) FetchSeries(ctx context.Context, fromCode string, toCodes []string, from, to time.Time) ([]domain.ExchangeRate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := p.now()
	if dates.IsFuture(to, now) {
		return nil, fmt.Errorf("%w: series ends after today", apperrors.ErrFutureDate)
	}

	days := dates.Range(from, to)
	rates := make([]domain.ExchangeRate, 0, len(days)*len(toCodes))
	for _, day := range days {
		for _, toCode := range toCodes {
			q := domain.RateQuote{
				ProviderName:     p.Name(),
				FromCurrencyCode: fromCode,
				ToCurrencyCode:   toCode,
				ValuationDate:    day,
				Rate:             p.nextRate(),
			}
			rates = append(rates, q.ToExchangeRate(uuid.NewString(), now.UTC()))
		}
	}
	return rates, nil
}

func (p *Provider) nextRate() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		rate, err := decimal.NewFromString(p.faker.Numerify(rateMask))
		if err == nil && rate.IsPositive() {
			return rate
		}
	}
}
