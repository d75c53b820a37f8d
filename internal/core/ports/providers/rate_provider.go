package providers

import (
	"context"
	"time"

	"github.com/SscSPs/mycurrency/internal/core/domain"
)

// RateProvider is implemented by every exchange-rate source adapter.
type RateProvider interface {
	// Name matches the provider's registry name.
	Name() string

	// Fetch returns the rate for one pair. Today's date is served by the spot
	// endpoint; any other date by the historical endpoint.
	Fetch(ctx context.Context, fromCode, toCode string, valuationDate time.Time) (*domain.RateQuote, error)

	// FetchSeries returns one rate per (day, target) across the inclusive range.
	FetchSeries(ctx context.Context, fromCode string, toCodes []string, from, to time.Time) ([]domain.ExchangeRate, error)
}

// RateFetcher resolves a provider by name and calls it under the resilience policy.
type RateFetcher interface {
	Fetch(ctx context.Context, providerName, fromCode, toCode string, valuationDate time.Time) (*domain.RateQuote, error)
	FetchSeries(ctx context.Context, providerName, fromCode string, toCodes []string, from, to time.Time) ([]domain.ExchangeRate, error)
}
