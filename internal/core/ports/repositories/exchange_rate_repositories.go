package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mycurrency/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindExchangeRate retrieves the rate stored for an exact (source, target, date) key.
	// It returns apperrors.ErrNotFound on a miss.
	FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, valuationDate time.Time) (*domain.ExchangeRate, error)

	// CountExchangeRatesInRange counts the distinct days between from and to (inclusive)
	// that have a stored rate for the pair.
	CountExchangeRatesInRange(ctx context.Context, fromCurrencyCode, toCurrencyCode string, from, to time.Time) (int, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// SaveExchangeRate persists a rate. Writing a key that already exists is not an error:
	// the first stored value is kept.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// SaveExchangeRates persists a batch with the same semantics and returns how many rows were new.
	SaveExchangeRates(ctx context.Context, rates []domain.ExchangeRate) (int, error)
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
