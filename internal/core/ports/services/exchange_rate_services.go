package services

import (
	"context"
	"time"

	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc defines rate lookups
type ExchangeRateReaderSvc interface {
	// GetRate resolves the rate for a pair on a valuation date, from the store or the active provider.
	GetRate(ctx context.Context, fromCode, toCode string, valuationDate time.Time) (*domain.RateQuote, error)

	// ConvertAmount resolves the rate and applies it to amount.
	ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, valuationDate time.Time) (decimal.Decimal, *domain.RateQuote, error)
}

// ExchangeRateImporterSvc defines backfill operations
type ExchangeRateImporterSvc interface {
	// ImportRange fetches and stores the time series of every pair among currencies.
	ImportRange(ctx context.Context, currencies []string, from, to time.Time) (*domain.ImportSummary, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateImporterSvc
}
