package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateScale is the number of fractional digits kept for every stored rate.
const RateScale = 6

// ExchangeRate is a persisted rate for one (source, target, valuation date) key.
// Rows are append-only.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	ValuationDate    time.Time       `json:"valuationDate"`
	ProviderName     string          `json:"providerName"`
	AuditFields
}

// RateOrigin tells where a quote came from.
type RateOrigin string

const (
	RateOriginStore    RateOrigin = "store"
	RateOriginProvider RateOrigin = "provider"
	RateOriginIdentity RateOrigin = "identity"
)

// RateQuote is the successful outcome of a rate lookup.
type RateQuote struct {
	ProviderName     string          `json:"providerName"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	ValuationDate    time.Time       `json:"valuationDate"`
	Rate             decimal.Decimal `json:"rate"`
	Origin           RateOrigin      `json:"origin"`
}

// ToExchangeRate turns a provider quote into a row ready to be stored.
func (q RateQuote) ToExchangeRate(id string, now time.Time) ExchangeRate {
	return ExchangeRate{
		ExchangeRateID:   id,
		FromCurrencyCode: q.FromCurrencyCode,
		ToCurrencyCode:   q.ToCurrencyCode,
		Rate:             q.Rate.Round(RateScale),
		ValuationDate:    q.ValuationDate,
		ProviderName:     q.ProviderName,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     q.ProviderName,
			LastUpdatedAt: now,
			LastUpdatedBy: q.ProviderName,
		},
	}
}

// QuoteFromExchangeRate builds a store-sourced quote.
func QuoteFromExchangeRate(r ExchangeRate) RateQuote {
	return RateQuote{
		ProviderName:     r.ProviderName,
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		ValuationDate:    r.ValuationDate,
		Rate:             r.Rate,
		Origin:           RateOriginStore,
	}
}

// ImportSummary reports the outcome of a backfill run.
type ImportSummary struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Requested      int       `json:"requested"`
	SkippedSources []string  `json:"skippedSources"`
	RatesFetched   int       `json:"ratesFetched"`
	RatesStored    int       `json:"ratesStored"`
}
