package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the conversion rate between two currencies for a specific date.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID" db:"exchange_rate_id"`
	FromCurrencyCode string          `json:"fromCurrencyCode" db:"from_currency_code"`
	ToCurrencyCode   string          `json:"toCurrencyCode" db:"to_currency_code"`
	Rate             decimal.Decimal `json:"rate" db:"rate"` // numeric(18,6)
	ValuationDate    time.Time       `json:"valuationDate" db:"valuation_date"`
	ProviderName     string          `json:"providerName" db:"provider_name"`
	AuditFields
}
