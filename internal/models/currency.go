package models

// Currency represents a row of the currencies table.
type Currency struct {
	CurrencyCode string `json:"currencyCode" db:"currency_code"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol" db:"symbol"`
	Name         string `json:"name" db:"name"`
	AuditFields
}
