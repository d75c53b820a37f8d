package domain

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	AuditFields
}

// DefaultCurrencies is the reference set seeded at startup.
func DefaultCurrencies() []Currency {
	return []Currency{
		{CurrencyCode: "EUR", Name: "Euro", Symbol: "€"},
		{CurrencyCode: "CHF", Name: "Swiss franc", Symbol: "Fr."},
		{CurrencyCode: "USD", Name: "US Dollar", Symbol: "$"},
		{CurrencyCode: "GBP", Name: "Pound Sterling", Symbol: "£"},
	}
}
