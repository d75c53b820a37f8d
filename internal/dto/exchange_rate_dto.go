package dto

import (
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/utils/dates"
	"github.com/shopspring/decimal"
)

// Converter status discriminators.
const (
	StatusOK = "ok"
	StatusKO = "ko"
)

// ConverterQuery is bound from the converter's query string.
type ConverterQuery struct {
	FromCurrency  string `form:"from_currency"`
	ToCurrency    string `form:"to_currency"`
	ValuationDate string `form:"valuation_date"`
	Amount        string `form:"amount"`
}

// ConverterResponse is the three-way converter result: ok with a rate,
// ok with a no-data message, or ko with a reason.
type ConverterResponse struct {
	Status          string           `json:"status"`
	Message         string           `json:"message,omitempty"`
	Provider        string           `json:"provider,omitempty"`
	Origin          string           `json:"origin,omitempty"`
	FromCurrency    string           `json:"from_currency,omitempty"`
	ToCurrency      string           `json:"to_currency,omitempty"`
	ValuationDate   string           `json:"valuation_date,omitempty"`
	RateValue       *decimal.Decimal `json:"rate_value,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	ConvertedAmount *decimal.Decimal `json:"converted_amount,omitempty"`
}

// ToConverterResponse renders a successful conversion.
func ToConverterResponse(quote *domain.RateQuote, amount, converted decimal.Decimal) ConverterResponse {
	rate := quote.Rate
	return ConverterResponse{
		Status:          StatusOK,
		Provider:        quote.ProviderName,
		Origin:          string(quote.Origin),
		FromCurrency:    quote.FromCurrencyCode,
		ToCurrency:      quote.ToCurrencyCode,
		ValuationDate:   dates.Format(quote.ValuationDate),
		RateValue:       &rate,
		Amount:          &amount,
		ConvertedAmount: &converted,
	}
}

// NoDataResponse renders the "no rate" outcome.
func NoDataResponse(from, to, valuationDate string) ConverterResponse {
	return ConverterResponse{
		Status:  StatusOK,
		Message: "No rate available for " + from + " -> " + to + " at " + valuationDate + ".",
	}
}

// KOResponse renders a rejected lookup.
func KOResponse(message string) ConverterResponse {
	return ConverterResponse{Status: StatusKO, Message: message}
}

// ImportRequest starts a backfill over a date range.
type ImportRequest struct {
	Currencies []string `json:"currencies" binding:"required,min=2,dive,len=3,uppercase"`
	FromDate   string   `json:"fromDate" binding:"required"`
	ToDate     string   `json:"toDate" binding:"required"`
}

// ImportResponse reports a finished backfill.
type ImportResponse struct {
	Status         string   `json:"status"`
	FromDate       string   `json:"fromDate"`
	ToDate         string   `json:"toDate"`
	Requested      int      `json:"requested"`
	SkippedSources []string `json:"skippedSources"`
	RatesFetched   int      `json:"ratesFetched"`
	RatesStored    int      `json:"ratesStored"`
}

// ToImportResponse converts an import summary to its DTO.
func ToImportResponse(s *domain.ImportSummary) ImportResponse {
	skipped := s.SkippedSources
	if skipped == nil {
		skipped = []string{}
	}
	return ImportResponse{
		Status:         StatusOK,
		FromDate:       dates.Format(s.From),
		ToDate:         dates.Format(s.To),
		Requested:      s.Requested,
		SkippedSources: skipped,
		RatesFetched:   s.RatesFetched,
		RatesStored:    s.RatesStored,
	}
}
