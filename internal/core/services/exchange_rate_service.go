package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/platform/metrics"
	"github.com/SscSPs/mycurrency/internal/utils/dates"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultImportConcurrency = 4

const futureDateMessage = "A rate value cannot be read in the future"

// Rate lookup outcomes exported as metric labels.
const (
	lookupOK       = "ok"
	lookupNoData   = "no_data"
	lookupRejected = "rejected"
	lookupError    = "error"
)

// ExchangeRateService resolves rates from the store first and the active provider second.
type ExchangeRateService struct {
	BaseService
	rateRepo          portsrepo.ExchangeRateRepositoryFacade
	currencyService   portssvc.CurrencyReaderSvc
	providerService   portssvc.ProviderReaderSvc
	fetcher           providers.RateFetcher
	importConcurrency int
}

var _ portssvc.ExchangeRateSvcFacade = (*ExchangeRateService)(nil)

// ExchangeRateOption configures an ExchangeRateService.
type ExchangeRateOption func(*ExchangeRateService)

// WithExchangeRateMetrics records lookups and imports on m.
func WithExchangeRateMetrics(m *metrics.Metrics) ExchangeRateOption {
	return func(s *ExchangeRateService) { s.Metrics = m }
}

// WithClock replaces time.Now, used to decide what "today" and "future" mean.
func WithClock(now func() time.Time) ExchangeRateOption {
	return func(s *ExchangeRateService) { s.Now = now }
}

// WithImportConcurrency bounds how many sources a backfill fetches at once.
func WithImportConcurrency(n int) ExchangeRateOption {
	return func(s *ExchangeRateService) {
		if n > 0 {
			s.importConcurrency = n
		}
	}
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(
	rateRepo portsrepo.ExchangeRateRepositoryFacade,
	currencyService portssvc.CurrencyReaderSvc,
	providerService portssvc.ProviderReaderSvc,
	fetcher providers.RateFetcher,
	opts ...ExchangeRateOption,
) *ExchangeRateService {
	s := &ExchangeRateService{
		BaseService:       newBaseService(nil),
		rateRepo:          rateRepo,
		currencyService:   currencyService,
		providerService:   providerService,
		fetcher:           fetcher,
		importConcurrency: defaultImportConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRate returns the rate for a pair on a valuation date. A stored rate is
// served without any provider call; otherwise the active provider is asked
// exactly once and a successful answer is written through to the store.
func (s *ExchangeRateService) GetRate(ctx context.Context, fromCode, toCode string, valuationDate time.Time) (*domain.RateQuote, error) {
	fromCode = normalizeCode(fromCode)
	toCode = normalizeCode(toCode)
	valuationDate = dates.DateOnly(valuationDate)

	if dates.IsFuture(valuationDate, s.now()) {
		return nil, apperrors.NewRateError(apperrors.ErrFutureDate, futureDateMessage)
	}
	if err := s.ensureKnown(ctx, "source", fromCode); err != nil {
		return nil, err
	}
	if err := s.ensureKnown(ctx, "destination", toCode); err != nil {
		return nil, err
	}

	if fromCode == toCode {
		s.Metrics.RecordRateLookup(string(domain.RateOriginIdentity), lookupOK)
		return &domain.RateQuote{
			FromCurrencyCode: fromCode,
			ToCurrencyCode:   toCode,
			ValuationDate:    valuationDate,
			Rate:             decimal.NewFromInt(1),
			Origin:           domain.RateOriginIdentity,
		}, nil
	}

	stored, err := s.rateRepo.FindExchangeRate(ctx, fromCode, toCode, valuationDate)
	if err == nil {
		quote := domain.QuoteFromExchangeRate(*stored)
		s.Metrics.RecordRateLookup(string(domain.RateOriginStore), lookupOK)
		return &quote, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to read stored exchange rate",
			slog.String("from", fromCode), slog.String("to", toCode))
		s.Metrics.RecordRateLookup(string(domain.RateOriginStore), lookupError)
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to read stored exchange rate", err)
	}

	active, err := s.providerService.GetActiveProvider(ctx)
	if err != nil {
		s.Metrics.RecordRateLookup(string(domain.RateOriginProvider), lookupOutcome(err))
		return nil, err
	}

	quote, err := s.fetcher.Fetch(ctx, active.Name, fromCode, toCode, valuationDate)
	if err != nil {
		s.Metrics.RecordRateLookup(string(domain.RateOriginProvider), lookupOutcome(err))
		s.LogDebug(ctx, "Provider lookup failed",
			slog.String("provider", active.Name),
			slog.String("from", fromCode),
			slog.String("to", toCode),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	quote.Origin = domain.RateOriginProvider

	row := quote.ToExchangeRate(uuid.NewString(), s.now().UTC())
	if !row.Rate.IsPositive() {
		err := apperrors.NewRateError(apperrors.ErrProviderResponse,
			"exchange rate provider "+active.Name+" returned an unusable rate")
		s.Metrics.RecordRateLookup(string(domain.RateOriginProvider), lookupOutcome(err))
		s.LogWarn(ctx, "Provider rate rounds to zero",
			slog.String("provider", active.Name),
			slog.String("rate", quote.Rate.String()),
		)
		return nil, err
	}
	if err := s.rateRepo.SaveExchangeRate(ctx, row); err != nil {
		// The quote is still valid; the next miss will fetch and store it again.
		s.LogError(ctx, err, "Failed to store fetched exchange rate",
			slog.String("provider", active.Name),
			slog.String("from", fromCode),
			slog.String("to", toCode),
			slog.String("valuation_date", dates.Format(valuationDate)),
		)
	}
	quote.Rate = row.Rate

	s.Metrics.RecordRateLookup(string(domain.RateOriginProvider), lookupOK)
	return quote, nil
}

// ConvertAmount resolves the rate and applies it to amount.
func (s *ExchangeRateService) ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, valuationDate time.Time) (decimal.Decimal, *domain.RateQuote, error) {
	if !amount.IsPositive() {
		return decimal.Zero, nil, apperrors.NewValidationError("amount must be a positive number")
	}
	quote, err := s.GetRate(ctx, fromCode, toCode, valuationDate)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return amount.Mul(quote.Rate).Round(domain.RateScale), quote, nil
}

// ensureKnown rejects a code outside the reference set. role names the code in the message.
func (s *ExchangeRateService) ensureKnown(ctx context.Context, role, code string) error {
	known, err := s.currencyService.IsKnown(ctx, code)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to validate currency "+code, err)
	}
	if !known {
		return apperrors.NewRateError(apperrors.ErrUnknownCurrency,
			fmt.Sprintf("The specified %s currency code %s is not available at the moment.", role, code))
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func lookupOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrRemoteDataMissing):
		return lookupNoData
	case errors.Is(err, apperrors.ErrProviderRejected), errors.Is(err, apperrors.ErrNoProviderAvailable):
		return lookupRejected
	default:
		return lookupError
	}
}
