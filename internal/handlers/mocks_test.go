package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/mycurrency/internal/core/domain"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) IsKnown(ctx context.Context, currencyCode string) (bool, error) {
	args := m.Called(ctx, currencyCode)
	return args.Bool(0), args.Error(1)
}

var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) GetRate(ctx context.Context, fromCode, toCode string, valuationDate time.Time) (*domain.RateQuote, error) {
	args := m.Called(ctx, fromCode, toCode, valuationDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateQuote), args.Error(1)
}

func (m *MockExchangeRateService) ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, valuationDate time.Time) (decimal.Decimal, *domain.RateQuote, error) {
	args := m.Called(ctx, amount, fromCode, toCode, valuationDate)
	if args.Get(1) == nil {
		return decimal.Zero, nil, args.Error(2)
	}
	return args.Get(0).(decimal.Decimal), args.Get(1).(*domain.RateQuote), args.Error(2)
}

func (m *MockExchangeRateService) ImportRange(ctx context.Context, currencies []string, from, to time.Time) (*domain.ImportSummary, error) {
	args := m.Called(ctx, currencies, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportSummary), args.Error(1)
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)

// --- Mock ProviderService ---
type MockProviderService struct {
	mock.Mock
}

func (m *MockProviderService) GetActiveProvider(ctx context.Context) (*domain.Provider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Provider), args.Error(1)
}

func (m *MockProviderService) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Provider), args.Error(1)
}

func (m *MockProviderService) Failover(ctx context.Context, reason string) (*domain.FailoverResult, error) {
	args := m.Called(ctx, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FailoverResult), args.Error(1)
}

func (m *MockProviderService) FailoverFrom(ctx context.Context, providerName, reason string) (*domain.FailoverResult, error) {
	args := m.Called(ctx, providerName, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FailoverResult), args.Error(1)
}

var _ portssvc.ProviderRegistrySvcFacade = (*MockProviderService)(nil)

// --- Mock AuthService ---
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var _ portssvc.AuthSvc = (*MockAuthService)(nil)
