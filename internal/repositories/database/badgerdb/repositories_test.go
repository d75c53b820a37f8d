package badgerdb_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	"github.com/SscSPs/mycurrency/internal/repositories/database/badgerdb"
	"github.com/SscSPs/mycurrency/pkg/database"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BadgerRepositoryTestSuite struct {
	suite.Suite
	db    *badger.DB
	repos portsrepo.RepositoryProvider
	ctx   context.Context
}

func (suite *BadgerRepositoryTestSuite) SetupTest() {
	db, err := database.NewBadgerDB("")
	suite.Require().NoError(err)
	suite.db = db
	suite.repos = badgerdb.NewRepositoryProvider(db)
	suite.ctx = context.Background()
}

func (suite *BadgerRepositoryTestSuite) TearDownTest() {
	suite.Require().NoError(suite.db.Close())
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rate(from, to, date, value string) domain.ExchangeRate {
	return domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             decimal.RequireFromString(value),
		ValuationDate:    day(date),
		ProviderName:     domain.ProviderMock,
		AuditFields:      domain.AuditFields{CreatedBy: domain.ProviderMock, LastUpdatedBy: domain.ProviderMock},
	}
}

func (suite *BadgerRepositoryTestSuite) seedProviders(extra ...domain.Provider) {
	for _, p := range append(domain.DefaultProviders(), extra...) {
		suite.Require().NoError(suite.repos.ProviderRepo.SaveProvider(suite.ctx, p))
	}
}

// --- Currencies ---

func (suite *BadgerRepositoryTestSuite) TestCurrency_SaveFindList() {
	for _, c := range domain.DefaultCurrencies() {
		suite.Require().NoError(suite.repos.CurrencyRepo.SaveCurrency(suite.ctx, c))
	}

	usd, err := suite.repos.CurrencyRepo.FindCurrencyByCode(suite.ctx, "USD")
	suite.Require().NoError(err)
	suite.Equal("US Dollar", usd.Name)

	list, err := suite.repos.CurrencyRepo.ListCurrencies(suite.ctx)
	suite.Require().NoError(err)
	codes := make([]string, len(list))
	for i, c := range list {
		codes[i] = c.CurrencyCode
	}
	suite.Equal([]string{"CHF", "EUR", "GBP", "USD"}, codes)
}

func (suite *BadgerRepositoryTestSuite) TestCurrency_NotFound() {
	_, err := suite.repos.CurrencyRepo.FindCurrencyByCode(suite.ctx, "XXX")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Exchange rates ---

func (suite *BadgerRepositoryTestSuite) TestExchangeRate_RoundTripKeepsSixDecimals() {
	suite.Require().NoError(suite.repos.ExchangeRateRepo.SaveExchangeRate(suite.ctx, rate("EUR", "USD", "2024-03-01", "1.08765449")))

	got, err := suite.repos.ExchangeRateRepo.FindExchangeRate(suite.ctx, "EUR", "USD", day("2024-03-01"))
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("1.087654").Equal(got.Rate), "got %s", got.Rate)
	suite.Equal(domain.ProviderMock, got.ProviderName)
	suite.True(day("2024-03-01").Equal(got.ValuationDate))
}

func (suite *BadgerRepositoryTestSuite) TestExchangeRate_DuplicateKeepsFirstValue() {
	suite.Require().NoError(suite.repos.ExchangeRateRepo.SaveExchangeRate(suite.ctx, rate("EUR", "USD", "2024-03-01", "1.1")))
	suite.Require().NoError(suite.repos.ExchangeRateRepo.SaveExchangeRate(suite.ctx, rate("EUR", "USD", "2024-03-01", "9.9")))

	got, err := suite.repos.ExchangeRateRepo.FindExchangeRate(suite.ctx, "EUR", "USD", day("2024-03-01"))
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("1.1").Equal(got.Rate))
}

func (suite *BadgerRepositoryTestSuite) TestExchangeRate_ConcurrentWritersStoreOneRow() {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			suite.NoError(suite.repos.ExchangeRateRepo.SaveExchangeRate(suite.ctx, rate("GBP", "CHF", "2024-01-10", "1.1")))
		}()
	}
	wg.Wait()

	n, err := suite.repos.ExchangeRateRepo.CountExchangeRatesInRange(suite.ctx, "GBP", "CHF", day("2024-01-01"), day("2024-01-31"))
	suite.Require().NoError(err)
	suite.Equal(1, n)
}

func (suite *BadgerRepositoryTestSuite) TestExchangeRate_Miss() {
	_, err := suite.repos.ExchangeRateRepo.FindExchangeRate(suite.ctx, "EUR", "USD", day("2024-03-01"))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BadgerRepositoryTestSuite) TestExchangeRate_BatchAndCount() {
	batch := []domain.ExchangeRate{
		rate("EUR", "USD", "2024-02-28", "1.08"),
		rate("EUR", "USD", "2024-02-29", "1.09"),
		rate("EUR", "USD", "2024-03-01", "1.10"),
		rate("EUR", "USD", "2024-03-02", "1.11"),
		rate("EUR", "GBP", "2024-03-01", "0.85"),
	}
	n, err := suite.repos.ExchangeRateRepo.SaveExchangeRates(suite.ctx, batch)
	suite.Require().NoError(err)
	suite.Equal(5, n)

	n, err = suite.repos.ExchangeRateRepo.SaveExchangeRates(suite.ctx, batch[:2])
	suite.Require().NoError(err)
	suite.Equal(0, n)

	count, err := suite.repos.ExchangeRateRepo.CountExchangeRatesInRange(suite.ctx, "EUR", "USD", day("2024-02-29"), day("2024-03-01"))
	suite.Require().NoError(err)
	suite.Equal(2, count)

	count, err = suite.repos.ExchangeRateRepo.CountExchangeRatesInRange(suite.ctx, "USD", "EUR", day("2024-02-01"), day("2024-03-31"))
	suite.Require().NoError(err)
	suite.Zero(count)
}

// --- Providers ---

func (suite *BadgerRepositoryTestSuite) TestProvider_SeedIsIdempotent() {
	suite.seedProviders()
	suite.seedProviders()

	providers, err := suite.repos.ProviderRepo.ListProviders(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(providers, 2)
	suite.Equal(domain.ProviderCurrencyBeacon, providers[0].Name)
	suite.Equal(domain.ProviderMock, providers[1].Name)

	active, err := suite.repos.ProviderRepo.FindActiveProvider(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(domain.ProviderCurrencyBeacon, active.Name)
}

func (suite *BadgerRepositoryTestSuite) TestProvider_NoActive() {
	_, err := suite.repos.ProviderRepo.FindActiveProvider(suite.ctx)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.repos.ProviderRepo.Failover(suite.ctx, "")
	suite.ErrorIs(err, apperrors.ErrNoProviderAvailable)
}

func (suite *BadgerRepositoryTestSuite) TestProvider_FailoverRotatesToLowestPriorityCandidate() {
	suite.seedProviders(domain.Provider{Name: "backup", Priority: 5, ActiveFlag: true})

	result, err := suite.repos.ProviderRepo.Failover(suite.ctx, domain.ProviderCurrencyBeacon)
	suite.Require().NoError(err)
	suite.Equal(domain.ProviderCurrencyBeacon, result.Deactivated)
	suite.Equal("backup", result.Activated)
	suite.False(result.Superseded)

	active, err := suite.repos.ProviderRepo.FindActiveProvider(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("backup", active.Name)
}

func (suite *BadgerRepositoryTestSuite) TestProvider_FailoverSupersededWhenExpectedIsStale() {
	suite.seedProviders()

	_, err := suite.repos.ProviderRepo.Failover(suite.ctx, domain.ProviderCurrencyBeacon)
	suite.Require().NoError(err)

	result, err := suite.repos.ProviderRepo.Failover(suite.ctx, domain.ProviderCurrencyBeacon)
	suite.Require().NoError(err)
	suite.True(result.Superseded)
	suite.Equal(domain.ProviderMock, result.Activated)
}

func (suite *BadgerRepositoryTestSuite) TestProvider_FailoverBackAndForth() {
	suite.seedProviders()

	_, err := suite.repos.ProviderRepo.Failover(suite.ctx, "")
	suite.Require().NoError(err)

	// The demoted provider is still flagged, so it is the next candidate.
	result, err := suite.repos.ProviderRepo.Failover(suite.ctx, "")
	suite.Require().NoError(err)
	suite.Equal(domain.ProviderMock, result.Deactivated)
	suite.Equal(domain.ProviderCurrencyBeacon, result.Activated)
}

func (suite *BadgerRepositoryTestSuite) TestProvider_FailoverWithoutCandidateDemotes() {
	suite.Require().NoError(suite.repos.ProviderRepo.SaveProvider(suite.ctx,
		domain.Provider{Name: "solo", Priority: 1, ActiveFlag: true, ActiveStatus: true}))
	suite.Require().NoError(suite.repos.ProviderRepo.SaveProvider(suite.ctx,
		domain.Provider{Name: "retired", Priority: 2, ActiveFlag: false}))

	result, err := suite.repos.ProviderRepo.Failover(suite.ctx, "solo")
	suite.ErrorIs(err, apperrors.ErrNoFallbackAvailable)
	suite.Require().NotNil(result)
	suite.Equal("solo", result.Deactivated)
	suite.Empty(result.Activated)

	_, err = suite.repos.ProviderRepo.FindActiveProvider(suite.ctx)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BadgerRepositoryTestSuite) TestProvider_SecondActiveRejected() {
	suite.seedProviders()
	err := suite.repos.ProviderRepo.SaveProvider(suite.ctx,
		domain.Provider{Name: "rogue", Priority: 0, ActiveFlag: true, ActiveStatus: true})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *BadgerRepositoryTestSuite) TestProvider_ConcurrentFailoverKeepsSingleActive() {
	suite.seedProviders(domain.Provider{Name: "backup", Priority: 5, ActiveFlag: true})

	const workers = 10
	results := make([]*domain.FailoverResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := suite.repos.ProviderRepo.Failover(suite.ctx, domain.ProviderCurrencyBeacon)
			suite.NoError(err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	rotated := 0
	for _, res := range results {
		suite.Require().NotNil(res)
		if !res.Superseded {
			rotated++
		}
	}
	suite.Equal(1, rotated)

	providers, err := suite.repos.ProviderRepo.ListProviders(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(1, domain.CountActive(providers))
	active, _ := domain.ActiveProvider(providers)
	suite.Equal("backup", active.Name)
}

func TestBadgerRepositories(t *testing.T) {
	suite.Run(t, new(BadgerRepositoryTestSuite))
}
