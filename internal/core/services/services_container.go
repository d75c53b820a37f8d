package services

import (
	"github.com/SscSPs/mycurrency/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/platform/config"
	"github.com/SscSPs/mycurrency/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The provider registry is built by the caller because the resilient fetcher
// needs it for failover before the exchange rate service can be created.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	registry portssvc.ProviderRegistrySvcFacade,
	fetcher providers.RateFetcher,
	m *metrics.Metrics,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	currency := NewCurrencyService(repos.CurrencyRepo)
	container.Currency = currency
	container.Provider = registry
	container.ExchangeRate = NewExchangeRateService(
		repos.ExchangeRateRepo,
		currency,
		registry,
		fetcher,
		WithExchangeRateMetrics(m),
		WithImportConcurrency(cfg.ImportConcurrency),
	)
	container.Auth = NewAuthService(cfg)
	container.StaticData = NewStaticDataService(repos.CurrencyRepo, repos.ProviderRepo)

	return container
}
