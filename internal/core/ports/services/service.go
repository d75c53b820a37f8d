package services

import (
	"context"
)

// ServiceContainer holds instances of all the application services.
// It is the main entry point for handlers and command line tools.
type ServiceContainer struct {
	Currency     CurrencySvcFacade
	ExchangeRate ExchangeRateSvcFacade
	Provider     ProviderRegistrySvcFacade
	Auth         AuthSvc
	StaticData   StaticDataService
}

// StaticDataService seeds reference data such as currencies and providers.
type StaticDataService interface {
	InitializeStaticData(ctx context.Context) error
}
