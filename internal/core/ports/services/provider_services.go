package services

import (
	"context"

	"github.com/SscSPs/mycurrency/internal/core/domain"
)

// ProviderReaderSvc defines read operations on the provider registry
type ProviderReaderSvc interface {
	// GetActiveProvider returns the selected provider or an ErrNoProviderAvailable error.
	GetActiveProvider(ctx context.Context) (*domain.Provider, error)

	// ListProviders returns the registry ordered by priority.
	ListProviders(ctx context.Context) ([]domain.Provider, error)
}

// ProviderFailoverSvc rotates the registry
type ProviderFailoverSvc interface {
	// Failover demotes whichever provider is active and promotes the next by priority.
	Failover(ctx context.Context, reason string) (*domain.FailoverResult, error)

	// FailoverFrom rotates only if providerName is still the active provider.
	FailoverFrom(ctx context.Context, providerName, reason string) (*domain.FailoverResult, error)
}

// ProviderRegistrySvcFacade combines all provider registry interfaces
type ProviderRegistrySvcFacade interface {
	ProviderReaderSvc
	ProviderFailoverSvc
}
