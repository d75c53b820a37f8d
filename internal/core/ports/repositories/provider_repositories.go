package repositories

import (
	"context"

	"github.com/SscSPs/mycurrency/internal/core/domain"
)

// ProviderReader defines read operations for the provider registry
type ProviderReader interface {
	// FindActiveProvider returns the provider currently selected, or apperrors.ErrNotFound.
	FindActiveProvider(ctx context.Context) (*domain.Provider, error)

	// ListProviders returns every registered provider ordered by priority then name.
	ListProviders(ctx context.Context) ([]domain.Provider, error)
}

// ProviderWriter defines write operations for the provider registry
type ProviderWriter interface {
	// SaveProvider registers a provider if its name is not taken yet. Existing rows are left untouched.
	SaveProvider(ctx context.Context, provider domain.Provider) error

	// Failover rotates the registry inside a single store transaction.
	// When expectedActive is non-empty the rotation only happens if that provider is still active.
	// With apperrors.ErrNoFallbackAvailable the demotion is still persisted and the result is returned.
	Failover(ctx context.Context, expectedActive string) (*domain.FailoverResult, error)
}

// ProviderRepositoryFacade combines all provider-related repository interfaces
type ProviderRepositoryFacade interface {
	ProviderReader
	ProviderWriter
}
