package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	"github.com/SscSPs/mycurrency/internal/models"
	"github.com/SscSPs/mycurrency/internal/utils/mapping"
	"github.com/dgraph-io/badger/v3"
)

// BadgerProviderRepository keeps the provider registry under provider:NAME keys.
// Failover reads every provider in the same transaction that writes the
// rotation, so Badger's conflict detection serializes concurrent rotations.
type BadgerProviderRepository struct {
	BaseRepository
}

func newBadgerProviderRepository(db *badger.DB) portsrepo.ProviderRepositoryFacade {
	return &BadgerProviderRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.ProviderRepositoryFacade = (*BadgerProviderRepository)(nil)

// SaveProvider registers a provider unless its name is already taken.
func (r *BadgerProviderRepository) SaveProvider(ctx context.Context, provider domain.Provider) error {
	m := mapping.ToModelProvider(provider)
	key := providerPrefix + m.Name

	err := r.update(ctx, func(txn *badger.Txn) error {
		exists, err := keyExists(txn, key)
		if err != nil || exists {
			return err
		}
		if m.ActiveStatus {
			providers, err := listProviders(txn)
			if err != nil {
				return err
			}
			if _, ok := domain.ActiveProvider(providers); ok {
				return fmt.Errorf("%w: another provider is already active", apperrors.ErrDuplicate)
			}
		}
		return setJSON(txn, key, m)
	})
	if err != nil {
		return fmt.Errorf("failed to save provider %s: %w", m.Name, err)
	}
	return nil
}

// FindActiveProvider returns the currently selected provider.
func (r *BadgerProviderRepository) FindActiveProvider(ctx context.Context) (*domain.Provider, error) {
	providers, err := r.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	active, ok := domain.ActiveProvider(providers)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return active, nil
}

// ListProviders returns every provider ordered by priority then name.
func (r *BadgerProviderRepository) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	var providers []domain.Provider
	err := r.view(ctx, func(txn *badger.Txn) error {
		var err error
		providers, err = listProviders(txn)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

// Failover plans and persists the rotation in one transaction.
func (r *BadgerProviderRepository) Failover(ctx context.Context, expectedActive string) (*domain.FailoverResult, error) {
	var (
		result  *domain.FailoverResult
		planErr error
	)

	err := r.update(ctx, func(txn *badger.Txn) error {
		result, planErr = nil, nil

		providers, err := listProviders(txn)
		if err != nil {
			return err
		}
		plan, err := domain.PlanFailover(providers, expectedActive)
		if plan == nil {
			return err
		}
		planErr = err
		result = &plan.Result

		now := time.Now().UTC()
		for _, p := range []*domain.Provider{plan.Deactivate, plan.Activate} {
			if p == nil {
				continue
			}
			p.LastUpdatedAt = now
			p.LastUpdatedBy = domain.SystemActor
			if err := setJSON(txn, providerPrefix+p.Name, mapping.ToModelProvider(*p)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNoProviderAvailable) {
			return nil, err
		}
		return nil, apperrors.NewAppError(500, "failed to rotate providers", err)
	}
	return result, planErr
}

func listProviders(txn *badger.Txn) ([]domain.Provider, error) {
	ms, err := scanPrefix[models.Provider](txn, providerPrefix)
	if err != nil {
		return nil, err
	}
	providers := mapping.ToDomainProviderSlice(ms)
	sort.Slice(providers, func(i, j int) bool {
		if providers[i].Priority != providers[j].Priority {
			return providers[i].Priority < providers[j].Priority
		}
		return providers[i].Name < providers[j].Name
	})
	return providers, nil
}
