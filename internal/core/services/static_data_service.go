package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
)

// StaticDataService seeds the reference currencies and the provider registry.
// Seeding is idempotent: existing providers keep their current status.
type StaticDataService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	providerRepo portsrepo.ProviderRepositoryFacade
}

var _ portssvc.StaticDataService = (*StaticDataService)(nil)

func NewStaticDataService(currencyRepo portsrepo.CurrencyRepositoryFacade, providerRepo portsrepo.ProviderRepositoryFacade) *StaticDataService {
	return &StaticDataService{
		BaseService:  newBaseService(nil),
		currencyRepo: currencyRepo,
		providerRepo: providerRepo,
	}
}

func (s *StaticDataService) InitializeStaticData(ctx context.Context) error {
	now := s.now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     domain.SystemActor,
		LastUpdatedAt: now,
		LastUpdatedBy: domain.SystemActor,
	}

	for _, c := range domain.DefaultCurrencies() {
		c.AuditFields = audit
		if err := s.currencyRepo.SaveCurrency(ctx, c); err != nil {
			return fmt.Errorf("failed to seed currency %s: %w", c.CurrencyCode, err)
		}
	}

	for _, p := range domain.DefaultProviders() {
		p.AuditFields = audit
		err := s.providerRepo.SaveProvider(ctx, p)
		if errors.Is(err, apperrors.ErrDuplicate) && p.ActiveStatus {
			// Another provider was selected by an earlier failover.
			p.ActiveStatus = false
			err = s.providerRepo.SaveProvider(ctx, p)
		}
		if err != nil {
			return fmt.Errorf("failed to seed provider %s: %w", p.Name, err)
		}
	}

	s.LogInfo(ctx, "Static data initialized",
		slog.Int("currencies", len(domain.DefaultCurrencies())),
		slog.Int("providers", len(domain.DefaultProviders())),
	)
	return nil
}
