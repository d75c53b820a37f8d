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
	"github.com/SscSPs/mycurrency/internal/platform/events"
	"github.com/SscSPs/mycurrency/internal/platform/metrics"
	"github.com/google/uuid"
)

// ProviderRegistryService selects the active rate provider and rotates it on failure.
type ProviderRegistryService struct {
	BaseService
	providerRepo portsrepo.ProviderRepositoryFacade
	publisher    events.FailoverPublisher
}

var _ portssvc.ProviderRegistrySvcFacade = (*ProviderRegistryService)(nil)

// NewProviderRegistryService creates a registry service. publisher may be nil.
func NewProviderRegistryService(providerRepo portsrepo.ProviderRepositoryFacade, publisher events.FailoverPublisher, m *metrics.Metrics) *ProviderRegistryService {
	return &ProviderRegistryService{
		BaseService:  newBaseService(m),
		providerRepo: providerRepo,
		publisher:    publisher,
	}
}

func (s *ProviderRegistryService) GetActiveProvider(ctx context.Context) (*domain.Provider, error) {
	p, err := s.providerRepo.FindActiveProvider(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewRateError(apperrors.ErrNoProviderAvailable, "No provider available at the moment.")
		}
		return nil, fmt.Errorf("failed to resolve active provider: %w", err)
	}
	return p, nil
}

func (s *ProviderRegistryService) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	ps, err := s.providerRepo.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers in service: %w", err)
	}
	if ps == nil {
		return []domain.Provider{}, nil
	}
	return ps, nil
}

// Failover demotes the active provider and promotes the next one by priority.
func (s *ProviderRegistryService) Failover(ctx context.Context, reason string) (*domain.FailoverResult, error) {
	return s.rotate(ctx, "", reason)
}

// FailoverFrom rotates only while providerName is still active. When another
// caller already rotated, the result is marked Superseded and nothing is written.
func (s *ProviderRegistryService) FailoverFrom(ctx context.Context, providerName, reason string) (*domain.FailoverResult, error) {
	return s.rotate(ctx, providerName, reason)
}

func (s *ProviderRegistryService) rotate(ctx context.Context, expectedActive, reason string) (*domain.FailoverResult, error) {
	result, err := s.providerRepo.Failover(ctx, expectedActive)
	if err != nil && !errors.Is(err, apperrors.ErrNoFallbackAvailable) {
		if errors.Is(err, apperrors.ErrNoProviderAvailable) {
			return nil, apperrors.NewRateError(apperrors.ErrNoProviderAvailable, "No provider available at the moment.")
		}
		s.LogError(ctx, err, "Provider failover failed", slog.String("expected_active", expectedActive))
		return nil, fmt.Errorf("failed to rotate providers: %w", err)
	}

	if result.Superseded {
		s.LogDebug(ctx, "Failover superseded by a concurrent rotation",
			slog.String("expected_active", expectedActive),
			slog.String("active", result.Activated),
		)
		return result, nil
	}

	outcome := domain.FailoverOutcomeRotated
	if err != nil {
		outcome = domain.FailoverOutcomeNoFallback
	}
	s.Metrics.RecordFailover(outcome)
	s.publish(ctx, result, reason, outcome)

	if err != nil {
		s.LogError(ctx, err, "Provider deactivated with no fallback", slog.String("deactivated", result.Deactivated))
		return result, apperrors.NewRateError(apperrors.ErrNoFallbackAvailable,
			"provider "+result.Deactivated+" was deactivated and no fallback provider is available")
	}

	s.LogInfo(ctx, "Provider failover completed",
		slog.String("deactivated", result.Deactivated),
		slog.String("activated", result.Activated),
		slog.String("reason", reason),
	)
	return result, nil
}

// publish never fails the rotation: the registry change is already committed.
func (s *ProviderRegistryService) publish(ctx context.Context, result *domain.FailoverResult, reason, outcome string) {
	if s.publisher == nil {
		return
	}
	event := domain.FailoverEvent{
		EventID:     uuid.NewString(),
		Deactivated: result.Deactivated,
		Activated:   result.Activated,
		Reason:      reason,
		Outcome:     outcome,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.publisher.PublishFailover(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish failover event", slog.String("event_id", event.EventID))
	}
}
