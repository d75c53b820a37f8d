package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/dto"
)

type CurrencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

var _ portssvc.CurrencySvcFacade = (*CurrencyService)(nil)

func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) *CurrencyService {
	return &CurrencyService{BaseService: newBaseService(nil), currencyRepo: currencyRepo}
}

func (s *CurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	// Basic validation already handled by DTO binding (required, len=3, uppercase)
	_, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode)
	switch {
	case err == nil:
		return nil, apperrors.NewAppError(http.StatusConflict, "currency "+req.CurrencyCode+" already exists", apperrors.ErrDuplicate)
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to check currency before create", slog.String("currency_code", req.CurrencyCode))
		return nil, fmt.Errorf("failed to create currency in service: %w", err)
	}

	now := s.now()
	currency := domain.Currency{
		CurrencyCode: req.CurrencyCode,
		Symbol:       req.Symbol,
		Name:         req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		s.LogError(ctx, err, "Failed to save currency", slog.String("currency_code", req.CurrencyCode))
		return nil, fmt.Errorf("failed to create currency in service: %w", err)
	}

	s.LogInfo(ctx, "Currency created", slog.String("currency_code", currency.CurrencyCode), slog.String("created_by", creatorUserID))
	return &currency, nil
}

func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code in service: %w", err)
	}
	return currency, nil
}

func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	// Return empty slice if no currencies found, not nil
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// IsKnown reports whether currencyCode is part of the reference set.
func (s *CurrencyService) IsKnown(ctx context.Context, currencyCode string) (bool, error) {
	_, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up currency %s: %w", currencyCode, err)
	}
}
