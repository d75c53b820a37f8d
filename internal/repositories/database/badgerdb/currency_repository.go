package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	"github.com/SscSPs/mycurrency/internal/models"
	"github.com/SscSPs/mycurrency/internal/utils/mapping"
	"github.com/dgraph-io/badger/v3"
)

type BadgerCurrencyRepository struct {
	BaseRepository
}

func newBadgerCurrencyRepository(db *badger.DB) portsrepo.CurrencyRepositoryFacade {
	return &BadgerCurrencyRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.CurrencyRepositoryFacade = (*BadgerCurrencyRepository)(nil)

// SaveCurrency inserts or updates a currency. The first creation audit is kept.
func (r *BadgerCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)
	key := currencyPrefix + m.CurrencyCode

	err := r.update(ctx, func(txn *badger.Txn) error {
		var existing models.Currency
		err := getJSON(txn, key, &existing)
		switch {
		case err == nil:
			m.CreatedAt = existing.CreatedAt
			m.CreatedBy = existing.CreatedBy
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return setJSON(txn, key, m)
	})
	if err != nil {
		return fmt.Errorf("failed to save currency %s: %w", m.CurrencyCode, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *BadgerCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	var m models.Currency
	err := r.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, currencyPrefix+currencyCode, &m)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}
	c := mapping.ToDomainCurrency(m)
	return &c, nil
}

// ListCurrencies retrieves all currencies ordered by code.
func (r *BadgerCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	var ms []models.Currency
	err := r.view(ctx, func(txn *badger.Txn) error {
		var err error
		ms, err = scanPrefix[models.Currency](txn, currencyPrefix)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return mapping.ToDomainCurrencySlice(ms), nil
}
