package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	"github.com/SscSPs/mycurrency/internal/models"
	"github.com/SscSPs/mycurrency/internal/utils/dates"
	"github.com/SscSPs/mycurrency/internal/utils/mapping"
	"github.com/dgraph-io/badger/v3"
)

// rateBatchSize keeps a single batch transaction well below Badger's size limits.
const rateBatchSize = 500

// BadgerExchangeRateRepository keys rates by rate:FROM:TO:YYYY-MM-DD so that a
// pair's days sort chronologically. The first stored value for a key wins.
type BadgerExchangeRateRepository struct {
	BaseRepository
}

func newBadgerExchangeRateRepository(db *badger.DB) portsrepo.ExchangeRateRepositoryFacade {
	return &BadgerExchangeRateRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*BadgerExchangeRateRepository)(nil)

func pairPrefix(from, to string) string {
	return ratePrefix + from + ":" + to + ":"
}

func rateKey(from, to string, valuationDate time.Time) string {
	return pairPrefix(from, to) + dates.Format(valuationDate)
}

// insertIfAbsent reports whether the rate was written.
func insertIfAbsent(txn *badger.Txn, rate domain.ExchangeRate) (bool, error) {
	m := mapping.ToModelExchangeRate(rate)
	m.ValuationDate = dates.DateOnly(m.ValuationDate)
	key := rateKey(m.FromCurrencyCode, m.ToCurrencyCode, m.ValuationDate)

	exists, err := keyExists(txn, key)
	if err != nil || exists {
		return false, err
	}
	return true, setJSON(txn, key, m)
}

// SaveExchangeRate stores a rate unless one already exists for the same key.
func (r *BadgerExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	err := r.update(ctx, func(txn *badger.Txn) error {
		_, err := insertIfAbsent(txn, rate)
		return err
	})
	if err != nil {
		return apperrors.NewAppError(500, "failed to save exchange rate", err)
	}
	return nil
}

// SaveExchangeRates stores a batch and returns how many keys were new.
func (r *BadgerExchangeRateRepository) SaveExchangeRates(ctx context.Context, rates []domain.ExchangeRate) (int, error) {
	inserted := 0
	for start := 0; start < len(rates); start += rateBatchSize {
		end := min(start+rateBatchSize, len(rates))
		chunk := rates[start:end]

		var n int
		err := r.update(ctx, func(txn *badger.Txn) error {
			n = 0
			for _, rate := range chunk {
				written, err := insertIfAbsent(txn, rate)
				if err != nil {
					return err
				}
				if written {
					n++
				}
			}
			return nil
		})
		if err != nil {
			return inserted, apperrors.NewAppError(500, "failed to save exchange rates", err)
		}
		inserted += n
	}
	return inserted, nil
}

// FindExchangeRate retrieves the rate stored for an exact pair and valuation date.
func (r *BadgerExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, valuationDate time.Time) (*domain.ExchangeRate, error) {
	var m models.ExchangeRate
	err := r.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, rateKey(fromCurrencyCode, toCurrencyCode, valuationDate), &m)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}
	rate := mapping.ToDomainExchangeRate(m)
	return &rate, nil
}

// CountExchangeRatesInRange counts stored days for the pair within [from, to].
func (r *BadgerExchangeRateRepository) CountExchangeRatesInRange(ctx context.Context, fromCurrencyCode, toCurrencyCode string, from, to time.Time) (int, error) {
	prefix := []byte(pairPrefix(fromCurrencyCode, toCurrencyCode))
	startKey := []byte(rateKey(fromCurrencyCode, toCurrencyCode, from))
	endKey := rateKey(fromCurrencyCode, toCurrencyCode, to)

	count := 0
	err := r.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(startKey); it.ValidForPrefix(prefix); it.Next() {
			if string(it.Item().Key()) > endKey {
				break
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count exchange rates for %s/%s: %w", fromCurrencyCode, toCurrencyCode, err)
	}
	return count, nil
}
