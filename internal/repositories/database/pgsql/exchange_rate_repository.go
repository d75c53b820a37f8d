package pgsql

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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository stores rates in the exchange_rates table.
// The (from, to, valuation_date) key is unique; the first stored row wins.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const insertExchangeRateSQL = `
	INSERT INTO exchange_rates (
		exchange_rate_id, from_currency_code, to_currency_code, rate, valuation_date, provider_name,
		created_at, created_by, last_updated_at, last_updated_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (from_currency_code, to_currency_code, valuation_date) DO NOTHING`

func insertArgs(m models.ExchangeRate) []any {
	return []any{
		m.ExchangeRateID, m.FromCurrencyCode, m.ToCurrencyCode, m.Rate, m.ValuationDate, m.ProviderName,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

// SaveExchangeRate inserts a rate unless one is already stored for the same key.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.ValuationDate = dates.DateOnly(modelRate.ValuationDate)

	if _, err := r.Pool.Exec(ctx, insertExchangeRateSQL, insertArgs(modelRate)...); err != nil {
		return apperrors.NewAppError(500, "failed to save exchange rate", err)
	}
	return nil
}

// SaveExchangeRates inserts a batch in one transaction and returns how many rows were new.
func (r *PgxExchangeRateRepository) SaveExchangeRates(ctx context.Context, rates []domain.ExchangeRate) (int, error) {
	if len(rates) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rate := range rates {
			m := mapping.ToModelExchangeRate(rate)
			m.ValuationDate = dates.DateOnly(m.ValuationDate)
			batch.Queue(insertExchangeRateSQL, insertArgs(m)...)
		}

		results := tx.SendBatch(ctx, batch)
		for range rates {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return apperrors.NewAppError(500, "failed to save exchange rates", err)
			}
			inserted += int(tag.RowsAffected())
		}
		if err := results.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to save exchange rates", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// FindExchangeRate retrieves the rate stored for an exact pair and valuation date.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, valuationDate time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT
			exchange_rate_id, from_currency_code, to_currency_code, rate, valuation_date, provider_name,
			created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND valuation_date = $3;
	`

	var m models.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, fromCurrencyCode, toCurrencyCode, dates.DateOnly(valuationDate)).Scan(
		&m.ExchangeRateID, &m.FromCurrencyCode, &m.ToCurrencyCode, &m.Rate, &m.ValuationDate, &m.ProviderName,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}

	domainRate := mapping.ToDomainExchangeRate(m)
	return &domainRate, nil
}

// CountExchangeRatesInRange counts stored valuation days for the pair within [from, to].
func (r *PgxExchangeRateRepository) CountExchangeRatesInRange(ctx context.Context, fromCurrencyCode, toCurrencyCode string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT valuation_date)
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2
			AND valuation_date BETWEEN $3 AND $4;
	`

	var count int
	if err := r.Pool.QueryRow(ctx, query, fromCurrencyCode, toCurrencyCode, dates.DateOnly(from), dates.DateOnly(to)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count exchange rates for %s/%s: %w", fromCurrencyCode, toCurrencyCode, err)
	}
	return count, nil
}
