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
	"github.com/SscSPs/mycurrency/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxProviderRepository keeps the provider registry in the providers table.
// A partial unique index on active_status guarantees at most one active row.
type PgxProviderRepository struct {
	BaseRepository
}

func newPgxProviderRepository(pool *pgxpool.Pool) portsrepo.ProviderRepositoryFacade {
	return &PgxProviderRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ProviderRepositoryFacade = (*PgxProviderRepository)(nil)

const uniqueViolation = "23505"

const providerColumns = `name, priority, active_flag, active_status, created_at, created_by, last_updated_at, last_updated_by`

// SaveProvider registers a provider unless its name is already taken.
func (r *PgxProviderRepository) SaveProvider(ctx context.Context, provider domain.Provider) error {
	m := mapping.ToModelProvider(provider)

	query := `
		INSERT INTO providers (` + providerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.Name, m.Priority, m.ActiveFlag, m.ActiveStatus,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("failed to save provider %s: %w: another provider is already active", m.Name, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save provider %s: %w", m.Name, err)
	}
	return nil
}

// FindActiveProvider returns the currently selected provider.
func (r *PgxProviderRepository) FindActiveProvider(ctx context.Context) (*domain.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE active_status = TRUE;`

	m, err := scanProvider(r.Pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active provider: %w", err)
	}
	p := mapping.ToDomainProvider(m)
	return &p, nil
}

// ListProviders returns every provider ordered by priority then name.
func (r *PgxProviderRepository) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	return r.listProviders(ctx, r.Pool, false)
}

// Failover locks the registry rows, plans the rotation and persists it in one transaction.
func (r *PgxProviderRepository) Failover(ctx context.Context, expectedActive string) (*domain.FailoverResult, error) {
	var (
		result  *domain.FailoverResult
		planErr error
	)

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		providers, err := r.listProviders(ctx, tx, true)
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
		// Demote first so the partial unique index never sees two active rows.
		if plan.Deactivate != nil {
			if err := setActiveStatus(ctx, tx, plan.Deactivate.Name, false, now); err != nil {
				return err
			}
		}
		if plan.Activate != nil {
			if err := setActiveStatus(ctx, tx, plan.Activate.Name, true, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, planErr
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PgxProviderRepository) listProviders(ctx context.Context, q querier, forUpdate bool) ([]domain.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers ORDER BY priority, name`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Provider, error) {
		return scanProvider(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan providers: %w", err)
	}
	return mapping.ToDomainProviderSlice(ms), nil
}

func setActiveStatus(ctx context.Context, tx pgx.Tx, name string, active bool, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE providers
		SET active_status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE name = $4`,
		active, now, domain.SystemActor, name,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update provider "+name, err)
	}
	return nil
}

func scanProvider(row pgx.Row) (models.Provider, error) {
	var p models.Provider
	err := row.Scan(
		&p.Name, &p.Priority, &p.ActiveFlag, &p.ActiveStatus,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	return p, err
}
