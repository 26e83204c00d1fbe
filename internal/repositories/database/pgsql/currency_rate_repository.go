package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	portsrepo "github.com/velmora/wallet_ledger_app/internal/core/ports/repositories"
	"github.com/velmora/wallet_ledger_app/internal/models"
	"github.com/velmora/wallet_ledger_app/internal/utils/mapping"
)

type PgxCurrencyRateRepository struct {
	BaseRepository
}

// newPgxCurrencyRateRepository creates a new repository for rate adjustment data.
func newPgxCurrencyRateRepository(pool *pgxpool.Pool) portsrepo.CurrencyRateRepositoryFacade {
	return &PgxCurrencyRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCurrencyRateRepository implements portsrepo.CurrencyRateRepositoryFacade
var _ portsrepo.CurrencyRateRepositoryFacade = (*PgxCurrencyRateRepository)(nil)

const rateColumns = `adjustment_id, base_currency_code, target_currency_code, fetched_rate, adjustment, final_rate, set_by, created_at, created_by, last_updated_at, last_updated_by`

func scanRateAdjustment(row pgx.Row) (models.CurrencyRateAdjustment, error) {
	var m models.CurrencyRateAdjustment
	err := row.Scan(
		&m.AdjustmentID,
		&m.BaseCurrencyCode,
		&m.TargetCurrencyCode,
		&m.FetchedRate,
		&m.Adjustment,
		&m.FinalRate,
		&m.SetBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindLatestAdjustment retrieves the most recently updated adjustment row
// for the (base, target) pair.
func (r *PgxCurrencyRateRepository) FindLatestAdjustment(ctx context.Context, baseCurrencyCode, targetCurrencyCode string) (*domain.CurrencyRateAdjustment, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM currency_rate_adjustments
		WHERE base_currency_code = $1 AND target_currency_code = $2
		ORDER BY last_updated_at DESC
		LIMIT 1;
	`
	m, err := scanRateAdjustment(r.Pool.QueryRow(ctx, query, baseCurrencyCode, targetCurrencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find adjustment %s/%s: %w", baseCurrencyCode, targetCurrencyCode, err)
	}
	adj := mapping.ToDomainCurrencyRateAdjustment(m)
	return &adj, nil
}

// ListAdjustments retrieves the current adjustment row of every pair.
func (r *PgxCurrencyRateRepository) ListAdjustments(ctx context.Context) ([]domain.CurrencyRateAdjustment, error) {
	query := `
		SELECT DISTINCT ON (base_currency_code, target_currency_code) ` + rateColumns + `
		FROM currency_rate_adjustments
		ORDER BY base_currency_code, target_currency_code, last_updated_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	defer rows.Close()

	var adjs []domain.CurrencyRateAdjustment
	for rows.Next() {
		m, err := scanRateAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adjustment row: %w", err)
		}
		adjs = append(adjs, mapping.ToDomainCurrencyRateAdjustment(m))
	}
	return adjs, rows.Err()
}

// UpsertAdjustment inserts or replaces the adjustment row keyed by (base, target).
func (r *PgxCurrencyRateRepository) UpsertAdjustment(ctx context.Context, adjustment domain.CurrencyRateAdjustment) error {
	m := mapping.ToModelCurrencyRateAdjustment(adjustment)

	query := `
		INSERT INTO currency_rate_adjustments (` + rateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (base_currency_code, target_currency_code) DO UPDATE
		SET fetched_rate = EXCLUDED.fetched_rate,
		    adjustment = EXCLUDED.adjustment,
		    final_rate = EXCLUDED.final_rate,
		    set_by = EXCLUDED.set_by,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AdjustmentID,
		m.BaseCurrencyCode,
		m.TargetCurrencyCode,
		m.FetchedRate,
		m.Adjustment,
		m.FinalRate,
		m.SetBy,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert adjustment %s/%s: %w", m.BaseCurrencyCode, m.TargetCurrencyCode, err)
	}
	return nil
}
