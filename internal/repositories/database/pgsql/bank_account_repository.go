package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	portsrepo "github.com/velmora/wallet_ledger_app/internal/core/ports/repositories"
	"github.com/velmora/wallet_ledger_app/internal/models"
	"github.com/velmora/wallet_ledger_app/internal/utils/mapping"
)

type PgxBankAccountRepository struct {
	BaseRepository
}

// newPgxBankAccountRepository creates a new repository for bank account data.
func newPgxBankAccountRepository(pool *pgxpool.Pool) portsrepo.BankAccountRepositoryWithTx {
	return &PgxBankAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxBankAccountRepository implements portsrepo.BankAccountRepositoryWithTx
var _ portsrepo.BankAccountRepositoryWithTx = (*PgxBankAccountRepository)(nil)

const bankAccountColumns = `bank_account_id, user_id, name, holder_name, currency_code, iban, swift_bic, direction, sequence, note, created_at, created_by, last_updated_at, last_updated_by`

func scanBankAccount(row pgx.Row) (models.BankAccount, error) {
	var m models.BankAccount
	err := row.Scan(
		&m.BankAccountID,
		&m.UserID,
		&m.Name,
		&m.HolderName,
		&m.CurrencyCode,
		&m.IBAN,
		&m.SwiftBIC,
		&m.Direction,
		&m.Sequence,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindBankAccountByID retrieves a bank account by its ID.
func (r *PgxBankAccountRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE bank_account_id = $1;`

	m, err := scanBankAccount(r.Pool.QueryRow(ctx, query, bankAccountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bank account %s: %w", bankAccountID, err)
	}
	account := mapping.ToDomainBankAccount(m)
	return &account, nil
}

// ListBankAccountsByUser retrieves a user's accounts ordered by sequence.
func (r *PgxBankAccountRepository) ListBankAccountsByUser(ctx context.Context, userID string) ([]domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE user_id = $1 ORDER BY sequence ASC;`

	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts for user %s: %w", userID, err)
	}
	defer rows.Close()

	var rowModels []models.BankAccount
	for rows.Next() {
		m, err := scanBankAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank account row: %w", err)
		}
		rowModels = append(rowModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mapping.ToDomainBankAccountSlice(rowModels), nil
}

// SaveBankAccount persists a new account, assigning max(sequence)+1 for its
// user inside one transaction.
func (r *PgxBankAccountRepository) SaveBankAccount(ctx context.Context, account domain.BankAccount) (*domain.BankAccount, error) {
	m := mapping.ToModelBankAccount(account)

	err := r.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// A concurrent append computing the same sequence hits the unique
		// constraint and surfaces as ErrDuplicate for the client to retry.
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(sequence), 0) + 1 FROM bank_accounts WHERE user_id = $1;`,
			m.UserID,
		).Scan(&m.Sequence); err != nil {
			return fmt.Errorf("failed to compute next sequence for user %s: %w", m.UserID, err)
		}

		query := `
			INSERT INTO bank_accounts (` + bankAccountColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
		`
		_, err := tx.Exec(ctx, query,
			m.BankAccountID,
			m.UserID,
			m.Name,
			m.HolderName,
			m.CurrencyCode,
			m.IBAN,
			m.SwiftBIC,
			m.Direction,
			m.Sequence,
			m.Note,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: bank account %s already exists", apperrors.ErrDuplicate, m.BankAccountID)
			}
			return fmt.Errorf("failed to save bank account %s: %w", m.BankAccountID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved := mapping.ToDomainBankAccount(m)
	return &saved, nil
}

// UpdateBankAccount updates the editable fields. Sequence is never touched here.
func (r *PgxBankAccountRepository) UpdateBankAccount(ctx context.Context, account domain.BankAccount) error {
	m := mapping.ToModelBankAccount(account)

	query := `
		UPDATE bank_accounts
		SET name = $2, holder_name = $3, currency_code = $4, iban = $5, swift_bic = $6, direction = $7, note = $8, last_updated_at = $9, last_updated_by = $10
		WHERE bank_account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.BankAccountID,
		m.Name,
		m.HolderName,
		m.CurrencyCode,
		m.IBAN,
		m.SwiftBIC,
		m.Direction,
		m.Note,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update bank account %s: %w", m.BankAccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteBankAccount removes the account and closes the sequence gap by
// decrementing every sibling above it, in one transaction. The receipts FK
// is ON DELETE RESTRICT, so referenced accounts fail with ErrConflict.
func (r *PgxBankAccountRepository) DeleteBankAccount(ctx context.Context, bankAccountID string, userID string) error {
	return r.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var deletedSeq int
		err := tx.QueryRow(ctx,
			`SELECT sequence FROM bank_accounts WHERE bank_account_id = $1 AND user_id = $2 FOR UPDATE;`,
			bankAccountID, userID,
		).Scan(&deletedSeq)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to lock bank account %s: %w", bankAccountID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM bank_accounts WHERE bank_account_id = $1;`, bankAccountID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
				return fmt.Errorf("%w: bank account %s is referenced by receipts", apperrors.ErrConflict, bankAccountID)
			}
			return fmt.Errorf("failed to delete bank account %s: %w", bankAccountID, err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE bank_accounts SET sequence = sequence - 1 WHERE user_id = $1 AND sequence > $2;`,
			userID, deletedSeq,
		); err != nil {
			return fmt.Errorf("failed to compact sequences for user %s: %w", userID, err)
		}
		return nil
	})
}

// ShiftSequences applies a reorder plan: adds delta to every account of the
// user whose sequence lies in [lo, hi], then moves the named account to
// newPosition. The (user_id, sequence) unique constraint is deferred, so the
// intermediate state inside the transaction is allowed.
func (r *PgxBankAccountRepository) ShiftSequences(ctx context.Context, userID, bankAccountID string, lo, hi, delta, newPosition int, updatedBy string) error {
	return r.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE bank_accounts SET sequence = sequence + $3, last_updated_at = now(), last_updated_by = $4
			 WHERE user_id = $1 AND bank_account_id <> $2 AND sequence BETWEEN $5 AND $6;`,
			userID, bankAccountID, delta, updatedBy, lo, hi,
		); err != nil {
			return fmt.Errorf("failed to shift sequences for user %s: %w", userID, err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE bank_accounts SET sequence = $3, last_updated_at = now(), last_updated_by = $4
			 WHERE user_id = $1 AND bank_account_id = $2;`,
			userID, bankAccountID, newPosition, updatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to move bank account %s: %w", bankAccountID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
