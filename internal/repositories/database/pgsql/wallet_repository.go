package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	portsrepo "github.com/velmora/wallet_ledger_app/internal/core/ports/repositories"
	"github.com/velmora/wallet_ledger_app/internal/models"
	"github.com/velmora/wallet_ledger_app/internal/utils/mapping"
	"github.com/velmora/wallet_ledger_app/internal/utils/pagination"
)

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for wallet and ledger data.
func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryWithTx {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepositoryWithTx
var _ portsrepo.WalletRepositoryWithTx = (*PgxWalletRepository)(nil)

const walletColumns = `wallet_id, user_id, currency_code, wallet_type, available_balance, locked_balance, created_at, created_by, last_updated_at, last_updated_by`

func scanWallet(row pgx.Row) (models.Wallet, error) {
	var m models.Wallet
	err := row.Scan(
		&m.WalletID,
		&m.UserID,
		&m.CurrencyCode,
		&m.WalletType,
		&m.AvailableBalance,
		&m.LockedBalance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindWalletByID retrieves a wallet by its ID.
func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1;`

	m, err := scanWallet(r.Pool.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet %s: %w", walletID, err)
	}
	wallet := mapping.ToDomainWallet(m)
	return &wallet, nil
}

// FindWallet retrieves the wallet for a (user, currency, type) triple.
func (r *PgxWalletRepository) FindWallet(ctx context.Context, userID, currencyCode string, walletType domain.WalletType) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency_code = $2 AND wallet_type = $3;`

	m, err := scanWallet(r.Pool.QueryRow(ctx, query, userID, currencyCode, string(walletType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet for user %s: %w", userID, err)
	}
	wallet := mapping.ToDomainWallet(m)
	return &wallet, nil
}

// ListWalletsByUser retrieves all wallets owned by a user.
func (r *PgxWalletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY currency_code, wallet_type;`

	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets for user %s: %w", userID, err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		m, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		wallets = append(wallets, mapping.ToDomainWallet(m))
	}
	return wallets, rows.Err()
}

// ListTransactionsByWallet retrieves a page of ledger rows for a wallet,
// newest first, keyed by a (created_at, transaction_id) cursor token.
func (r *PgxWalletRepository) ListTransactionsByWallet(ctx context.Context, walletID string, limit int, nextToken *string) ([]domain.WalletTransaction, *string, error) {
	query := `
		SELECT transaction_id, wallet_id, user_id, kind, amount, currency_code, balance_before, balance_after, receipt_id, metadata, created_at, created_by, last_updated_at, last_updated_by
		FROM wallet_transactions
		WHERE wallet_id = $1
	`
	args := []interface{}{walletID}

	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, createdAt, id)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions for wallet %s: %w", walletID, err)
	}
	defer rows.Close()

	var rowModels []models.WalletTransaction
	for rows.Next() {
		var m models.WalletTransaction
		if err := rows.Scan(
			&m.TransactionID,
			&m.WalletID,
			&m.UserID,
			&m.Kind,
			&m.Amount,
			&m.CurrencyCode,
			&m.BalanceBefore,
			&m.BalanceAfter,
			&m.ReceiptID,
			&m.Metadata,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		rowModels = append(rowModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var token *string
	if len(rowModels) > limit {
		rowModels = rowModels[:limit]
		last := rowModels[len(rowModels)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		token = &t
	}

	txns, err := mapping.ToDomainWalletTransactionSlice(rowModels)
	if err != nil {
		return nil, nil, err
	}
	return txns, token, nil
}

// EnsureWallet inserts the wallet row for the triple if absent and returns
// its id. No row lock is taken here; callers lock via FindWalletsForUpdate.
func (r *PgxWalletRepository) EnsureWallet(ctx context.Context, tx pgx.Tx, userID, currencyCode string, walletType domain.WalletType, creatorUserID string) (string, error) {
	insertQuery := `
		INSERT INTO wallets (wallet_id, user_id, currency_code, wallet_type, available_balance, locked_balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, 0, 0, now(), $5, now(), $5)
		ON CONFLICT (user_id, currency_code, wallet_type) DO NOTHING;
	`
	newID := uuid.NewString()
	if _, err := tx.Exec(ctx, insertQuery, newID, userID, currencyCode, string(walletType), creatorUserID); err != nil {
		return "", fmt.Errorf("failed to ensure wallet for user %s: %w", userID, err)
	}

	var walletID string
	selectQuery := `SELECT wallet_id FROM wallets WHERE user_id = $1 AND currency_code = $2 AND wallet_type = $3;`
	if err := tx.QueryRow(ctx, selectQuery, userID, currencyCode, string(walletType)).Scan(&walletID); err != nil {
		return "", fmt.Errorf("failed to read ensured wallet for user %s: %w", userID, err)
	}
	return walletID, nil
}

// FindWalletsForUpdate selects the given wallets with FOR UPDATE, in
// wallet_id ascending order so concurrent multi-wallet operations acquire
// row locks in one global order.
func (r *PgxWalletRepository) FindWalletsForUpdate(ctx context.Context, tx pgx.Tx, walletIDs []string) (map[string]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = ANY($1) ORDER BY wallet_id ASC FOR UPDATE;`

	rows, err := tx.Query(ctx, query, walletIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallets: %w", err)
	}
	defer rows.Close()

	wallets := make(map[string]domain.Wallet, len(walletIDs))
	for rows.Next() {
		m, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked wallet row: %w", err)
		}
		wallets[m.WalletID] = mapping.ToDomainWallet(m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(wallets) != len(walletIDs) {
		return nil, fmt.Errorf("%w: wallet disappeared during lock", apperrors.ErrNotFound)
	}
	return wallets, nil
}

// UpdateWalletBalancesInTx overwrites both balance fields of a locked wallet.
// The CHECK constraints back up the service-level non-negative validation.
func (r *PgxWalletRepository) UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, wallet domain.Wallet, userID string) error {
	query := `
		UPDATE wallets
		SET available_balance = $2, locked_balance = $3, last_updated_at = now(), last_updated_by = $4
		WHERE wallet_id = $1;
	`
	tag, err := tx.Exec(ctx, query, wallet.WalletID, wallet.AvailableBalance, wallet.LockedBalance, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" { // check_violation
			return fmt.Errorf("%w: balance would go negative", apperrors.ErrValidation)
		}
		return fmt.Errorf("failed to update wallet %s balances: %w", wallet.WalletID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// InsertTransactionInTx appends one immutable audit row.
func (r *PgxWalletRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction) error {
	m, err := mapping.ToModelWalletTransaction(txn)
	if err != nil {
		return fmt.Errorf("failed to encode transaction metadata: %w", err)
	}

	// Invariant guard: balance_after - balance_before must equal the signed amount.
	delta := txn.BalanceAfter.Sub(txn.BalanceBefore)
	if !delta.Equal(domain.SignedAmount(txn.Kind, txn.Amount)) {
		return fmt.Errorf("%w: transaction %s balance delta %s does not match signed amount", apperrors.ErrInternal, txn.TransactionID, delta)
	}

	query := `
		INSERT INTO wallet_transactions (transaction_id, wallet_id, user_id, kind, amount, currency_code, balance_before, balance_after, receipt_id, metadata, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, query,
		m.TransactionID,
		m.WalletID,
		m.UserID,
		m.Kind,
		m.Amount,
		m.CurrencyCode,
		m.BalanceBefore,
		m.BalanceAfter,
		m.ReceiptID,
		m.Metadata,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return nil
}
