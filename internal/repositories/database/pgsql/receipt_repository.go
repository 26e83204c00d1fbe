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
	"github.com/velmora/wallet_ledger_app/internal/utils/pagination"
)

type PgxReceiptRepository struct {
	BaseRepository
}

// newPgxReceiptRepository creates a new repository for receipt data.
func newPgxReceiptRepository(pool *pgxpool.Pool) portsrepo.ReceiptRepositoryWithTx {
	return &PgxReceiptRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReceiptRepository implements portsrepo.ReceiptRepositoryWithTx
var _ portsrepo.ReceiptRepositoryWithTx = (*PgxReceiptRepository)(nil)

const receiptColumns = `receipt_id, user_id, sender_account_id, receiver_account_id, amount, override_amount, currency_code, status, is_lock, approved_by, created_at, created_by, last_updated_at, last_updated_by`

func scanReceipt(row pgx.Row) (models.Receipt, error) {
	var m models.Receipt
	err := row.Scan(
		&m.ReceiptID,
		&m.UserID,
		&m.SenderAccountID,
		&m.ReceiverAccountID,
		&m.Amount,
		&m.OverrideAmount,
		&m.CurrencyCode,
		&m.Status,
		&m.IsLock,
		&m.ApprovedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindReceiptByID retrieves a receipt by its ID.
func (r *PgxReceiptRepository) FindReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE receipt_id = $1;`

	m, err := scanReceipt(r.Pool.QueryRow(ctx, query, receiptID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find receipt %s: %w", receiptID, err)
	}
	receipt := mapping.ToDomainReceipt(m)
	return &receipt, nil
}

func (r *PgxReceiptRepository) listReceipts(ctx context.Context, where string, args []interface{}, limit int, nextToken *string) ([]domain.Receipt, *string, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE ` + where

	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += fmt.Sprintf(` AND (created_at, receipt_id) < ($%d, $%d)`, len(args)+1, len(args)+2)
		args = append(args, createdAt, id)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, receipt_id DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var rowModels []models.Receipt
	for rows.Next() {
		m, err := scanReceipt(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan receipt row: %w", err)
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
		t := pagination.EncodeToken(last.CreatedAt, last.ReceiptID)
		token = &t
	}
	return mapping.ToDomainReceiptSlice(rowModels), token, nil
}

// ListReceiptsByUser retrieves a page of a user's receipts, newest first,
// optionally narrowed to one status. Filtering happens in the query so pages
// stay full and tokens never skip rows.
func (r *PgxReceiptRepository) ListReceiptsByUser(ctx context.Context, userID string, status *domain.ReceiptStatus, limit int, nextToken *string) ([]domain.Receipt, *string, error) {
	where := `user_id = $1`
	args := []interface{}{userID}
	if status != nil {
		where += ` AND status = $2`
		args = append(args, string(*status))
	}
	return r.listReceipts(ctx, where, args, limit, nextToken)
}

// ListReceiptsByStatus retrieves a page of receipts in the given status
// across all users.
func (r *PgxReceiptRepository) ListReceiptsByStatus(ctx context.Context, status domain.ReceiptStatus, limit int, nextToken *string) ([]domain.Receipt, *string, error) {
	return r.listReceipts(ctx, `status = $1`, []interface{}{string(status)}, limit, nextToken)
}

// SaveReceipt persists a new receipt.
func (r *PgxReceiptRepository) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	m := mapping.ToModelReceipt(receipt)

	query := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ReceiptID,
		m.UserID,
		m.SenderAccountID,
		m.ReceiverAccountID,
		m.Amount,
		m.OverrideAmount,
		m.CurrencyCode,
		m.Status,
		m.IsLock,
		m.ApprovedBy,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return fmt.Errorf("%w: receipt %s already exists", apperrors.ErrDuplicate, m.ReceiptID)
			case "23503":
				return fmt.Errorf("%w: receipt references an unknown bank account", apperrors.ErrValidation)
			}
		}
		return fmt.Errorf("failed to save receipt %s: %w", m.ReceiptID, err)
	}
	return nil
}

// UpdateReceipt updates a receipt's editable fields.
func (r *PgxReceiptRepository) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	m := mapping.ToModelReceipt(receipt)

	query := `
		UPDATE receipts
		SET sender_account_id = $2, receiver_account_id = $3, amount = $4, override_amount = $5, currency_code = $6, last_updated_at = $7, last_updated_by = $8
		WHERE receipt_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.ReceiptID,
		m.SenderAccountID,
		m.ReceiverAccountID,
		m.Amount,
		m.OverrideAmount,
		m.CurrencyCode,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: receipt references an unknown bank account", apperrors.ErrValidation)
		}
		return fmt.Errorf("failed to update receipt %s: %w", m.ReceiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindReceiptForUpdate selects a receipt with FOR UPDATE so concurrent
// settlement attempts serialize on the row.
func (r *PgxReceiptRepository) FindReceiptForUpdate(ctx context.Context, tx pgx.Tx, receiptID string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE receipt_id = $1 FOR UPDATE;`

	m, err := scanReceipt(tx.QueryRow(ctx, query, receiptID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock receipt %s: %w", receiptID, err)
	}
	receipt := mapping.ToDomainReceipt(m)
	return &receipt, nil
}

// UpdateReceiptStatusInTx persists a state transition together with the
// approver and any override amount.
func (r *PgxReceiptRepository) UpdateReceiptStatusInTx(ctx context.Context, tx pgx.Tx, receipt domain.Receipt) error {
	m := mapping.ToModelReceipt(receipt)

	query := `
		UPDATE receipts
		SET status = $2, approved_by = $3, override_amount = $4, last_updated_at = $5, last_updated_by = $6
		WHERE receipt_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.ReceiptID,
		m.Status,
		m.ApprovedBy,
		m.OverrideAmount,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to transition receipt %s: %w", m.ReceiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
