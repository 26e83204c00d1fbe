package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

// ReceiptReader defines read operations for receipt data
type ReceiptReader interface {
	// FindReceiptByID retrieves a specific receipt.
	FindReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error)

	// ListReceiptsByUser retrieves a page of a user's receipts, newest
	// first, with token pagination. A non-nil status narrows the page to
	// receipts in that status.
	ListReceiptsByUser(ctx context.Context, userID string, status *domain.ReceiptStatus, limit int, nextToken *string) ([]domain.Receipt, *string, error)

	// ListReceiptsByStatus retrieves a page of receipts in the given status
	// across all users (admin review queue).
	ListReceiptsByStatus(ctx context.Context, status domain.ReceiptStatus, limit int, nextToken *string) ([]domain.Receipt, *string, error)
}

// ReceiptWriter defines write operations for receipt data
type ReceiptWriter interface {
	// SaveReceipt persists a new receipt in PENDING status.
	SaveReceipt(ctx context.Context, receipt domain.Receipt) error

	// UpdateReceipt updates a receipt's editable fields.
	UpdateReceipt(ctx context.Context, receipt domain.Receipt) error
}

// ReceiptTransactionSupport defines the operations the settlement workflow
// uses inside the approval/rejection transaction.
type ReceiptTransactionSupport interface {
	// FindReceiptForUpdate selects a receipt with FOR UPDATE so concurrent
	// transitions serialize on the row.
	FindReceiptForUpdate(ctx context.Context, tx pgx.Tx, receiptID string) (*domain.Receipt, error)

	// UpdateReceiptStatusInTx persists a state transition together with the
	// approver and any override amount.
	UpdateReceiptStatusInTx(ctx context.Context, tx pgx.Tx, receipt domain.Receipt) error
}

// ReceiptRepositoryFacade combines all receipt-related repository interfaces
type ReceiptRepositoryFacade interface {
	ReceiptReader
	ReceiptWriter
	ReceiptTransactionSupport
}

// ReceiptRepositoryWithTx extends ReceiptRepositoryFacade with transaction capabilities
type ReceiptRepositoryWithTx interface {
	ReceiptRepositoryFacade
	TransactionManager
}
