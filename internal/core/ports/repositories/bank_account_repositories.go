package repositories

import (
	"context"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

// BankAccountReader defines read operations for bank account data
type BankAccountReader interface {
	// FindBankAccountByID retrieves a specific bank account.
	FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)

	// ListBankAccountsByUser retrieves a user's accounts ordered by sequence.
	ListBankAccountsByUser(ctx context.Context, userID string) ([]domain.BankAccount, error)
}

// BankAccountWriter defines write operations for bank account data.
// Sequence values are mutated only through these methods; the generic update
// never carries a sequence.
type BankAccountWriter interface {
	// SaveBankAccount persists a new account, assigning it max(sequence)+1
	// for its user inside one transaction.
	SaveBankAccount(ctx context.Context, account domain.BankAccount) (*domain.BankAccount, error)

	// UpdateBankAccount updates the editable fields (never sequence).
	UpdateBankAccount(ctx context.Context, account domain.BankAccount) error

	// DeleteBankAccount removes the account and closes the sequence gap by
	// decrementing every sibling with a higher sequence, in one transaction.
	// Accounts referenced by receipts fail with ErrConflict.
	DeleteBankAccount(ctx context.Context, bankAccountID string, userID string) error

	// ShiftSequences applies a reorder plan: adds delta to every account of
	// the user whose sequence lies in [lo, hi], then moves the named account
	// to newPosition, all in one transaction.
	ShiftSequences(ctx context.Context, userID, bankAccountID string, lo, hi, delta, newPosition int, updatedBy string) error
}

// BankAccountRepositoryFacade combines all bank-account repository interfaces
type BankAccountRepositoryFacade interface {
	BankAccountReader
	BankAccountWriter
}

// BankAccountRepositoryWithTx extends the facade with transaction capabilities
type BankAccountRepositoryWithTx interface {
	BankAccountRepositoryFacade
	TransactionManager
}
