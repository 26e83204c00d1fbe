package services

import (
	"context"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/dto"
)

// BankAccountReaderSvc defines read operations for a user's bank accounts
type BankAccountReaderSvc interface {
	// GetBankAccountByID retrieves a single bank account owned by the user.
	GetBankAccountByID(ctx context.Context, userID string, bankAccountID string) (*domain.BankAccount, error)

	// ListBankAccounts retrieves the user's bank accounts in sequence order.
	ListBankAccounts(ctx context.Context, userID string) ([]domain.BankAccount, error)
}

// BankAccountWriterSvc defines write operations that preserve the dense
// 1..N sequence of each user's accounts.
type BankAccountWriterSvc interface {
	// CreateBankAccount registers a new account appended at sequence N+1.
	CreateBankAccount(ctx context.Context, userID string, req dto.CreateBankAccountRequest) (*domain.BankAccount, error)

	// UpdateBankAccount updates account details. Sequence is not updatable here.
	UpdateBankAccount(ctx context.Context, userID string, bankAccountID string, req dto.UpdateBankAccountRequest) (*domain.BankAccount, error)

	// DeleteBankAccount removes an account and compacts the sequences above it.
	DeleteBankAccount(ctx context.Context, userID string, bankAccountID string) error

	// ReorderBankAccount moves an account to newPosition, shifting the accounts
	// between the old and new positions by one.
	ReorderBankAccount(ctx context.Context, userID string, bankAccountID string, newPosition int) ([]domain.BankAccount, error)
}

// BankAccountSvcFacade combines all bank-account-related service interfaces
type BankAccountSvcFacade interface {
	BankAccountReaderSvc
	BankAccountWriterSvc
}
