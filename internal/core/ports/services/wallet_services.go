package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/dto"
)

// WalletReaderSvc defines read operations for wallet balances and ledgers
type WalletReaderSvc interface {
	// GetWallet retrieves a single wallet of a user by currency and type.
	GetWallet(ctx context.Context, userID string, currencyCode string, walletType domain.WalletType) (*domain.Wallet, error)

	// ListWallets retrieves every wallet held by a user.
	ListWallets(ctx context.Context, userID string) ([]domain.Wallet, error)

	// ListTransactions retrieves a token-paginated page of ledger entries of one wallet,
	// newest first. The caller must own the wallet or be an admin.
	ListTransactions(ctx context.Context, requesterID string, walletID string, limit int, nextToken string) ([]domain.WalletTransaction, *string, error)
}

// WalletWriterSvc defines the ledger mutations. Every mutation runs under row
// locks and records a WalletTransaction alongside the balance change.
type WalletWriterSvc interface {
	// Deposit credits the available balance of a wallet, creating it if absent.
	Deposit(ctx context.Context, userID string, req dto.DepositRequest, actorID string) (*domain.WalletTransaction, error)

	// LockFunds moves amount from the available to the locked balance.
	LockFunds(ctx context.Context, userID string, req dto.LockFundsRequest, actorID string) (*domain.WalletTransaction, error)

	// UnlockFunds moves amount from the locked back to the available balance.
	UnlockFunds(ctx context.Context, userID string, req dto.UnlockFundsRequest, actorID string) (*domain.WalletTransaction, error)

	// Transfer debits the sender's wallet and credits the recipient's wallet of the
	// same currency in one transaction, returning both ledger legs.
	Transfer(ctx context.Context, fromUserID string, req dto.TransferRequest, actorID string) (*domain.WalletTransaction, *domain.WalletTransaction, error)

	// Convert exchanges funds between two currency wallets of the same user at the
	// effective rate, returning both ledger legs and the rate applied.
	Convert(ctx context.Context, userID string, req dto.ConvertRequest, actorID string) (*dto.ConvertResponse, error)
}

// WalletSettlementSvc is the narrow surface the receipt workflow uses. Both
// methods join a transaction already carried in ctx, so a failed wallet
// mutation rolls back the receipt transition that triggered it.
type WalletSettlementSvc interface {
	// DepositForReceipt credits the available balance and links the audit
	// row to the receipt.
	DepositForReceipt(ctx context.Context, userID string, currencyCode string, amount decimal.Decimal, receiptID string, actorID string) (*domain.WalletTransaction, error)

	// LockFundsForReceipt credits the locked balance (via a deposit+lock
	// pair) and links both audit rows to the receipt.
	LockFundsForReceipt(ctx context.Context, userID string, currencyCode string, amount decimal.Decimal, receiptID string, actorID string) (*domain.WalletTransaction, error)
}

// WalletSvcFacade combines all wallet-related service interfaces
type WalletSvcFacade interface {
	WalletReaderSvc
	WalletWriterSvc
	WalletSettlementSvc
}
