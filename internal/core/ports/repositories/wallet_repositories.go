package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

// WalletReader defines read operations for wallet data
type WalletReader interface {
	// FindWalletByID retrieves a specific wallet by its unique identifier.
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// FindWallet retrieves the wallet for a (user, currency, type) triple.
	FindWallet(ctx context.Context, userID, currencyCode string, walletType domain.WalletType) (*domain.Wallet, error)

	// ListWalletsByUser retrieves all wallets owned by a user.
	ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error)

	// ListTransactionsByWallet retrieves a page of audit rows for a wallet,
	// newest first, with token pagination.
	ListTransactionsByWallet(ctx context.Context, walletID string, limit int, nextToken *string) ([]domain.WalletTransaction, *string, error)
}

// WalletTransactionSupport defines the operations the accounting engine uses
// inside its transaction. No other component may write wallets or
// wallet_transactions.
type WalletTransactionSupport interface {
	// EnsureWallet inserts the wallet row for the triple if absent (no lock
	// taken). It returns the wallet id whether created or pre-existing.
	EnsureWallet(ctx context.Context, tx pgx.Tx, userID, currencyCode string, walletType domain.WalletType, creatorUserID string) (string, error)

	// FindWalletsForUpdate selects the given wallets with FOR UPDATE,
	// ordered by wallet_id ascending so concurrent multi-wallet operations
	// acquire row locks in a consistent global order.
	FindWalletsForUpdate(ctx context.Context, tx pgx.Tx, walletIDs []string) (map[string]domain.Wallet, error)

	// UpdateWalletBalancesInTx overwrites both balance fields of a locked wallet.
	UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, wallet domain.Wallet, userID string) error

	// InsertTransactionInTx appends one immutable audit row.
	InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction) error
}

// WalletRepositoryFacade combines all wallet-related repository interfaces
type WalletRepositoryFacade interface {
	WalletReader
	WalletTransactionSupport
}

// WalletRepositoryWithTx extends WalletRepositoryFacade with transaction capabilities
type WalletRepositoryWithTx interface {
	WalletRepositoryFacade
	TransactionManager
}
