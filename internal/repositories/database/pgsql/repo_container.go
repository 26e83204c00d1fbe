package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/velmora/wallet_ledger_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	walletRepo := newPgxWalletRepository(dbPool)
	bankAccountRepo := newPgxBankAccountRepository(dbPool)
	receiptRepo := newPgxReceiptRepository(dbPool)
	currencyRateRepo := newPgxCurrencyRateRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		WalletRepo:       walletRepo,
		BankAccountRepo:  bankAccountRepo,
		ReceiptRepo:      receiptRepo,
		CurrencyRateRepo: currencyRateRepo,
		UserRepo:         userRepo,
	}
}
