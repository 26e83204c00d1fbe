package models

import (
	"github.com/shopspring/decimal"
)

// Wallet is the DB row for the wallets table.
// Balances are NUMERIC(28,8) with CHECK (>= 0) constraints; the unique
// constraint on (user_id, currency_code, wallet_type) backs the find-or-create
// path.
type Wallet struct {
	WalletID         string          `db:"wallet_id"`
	UserID           string          `db:"user_id"`
	CurrencyCode     string          `db:"currency_code"`
	WalletType       string          `db:"wallet_type"`
	AvailableBalance decimal.Decimal `db:"available_balance"`
	LockedBalance    decimal.Decimal `db:"locked_balance"`
	AuditFields
}
