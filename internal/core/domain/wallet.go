package domain

import (
	"github.com/shopspring/decimal"
)

// WalletType distinguishes custody buckets a user may hold per currency.
type WalletType string

const (
	WalletTypePersonal WalletType = "PERSONAL"
	WalletTypeCompany  WalletType = "COMPANY"
)

// Wallet tracks a user's funds in a single currency. Exactly one wallet
// exists per (userID, currencyCode, walletType); it is created lazily on the
// first balance-affecting operation and never deleted.
//
// AvailableBalance is spendable; LockedBalance is provisionally reserved
// (e.g. by an approved lock-receipt). Both are always non-negative, and their
// sum is the total custody for that currency/type. Balances are mutated only
// by the wallet service inside a single database transaction.
type Wallet struct {
	WalletID         string          `json:"walletID"` // Primary Key (UUID)
	UserID           string          `json:"userID"`   // FK -> users.user_id
	CurrencyCode     string          `json:"currencyCode"`
	WalletType       WalletType      `json:"walletType"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	LockedBalance    decimal.Decimal `json:"lockedBalance"`
	AuditFields
}

// TotalBalance returns available + locked.
func (w Wallet) TotalBalance() decimal.Decimal {
	return w.AvailableBalance.Add(w.LockedBalance)
}
