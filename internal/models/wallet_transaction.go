package models

import (
	"github.com/shopspring/decimal"
)

// WalletTransaction is the DB row for the append-only wallet_transactions
// table. Metadata is the JSONB-encoded typed metadata sum; the row is never
// updated after insert.
type WalletTransaction struct {
	TransactionID string          `db:"transaction_id"`
	WalletID      string          `db:"wallet_id"`
	UserID        string          `db:"user_id"`
	Kind          string          `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	CurrencyCode  string          `db:"currency_code"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	ReceiptID     *string         `db:"receipt_id"`
	Metadata      []byte          `db:"metadata"`
	AuditFields
}
