package models

import (
	"github.com/shopspring/decimal"
)

// Receipt is the DB row for the receipts table. Bank account references use
// ON DELETE RESTRICT so an account involved in a receipt cannot be removed.
type Receipt struct {
	ReceiptID         string           `db:"receipt_id"`
	UserID            string           `db:"user_id"`
	SenderAccountID   string           `db:"sender_account_id"`
	ReceiverAccountID string           `db:"receiver_account_id"`
	Amount            decimal.Decimal  `db:"amount"`
	OverrideAmount    *decimal.Decimal `db:"override_amount"`
	CurrencyCode      string           `db:"currency_code"`
	Status            string           `db:"status"`
	IsLock            bool             `db:"is_lock"`
	ApprovedBy        *string          `db:"approved_by"`
	AuditFields
}
