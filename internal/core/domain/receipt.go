package domain

import (
	"github.com/shopspring/decimal"
)

// ReceiptStatus is the state of a declared transfer intent.
// Transitions are one-directional: PENDING -> APPROVED or PENDING -> REJECTED.
type ReceiptStatus string

const (
	ReceiptPending  ReceiptStatus = "PENDING"
	ReceiptApproved ReceiptStatus = "APPROVED"
	ReceiptRejected ReceiptStatus = "REJECTED"
)

// Receipt is a peer-declared payment between two bank accounts, subject to
// admin approval. Approval is the sole trigger for the paired wallet
// mutation; the amount actually credited is OverrideAmount when set, else
// Amount. Once approved or rejected a receipt is immutable outside the
// administrative correction path.
type Receipt struct {
	ReceiptID         string           `json:"receiptID"` // Primary Key (UUID)
	UserID            string           `json:"userID"`    // Declaring user
	SenderAccountID   string           `json:"senderAccountID"`
	ReceiverAccountID string           `json:"receiverAccountID"`
	Amount            decimal.Decimal  `json:"amount"` // Declared amount
	OverrideAmount    *decimal.Decimal `json:"overrideAmount,omitempty"`
	CurrencyCode      string           `json:"currencyCode"`
	Status            ReceiptStatus    `json:"status"`
	IsLock            bool             `json:"isLock"` // Approval credits locked balance when true
	ApprovedBy        *string          `json:"approvedBy,omitempty"`
	AuditFields
}

// EffectiveAmount is the amount the wallet mutation uses on approval.
func (r Receipt) EffectiveAmount() decimal.Decimal {
	if r.OverrideAmount != nil {
		return *r.OverrideAmount
	}
	return r.Amount
}
