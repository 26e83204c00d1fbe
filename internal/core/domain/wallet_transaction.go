package domain

import (
	"github.com/shopspring/decimal"
)

// TransactionKind identifies what a wallet transaction did to its wallet.
// The kind determines which balance field the amount applied to and with
// which sign; see SignedAmount.
type TransactionKind string

const (
	KindDeposit      TransactionKind = "DEPOSIT"
	KindWithdraw     TransactionKind = "WITHDRAW"
	KindLock         TransactionKind = "LOCK"
	KindUnlock       TransactionKind = "UNLOCK"
	KindTransferIn   TransactionKind = "TRANSFER_IN"
	KindTransferOut  TransactionKind = "TRANSFER_OUT"
	KindFXConvertIn  TransactionKind = "FX_CONVERT_IN"
	KindFXConvertOut TransactionKind = "FX_CONVERT_OUT"
)

// creditKinds increase the snapshotted balance; every other kind decreases it.
var creditKinds = map[TransactionKind]bool{
	KindDeposit:     true,
	KindUnlock:      true,
	KindTransferIn:  true,
	KindFXConvertIn: true,
}

// SignedAmount returns the delta the kind applies to its snapshotted balance
// field, so that balanceAfter - balanceBefore == SignedAmount(kind, amount)
// for every transaction row. Amounts are stored positive; the kind carries
// the sign.
//
// Note the snapshotted field: LOCK, WITHDRAW, TRANSFER_OUT and FX_CONVERT_OUT
// snapshot the available balance they debit; UNLOCK snapshots the available
// balance it credits; the credit kinds snapshot the available balance they
// credit.
func SignedAmount(kind TransactionKind, amount decimal.Decimal) decimal.Decimal {
	if creditKinds[kind] {
		return amount
	}
	return amount.Neg()
}

// TransferMetadata links the two rows produced by a transfer.
type TransferMetadata struct {
	GroupID                  string `json:"groupID"` // Shared by both legs
	CounterpartUserID        string `json:"counterpartUserID"`
	CounterpartWalletID      string `json:"counterpartWalletID"`
	CounterpartTransactionID string `json:"counterpartTransactionID,omitempty"`
}

// ConversionMetadata records the rate applied by a currency conversion.
type ConversionMetadata struct {
	GroupID          string          `json:"groupID"` // Shared by both legs
	Rate             decimal.Decimal `json:"rate"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
}

// LockMetadata records why funds were locked or unlocked.
type LockMetadata struct {
	ReceiptID string `json:"receiptID,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// DepositMetadata records the origin of an externally-driven credit.
type DepositMetadata struct {
	Source        string `json:"source,omitempty"` // e.g. "payment_gateway", "receipt"
	ProviderEvent string `json:"providerEvent,omitempty"`
	ReceiptID     string `json:"receiptID,omitempty"`
}

// TransactionMetadata is a typed sum of the known metadata variants: at most
// one field is non-nil. It marshals into the JSONB metadata column.
type TransactionMetadata struct {
	Transfer   *TransferMetadata   `json:"transfer,omitempty"`
	Conversion *ConversionMetadata `json:"conversion,omitempty"`
	Lock       *LockMetadata       `json:"lock,omitempty"`
	Deposit    *DepositMetadata    `json:"deposit,omitempty"`
}

// IsZero reports whether no variant is set.
func (m TransactionMetadata) IsZero() bool {
	return m.Transfer == nil && m.Conversion == nil && m.Lock == nil && m.Deposit == nil
}

// WalletTransaction is the append-only audit row paired with every wallet
// balance mutation. Rows are immutable once written and are created inside
// the same database transaction as the mutation they document.
type WalletTransaction struct {
	TransactionID string              `json:"transactionID"` // Primary Key (UUID)
	WalletID      string              `json:"walletID"`      // FK -> wallets.wallet_id
	UserID        string              `json:"userID"`
	Kind          TransactionKind     `json:"kind"`
	Amount        decimal.Decimal     `json:"amount"` // Always positive; sign implied by Kind
	CurrencyCode  string              `json:"currencyCode"`
	BalanceBefore decimal.Decimal     `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal     `json:"balanceAfter"`
	ReceiptID     *string             `json:"receiptID,omitempty"` // Originating receipt, if any
	Metadata      TransactionMetadata `json:"metadata"`
	AuditFields
}
