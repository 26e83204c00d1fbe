package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

// DepositRequest defines the structure for crediting funds into a wallet.
type DepositRequest struct {
	CurrencyCode string               `json:"currencyCode" binding:"required,len=3,uppercase"`
	WalletType   domain.WalletType    `json:"walletType" binding:"required,oneof=PERSONAL COMPANY"`
	Amount       decimal.Decimal      `json:"amount" binding:"required,dgt0"`
	Metadata     *DepositMetadataBody `json:"metadata"`
}

// DepositMetadataBody carries the optional provenance details of a deposit.
type DepositMetadataBody struct {
	Source    string `json:"source"`
	Reference string `json:"reference"`
}

// LockFundsRequest defines the structure for moving funds into the locked balance.
type LockFundsRequest struct {
	CurrencyCode string            `json:"currencyCode" binding:"required,len=3,uppercase"`
	WalletType   domain.WalletType `json:"walletType" binding:"required,oneof=PERSONAL COMPANY"`
	Amount       decimal.Decimal   `json:"amount" binding:"required,dgt0"`
	Reason       string            `json:"reason"`
	ReceiptID    *string           `json:"receiptID"`
}

// UnlockFundsRequest defines the structure for releasing previously locked funds.
type UnlockFundsRequest struct {
	CurrencyCode string            `json:"currencyCode" binding:"required,len=3,uppercase"`
	WalletType   domain.WalletType `json:"walletType" binding:"required,oneof=PERSONAL COMPANY"`
	Amount       decimal.Decimal   `json:"amount" binding:"required,dgt0"`
	Reason       string            `json:"reason"`
	ReceiptID    *string           `json:"receiptID"`
}

// TransferRequest defines the structure for moving funds between two users.
type TransferRequest struct {
	ToUserID     string            `json:"toUserID" binding:"required"`
	CurrencyCode string            `json:"currencyCode" binding:"required,len=3,uppercase"`
	FromType     domain.WalletType `json:"fromType" binding:"required,oneof=PERSONAL COMPANY"`
	ToType       domain.WalletType `json:"toType" binding:"required,oneof=PERSONAL COMPANY"`
	Amount       decimal.Decimal   `json:"amount" binding:"required,dgt0"`
	Note         string            `json:"note"`
}

// ConvertRequest defines the structure for an in-wallet currency conversion.
type ConvertRequest struct {
	FromCurrencyCode string            `json:"fromCurrencyCode" binding:"required,len=3,uppercase"`
	ToCurrencyCode   string            `json:"toCurrencyCode" binding:"required,len=3,uppercase"`
	WalletType       domain.WalletType `json:"walletType" binding:"required,oneof=PERSONAL COMPANY"`
	Amount           decimal.Decimal   `json:"amount" binding:"required,dgt0"`
}

// WalletResponse defines the structure for API responses containing wallet balances.
type WalletResponse struct {
	WalletID         string            `json:"walletID"`
	UserID           string            `json:"userID"`
	CurrencyCode     string            `json:"currencyCode"`
	WalletType       domain.WalletType `json:"walletType"`
	AvailableBalance decimal.Decimal   `json:"availableBalance"`
	LockedBalance    decimal.Decimal   `json:"lockedBalance"`
	TotalBalance     decimal.Decimal   `json:"totalBalance"`
	CreatedAt        time.Time         `json:"createdAt"`
	LastUpdatedAt    time.Time         `json:"lastUpdatedAt"`
}

// ToWalletResponse converts a domain.Wallet to WalletResponse DTO
func ToWalletResponse(wallet *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:         wallet.WalletID,
		UserID:           wallet.UserID,
		CurrencyCode:     wallet.CurrencyCode,
		WalletType:       wallet.WalletType,
		AvailableBalance: wallet.AvailableBalance,
		LockedBalance:    wallet.LockedBalance,
		TotalBalance:     wallet.TotalBalance(),
		CreatedAt:        wallet.CreatedAt,
		LastUpdatedAt:    wallet.LastUpdatedAt,
	}
}

// ToListWalletResponse converts a slice of domain.Wallet to a slice of WalletResponse DTOs.
func ToListWalletResponse(wallets []domain.Wallet) []WalletResponse {
	responses := make([]WalletResponse, len(wallets))
	for i := range wallets {
		responses[i] = ToWalletResponse(&wallets[i])
	}
	return responses
}

// WalletTransactionResponse defines the structure for a single ledger entry in API responses.
type WalletTransactionResponse struct {
	TransactionID string                     `json:"transactionID"`
	WalletID      string                     `json:"walletID"`
	Kind          domain.TransactionKind     `json:"kind"`
	Amount        decimal.Decimal            `json:"amount"`
	BalanceBefore decimal.Decimal            `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal            `json:"balanceAfter"`
	ReceiptID     *string                    `json:"receiptID,omitempty"`
	Metadata      domain.TransactionMetadata `json:"metadata"`
	CreatedAt     time.Time                  `json:"createdAt"`
	CreatedBy     string                     `json:"createdBy"`
}

// ToWalletTransactionResponse converts a domain.WalletTransaction to its response DTO.
func ToWalletTransactionResponse(txn *domain.WalletTransaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		TransactionID: txn.TransactionID,
		WalletID:      txn.WalletID,
		Kind:          txn.Kind,
		Amount:        txn.Amount,
		BalanceBefore: txn.BalanceBefore,
		BalanceAfter:  txn.BalanceAfter,
		ReceiptID:     txn.ReceiptID,
		Metadata:      txn.Metadata,
		CreatedAt:     txn.CreatedAt,
		CreatedBy:     txn.CreatedBy,
	}
}

// ListTransactionsParams defines query parameters for listing wallet transactions.
type ListTransactionsParams struct {
	Limit     int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of ledger entries with the next page token.
type ListTransactionsResponse struct {
	Transactions []WalletTransactionResponse `json:"transactions"`
	NextToken    *string                     `json:"nextToken,omitempty"`
}

// ToListTransactionsResponse converts a page of domain transactions to the response DTO.
func ToListTransactionsResponse(txns []domain.WalletTransaction, nextToken *string) ListTransactionsResponse {
	responses := make([]WalletTransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToWalletTransactionResponse(&txns[i])
	}
	return ListTransactionsResponse{
		Transactions: responses,
		NextToken:    nextToken,
	}
}

// TransferResponse returns both legs of a completed transfer.
type TransferResponse struct {
	FromTransaction WalletTransactionResponse `json:"fromTransaction"`
	ToTransaction   WalletTransactionResponse `json:"toTransaction"`
}

// ConvertResponse returns both legs of a completed conversion along with the rate applied.
type ConvertResponse struct {
	FromTransaction WalletTransactionResponse `json:"fromTransaction"`
	ToTransaction   WalletTransactionResponse `json:"toTransaction"`
	Rate            decimal.Decimal           `json:"rate"`
}
