package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

// CreateReceiptRequest defines the structure for declaring a payment between
// two registered bank accounts, pending admin settlement.
type CreateReceiptRequest struct {
	SenderAccountID   string          `json:"senderAccountID" binding:"required"`
	ReceiverAccountID string          `json:"receiverAccountID" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required,dgt0"`
	CurrencyCode      string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	IsLock            bool            `json:"isLock"`
}

// ApproveReceiptRequest defines the structure for an admin approval, with an
// optional amount override that settles instead of the declared amount.
type ApproveReceiptRequest struct {
	OverrideAmount *decimal.Decimal `json:"overrideAmount"`
}

// UpdateReceiptRequest defines the admin correction path for a receipt.
// Bank account references are re-validated on change.
type UpdateReceiptRequest struct {
	SenderAccountID   *string          `json:"senderAccountID"`
	ReceiverAccountID *string          `json:"receiverAccountID"`
	Amount            *decimal.Decimal `json:"amount"`
	CurrencyCode      *string          `json:"currencyCode" binding:"omitempty,len=3,uppercase"`
}

// ListReceiptsParams defines query parameters for listing receipts.
type ListReceiptsParams struct {
	Status    *domain.ReceiptStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Limit     int                   `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken string                `form:"nextToken"`
}

// ReceiptResponse defines the structure for API responses containing receipt details.
type ReceiptResponse struct {
	ReceiptID         string               `json:"receiptID"`
	UserID            string               `json:"userID"`
	SenderAccountID   string               `json:"senderAccountID"`
	ReceiverAccountID string               `json:"receiverAccountID"`
	Amount            decimal.Decimal      `json:"amount"`
	OverrideAmount    *decimal.Decimal     `json:"overrideAmount,omitempty"`
	CurrencyCode      string               `json:"currencyCode"`
	Status            domain.ReceiptStatus `json:"status"`
	IsLock            bool                 `json:"isLock"`
	ApprovedBy        *string              `json:"approvedBy,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	CreatedBy         string               `json:"createdBy"`
	LastUpdatedAt     time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy     string               `json:"lastUpdatedBy"`
}

// ToReceiptResponse converts a domain.Receipt to ReceiptResponse DTO
func ToReceiptResponse(receipt *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ReceiptID:         receipt.ReceiptID,
		UserID:            receipt.UserID,
		SenderAccountID:   receipt.SenderAccountID,
		ReceiverAccountID: receipt.ReceiverAccountID,
		Amount:            receipt.Amount,
		OverrideAmount:    receipt.OverrideAmount,
		CurrencyCode:      receipt.CurrencyCode,
		Status:            receipt.Status,
		IsLock:            receipt.IsLock,
		ApprovedBy:        receipt.ApprovedBy,
		CreatedAt:         receipt.CreatedAt,
		CreatedBy:         receipt.CreatedBy,
		LastUpdatedAt:     receipt.LastUpdatedAt,
		LastUpdatedBy:     receipt.LastUpdatedBy,
	}
}

// ListReceiptsResponse wraps a page of receipts with the next page token.
type ListReceiptsResponse struct {
	Receipts  []ReceiptResponse `json:"receipts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListReceiptsResponse converts a page of domain receipts to the response DTO.
func ToListReceiptsResponse(receipts []domain.Receipt, nextToken *string) ListReceiptsResponse {
	responses := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		responses[i] = ToReceiptResponse(&receipts[i])
	}
	return ListReceiptsResponse{
		Receipts:  responses,
		NextToken: nextToken,
	}
}
