package services

import (
	"context"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/dto"
)

// ReceiptReaderSvc defines read operations for receipts
type ReceiptReaderSvc interface {
	// GetReceiptByID retrieves a receipt. Non-admin requesters only see their own.
	GetReceiptByID(ctx context.Context, requesterID string, receiptID string) (*domain.Receipt, error)

	// ListReceipts retrieves a token-paginated page of the requester's receipts.
	ListReceipts(ctx context.Context, requesterID string, params dto.ListReceiptsParams) ([]domain.Receipt, *string, error)

	// ListPendingReceipts retrieves the settlement queue. Admin only.
	ListPendingReceipts(ctx context.Context, adminID string, limit int, nextToken string) ([]domain.Receipt, *string, error)
}

// ReceiptWriterSvc defines the receipt lifecycle operations
type ReceiptWriterSvc interface {
	// CreateReceipt submits a new receipt in PENDING status after validating
	// both bank account references.
	CreateReceipt(ctx context.Context, userID string, req dto.CreateReceiptRequest) (*domain.Receipt, error)

	// ApproveReceipt settles a pending receipt and applies its wallet mutation in
	// the same transaction. Admin only. A pending receipt can be settled once.
	ApproveReceipt(ctx context.Context, adminID string, receiptID string, req dto.ApproveReceiptRequest) (*domain.Receipt, error)

	// RejectReceipt marks a pending receipt REJECTED without touching any wallet.
	// Admin only.
	RejectReceipt(ctx context.Context, adminID string, receiptID string) (*domain.Receipt, error)

	// UpdateReceipt is the admin correction path. Changed bank account
	// references are re-validated.
	UpdateReceipt(ctx context.Context, adminID string, receiptID string, req dto.UpdateReceiptRequest) (*domain.Receipt, error)
}

// ReceiptSvcFacade combines all receipt-related service interfaces
type ReceiptSvcFacade interface {
	ReceiptReaderSvc
	ReceiptWriterSvc
}
