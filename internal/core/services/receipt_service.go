package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	portsrepo "github.com/velmora/wallet_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
	"github.com/velmora/wallet_ledger_app/internal/platform/metrics"
)

// ReceiptService drives the settlement workflow. Receipts are declared
// transfer intents between registered bank accounts; approval is the only
// trigger for a wallet credit, and the status transition commits in the same
// database transaction as that credit.
type ReceiptService struct {
	receiptRepo     portsrepo.ReceiptRepositoryWithTx
	bankAccountRepo portsrepo.BankAccountReader
	userSvc         portssvc.UserReaderSvc
	walletSvc       portssvc.WalletSettlementSvc
	metrics         *metrics.Metrics
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(receiptRepo portsrepo.ReceiptRepositoryWithTx, bankAccountRepo portsrepo.BankAccountReader, userSvc portssvc.UserReaderSvc, walletSvc portssvc.WalletSettlementSvc, m *metrics.Metrics) *ReceiptService {
	return &ReceiptService{
		receiptRepo:     receiptRepo,
		bankAccountRepo: bankAccountRepo,
		userSvc:         userSvc,
		walletSvc:       walletSvc,
		metrics:         m,
	}
}

// Ensure ReceiptService implements portssvc.ReceiptSvcFacade
var _ portssvc.ReceiptSvcFacade = (*ReceiptService)(nil)

func (s *ReceiptService) validateBankAccount(ctx context.Context, bankAccountID string, wantSender bool) (*domain.BankAccount, error) {
	account, err := s.bankAccountRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		return nil, &apperrors.InvalidBankAccountError{BankAccountID: bankAccountID, Reason: "not found"}
	}
	if wantSender {
		if account.Direction != domain.DirectionSender && account.Direction != domain.DirectionBoth {
			return nil, &apperrors.InvalidBankAccountError{BankAccountID: bankAccountID, Reason: "not usable as sender"}
		}
	} else {
		if account.Direction != domain.DirectionReceiver && account.Direction != domain.DirectionBoth {
			return nil, &apperrors.InvalidBankAccountError{BankAccountID: bankAccountID, Reason: "not usable as receiver"}
		}
	}
	return account, nil
}

// GetReceiptByID retrieves a receipt. Non-admin requesters only see their own.
func (s *ReceiptService) GetReceiptByID(ctx context.Context, requesterID string, receiptID string) (*domain.Receipt, error) {
	receipt, err := s.receiptRepo.FindReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt.UserID != requesterID {
		if _, err := s.userSvc.RequireAdmin(ctx, requesterID); err != nil {
			return nil, fmt.Errorf("%w: receipt belongs to another user", apperrors.ErrForbidden)
		}
	}
	return receipt, nil
}

// ListReceipts retrieves a page of the requester's receipts, optionally
// narrowed to one status.
func (s *ReceiptService) ListReceipts(ctx context.Context, requesterID string, params dto.ListReceiptsParams) ([]domain.Receipt, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	var token *string
	if params.NextToken != "" {
		token = &params.NextToken
	}

	return s.receiptRepo.ListReceiptsByUser(ctx, requesterID, params.Status, limit, token)
}

// ListPendingReceipts retrieves the settlement queue. Admin only.
func (s *ReceiptService) ListPendingReceipts(ctx context.Context, adminID string, limit int, nextToken string) ([]domain.Receipt, *string, error) {
	if _, err := s.userSvc.RequireAdmin(ctx, adminID); err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	var token *string
	if nextToken != "" {
		token = &nextToken
	}
	return s.receiptRepo.ListReceiptsByStatus(ctx, domain.ReceiptPending, limit, token)
}

// CreateReceipt submits a new receipt in PENDING status after validating
// both bank account references.
func (s *ReceiptService) CreateReceipt(ctx context.Context, userID string, req dto.CreateReceiptRequest) (*domain.Receipt, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.SenderAccountID == req.ReceiverAccountID {
		return nil, fmt.Errorf("%w: sender and receiver accounts cannot be the same", apperrors.ErrValidation)
	}
	if _, err := s.validateBankAccount(ctx, req.SenderAccountID, true); err != nil {
		return nil, err
	}
	if _, err := s.validateBankAccount(ctx, req.ReceiverAccountID, false); err != nil {
		return nil, err
	}

	now := time.Now()
	receipt := domain.Receipt{
		ReceiptID:         uuid.NewString(),
		UserID:            userID,
		SenderAccountID:   req.SenderAccountID,
		ReceiverAccountID: req.ReceiverAccountID,
		Amount:            req.Amount,
		CurrencyCode:      req.CurrencyCode,
		Status:            domain.ReceiptPending,
		IsLock:            req.IsLock,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.receiptRepo.SaveReceipt(ctx, receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ApproveReceipt settles a pending receipt: the status transition and the
// wallet credit commit together or not at all. The credited user is the
// owner of the receiver bank account; the effective amount is the override
// when given, else the declared amount.
func (s *ReceiptService) ApproveReceipt(ctx context.Context, adminID string, receiptID string, req dto.ApproveReceiptRequest) (*domain.Receipt, error) {
	if _, err := s.userSvc.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if req.OverrideAmount != nil && req.OverrideAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: override amount must be positive", apperrors.ErrValidation)
	}

	var approved *domain.Receipt
	err := s.receiptRepo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		receipt, err := s.receiptRepo.FindReceiptForUpdate(ctx, tx, receiptID)
		if err != nil {
			return err
		}
		if receipt.Status != domain.ReceiptPending {
			return &apperrors.InvalidStateError{ReceiptID: receiptID, Status: string(receipt.Status)}
		}

		receiverAccount, err := s.validateBankAccount(ctx, receipt.ReceiverAccountID, false)
		if err != nil {
			return err
		}

		if req.OverrideAmount != nil {
			receipt.OverrideAmount = req.OverrideAmount
		}
		effective := receipt.EffectiveAmount()

		if receipt.IsLock {
			_, err = s.walletSvc.LockFundsForReceipt(ctx, receiverAccount.UserID, receipt.CurrencyCode, effective, receiptID, adminID)
		} else {
			_, err = s.walletSvc.DepositForReceipt(ctx, receiverAccount.UserID, receipt.CurrencyCode, effective, receiptID, adminID)
		}
		if err != nil {
			return err
		}

		receipt.Status = domain.ReceiptApproved
		receipt.ApprovedBy = &adminID
		receipt.LastUpdatedAt = time.Now()
		receipt.LastUpdatedBy = adminID

		if err := s.receiptRepo.UpdateReceiptStatusInTx(ctx, tx, *receipt); err != nil {
			return err
		}
		approved = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReceiptTransition(string(domain.ReceiptApproved))
	middleware.GetLoggerFromCtx(ctx).Info("Receipt approved",
		slog.String("receipt_id", receiptID),
		slog.String("approved_by", adminID),
		slog.String("amount", approved.EffectiveAmount().String()),
	)
	return approved, nil
}

// RejectReceipt marks a pending receipt REJECTED without touching any wallet.
func (s *ReceiptService) RejectReceipt(ctx context.Context, adminID string, receiptID string) (*domain.Receipt, error) {
	if _, err := s.userSvc.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var rejected *domain.Receipt
	err := s.receiptRepo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		receipt, err := s.receiptRepo.FindReceiptForUpdate(ctx, tx, receiptID)
		if err != nil {
			return err
		}
		if receipt.Status != domain.ReceiptPending {
			return &apperrors.InvalidStateError{ReceiptID: receiptID, Status: string(receipt.Status)}
		}

		receipt.Status = domain.ReceiptRejected
		receipt.ApprovedBy = &adminID
		receipt.LastUpdatedAt = time.Now()
		receipt.LastUpdatedBy = adminID

		if err := s.receiptRepo.UpdateReceiptStatusInTx(ctx, tx, *receipt); err != nil {
			return err
		}
		rejected = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReceiptTransition(string(domain.ReceiptRejected))
	return rejected, nil
}

// UpdateReceipt is the admin correction path. Changed bank account references
// are re-validated; amounts must stay positive.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, adminID string, receiptID string, req dto.UpdateReceiptRequest) (*domain.Receipt, error) {
	if _, err := s.userSvc.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	receipt, err := s.receiptRepo.FindReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	if req.SenderAccountID != nil {
		if _, err := s.validateBankAccount(ctx, *req.SenderAccountID, true); err != nil {
			return nil, err
		}
		receipt.SenderAccountID = *req.SenderAccountID
	}
	if req.ReceiverAccountID != nil {
		if _, err := s.validateBankAccount(ctx, *req.ReceiverAccountID, false); err != nil {
			return nil, err
		}
		receipt.ReceiverAccountID = *req.ReceiverAccountID
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
		}
		receipt.Amount = *req.Amount
	}
	if req.CurrencyCode != nil {
		receipt.CurrencyCode = *req.CurrencyCode
	}
	receipt.LastUpdatedAt = time.Now()
	receipt.LastUpdatedBy = adminID

	if err := s.receiptRepo.UpdateReceipt(ctx, *receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}
