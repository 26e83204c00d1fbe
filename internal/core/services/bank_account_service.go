package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	portsrepo "github.com/velmora/wallet_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
)

// BankAccountService manages a user's bank accounts and their dense 1..N
// ordering. Sequence values change only through create (append), delete
// (compact) and reorder (range shift); the generic update never touches them.
type BankAccountService struct {
	bankAccountRepo portsrepo.BankAccountRepositoryFacade
}

// NewBankAccountService creates a new BankAccountService.
func NewBankAccountService(bankAccountRepo portsrepo.BankAccountRepositoryFacade) *BankAccountService {
	return &BankAccountService{bankAccountRepo: bankAccountRepo}
}

// Ensure BankAccountService implements portssvc.BankAccountSvcFacade
var _ portssvc.BankAccountSvcFacade = (*BankAccountService)(nil)

// shiftPlan describes the sibling range shift a reorder needs: every account
// with sequence in [Lo, Hi] moves by Delta, then the reordered account takes
// its new position.
type shiftPlan struct {
	Lo, Hi, Delta int
}

// reorderShiftPlan computes the sibling shift for moving an account from
// oldPos to newPos. ok is false when the move is a no-op.
func reorderShiftPlan(oldPos, newPos int) (shiftPlan, bool) {
	switch {
	case newPos == oldPos:
		return shiftPlan{}, false
	case newPos < oldPos:
		// Moving earlier: the accounts it jumps over slide one place later.
		return shiftPlan{Lo: newPos, Hi: oldPos - 1, Delta: +1}, true
	default:
		// Moving later: the accounts it jumps over slide one place earlier.
		return shiftPlan{Lo: oldPos + 1, Hi: newPos, Delta: -1}, true
	}
}

func (s *BankAccountService) ownedAccount(ctx context.Context, userID, bankAccountID string) (*domain.BankAccount, error) {
	account, err := s.bankAccountRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("%w: bank account belongs to another user", apperrors.ErrForbidden)
	}
	return account, nil
}

// GetBankAccountByID retrieves a single bank account owned by the user.
func (s *BankAccountService) GetBankAccountByID(ctx context.Context, userID string, bankAccountID string) (*domain.BankAccount, error) {
	return s.ownedAccount(ctx, userID, bankAccountID)
}

// ListBankAccounts retrieves the user's bank accounts in sequence order.
func (s *BankAccountService) ListBankAccounts(ctx context.Context, userID string) ([]domain.BankAccount, error) {
	return s.bankAccountRepo.ListBankAccountsByUser(ctx, userID)
}

// CreateBankAccount registers a new account appended at sequence N+1.
func (s *BankAccountService) CreateBankAccount(ctx context.Context, userID string, req dto.CreateBankAccountRequest) (*domain.BankAccount, error) {
	now := time.Now()
	account := domain.BankAccount{
		BankAccountID: uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		HolderName:    req.HolderName,
		CurrencyCode:  req.CurrencyCode,
		IBAN:          req.IBAN,
		SwiftBIC:      req.SwiftBIC,
		Direction:     req.Direction,
		Note:          req.Note,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	return s.bankAccountRepo.SaveBankAccount(ctx, account)
}

// UpdateBankAccount updates account details. Sequence is not updatable here.
func (s *BankAccountService) UpdateBankAccount(ctx context.Context, userID string, bankAccountID string, req dto.UpdateBankAccountRequest) (*domain.BankAccount, error) {
	account, err := s.ownedAccount(ctx, userID, bankAccountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.HolderName != nil {
		account.HolderName = *req.HolderName
	}
	if req.CurrencyCode != nil {
		account.CurrencyCode = *req.CurrencyCode
	}
	if req.IBAN != nil {
		account.IBAN = req.IBAN
	}
	if req.SwiftBIC != nil {
		account.SwiftBIC = *req.SwiftBIC
	}
	if req.Direction != nil {
		account.Direction = *req.Direction
	}
	if req.Note != nil {
		account.Note = *req.Note
	}
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = userID

	if err := s.bankAccountRepo.UpdateBankAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteBankAccount removes an account and compacts the sequences above it.
// Accounts referenced by receipts fail with ErrConflict.
func (s *BankAccountService) DeleteBankAccount(ctx context.Context, userID string, bankAccountID string) error {
	if _, err := s.ownedAccount(ctx, userID, bankAccountID); err != nil {
		return err
	}
	return s.bankAccountRepo.DeleteBankAccount(ctx, bankAccountID, userID)
}

// ReorderBankAccount moves an account to newPosition, shifting the accounts
// between the old and new positions by one, and returns the new ordering.
func (s *BankAccountService) ReorderBankAccount(ctx context.Context, userID string, bankAccountID string, newPosition int) ([]domain.BankAccount, error) {
	account, err := s.ownedAccount(ctx, userID, bankAccountID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.bankAccountRepo.ListBankAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if newPosition < 1 || newPosition > len(accounts) {
		return nil, fmt.Errorf("%w: position %d out of range 1..%d", apperrors.ErrValidation, newPosition, len(accounts))
	}

	plan, ok := reorderShiftPlan(account.Sequence, newPosition)
	if ok {
		if err := s.bankAccountRepo.ShiftSequences(ctx, userID, bankAccountID, plan.Lo, plan.Hi, plan.Delta, newPosition, userID); err != nil {
			return nil, err
		}
	}
	return s.bankAccountRepo.ListBankAccountsByUser(ctx, userID)
}
