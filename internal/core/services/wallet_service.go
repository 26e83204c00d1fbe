package services

import (
	"context"
	"errors"
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

// conversionScale is the decimal scale converted amounts are rounded to,
// matching the NUMERIC(28,8) columns.
const conversionScale = 8

// WalletService is the accounting engine: the only writer of wallets and
// wallet_transactions. Every mutation runs inside one database transaction,
// locks its wallet rows FOR UPDATE in wallet_id order, and pairs each balance
// change with exactly one audit row.
type WalletService struct {
	walletRepo portsrepo.WalletRepositoryWithTx
	userRepo   portsrepo.UserRepositoryFacade
	rateSvc    portssvc.CurrencyRateReaderSvc
	metrics    *metrics.Metrics
}

// NewWalletService creates the accounting engine.
func NewWalletService(walletRepo portsrepo.WalletRepositoryWithTx, userRepo portsrepo.UserRepositoryFacade, rateSvc portssvc.CurrencyRateReaderSvc, m *metrics.Metrics) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		userRepo:   userRepo,
		rateSvc:    rateSvc,
		metrics:    m,
	}
}

// Ensure WalletService implements portssvc.WalletSvcFacade
var _ portssvc.WalletSvcFacade = (*WalletService)(nil)

// ledgerEntry is one wallet's share of a mutation: the deltas to apply and
// the audit row to record. Amounts are positive; the kind carries the sign.
type ledgerEntry struct {
	walletID       string
	userID         string
	kind           domain.TransactionKind
	amount         decimal.Decimal
	currencyCode   string
	availableDelta decimal.Decimal
	lockedDelta    decimal.Decimal
	receiptID      *string
	metadata       domain.TransactionMetadata
	transactionID  string // assigned by apply when empty
}

// apply executes a prepared set of ledger entries against already-ensured
// wallets inside tx: lock rows in wallet_id order, validate both balances
// stay non-negative, write the new balances and append one audit row per
// entry. Balance snapshots record the available balance.
func (s *WalletService) apply(ctx context.Context, tx pgx.Tx, actorID string, entries []ledgerEntry) ([]domain.WalletTransaction, error) {
	walletIDs := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !seen[e.walletID] {
			seen[e.walletID] = true
			walletIDs = append(walletIDs, e.walletID)
		}
	}

	wallets, err := s.walletRepo.FindWalletsForUpdate(ctx, tx, walletIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txns := make([]domain.WalletTransaction, 0, len(entries))

	for i := range entries {
		e := &entries[i]
		wallet := wallets[e.walletID]

		newAvailable := wallet.AvailableBalance.Add(e.availableDelta)
		newLocked := wallet.LockedBalance.Add(e.lockedDelta)

		if newAvailable.IsNegative() {
			return nil, &apperrors.InsufficientBalanceError{
				CurrencyCode: e.currencyCode,
				Balance:      apperrors.BalanceAvailable,
				Available:    wallet.AvailableBalance,
				Required:     e.availableDelta.Neg(),
			}
		}
		if newLocked.IsNegative() {
			return nil, &apperrors.InsufficientBalanceError{
				CurrencyCode: e.currencyCode,
				Balance:      apperrors.BalanceLocked,
				Available:    wallet.LockedBalance,
				Required:     e.lockedDelta.Neg(),
			}
		}

		if e.transactionID == "" {
			e.transactionID = uuid.NewString()
		}

		txn := domain.WalletTransaction{
			TransactionID: e.transactionID,
			WalletID:      e.walletID,
			UserID:        e.userID,
			Kind:          e.kind,
			Amount:        e.amount,
			CurrencyCode:  e.currencyCode,
			BalanceBefore: wallet.AvailableBalance,
			BalanceAfter:  newAvailable,
			ReceiptID:     e.receiptID,
			Metadata:      e.metadata,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}

		wallet.AvailableBalance = newAvailable
		wallet.LockedBalance = newLocked
		wallet.LastUpdatedAt = now
		wallet.LastUpdatedBy = actorID
		wallets[e.walletID] = wallet

		if err := s.walletRepo.UpdateWalletBalancesInTx(ctx, tx, wallet, actorID); err != nil {
			return nil, err
		}
		if err := s.walletRepo.InsertTransactionInTx(ctx, tx, txn); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return nil
}

// GetWallet retrieves a single wallet of a user by currency and type.
func (s *WalletService) GetWallet(ctx context.Context, userID string, currencyCode string, walletType domain.WalletType) (*domain.Wallet, error) {
	return s.walletRepo.FindWallet(ctx, userID, currencyCode, walletType)
}

// ListWallets retrieves every wallet held by a user.
func (s *WalletService) ListWallets(ctx context.Context, userID string) ([]domain.Wallet, error) {
	return s.walletRepo.ListWalletsByUser(ctx, userID)
}

// ListTransactions retrieves a page of ledger entries of one wallet, newest
// first. The caller must own the wallet or hold the admin role.
func (s *WalletService) ListTransactions(ctx context.Context, requesterID string, walletID string, limit int, nextToken string) ([]domain.WalletTransaction, *string, error) {
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, nil, err
	}
	if wallet.UserID != requesterID {
		requester, err := s.userRepo.FindUserByID(ctx, requesterID)
		if err != nil || !requester.IsAdmin() {
			return nil, nil, fmt.Errorf("%w: wallet belongs to another user", apperrors.ErrForbidden)
		}
	}

	if limit <= 0 {
		limit = 20
	}
	var token *string
	if nextToken != "" {
		token = &nextToken
	}
	return s.walletRepo.ListTransactionsByWallet(ctx, walletID, limit, token)
}

// Deposit credits the available balance of a wallet, creating it if absent.
func (s *WalletService) Deposit(ctx context.Context, userID string, req dto.DepositRequest, actorID string) (*domain.WalletTransaction, error) {
	var out *domain.WalletTransaction
	err := s.depositWithKindAndMeta(ctx, userID, req, actorID, nil, metadataFromDepositBody(req.Metadata), &out)
	s.metrics.WalletMutation(string(domain.KindDeposit), err)
	return out, err
}

func metadataFromDepositBody(body *dto.DepositMetadataBody) domain.TransactionMetadata {
	if body == nil {
		return domain.TransactionMetadata{}
	}
	return domain.TransactionMetadata{Deposit: &domain.DepositMetadata{
		Source:        body.Source,
		ProviderEvent: body.Reference,
	}}
}

// DepositForReceipt is the settlement entry point: it joins the caller's
// transaction (carried in ctx by RunInTx) and links the audit row to the
// receipt.
func (s *WalletService) DepositForReceipt(ctx context.Context, userID string, currencyCode string, amount decimal.Decimal, receiptID string, actorID string) (*domain.WalletTransaction, error) {
	req := dto.DepositRequest{
		CurrencyCode: currencyCode,
		WalletType:   domain.WalletTypePersonal,
		Amount:       amount,
	}
	meta := domain.TransactionMetadata{Deposit: &domain.DepositMetadata{
		Source:    "receipt",
		ReceiptID: receiptID,
	}}
	var out *domain.WalletTransaction
	err := s.depositWithKindAndMeta(ctx, userID, req, actorID, &receiptID, meta, &out)
	s.metrics.WalletMutation(string(domain.KindDeposit), err)
	return out, err
}

func (s *WalletService) depositWithKindAndMeta(ctx context.Context, userID string, req dto.DepositRequest, actorID string, receiptID *string, meta domain.TransactionMetadata, out **domain.WalletTransaction) error {
	if err := validateAmount(req.Amount); err != nil {
		return err
	}

	return s.walletRepo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		walletID, err := s.walletRepo.EnsureWallet(ctx, tx, userID, req.CurrencyCode, req.WalletType, actorID)
		if err != nil {
			return err
		}

		txns, err := s.apply(ctx, tx, actorID, []ledgerEntry{{
			walletID:       walletID,
			userID:         userID,
			kind:           domain.KindDeposit,
			amount:         req.Amount,
			currencyCode:   req.CurrencyCode,
			availableDelta: req.Amount,
			lockedDelta:    decimal.Zero,
			receiptID:      receiptID,
			metadata:       meta,
		}})
		if err != nil {
			return err
		}
		*out = &txns[0]
		return nil
	})
}

// LockFunds moves amount from the available to the locked balance.
func (s *WalletService) LockFunds(ctx context.Context, userID string, req dto.LockFundsRequest, actorID string) (*domain.WalletTransaction, error) {
	var out *domain.WalletTransaction
	err := s.lockFunds(ctx, userID, req, actorID, &out)
	s.metrics.WalletMutation(string(domain.KindLock), err)
	return out, err
}

func (s *WalletService) lockFunds(ctx context.Context, userID string, req dto.LockFundsRequest, actorID string, out **domain.WalletTransaction) error {
	if err := validateAmount(req.Amount); err != nil {
		return err
	}

	meta := domain.TransactionMetadata{}
	if req.Reason != "" || req.ReceiptID != nil {
		lock := &domain.LockMetadata{Reason: req.Reason}
		if req.ReceiptID != nil {
			lock.ReceiptID = *req.ReceiptID
		}
		meta.Lock = lock
	}

	return s.walletRepo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		walletID, err := s.walletRepo.EnsureWallet(ctx, tx, userID, req.CurrencyCode, req.WalletType, actorID)
		if err != nil {
			return err
		}

		txns, err := s.apply(ctx, tx, actorID, []ledgerEntry{{
			walletID:       walletID,
			userID:         userID,
			kind:           domain.KindLock,
			amount:         req.Amount,
			currencyCode:   req.CurrencyCode,
			availableDelta: req.Amount.Neg(),
			lockedDelta:    req.Amount,
			receiptID:      req.ReceiptID,
			metadata:       meta,
		}})
		if err != nil {
			return err
		}
		*out = &txns[0]
		return nil
	})
}

// LockFundsForReceipt is the settlement variant of LockFunds: the approved
// amount lands directly in the locked balance, so the available balance is
// first credited and then locked as one mutation pair within the caller's
// transaction.
func (s *WalletService) LockFundsForReceipt(ctx context.Context, userID string, currencyCode string, amount decimal.Decimal, receiptID string, actorID string) (*domain.WalletTransaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var out *domain.WalletTransaction
	err := s.walletRepo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		walletID, err := s.walletRepo.EnsureWallet(ctx, tx, userID, currencyCode, domain.WalletTypePersonal, actorID)
		if err != nil {
			return err
		}

		// A lock-receipt credits the locked balance without ever passing
		// through available, so only lockedDelta moves. The audit row kind is
		// LOCK would imply an available debit; use DEPOSIT into locked via a
		// paired row instead: one DEPOSIT (available +amount) and one LOCK
		// (available -amount, locked +amount), both linked to the receipt.
		depositMeta := domain.TransactionMetadata{Deposit: &domain.DepositMetadata{
			Source:    "receipt",
			ReceiptID: receiptID,
		}}
		lockMeta := domain.TransactionMetadata{Lock: &domain.LockMetadata{
			ReceiptID: receiptID,
			Reason:    "receipt settlement lock",
		}}

		txns, err := s.apply(ctx, tx, actorID, []ledgerEntry{
			{
				walletID:       walletID,
				userID:         userID,
				kind:           domain.KindDeposit,
				amount:         amount,
				currencyCode:   currencyCode,
				availableDelta: amount,
				lockedDelta:    decimal.Zero,
				receiptID:      &receiptID,
				metadata:       depositMeta,
			},
			{
				walletID:       walletID,
				userID:         userID,
				kind:           domain.KindLock,
				amount:         amount,
				currencyCode:   currencyCode,
				availableDelta: amount.Neg(),
				lockedDelta:    amount,
				receiptID:      &receiptID,
				metadata:       lockMeta,
			},
		})
		if err != nil {
			return err
		}
		out = &txns[1]
		return nil
	})
	s.metrics.WalletMutation(string(domain.KindLock), err)
	return out, err
}

// UnlockFunds moves amount from the locked back to the available balance.
func (s *WalletService) UnlockFunds(ctx context.Context, userID string, req dto.UnlockFundsRequest, actorID string) (*domain.WalletTransaction, error) {
	var out *domain.WalletTransaction
	err := func() error {
		if err := validateAmount(req.Amount); err != nil {
			return err
		}

		meta := domain.TransactionMetadata{}
		if req.Reason != "" || req.ReceiptID != nil {
			lock := &domain.LockMetadata{Reason: req.Reason}
			if req.ReceiptID != nil {
				lock.ReceiptID = *req.ReceiptID
			}
			meta.Lock = lock
		}

		return s.walletRepo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			wallet, err := s.walletRepo.FindWallet(ctx, userID, req.CurrencyCode, req.WalletType)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return &apperrors.InsufficientBalanceError{
						CurrencyCode: req.CurrencyCode,
						Balance:      apperrors.BalanceAvailable,
						Available:    decimal.Zero,
						Required:     req.Amount,
					}
				}
				return err
			}

			txns, err := s.apply(ctx, tx, actorID, []ledgerEntry{{
				walletID:       wallet.WalletID,
				userID:         userID,
				kind:           domain.KindUnlock,
				amount:         req.Amount,
				currencyCode:   req.CurrencyCode,
				availableDelta: req.Amount,
				lockedDelta:    req.Amount.Neg(),
				receiptID:      req.ReceiptID,
				metadata:       meta,
			}})
			if err != nil {
				return err
			}
			out = &txns[0]
			return nil
		})
	}()
	s.metrics.WalletMutation(string(domain.KindUnlock), err)
	return out, err
}

// Transfer debits the sender's wallet and credits the recipient's wallet of
// the same currency in one transaction.
func (s *WalletService) Transfer(ctx context.Context, fromUserID string, req dto.TransferRequest, actorID string) (*domain.WalletTransaction, *domain.WalletTransaction, error) {
	var fromTxn, toTxn *domain.WalletTransaction
	err := func() error {
		if err := validateAmount(req.Amount); err != nil {
			return err
		}
		if req.ToUserID == fromUserID {
			return fmt.Errorf("%w: cannot transfer to yourself", apperrors.ErrValidation)
		}
		if _, err := s.userRepo.FindUserByID(ctx, req.ToUserID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: recipient user not found", apperrors.ErrValidation)
			}
			return err
		}

		return s.walletRepo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			fromWalletID, err := s.walletRepo.EnsureWallet(ctx, tx, fromUserID, req.CurrencyCode, req.FromType, actorID)
			if err != nil {
				return err
			}
			toWalletID, err := s.walletRepo.EnsureWallet(ctx, tx, req.ToUserID, req.CurrencyCode, req.ToType, actorID)
			if err != nil {
				return err
			}

			groupID := uuid.NewString()
			fromTxnID := uuid.NewString()
			toTxnID := uuid.NewString()

			txns, err := s.apply(ctx, tx, actorID, []ledgerEntry{
				{
					walletID:       fromWalletID,
					userID:         fromUserID,
					kind:           domain.KindTransferOut,
					amount:         req.Amount,
					currencyCode:   req.CurrencyCode,
					availableDelta: req.Amount.Neg(),
					lockedDelta:    decimal.Zero,
					transactionID:  fromTxnID,
					metadata: domain.TransactionMetadata{Transfer: &domain.TransferMetadata{
						GroupID:                  groupID,
						CounterpartUserID:        req.ToUserID,
						CounterpartWalletID:      toWalletID,
						CounterpartTransactionID: toTxnID,
					}},
				},
				{
					walletID:       toWalletID,
					userID:         req.ToUserID,
					kind:           domain.KindTransferIn,
					amount:         req.Amount,
					currencyCode:   req.CurrencyCode,
					availableDelta: req.Amount,
					lockedDelta:    decimal.Zero,
					transactionID:  toTxnID,
					metadata: domain.TransactionMetadata{Transfer: &domain.TransferMetadata{
						GroupID:                  groupID,
						CounterpartUserID:        fromUserID,
						CounterpartWalletID:      fromWalletID,
						CounterpartTransactionID: fromTxnID,
					}},
				},
			})
			if err != nil {
				return err
			}
			fromTxn, toTxn = &txns[0], &txns[1]
			return nil
		})
	}()
	s.metrics.WalletMutation(string(domain.KindTransferOut), err)
	if err != nil {
		return nil, nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Transfer completed",
		slog.String("from_user", fromUserID),
		slog.String("to_user", req.ToUserID),
		slog.String("currency", req.CurrencyCode),
		slog.String("amount", req.Amount.String()),
	)
	return fromTxn, toTxn, nil
}

// Convert exchanges funds between two currency wallets of the same user at
// the effective (adjusted) rate.
func (s *WalletService) Convert(ctx context.Context, userID string, req dto.ConvertRequest, actorID string) (*dto.ConvertResponse, error) {
	var resp *dto.ConvertResponse
	err := func() error {
		if err := validateAmount(req.Amount); err != nil {
			return err
		}
		if req.FromCurrencyCode == req.ToCurrencyCode {
			return fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
		}

		rate, err := s.rateSvc.GetAdjustedRate(ctx, req.FromCurrencyCode, req.ToCurrencyCode)
		if err != nil {
			return err
		}
		if rate.FinalRate.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: rate %s for %s/%s", apperrors.ErrInvalidRate, rate.FinalRate, req.FromCurrencyCode, req.ToCurrencyCode)
		}

		credited := req.Amount.Mul(rate.FinalRate).Round(conversionScale)
		if credited.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: converted amount rounds to zero", apperrors.ErrValidation)
		}

		return s.walletRepo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			fromWalletID, err := s.walletRepo.EnsureWallet(ctx, tx, userID, req.FromCurrencyCode, req.WalletType, actorID)
			if err != nil {
				return err
			}
			toWalletID, err := s.walletRepo.EnsureWallet(ctx, tx, userID, req.ToCurrencyCode, req.WalletType, actorID)
			if err != nil {
				return err
			}

			groupID := uuid.NewString()
			convMeta := func() domain.TransactionMetadata {
				return domain.TransactionMetadata{Conversion: &domain.ConversionMetadata{
					GroupID:          groupID,
					Rate:             rate.FinalRate,
					FromCurrencyCode: req.FromCurrencyCode,
					ToCurrencyCode:   req.ToCurrencyCode,
				}}
			}

			txns, err := s.apply(ctx, tx, actorID, []ledgerEntry{
				{
					walletID:       fromWalletID,
					userID:         userID,
					kind:           domain.KindFXConvertOut,
					amount:         req.Amount,
					currencyCode:   req.FromCurrencyCode,
					availableDelta: req.Amount.Neg(),
					lockedDelta:    decimal.Zero,
					metadata:       convMeta(),
				},
				{
					walletID:       toWalletID,
					userID:         userID,
					kind:           domain.KindFXConvertIn,
					amount:         credited,
					currencyCode:   req.ToCurrencyCode,
					availableDelta: credited,
					lockedDelta:    decimal.Zero,
					metadata:       convMeta(),
				},
			})
			if err != nil {
				return err
			}

			resp = &dto.ConvertResponse{
				FromTransaction: dto.ToWalletTransactionResponse(&txns[0]),
				ToTransaction:   dto.ToWalletTransactionResponse(&txns[1]),
				Rate:            rate.FinalRate,
			}
			return nil
		})
	}()
	s.metrics.WalletMutation(string(domain.KindFXConvertOut), err)
	return resp, err
}
