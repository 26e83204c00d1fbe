package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/core/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/models"
)

// MockWalletRepository is a mock type for the WalletRepositoryWithTx interface
type MockWalletRepository struct {
	mock.Mock

	savedWallets []domain.Wallet
	savedTxns    []domain.WalletTransaction
}

func (m *MockWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindWallet(ctx context.Context, userID, currencyCode string, walletType domain.WalletType) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, currencyCode, walletType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListTransactionsByWallet(ctx context.Context, walletID string, limit int, nextToken *string) ([]domain.WalletTransaction, *string, error) {
	args := m.Called(ctx, walletID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.WalletTransaction), token, args.Error(2)
}

func (m *MockWalletRepository) EnsureWallet(ctx context.Context, tx pgx.Tx, userID, currencyCode string, walletType domain.WalletType, creatorUserID string) (string, error) {
	args := m.Called(ctx, tx, userID, currencyCode, walletType, creatorUserID)
	return args.String(0), args.Error(1)
}

func (m *MockWalletRepository) FindWalletsForUpdate(ctx context.Context, tx pgx.Tx, walletIDs []string) (map[string]domain.Wallet, error) {
	args := m.Called(ctx, tx, walletIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, wallet domain.Wallet, userID string) error {
	args := m.Called(ctx, tx, wallet, userID)
	if args.Error(0) == nil {
		m.savedWallets = append(m.savedWallets, wallet)
	}
	return args.Error(0)
}

func (m *MockWalletRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction) error {
	args := m.Called(ctx, tx, txn)
	if args.Error(0) == nil {
		m.savedTxns = append(m.savedTxns, txn)
	}
	return args.Error(0)
}

func (m *MockWalletRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func (m *MockWalletRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockWalletRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// RunInTx executes fn directly; a nil pgx.Tx stands in for the transaction.
func (m *MockWalletRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User, passwordHash string) error {
	args := m.Called(ctx, user, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string) error {
	args := m.Called(ctx, userID, deletedBy)
	return args.Error(0)
}

// MockRateReaderSvc is a mock type for the CurrencyRateReaderSvc interface
type MockRateReaderSvc struct {
	mock.Mock
}

func (m *MockRateReaderSvc) GetCurrentRate(ctx context.Context, base, target string) (*dto.RateResponse, error) {
	args := m.Called(ctx, base, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RateResponse), args.Error(1)
}

func (m *MockRateReaderSvc) GetAdjustedRate(ctx context.Context, base, target string) (*dto.RateResponse, error) {
	args := m.Called(ctx, base, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RateResponse), args.Error(1)
}

func (m *MockRateReaderSvc) ListAdjustments(ctx context.Context, adminID string) ([]domain.CurrencyRateAdjustment, error) {
	args := m.Called(ctx, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrencyRateAdjustment), args.Error(1)
}

// --- Test Suite Setup ---

type WalletServiceTestSuite struct {
	suite.Suite
	mockWalletRepo *MockWalletRepository
	mockUserRepo   *MockUserRepository
	mockRateSvc    *MockRateReaderSvc
	service        *services.WalletService
}

func (suite *WalletServiceTestSuite) SetupTest() {
	suite.mockWalletRepo = new(MockWalletRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockRateSvc = new(MockRateReaderSvc)
	suite.service = services.NewWalletService(suite.mockWalletRepo, suite.mockUserRepo, suite.mockRateSvc, nil)
}

func (suite *WalletServiceTestSuite) expectMutation(wallets ...domain.Wallet) {
	byID := make(map[string]domain.Wallet, len(wallets))
	ids := make([]string, 0, len(wallets))
	for _, w := range wallets {
		byID[w.WalletID] = w
		ids = append(ids, w.WalletID)
		suite.mockWalletRepo.On("EnsureWallet", mock.Anything, mock.Anything, w.UserID, w.CurrencyCode, w.WalletType, mock.Anything).
			Return(w.WalletID, nil).Maybe()
	}
	suite.mockWalletRepo.On("FindWalletsForUpdate", mock.Anything, mock.Anything, mock.MatchedBy(func(got []string) bool {
		return len(got) == len(ids)
	})).Return(byID, nil)
	suite.mockWalletRepo.On("UpdateWalletBalancesInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Wallet"), mock.Anything).Return(nil)
	suite.mockWalletRepo.On("InsertTransactionInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.WalletTransaction")).Return(nil)
}

func makeWallet(userID, currency string, available, locked string) domain.Wallet {
	return domain.Wallet{
		WalletID:         uuid.NewString(),
		UserID:           userID,
		CurrencyCode:     currency,
		WalletType:       domain.WalletTypePersonal,
		AvailableBalance: decimal.RequireFromString(available),
		LockedBalance:    decimal.RequireFromString(locked),
	}
}

// --- Test Cases ---

func (suite *WalletServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	wallet := makeWallet(userID, "USD", "0", "0")
	suite.expectMutation(wallet)

	txn, err := suite.service.Deposit(ctx, userID, dto.DepositRequest{
		CurrencyCode: "USD",
		WalletType:   domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(100),
	}, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.KindDeposit, txn.Kind)
	suite.True(txn.BalanceBefore.IsZero())
	suite.True(txn.BalanceAfter.Equal(decimal.NewFromInt(100)))

	suite.Require().Len(suite.mockWalletRepo.savedWallets, 1)
	suite.True(suite.mockWalletRepo.savedWallets[0].AvailableBalance.Equal(decimal.NewFromInt(100)))
	suite.mockWalletRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestDeposit_NonPositiveAmount() {
	ctx := context.Background()
	userID := uuid.NewString()

	_, err := suite.service.Deposit(ctx, userID, dto.DepositRequest{
		CurrencyCode: "USD",
		WalletType:   domain.WalletTypePersonal,
		Amount:       decimal.Zero,
	}, userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockWalletRepo.AssertNotCalled(suite.T(), "InsertTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletServiceTestSuite) TestLockFunds_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	wallet := makeWallet(userID, "USD", "100", "0")
	suite.expectMutation(wallet)

	txn, err := suite.service.LockFunds(ctx, userID, dto.LockFundsRequest{
		CurrencyCode: "USD",
		WalletType:   domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(40),
		Reason:       "pending settlement",
	}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.KindLock, txn.Kind)
	suite.True(txn.BalanceBefore.Equal(decimal.NewFromInt(100)))
	suite.True(txn.BalanceAfter.Equal(decimal.NewFromInt(60)))

	saved := suite.mockWalletRepo.savedWallets[0]
	suite.True(saved.AvailableBalance.Equal(decimal.NewFromInt(60)))
	suite.True(saved.LockedBalance.Equal(decimal.NewFromInt(40)))
}

func (suite *WalletServiceTestSuite) TestLockFunds_Insufficient() {
	ctx := context.Background()
	userID := uuid.NewString()
	wallet := makeWallet(userID, "USD", "100", "0")
	suite.expectMutation(wallet)

	_, err := suite.service.LockFunds(ctx, userID, dto.LockFundsRequest{
		CurrencyCode: "USD",
		WalletType:   domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(1000),
	}, userID)

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientBalance)
	var balErr *apperrors.InsufficientBalanceError
	suite.Require().ErrorAs(err, &balErr)
	suite.Equal(apperrors.BalanceAvailable, balErr.Balance)
	suite.True(balErr.Available.Equal(decimal.NewFromInt(100)))
	suite.True(balErr.Required.Equal(decimal.NewFromInt(1000)))

	suite.Empty(suite.mockWalletRepo.savedWallets)
	suite.Empty(suite.mockWalletRepo.savedTxns)
}

func (suite *WalletServiceTestSuite) TestUnlockFunds_ExceedsLocked() {
	ctx := context.Background()
	userID := uuid.NewString()
	wallet := makeWallet(userID, "USD", "90", "10")
	suite.mockWalletRepo.On("FindWallet", mock.Anything, userID, "USD", domain.WalletTypePersonal).Return(&wallet, nil)
	suite.expectMutation(wallet)

	_, err := suite.service.UnlockFunds(ctx, userID, dto.UnlockFundsRequest{
		CurrencyCode: "USD",
		WalletType:   domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(40),
	}, userID)

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientBalance)
	var balErr *apperrors.InsufficientBalanceError
	suite.Require().ErrorAs(err, &balErr)
	suite.Equal(apperrors.BalanceLocked, balErr.Balance)
	suite.True(balErr.Available.Equal(decimal.NewFromInt(10)), "error should carry the locked balance, not the available one")
	suite.True(balErr.Required.Equal(decimal.NewFromInt(40)))
	suite.Contains(balErr.Error(), "locked")
}

func (suite *WalletServiceTestSuite) TestUnlockFunds_RoundTrip() {
	ctx := context.Background()
	userID := uuid.NewString()
	wallet := makeWallet(userID, "USD", "60", "40")
	suite.mockWalletRepo.On("FindWallet", mock.Anything, userID, "USD", domain.WalletTypePersonal).Return(&wallet, nil)
	suite.expectMutation(wallet)

	txn, err := suite.service.UnlockFunds(ctx, userID, dto.UnlockFundsRequest{
		CurrencyCode: "USD",
		WalletType:   domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(40),
	}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.KindUnlock, txn.Kind)
	suite.True(txn.BalanceBefore.Equal(decimal.NewFromInt(60)))
	suite.True(txn.BalanceAfter.Equal(decimal.NewFromInt(100)))

	saved := suite.mockWalletRepo.savedWallets[0]
	suite.True(saved.AvailableBalance.Equal(decimal.NewFromInt(100)))
	suite.True(saved.LockedBalance.IsZero())
}

func (suite *WalletServiceTestSuite) TestUnlockFunds_MissingWallet() {
	ctx := context.Background()
	userID := uuid.NewString()
	suite.mockWalletRepo.On("FindWallet", mock.Anything, userID, "EUR", domain.WalletTypePersonal).
		Return(nil, apperrors.NewNotFoundError("wallet not found"))

	_, err := suite.service.UnlockFunds(ctx, userID, dto.UnlockFundsRequest{
		CurrencyCode: "EUR",
		WalletType:   domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(5),
	}, userID)

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientBalance)
	var balErr *apperrors.InsufficientBalanceError
	suite.Require().ErrorAs(err, &balErr)
	suite.True(balErr.Available.IsZero())
}

func (suite *WalletServiceTestSuite) TestTransfer_ConservesTotal() {
	ctx := context.Background()
	fromUserID := uuid.NewString()
	toUserID := uuid.NewString()

	fromWallet := makeWallet(fromUserID, "USD", "80", "0")
	toWallet := makeWallet(toUserID, "USD", "5", "0")
	totalBefore := fromWallet.AvailableBalance.Add(toWallet.AvailableBalance)

	suite.mockUserRepo.On("FindUserByID", mock.Anything, toUserID).Return(&domain.User{UserID: toUserID}, nil)
	suite.expectMutation(fromWallet, toWallet)

	fromTxn, toTxn, err := suite.service.Transfer(ctx, fromUserID, dto.TransferRequest{
		ToUserID:     toUserID,
		CurrencyCode: "USD",
		FromType:     domain.WalletTypePersonal,
		ToType:       domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(30),
	}, fromUserID)

	suite.Require().NoError(err)
	suite.Equal(domain.KindTransferOut, fromTxn.Kind)
	suite.Equal(domain.KindTransferIn, toTxn.Kind)

	// Both legs share a group and cross-reference each other.
	suite.Require().NotNil(fromTxn.Metadata.Transfer)
	suite.Require().NotNil(toTxn.Metadata.Transfer)
	suite.Equal(fromTxn.Metadata.Transfer.GroupID, toTxn.Metadata.Transfer.GroupID)
	suite.Equal(toTxn.TransactionID, fromTxn.Metadata.Transfer.CounterpartTransactionID)
	suite.Equal(fromTxn.TransactionID, toTxn.Metadata.Transfer.CounterpartTransactionID)

	suite.Require().Len(suite.mockWalletRepo.savedWallets, 2)
	totalAfter := decimal.Zero
	for _, w := range suite.mockWalletRepo.savedWallets {
		totalAfter = totalAfter.Add(w.AvailableBalance)
	}
	suite.True(totalAfter.Equal(totalBefore), "transfer must conserve the total balance")
}

func (suite *WalletServiceTestSuite) TestTransfer_ToSelf() {
	ctx := context.Background()
	userID := uuid.NewString()

	_, _, err := suite.service.Transfer(ctx, userID, dto.TransferRequest{
		ToUserID:     userID,
		CurrencyCode: "USD",
		FromType:     domain.WalletTypePersonal,
		ToType:       domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(10),
	}, userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *WalletServiceTestSuite) TestTransfer_InsufficientRollsBack() {
	ctx := context.Background()
	fromUserID := uuid.NewString()
	toUserID := uuid.NewString()

	fromWallet := makeWallet(fromUserID, "USD", "10", "0")
	toWallet := makeWallet(toUserID, "USD", "0", "0")

	suite.mockUserRepo.On("FindUserByID", mock.Anything, toUserID).Return(&domain.User{UserID: toUserID}, nil)
	suite.expectMutation(fromWallet, toWallet)

	_, _, err := suite.service.Transfer(ctx, fromUserID, dto.TransferRequest{
		ToUserID:     toUserID,
		CurrencyCode: "USD",
		FromType:     domain.WalletTypePersonal,
		ToType:       domain.WalletTypePersonal,
		Amount:       decimal.NewFromInt(30),
	}, fromUserID)

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.Empty(suite.mockWalletRepo.savedTxns)
}

func (suite *WalletServiceTestSuite) TestConvert_AppliesEffectiveRate() {
	ctx := context.Background()
	userID := uuid.NewString()

	usdWallet := makeWallet(userID, "USD", "100", "0")
	eurWallet := makeWallet(userID, "EUR", "0", "0")

	suite.mockRateSvc.On("GetAdjustedRate", mock.Anything, "USD", "EUR").Return(&dto.RateResponse{
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "EUR",
		FinalRate:          decimal.RequireFromString("0.5"),
	}, nil)
	suite.expectMutation(usdWallet, eurWallet)

	resp, err := suite.service.Convert(ctx, userID, dto.ConvertRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EUR",
		WalletType:       domain.WalletTypePersonal,
		Amount:           decimal.NewFromInt(40),
	}, userID)

	suite.Require().NoError(err)
	suite.True(resp.Rate.Equal(decimal.RequireFromString("0.5")))
	suite.True(resp.FromTransaction.Amount.Equal(decimal.NewFromInt(40)))
	suite.True(resp.ToTransaction.Amount.Equal(decimal.NewFromInt(20)))
	suite.Equal(domain.KindFXConvertOut, resp.FromTransaction.Kind)
	suite.Equal(domain.KindFXConvertIn, resp.ToTransaction.Kind)
}

func (suite *WalletServiceTestSuite) TestConvert_SameCurrency() {
	ctx := context.Background()
	userID := uuid.NewString()

	_, err := suite.service.Convert(ctx, userID, dto.ConvertRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "USD",
		WalletType:       domain.WalletTypePersonal,
		Amount:           decimal.NewFromInt(10),
	}, userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *WalletServiceTestSuite) TestLockFundsForReceipt_PairsDepositAndLock() {
	ctx := context.Background()
	userID := uuid.NewString()
	receiptID := uuid.NewString()
	wallet := makeWallet(userID, "USD", "10", "0")
	suite.expectMutation(wallet)

	txn, err := suite.service.LockFundsForReceipt(ctx, userID, "USD", decimal.NewFromInt(45), receiptID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.KindLock, txn.Kind)

	// One DEPOSIT row then one LOCK row, both linked to the receipt.
	suite.Require().Len(suite.mockWalletRepo.savedTxns, 2)
	suite.Equal(domain.KindDeposit, suite.mockWalletRepo.savedTxns[0].Kind)
	suite.Equal(domain.KindLock, suite.mockWalletRepo.savedTxns[1].Kind)
	for _, saved := range suite.mockWalletRepo.savedTxns {
		suite.Require().NotNil(saved.ReceiptID)
		suite.Equal(receiptID, *saved.ReceiptID)
	}

	// Net effect: available unchanged, locked credited.
	final := suite.mockWalletRepo.savedWallets[len(suite.mockWalletRepo.savedWallets)-1]
	suite.True(final.AvailableBalance.Equal(decimal.NewFromInt(10)))
	suite.True(final.LockedBalance.Equal(decimal.NewFromInt(45)))
}

func (suite *WalletServiceTestSuite) TestListTransactions_ForbiddenForOtherUser() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	requesterID := uuid.NewString()
	wallet := makeWallet(ownerID, "USD", "0", "0")

	suite.mockWalletRepo.On("FindWalletByID", mock.Anything, wallet.WalletID).Return(&wallet, nil)
	suite.mockUserRepo.On("FindUserByID", mock.Anything, requesterID).
		Return(&domain.User{UserID: requesterID, Role: domain.RoleMember}, nil)

	_, _, err := suite.service.ListTransactions(ctx, requesterID, wallet.WalletID, 20, "")

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func TestWalletServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}
