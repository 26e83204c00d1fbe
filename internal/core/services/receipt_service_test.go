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
)

// MockReceiptRepository is a mock type for the ReceiptRepositoryWithTx interface
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) ListReceiptsByUser(ctx context.Context, userID string, status *domain.ReceiptStatus, limit int, nextToken *string) ([]domain.Receipt, *string, error) {
	args := m.Called(ctx, userID, status, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.Receipt), token, args.Error(2)
}

func (m *MockReceiptRepository) ListReceiptsByStatus(ctx context.Context, status domain.ReceiptStatus, limit int, nextToken *string) ([]domain.Receipt, *string, error) {
	args := m.Called(ctx, status, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.Receipt), token, args.Error(2)
}

func (m *MockReceiptRepository) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) FindReceiptForUpdate(ctx context.Context, tx pgx.Tx, receiptID string) (*domain.Receipt, error) {
	args := m.Called(ctx, tx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) UpdateReceiptStatusInTx(ctx context.Context, tx pgx.Tx, receipt domain.Receipt) error {
	args := m.Called(ctx, tx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func (m *MockReceiptRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockReceiptRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockReceiptRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// MockBankAccountReader is a mock type for the BankAccountReader interface
type MockBankAccountReader struct {
	mock.Mock
}

func (m *MockBankAccountReader) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	args := m.Called(ctx, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountReader) ListBankAccountsByUser(ctx context.Context, userID string) ([]domain.BankAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

// MockUserReaderSvc is a mock type for the UserReaderSvc interface
type MockUserReaderSvc struct {
	mock.Mock
}

func (m *MockUserReaderSvc) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserReaderSvc) ListUsers(ctx context.Context, adminID string, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, adminID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserReaderSvc) RequireAdmin(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockWalletSettlementSvc is a mock type for the WalletSettlementSvc interface
type MockWalletSettlementSvc struct {
	mock.Mock
}

func (m *MockWalletSettlementSvc) DepositForReceipt(ctx context.Context, userID string, currencyCode string, amount decimal.Decimal, receiptID string, actorID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, currencyCode, amount, receiptID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletSettlementSvc) LockFundsForReceipt(ctx context.Context, userID string, currencyCode string, amount decimal.Decimal, receiptID string, actorID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, currencyCode, amount, receiptID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

// --- Test Suite Setup ---

type ReceiptServiceTestSuite struct {
	suite.Suite
	mockReceiptRepo *MockReceiptRepository
	mockAccountRepo *MockBankAccountReader
	mockUserSvc     *MockUserReaderSvc
	mockWalletSvc   *MockWalletSettlementSvc
	service         *services.ReceiptService

	adminID string
}

func (suite *ReceiptServiceTestSuite) SetupTest() {
	suite.mockReceiptRepo = new(MockReceiptRepository)
	suite.mockAccountRepo = new(MockBankAccountReader)
	suite.mockUserSvc = new(MockUserReaderSvc)
	suite.mockWalletSvc = new(MockWalletSettlementSvc)
	suite.service = services.NewReceiptService(suite.mockReceiptRepo, suite.mockAccountRepo, suite.mockUserSvc, suite.mockWalletSvc, nil)

	suite.adminID = uuid.NewString()
}

func (suite *ReceiptServiceTestSuite) expectAdmin(userID string) {
	suite.mockUserSvc.On("RequireAdmin", mock.Anything, userID).
		Return(&domain.User{UserID: userID, Role: domain.RoleAdmin}, nil)
}

func (suite *ReceiptServiceTestSuite) expectNonAdmin(userID string) {
	suite.mockUserSvc.On("RequireAdmin", mock.Anything, userID).
		Return(nil, apperrors.ErrForbidden)
}

func makeBankAccount(userID string, direction domain.BankAccountDirection) *domain.BankAccount {
	return &domain.BankAccount{
		BankAccountID: uuid.NewString(),
		UserID:        userID,
		Name:          "Checking",
		HolderName:    "Holder",
		CurrencyCode:  "USD",
		Direction:     direction,
	}
}

func makePendingReceipt(userID, senderID, receiverID string, amount string, isLock bool) *domain.Receipt {
	return &domain.Receipt{
		ReceiptID:         uuid.NewString(),
		UserID:            userID,
		SenderAccountID:   senderID,
		ReceiverAccountID: receiverID,
		Amount:            decimal.RequireFromString(amount),
		CurrencyCode:      "USD",
		Status:            domain.ReceiptPending,
		IsLock:            isLock,
	}
}

// --- Test Cases ---

func (suite *ReceiptServiceTestSuite) TestCreateReceipt_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	sender := makeBankAccount(userID, domain.DirectionSender)
	receiver := makeBankAccount(uuid.NewString(), domain.DirectionReceiver)

	suite.mockAccountRepo.On("FindBankAccountByID", ctx, sender.BankAccountID).Return(sender, nil)
	suite.mockAccountRepo.On("FindBankAccountByID", ctx, receiver.BankAccountID).Return(receiver, nil)
	suite.mockReceiptRepo.On("SaveReceipt", ctx, mock.AnythingOfType("domain.Receipt")).Return(nil).Once()

	receipt, err := suite.service.CreateReceipt(ctx, userID, dto.CreateReceiptRequest{
		SenderAccountID:   sender.BankAccountID,
		ReceiverAccountID: receiver.BankAccountID,
		Amount:            decimal.NewFromInt(50),
		CurrencyCode:      "USD",
	})

	suite.Require().NoError(err)
	suite.Equal(domain.ReceiptPending, receipt.Status)
	suite.Equal(userID, receipt.UserID)
	suite.NotEmpty(receipt.ReceiptID)
	suite.mockReceiptRepo.AssertExpectations(suite.T())
}

func (suite *ReceiptServiceTestSuite) TestCreateReceipt_WrongDirection() {
	ctx := context.Background()
	userID := uuid.NewString()
	// A RECEIVER-only account offered as the sender side.
	sender := makeBankAccount(userID, domain.DirectionReceiver)
	receiver := makeBankAccount(uuid.NewString(), domain.DirectionReceiver)

	suite.mockAccountRepo.On("FindBankAccountByID", ctx, sender.BankAccountID).Return(sender, nil)

	_, err := suite.service.CreateReceipt(ctx, userID, dto.CreateReceiptRequest{
		SenderAccountID:   sender.BankAccountID,
		ReceiverAccountID: receiver.BankAccountID,
		Amount:            decimal.NewFromInt(50),
		CurrencyCode:      "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	var accErr *apperrors.InvalidBankAccountError
	suite.Require().ErrorAs(err, &accErr)
	suite.Equal(sender.BankAccountID, accErr.BankAccountID)
}

func (suite *ReceiptServiceTestSuite) TestCreateReceipt_SameAccount() {
	ctx := context.Background()
	accountID := uuid.NewString()

	_, err := suite.service.CreateReceipt(ctx, uuid.NewString(), dto.CreateReceiptRequest{
		SenderAccountID:   accountID,
		ReceiverAccountID: accountID,
		Amount:            decimal.NewFromInt(50),
		CurrencyCode:      "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReceiptServiceTestSuite) TestApproveReceipt_CreditsReceiverOwner() {
	ctx := context.Background()
	receiverOwner := uuid.NewString()
	receiver := makeBankAccount(receiverOwner, domain.DirectionReceiver)
	receipt := makePendingReceipt(uuid.NewString(), uuid.NewString(), receiver.BankAccountID, "50", false)

	suite.expectAdmin(suite.adminID)
	suite.mockReceiptRepo.On("FindReceiptForUpdate", mock.Anything, mock.Anything, receipt.ReceiptID).Return(receipt, nil)
	suite.mockAccountRepo.On("FindBankAccountByID", mock.Anything, receiver.BankAccountID).Return(receiver, nil)
	suite.mockWalletSvc.On("DepositForReceipt", mock.Anything, receiverOwner, "USD", decimal.NewFromInt(50), receipt.ReceiptID, suite.adminID).
		Return(&domain.WalletTransaction{TransactionID: uuid.NewString()}, nil).Once()
	suite.mockReceiptRepo.On("UpdateReceiptStatusInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(r domain.Receipt) bool {
		return r.Status == domain.ReceiptApproved && r.ApprovedBy != nil && *r.ApprovedBy == suite.adminID
	})).Return(nil).Once()

	approved, err := suite.service.ApproveReceipt(ctx, suite.adminID, receipt.ReceiptID, dto.ApproveReceiptRequest{})

	suite.Require().NoError(err)
	suite.Equal(domain.ReceiptApproved, approved.Status)
	suite.mockWalletSvc.AssertExpectations(suite.T())
	suite.mockReceiptRepo.AssertExpectations(suite.T())
}

func (suite *ReceiptServiceTestSuite) TestApproveReceipt_OverrideAmountWins() {
	ctx := context.Background()
	receiverOwner := uuid.NewString()
	receiver := makeBankAccount(receiverOwner, domain.DirectionBoth)
	receipt := makePendingReceipt(uuid.NewString(), uuid.NewString(), receiver.BankAccountID, "50", false)
	override := decimal.NewFromInt(45)

	suite.expectAdmin(suite.adminID)
	suite.mockReceiptRepo.On("FindReceiptForUpdate", mock.Anything, mock.Anything, receipt.ReceiptID).Return(receipt, nil)
	suite.mockAccountRepo.On("FindBankAccountByID", mock.Anything, receiver.BankAccountID).Return(receiver, nil)
	suite.mockWalletSvc.On("DepositForReceipt", mock.Anything, receiverOwner, "USD", override, receipt.ReceiptID, suite.adminID).
		Return(&domain.WalletTransaction{TransactionID: uuid.NewString()}, nil).Once()
	suite.mockReceiptRepo.On("UpdateReceiptStatusInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Receipt")).Return(nil)

	approved, err := suite.service.ApproveReceipt(ctx, suite.adminID, receipt.ReceiptID, dto.ApproveReceiptRequest{OverrideAmount: &override})

	suite.Require().NoError(err)
	suite.True(approved.EffectiveAmount().Equal(override))
	suite.mockWalletSvc.AssertExpectations(suite.T())
}

func (suite *ReceiptServiceTestSuite) TestApproveReceipt_LockReceiptLocksFunds() {
	ctx := context.Background()
	receiverOwner := uuid.NewString()
	receiver := makeBankAccount(receiverOwner, domain.DirectionReceiver)
	receipt := makePendingReceipt(uuid.NewString(), uuid.NewString(), receiver.BankAccountID, "30", true)

	suite.expectAdmin(suite.adminID)
	suite.mockReceiptRepo.On("FindReceiptForUpdate", mock.Anything, mock.Anything, receipt.ReceiptID).Return(receipt, nil)
	suite.mockAccountRepo.On("FindBankAccountByID", mock.Anything, receiver.BankAccountID).Return(receiver, nil)
	suite.mockWalletSvc.On("LockFundsForReceipt", mock.Anything, receiverOwner, "USD", decimal.NewFromInt(30), receipt.ReceiptID, suite.adminID).
		Return(&domain.WalletTransaction{TransactionID: uuid.NewString()}, nil).Once()
	suite.mockReceiptRepo.On("UpdateReceiptStatusInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Receipt")).Return(nil)

	_, err := suite.service.ApproveReceipt(ctx, suite.adminID, receipt.ReceiptID, dto.ApproveReceiptRequest{})

	suite.Require().NoError(err)
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "DepositForReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReceiptServiceTestSuite) TestApproveReceipt_NotPending() {
	ctx := context.Background()
	receipt := makePendingReceipt(uuid.NewString(), uuid.NewString(), uuid.NewString(), "50", false)
	receipt.Status = domain.ReceiptApproved

	suite.expectAdmin(suite.adminID)
	suite.mockReceiptRepo.On("FindReceiptForUpdate", mock.Anything, mock.Anything, receipt.ReceiptID).Return(receipt, nil)

	_, err := suite.service.ApproveReceipt(ctx, suite.adminID, receipt.ReceiptID, dto.ApproveReceiptRequest{})

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	var stateErr *apperrors.InvalidStateError
	suite.Require().ErrorAs(err, &stateErr)
	suite.Equal(string(domain.ReceiptApproved), stateErr.Status)
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "DepositForReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReceiptServiceTestSuite) TestApproveReceipt_NonAdmin() {
	ctx := context.Background()
	memberID := uuid.NewString()
	suite.expectNonAdmin(memberID)

	_, err := suite.service.ApproveReceipt(ctx, memberID, uuid.NewString(), dto.ApproveReceiptRequest{})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockReceiptRepo.AssertNotCalled(suite.T(), "FindReceiptForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReceiptServiceTestSuite) TestApproveReceipt_WalletFailureAborts() {
	ctx := context.Background()
	receiverOwner := uuid.NewString()
	receiver := makeBankAccount(receiverOwner, domain.DirectionReceiver)
	receipt := makePendingReceipt(uuid.NewString(), uuid.NewString(), receiver.BankAccountID, "50", false)

	suite.expectAdmin(suite.adminID)
	suite.mockReceiptRepo.On("FindReceiptForUpdate", mock.Anything, mock.Anything, receipt.ReceiptID).Return(receipt, nil)
	suite.mockAccountRepo.On("FindBankAccountByID", mock.Anything, receiver.BankAccountID).Return(receiver, nil)
	suite.mockWalletSvc.On("DepositForReceipt", mock.Anything, receiverOwner, "USD", decimal.NewFromInt(50), receipt.ReceiptID, suite.adminID).
		Return(nil, apperrors.ErrInternal)

	_, err := suite.service.ApproveReceipt(ctx, suite.adminID, receipt.ReceiptID, dto.ApproveReceiptRequest{})

	suite.Require().ErrorIs(err, apperrors.ErrInternal)
	suite.mockReceiptRepo.AssertNotCalled(suite.T(), "UpdateReceiptStatusInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReceiptServiceTestSuite) TestRejectReceipt_NoWalletMutation() {
	ctx := context.Background()
	receipt := makePendingReceipt(uuid.NewString(), uuid.NewString(), uuid.NewString(), "50", false)

	suite.expectAdmin(suite.adminID)
	suite.mockReceiptRepo.On("FindReceiptForUpdate", mock.Anything, mock.Anything, receipt.ReceiptID).Return(receipt, nil)
	suite.mockReceiptRepo.On("UpdateReceiptStatusInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(r domain.Receipt) bool {
		return r.Status == domain.ReceiptRejected
	})).Return(nil).Once()

	rejected, err := suite.service.RejectReceipt(ctx, suite.adminID, receipt.ReceiptID)

	suite.Require().NoError(err)
	suite.Equal(domain.ReceiptRejected, rejected.Status)
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "DepositForReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "LockFundsForReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReceiptServiceTestSuite) TestGetReceiptByID_OtherUserForbidden() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	requesterID := uuid.NewString()
	receipt := makePendingReceipt(ownerID, uuid.NewString(), uuid.NewString(), "50", false)

	suite.mockReceiptRepo.On("FindReceiptByID", ctx, receipt.ReceiptID).Return(receipt, nil)
	suite.expectNonAdmin(requesterID)

	_, err := suite.service.GetReceiptByID(ctx, requesterID, receipt.ReceiptID)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ReceiptServiceTestSuite) TestListReceipts_StatusFilterReachesRepository() {
	ctx := context.Background()
	userID := uuid.NewString()
	status := domain.ReceiptApproved
	approved := makePendingReceipt(userID, uuid.NewString(), uuid.NewString(), "50", false)
	approved.Status = domain.ReceiptApproved
	next := "next-token"

	suite.mockReceiptRepo.On("ListReceiptsByUser", ctx, userID,
		mock.MatchedBy(func(got *domain.ReceiptStatus) bool {
			return got != nil && *got == domain.ReceiptApproved
		}), 10, (*string)(nil)).
		Return([]domain.Receipt{*approved}, &next, nil)

	receipts, token, err := suite.service.ListReceipts(ctx, userID, dto.ListReceiptsParams{
		Limit:  10,
		Status: &status,
	})

	suite.Require().NoError(err)
	suite.Len(receipts, 1)
	suite.Require().NotNil(token)
	suite.Equal(next, *token)
}

func (suite *ReceiptServiceTestSuite) TestListReceipts_NoStatusPassesNil() {
	ctx := context.Background()
	userID := uuid.NewString()
	pending := makePendingReceipt(userID, uuid.NewString(), uuid.NewString(), "20", false)

	suite.mockReceiptRepo.On("ListReceiptsByUser", ctx, userID,
		(*domain.ReceiptStatus)(nil), 20, (*string)(nil)).
		Return([]domain.Receipt{*pending}, nil, nil)

	receipts, token, err := suite.service.ListReceipts(ctx, userID, dto.ListReceiptsParams{})

	suite.Require().NoError(err)
	suite.Len(receipts, 1)
	suite.Nil(token)
}

func TestReceiptServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReceiptServiceTestSuite))
}
