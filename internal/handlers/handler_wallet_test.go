package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
)

// --- Mock WalletService ---
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID string, currencyCode string, walletType domain.WalletType) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, currencyCode, walletType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) ListWallets(ctx context.Context, userID string) ([]domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletService) ListTransactions(ctx context.Context, requesterID string, walletID string, limit int, nextToken string) ([]domain.WalletTransaction, *string, error) {
	args := m.Called(ctx, requesterID, walletID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.WalletTransaction), token, args.Error(2)
}

func (m *MockWalletService) Deposit(ctx context.Context, userID string, req dto.DepositRequest, actorID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) LockFunds(ctx context.Context, userID string, req dto.LockFundsRequest, actorID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) UnlockFunds(ctx context.Context, userID string, req dto.UnlockFundsRequest, actorID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) Transfer(ctx context.Context, fromUserID string, req dto.TransferRequest, actorID string) (*domain.WalletTransaction, *domain.WalletTransaction, error) {
	args := m.Called(ctx, fromUserID, req, actorID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Get(1).(*domain.WalletTransaction), args.Error(2)
}

func (m *MockWalletService) Convert(ctx context.Context, userID string, req dto.ConvertRequest, actorID string) (*dto.ConvertResponse, error) {
	args := m.Called(ctx, userID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ConvertResponse), args.Error(1)
}

func (m *MockWalletService) DepositForReceipt(ctx context.Context, userID string, currencyCode string, amount decimal.Decimal, receiptID string, actorID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, currencyCode, amount, receiptID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) LockFundsForReceipt(ctx context.Context, userID string, currencyCode string, amount decimal.Decimal, receiptID string, actorID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, currencyCode, amount, receiptID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.WalletSvcFacade = (*MockWalletService)(nil)

// --- Mock UserService (reader surface) ---
type MockUserReaderService struct {
	mock.Mock
}

func (m *MockUserReaderService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserReaderService) ListUsers(ctx context.Context, adminID string, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, adminID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserReaderService) RequireAdmin(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserReaderSvc = (*MockUserReaderService)(nil)

// --- Test Suite ---
type WalletHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockWalletService *MockWalletService
	mockUserService   *MockUserReaderService
	jwtSecret         string

	userID string
}

func (suite *WalletHandlerTestSuite) generateTestToken(userID string) string {
	claims := middleware.AuthClaims{
		Role: string(domain.RoleMember),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "wla-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *WalletHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	registerCustomValidators()

	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()
	suite.mockWalletService = new(MockWalletService)
	suite.mockUserService = new(MockUserReaderService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	registerWalletRoutes(v1, suite.mockWalletService, suite.mockUserService)
}

// asAdmin makes the suite user pass the admin capability check.
func (suite *WalletHandlerTestSuite) asAdmin() {
	suite.mockUserService.On("RequireAdmin", mock.Anything, suite.userID).
		Return(&domain.User{UserID: suite.userID, Role: domain.RoleAdmin}, nil)
}

func (suite *WalletHandlerTestSuite) doJSON(method, url string, body any, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *WalletHandlerTestSuite) TestDeposit_Success() {
	suite.asAdmin()
	txn := &domain.WalletTransaction{
		TransactionID: uuid.NewString(),
		WalletID:      uuid.NewString(),
		UserID:        suite.userID,
		Kind:          domain.KindDeposit,
		Amount:        decimal.RequireFromString("100.50"),
		CurrencyCode:  "USD",
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.RequireFromString("100.50"),
	}
	suite.mockWalletService.On("Deposit",
		mock.Anything,
		suite.userID,
		mock.MatchedBy(func(req dto.DepositRequest) bool {
			return req.CurrencyCode == "USD" && req.Amount.Equal(decimal.RequireFromString("100.50"))
		}),
		suite.userID,
	).Return(txn, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/wallets/deposit", gin.H{
		"currencyCode": "USD",
		"walletType":   "PERSONAL",
		"amount":       "100.50",
	}, true)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.WalletTransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(txn.TransactionID, resp.TransactionID)
	suite.True(resp.BalanceAfter.Equal(txn.BalanceAfter))
	suite.mockWalletService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestDeposit_MemberForbidden() {
	suite.mockUserService.On("RequireAdmin", mock.Anything, suite.userID).
		Return(nil, apperrors.ErrForbidden)

	w := suite.doJSON(http.MethodPost, "/api/v1/wallets/deposit", gin.H{
		"currencyCode": "USD",
		"walletType":   "PERSONAL",
		"amount":       "1000000",
	}, true)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockWalletService.AssertNotCalled(suite.T(), "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletHandlerTestSuite) TestDeposit_NonPositiveAmountRejectedAtBinding() {
	suite.asAdmin()
	w := suite.doJSON(http.MethodPost, "/api/v1/wallets/deposit", gin.H{
		"currencyCode": "USD",
		"walletType":   "PERSONAL",
		"amount":       "0",
	}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockWalletService.AssertNotCalled(suite.T(), "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletHandlerTestSuite) TestDeposit_MissingToken() {
	w := suite.doJSON(http.MethodPost, "/api/v1/wallets/deposit", gin.H{
		"currencyCode": "USD",
		"walletType":   "PERSONAL",
		"amount":       "10",
	}, false)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *WalletHandlerTestSuite) TestLockFunds_InsufficientBalanceMapsTo422() {
	suite.mockWalletService.On("LockFunds", mock.Anything, suite.userID, mock.Anything, suite.userID).
		Return(nil, &apperrors.InsufficientBalanceError{
			CurrencyCode: "USD",
			Available:    decimal.RequireFromString("5"),
			Required:     decimal.RequireFromString("50"),
		}).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/wallets/lock", gin.H{
		"currencyCode": "USD",
		"walletType":   "PERSONAL",
		"amount":       "50",
	}, true)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *WalletHandlerTestSuite) TestGetWallet_NotFound() {
	suite.mockWalletService.On("GetWallet", mock.Anything, suite.userID, "EUR", domain.WalletTypePersonal).
		Return(nil, apperrors.NewNotFoundError("wallet not found")).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/wallets/EUR/PERSONAL", nil, true)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *WalletHandlerTestSuite) TestListWallets_Success() {
	wallets := []domain.Wallet{{
		WalletID:         uuid.NewString(),
		UserID:           suite.userID,
		CurrencyCode:     "USD",
		WalletType:       domain.WalletTypePersonal,
		AvailableBalance: decimal.RequireFromString("12.30"),
		LockedBalance:    decimal.Zero,
	}}
	suite.mockWalletService.On("ListWallets", mock.Anything, suite.userID).Return(wallets, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/wallets", nil, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.WalletResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 1)
	suite.Equal(wallets[0].WalletID, resp[0].WalletID)
}

func TestWalletHandler(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}
