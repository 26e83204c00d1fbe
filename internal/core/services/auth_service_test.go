package services_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/core/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/models"
	"github.com/velmora/wallet_ledger_app/internal/platform/config"
)

type AuthServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  *services.AuthService

	userRow models.User
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	cfg := &config.Config{
		JWTSecret:         "test-secret-for-signing-tokens",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "wla-test",
	}
	suite.service = services.NewAuthService(cfg, suite.mockRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	suite.Require().NoError(err)
	suite.userRow = models.User{
		UserID:       uuid.NewString(),
		Name:         "Login User",
		Email:        "login@example.com",
		PasswordHash: string(hash),
		Role:         string(domain.RoleMember),
	}
}

func (suite *AuthServiceTestSuite) TestLogin_TokenRoundTrip() {
	ctx := context.Background()
	suite.mockRepo.On("FindUserByEmail", ctx, suite.userRow.Email).Return(&suite.userRow, nil)

	resp, err := suite.service.Login(ctx, dto.LoginRequest{Email: suite.userRow.Email, Password: "correct horse"})

	suite.Require().NoError(err)
	suite.Equal(suite.userRow.UserID, resp.User.UserID)
	suite.WithinDuration(time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	userID, role, err := suite.service.ValidateToken(ctx, resp.Token)
	suite.Require().NoError(err)
	suite.Equal(suite.userRow.UserID, userID)
	suite.Equal(string(domain.RoleMember), role)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	suite.mockRepo.On("FindUserByEmail", ctx, suite.userRow.Email).Return(&suite.userRow, nil)

	_, err := suite.service.Login(ctx, dto.LoginRequest{Email: suite.userRow.Email, Password: "incorrect horse"})

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmailLooksLikeWrongPassword() {
	ctx := context.Background()
	suite.mockRepo.On("FindUserByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "anything"})

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AuthServiceTestSuite) TestValidateToken_RejectsTamperedToken() {
	ctx := context.Background()
	suite.mockRepo.On("FindUserByEmail", ctx, suite.userRow.Email).Return(&suite.userRow, nil)

	resp, err := suite.service.Login(ctx, dto.LoginRequest{Email: suite.userRow.Email, Password: "correct horse"})
	suite.Require().NoError(err)

	tampered := resp.Token[:len(resp.Token)-2] + "xx"
	_, _, err = suite.service.ValidateToken(ctx, tampered)

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestValidateToken_Garbage() {
	_, _, err := suite.service.ValidateToken(context.Background(), "not.a.token")
	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

// The seed migration is the only way an ADMIN user exists on a fresh
// database, so its hash must verify against the documented bootstrap
// password or no one can ever log in as admin.
func TestBootstrapAdminSeedHashMatchesDocumentedPassword(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "000002_seed_admin_user.up.sql"))
	require.NoError(t, err)

	matches := regexp.MustCompile(`\$2a\$\d\d\$[./A-Za-z0-9]{53}`).FindAllString(string(raw), -1)
	require.Len(t, matches, 1, "seed migration should contain exactly one bcrypt hash")

	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(matches[0]), []byte("changeme-admin")))
}
