package services

import (
	"context"

	"github.com/velmora/wallet_ledger_app/internal/dto"
)

// AuthSvc defines credential authentication and token issuance.
type AuthSvc interface {
	// Login verifies the credentials and returns a signed token with the user.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)

	// ValidateToken parses a signed token and returns the user ID and role claim.
	ValidateToken(ctx context.Context, token string) (userID string, role string, err error)
}
