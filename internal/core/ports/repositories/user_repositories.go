package repositories

import (
	"context"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/models"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by id (excluding soft-deleted rows).
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves the full DB row for credential checks.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers retrieves a page of users with limit/offset.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user with its password hash.
	SaveUser(ctx context.Context, user domain.User, passwordHash string) error

	// UpdateUser updates a user's editable fields.
	UpdateUser(ctx context.Context, user domain.User) error

	// MarkUserDeleted soft-deletes a user.
	MarkUserDeleted(ctx context.Context, userID string, deletedBy string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
