package repositories

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// LoadUsers retrieves every persisted user.
	LoadUsers(ctx context.Context) ([]domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUsers durably persists the full user list.
	SaveUsers(ctx context.Context, users []domain.User) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
