package services

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
	"github.com/valutatrade/tradehub/internal/dto"
)

// UserSvcFacade defines the user operations exposed to the CLI.
type UserSvcFacade interface {
	// Register creates a user and, atomically with it, an empty portfolio.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// Authenticate verifies credentials and returns the matching user.
	Authenticate(ctx context.Context, req dto.LoginRequest) (*domain.User, error)

	// ChangePassword is the only in-place user update.
	ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error
}
