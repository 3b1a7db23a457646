package dto

// RegisterRequest defines the data required to register a new user.
// Minimum password length is additionally enforced by the service against
// the configured value.
type RegisterRequest struct {
	Username string `validate:"required,min=1,max=64"`
	Password string `validate:"required"`
}

// LoginRequest defines the credentials for authentication.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// ChangePasswordRequest defines the data for the only in-place user update.
type ChangePasswordRequest struct {
	NewPassword string `validate:"required"`
}
