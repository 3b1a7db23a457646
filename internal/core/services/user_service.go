package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
	"github.com/valutatrade/tradehub/internal/dto"
	"github.com/valutatrade/tradehub/internal/utils"
)

// UserService manages registration, authentication and password changes.
// A portfolio is created atomically with each user; if the portfolio save
// fails the new user is removed again.
type UserService struct {
	userRepo          portsrepo.UserRepositoryFacade
	portfolioService  portssvc.PortfolioSvcFacade
	logger            *slog.Logger
	minPasswordLength int

	mu    sync.Mutex
	users []domain.User
}

// NewUserService loads all persisted users and returns the service.
func NewUserService(ctx context.Context, userRepo portsrepo.UserRepositoryFacade, portfolioService portssvc.PortfolioSvcFacade, minPasswordLength int, logger *slog.Logger) (*UserService, error) {
	users, err := userRepo.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return &UserService{
		userRepo:          userRepo,
		portfolioService:  portfolioService,
		logger:            logger,
		minPasswordLength: minPasswordLength,
		users:             users,
	}, nil
}

// Register creates a new user with a monotonically assigned ID and an empty
// portfolio.
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	if err := s.checkPassword(req.Password); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, u := range s.users {
		if u.Username == req.Username {
			return nil, fmt.Errorf("%w: username %q", apperrors.ErrDuplicate, req.Username)
		}
		if u.UserID > maxID {
			maxID = u.UserID
		}
	}

	salt, err := utils.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := utils.HashPassword(req.Password, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		UserID:           maxID + 1,
		Username:         req.Username,
		PasswordHash:     hash,
		Salt:             salt,
		RegistrationDate: time.Now(),
	}

	s.users = append(s.users, user)
	if err := s.userRepo.SaveUsers(ctx, s.users); err != nil {
		s.users = s.users[:len(s.users)-1]
		return nil, fmt.Errorf("failed to save users: %w", err)
	}

	if _, err := s.portfolioService.CreateForUser(ctx, user.UserID); err != nil {
		// Roll the user back so user and portfolio stay in lockstep.
		s.users = s.users[:len(s.users)-1]
		if saveErr := s.userRepo.SaveUsers(ctx, s.users); saveErr != nil {
			s.logger.Error("failed to roll back user after portfolio creation failure",
				slog.Int64("user_id", user.UserID),
				slog.String("error", saveErr.Error()))
		}
		return nil, fmt.Errorf("failed to create portfolio for user %d: %w", user.UserID, err)
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.UserID),
		slog.String("username", user.Username))
	return &user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, req dto.LoginRequest) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Username == req.Username {
			if !utils.CheckPasswordHash(req.Password, s.users[i].Salt, s.users[i].PasswordHash) {
				return nil, fmt.Errorf("%w: wrong password for %q", apperrors.ErrValidation, req.Username)
			}
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperrors.UnknownUserError{Username: req.Username}
}

// ChangePassword rehashes and persists the user's password; the only
// in-place user update.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error {
	if err := s.checkPassword(req.NewPassword); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].UserID == userID {
			hash, err := utils.HashPassword(req.NewPassword, s.users[i].Salt)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			previous := s.users[i].PasswordHash
			s.users[i].PasswordHash = hash
			if err := s.userRepo.SaveUsers(ctx, s.users); err != nil {
				s.users[i].PasswordHash = previous
				return fmt.Errorf("failed to save users: %w", err)
			}
			return nil
		}
	}
	return apperrors.UnknownUserError{UserID: userID}
}

func (s *UserService) checkPassword(password string) error {
	if len(password) < s.minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			apperrors.ErrValidation, s.minPasswordLength)
	}
	return nil
}
