package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	"github.com/valutatrade/tradehub/internal/core/services"
	"github.com/valutatrade/tradehub/internal/dto"
)

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) LoadUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUsers(ctx context.Context, users []domain.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

// --- Test Suite ---

type UserServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	userRepo     *MockUserRepository
	portfolioSvc *MockPortfolioService
}

func (s *UserServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.userRepo = new(MockUserRepository)
	s.portfolioSvc = new(MockPortfolioService)
}

func (s *UserServiceTestSuite) newService(existing []domain.User) *services.UserService {
	s.userRepo.On("LoadUsers", s.ctx).Return(existing, nil).Once()
	svc, err := services.NewUserService(s.ctx, s.userRepo, s.portfolioSvc, 4, discardLogger())
	s.Require().NoError(err)
	return svc
}

func (s *UserServiceTestSuite) TestRegister_AssignsMonotonicIDs() {
	svc := s.newService([]domain.User{
		{UserID: 1, Username: "alice"},
		{UserID: 7, Username: "bob"},
	})
	s.userRepo.On("SaveUsers", s.ctx, mock.AnythingOfType("[]domain.User")).Return(nil).Once()
	s.portfolioSvc.On("CreateForUser", s.ctx, int64(8)).Return(domain.NewPortfolio(8), nil).Once()

	user, err := svc.Register(s.ctx, dto.RegisterRequest{Username: "carol", Password: "secret"})

	s.Require().NoError(err)
	s.Equal(int64(8), user.UserID, "next ID is max existing + 1")
	s.Equal("carol", user.Username)
	s.NotEmpty(user.Salt)
	s.NotEmpty(user.PasswordHash)
	s.NotEqual("secret", user.PasswordHash)
	s.portfolioSvc.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestRegister_DuplicateUsername() {
	svc := s.newService([]domain.User{{UserID: 1, Username: "alice"}})

	_, err := svc.Register(s.ctx, dto.RegisterRequest{Username: "alice", Password: "secret"})

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.userRepo.AssertNotCalled(s.T(), "SaveUsers", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestRegister_PasswordTooShort() {
	svc := s.newService(nil)

	_, err := svc.Register(s.ctx, dto.RegisterRequest{Username: "alice", Password: "abc"})

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *UserServiceTestSuite) TestRegister_PortfolioFailureRollsBackUser() {
	svc := s.newService(nil)
	s.userRepo.On("SaveUsers", s.ctx, mock.Anything).Return(nil).Twice()
	s.portfolioSvc.On("CreateForUser", s.ctx, int64(1)).
		Return(nil, errors.New("disk full")).Once()

	_, err := svc.Register(s.ctx, dto.RegisterRequest{Username: "alice", Password: "secret"})
	s.Require().Error(err)

	// The rolled-back user must not exist afterwards.
	_, err = svc.Authenticate(s.ctx, dto.LoginRequest{Username: "alice", Password: "secret"})
	var unknownErr apperrors.UnknownUserError
	s.ErrorAs(err, &unknownErr)
}

func (s *UserServiceTestSuite) TestAuthenticate() {
	svc := s.newService(nil)
	s.userRepo.On("SaveUsers", s.ctx, mock.Anything).Return(nil).Once()
	s.portfolioSvc.On("CreateForUser", s.ctx, int64(1)).Return(domain.NewPortfolio(1), nil).Once()

	_, err := svc.Register(s.ctx, dto.RegisterRequest{Username: "alice", Password: "secret"})
	s.Require().NoError(err)

	user, err := svc.Authenticate(s.ctx, dto.LoginRequest{Username: "alice", Password: "secret"})
	s.Require().NoError(err)
	s.Equal(int64(1), user.UserID)

	_, err = svc.Authenticate(s.ctx, dto.LoginRequest{Username: "alice", Password: "wrong"})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = svc.Authenticate(s.ctx, dto.LoginRequest{Username: "nobody", Password: "secret"})
	var unknownErr apperrors.UnknownUserError
	s.Require().ErrorAs(err, &unknownErr)
	s.Equal("nobody", unknownErr.Username)
}

func (s *UserServiceTestSuite) TestChangePassword() {
	svc := s.newService(nil)
	s.userRepo.On("SaveUsers", s.ctx, mock.Anything).Return(nil)
	s.portfolioSvc.On("CreateForUser", s.ctx, int64(1)).Return(domain.NewPortfolio(1), nil).Once()

	_, err := svc.Register(s.ctx, dto.RegisterRequest{Username: "alice", Password: "secret"})
	s.Require().NoError(err)

	err = svc.ChangePassword(s.ctx, 1, dto.ChangePasswordRequest{NewPassword: "brand-new"})
	s.Require().NoError(err)

	_, err = svc.Authenticate(s.ctx, dto.LoginRequest{Username: "alice", Password: "secret"})
	s.Error(err, "old password must stop working")
	_, err = svc.Authenticate(s.ctx, dto.LoginRequest{Username: "alice", Password: "brand-new"})
	s.NoError(err)
}

func (s *UserServiceTestSuite) TestChangePassword_SaveFailureRestoresHash() {
	svc := s.newService(nil)
	s.userRepo.On("SaveUsers", s.ctx, mock.Anything).Return(nil).Once()
	s.portfolioSvc.On("CreateForUser", s.ctx, int64(1)).Return(domain.NewPortfolio(1), nil).Once()

	_, err := svc.Register(s.ctx, dto.RegisterRequest{Username: "alice", Password: "secret"})
	s.Require().NoError(err)

	s.userRepo.On("SaveUsers", s.ctx, mock.Anything).Return(errors.New("disk full")).Once()
	err = svc.ChangePassword(s.ctx, 1, dto.ChangePasswordRequest{NewPassword: "brand-new"})
	s.Require().Error(err)

	_, err = svc.Authenticate(s.ctx, dto.LoginRequest{Username: "alice", Password: "secret"})
	s.NoError(err, "previous password must survive a failed change")
}

func (s *UserServiceTestSuite) TestChangePassword_UnknownUser() {
	svc := s.newService(nil)

	err := svc.ChangePassword(s.ctx, 99, dto.ChangePasswordRequest{NewPassword: "brand-new"})

	var unknownErr apperrors.UnknownUserError
	s.Require().ErrorAs(err, &unknownErr)
	s.Equal(int64(99), unknownErr.UserID)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
