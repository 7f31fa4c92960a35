package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// MockAuthService is a mock implementation of the IAuthService interface
type MockAuthService struct {
	mock.Mock
}

var _ service.IAuthService = (*MockAuthService)(nil)

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) GenerateToken(userID uint, username string) (string, error) {
	args := m.Called(userID, username)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

// MockUserService is a mock implementation of the IUserService interface
type MockUserService struct {
	mock.Mock
}

var _ service.IUserService = (*MockUserService)(nil)

func (m *MockUserService) Register(ctx context.Context, req types.RegisterRequest) (*types.UserCreated, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserCreated), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, viewer service.Viewer, id uint) (*types.UserView, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserView), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, viewer service.Viewer, page repository.Page) ([]types.UserView, int64, error) {
	args := m.Called(ctx, viewer, page)
	users, _ := args.Get(0).([]types.UserView)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) SetPassword(ctx context.Context, viewer service.Viewer, req types.SetPasswordRequest) error {
	args := m.Called(ctx, viewer, req)
	return args.Error(0)
}

// MockSubscriptionService is a mock implementation of the ISubscriptionService interface
type MockSubscriptionService struct {
	mock.Mock
}

var _ service.ISubscriptionService = (*MockSubscriptionService)(nil)

func (m *MockSubscriptionService) Subscribe(ctx context.Context, viewer service.Viewer, authorID uint, recipesLimit int) (*types.SubscriptionView, error) {
	args := m.Called(ctx, viewer, authorID, recipesLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubscriptionView), args.Error(1)
}

func (m *MockSubscriptionService) Unsubscribe(ctx context.Context, viewer service.Viewer, authorID uint) error {
	args := m.Called(ctx, viewer, authorID)
	return args.Error(0)
}

func (m *MockSubscriptionService) List(ctx context.Context, viewer service.Viewer, page repository.Page, recipesLimit int) ([]types.SubscriptionView, int64, error) {
	args := m.Called(ctx, viewer, page, recipesLimit)
	subs, _ := args.Get(0).([]types.SubscriptionView)
	return subs, args.Get(1).(int64), args.Error(2)
}
