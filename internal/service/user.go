package service

import (
	"context"
	"errors"
	"strings"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/types"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users *repository.UserRepository
	views *ViewBuilder
	cost  int
}

var _ IUserService = (*UserService)(nil)

func NewUserService(users *repository.UserRepository, views *ViewBuilder) *UserService {
	return &UserService{users: users, views: views, cost: bcrypt.DefaultCost}
}

// WithHashCost sets the bcrypt cost, mainly so tests run fast.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

// Register validates the request and creates the user.
func (s *UserService) Register(ctx context.Context, req types.RegisterRequest) (*types.UserCreated, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	emailTaken, usernameTaken, err := s.users.Taken(ctx, req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	if emailTaken {
		verr.Add("email", "This email is already in use.")
	}
	if usernameTaken {
		verr.Add("username", "This username is already taken.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, NewValidationError("non_field_errors", "A user with this email or username already exists.")
		}
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("component", "users").Uint("user_id", user.ID).Msg("User registered")
	return &types.UserCreated{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *UserService) Get(ctx context.Context, viewer Viewer, id uint) (*types.UserView, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}
	views, err := s.views.Users(ctx, viewer, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of users ordered by id.
func (s *UserService) List(ctx context.Context, viewer Viewer, page repository.Page) ([]types.UserView, int64, error) {
	users, total, err := s.users.List(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views.Users(ctx, viewer, users)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// SetPassword replaces the viewer's password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, viewer Viewer, req types.SetPasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	user, err := s.users.Get(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "user"}
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return NewValidationError("current_password", "Invalid password.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}
