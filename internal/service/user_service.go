package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	apperrors "bankelig/internal/errors"
	"bankelig/internal/model"
	"bankelig/internal/repository"
)

// ProfileInput carries the editable profile fields. Nil pointers mean
// "unchanged".
type ProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
}

// UserService handles profile management and account administration.
type UserService interface {
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*model.User, error)
	Deactivate(ctx context.Context, userID string) error
	List(ctx context.Context) ([]model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	sessions SessionManager
	log      zerolog.Logger
}

// NewUserService creates a user service.
func NewUserService(userRepo repository.UserRepository, sessions SessionManager, log zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		sessions: sessions,
		log:      log.With().Str("component", "users").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies name and username changes. Username changes are
// checked for uniqueness first.
func (s *userService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		existing, err := s.userRepo.FindByUsername(ctx, *input.Username)
		if err == nil && existing != nil && existing.ID != user.ID {
			return nil, apperrors.ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
		user.Username = *input.Username
	}
	if input.FirstName != nil {
		user.FirstName = input.FirstName
	}
	if input.LastName != nil {
		user.LastName = input.LastName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// Deactivate soft-disables the account and revokes every session. The user
// row itself is never deleted.
func (s *userService) Deactivate(ctx context.Context, userID string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.sessions.DeleteAllForUser(ctx, userID)
	s.log.Info().Str("user_id", userID).Msg("account deactivated")
	return nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
