package service

import (
	"context"
	"strings"

	"jojam/internal/domain"
	"jojam/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register creates a user account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, username, password, bandName, email, contact string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return nil, invalidField("username", "must be at least 3 characters")
	}
	if len(password) < 6 {
		return nil, invalidField("password", "must be at least 6 characters")
	}
	if strings.TrimSpace(bandName) == "" {
		return nil, invalidField("band_name", "must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		BandName:     strings.TrimSpace(bandName),
		Email:        strings.TrimSpace(email),
		Contact:      strings.TrimSpace(contact),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate verifies credentials and returns the account. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.GetAllUsers(ctx)
}

// DeleteUser removes a non-admin account. Admins cannot delete themselves
// or other admins.
func (s *UserService) DeleteUser(ctx context.Context, actor models.Actor, id int64) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	rows, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrForbidden
	}

	s.logger.Info().Int64("user_id", id).Int64("admin_id", actor.ID).Msg("user deleted")
	return nil
}
