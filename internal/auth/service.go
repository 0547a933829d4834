package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mrlokans/bookreviews/internal/apperrors"
	"github.com/mrlokans/bookreviews/internal/config"
	"github.com/mrlokans/bookreviews/internal/entities"
)

// MaxUsernameLength matches the width of the users.username column.
const MaxUsernameLength = 100

// UserStore is the slice of the credential store the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
}

// Service registers users and verifies their credentials.
type Service struct {
	users     UserStore
	params    Argon2Params
	dummyHash string
}

// NewService creates a new authentication service.
func NewService(users UserStore, cfg config.Auth) (*Service, error) {
	params := ParamsFromConfig(cfg)

	// Unknown usernames are checked against this hash so that both login
	// failure paths cost one argon2id derivation.
	dummy, err := HashPassword("dummy-password-for-timing", params)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Service{
		users:     users,
		params:    params,
		dummyHash: dummy,
	}, nil
}

// Register creates a user and returns its ID. The password is stored only
// as an argon2id hash.
func (s *Service) Register(ctx context.Context, username, password string) (uint, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, apperrors.InvalidInput("username is required")
	}
	if len(username) > MaxUsernameLength {
		return 0, apperrors.InvalidInput(fmt.Sprintf("username exceeds %d bytes", MaxUsernameLength))
	}
	if password == "" {
		return 0, apperrors.InvalidInput("password is required")
	}

	hash, err := HashPassword(password, s.params)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Login verifies credentials and returns the user's ID. An unknown username
// and a wrong password both fail with apperrors.ErrAuthFailed.
func (s *Service) Login(ctx context.Context, username, password string) (uint, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return 0, err
		}
		_, _ = CheckPassword(password, s.dummyHash)
		return 0, apperrors.AuthFailed()
	}

	ok, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		log.Printf("Stored password hash for user %d is unusable: %v", user.ID, err)
		return 0, apperrors.AuthFailed()
	}
	if !ok {
		return 0, apperrors.AuthFailed()
	}

	return user.ID, nil
}
