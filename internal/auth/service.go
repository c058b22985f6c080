// Package auth implements signup, login and bearer token verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/homehub-dev/homehub/internal/models"
	"github.com/homehub-dev/homehub/internal/store"
)

const TokenTypeBearer = "bearer"

// UserStore is the part of the domain store the service needs.
// InsertUser must return store.ErrDuplicateKey when the username is taken.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
}

type Token struct {
	AccessToken string
	TokenType   string
}

type Profile struct {
	ID       string
	Username string
	FullName string
}

type Service struct {
	users     UserStore
	tokens    *TokenIssuer
	passwords *PasswordHasher
	logger    *slog.Logger
}

func NewService(users UserStore, tokens *TokenIssuer, passwords *PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Signup creates a user and returns a token for it. The username check is
// only a pre-check; losing a concurrent insert to the unique index is also
// reported as ErrDuplicateUsername.
func (s *Service) Signup(ctx context.Context, username, password, fullName string) (*Token, error) {
	_, err := s.users.FindUserByUsername(ctx, username)

	switch {
	case err == nil:
		return nil, ErrDuplicateUsername
	case !errors.Is(err, store.ErrNotFound):
		return nil, unavailable(err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
	}

	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, unavailable(err)
	}

	s.logger.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID))

	return s.issue(user.ID)
}

// Login checks username and password. Unknown usernames and wrong passwords
// both fail with ErrInvalidCredentials after a bcrypt comparison.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.passwords.Burn(password)
			return nil, ErrInvalidCredentials
		}
		return nil, unavailable(err)
	}

	if !s.passwords.Matches(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

func (s *Service) VerifyToken(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

// ResolveCurrentUser verifies token and loads the user it names.
func (s *Service) ResolveCurrentUser(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable(err)
	}

	return user, nil
}

func (s *Service) GetProfile(user *models.User) Profile {
	return Profile{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
	}
}

func (s *Service) issue(userID string) (*Token, error) {
	accessToken, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}

	return &Token{AccessToken: accessToken, TokenType: TokenTypeBearer}, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
