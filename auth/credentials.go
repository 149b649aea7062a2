// Package auth verifies the administrator's credentials and issues the signed
// session tokens that the admin guard checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/models"
	"newsdesk/repository"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserStore is the persistence the credential store needs.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
}

type CredentialStore struct {
	users    UserStore
	username string
	password string
	cost     int

	// dummyHash is compared against when the username is unknown so that both
	// failure paths pay for one bcrypt comparison.
	dummyHash []byte
}

type Option func(*CredentialStore)

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *CredentialStore) { s.cost = cost }
}

// NewCredentialStore returns a store whose default identity is username/password.
func NewCredentialStore(users UserStore, username, password string, opts ...Option) (*CredentialStore, error) {
	s := &CredentialStore{
		users:    users,
		username: username,
		password: password,
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("newsdesk-timing-equalizer"), s.cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// EnsureDefaultIdentity creates the admin identity if it does not exist yet. It is
// safe to call concurrently and repeatedly: the unique username index turns a lost
// race into ErrDuplicate, which counts as success.
func (s *CredentialStore) EnsureDefaultIdentity(ctx context.Context) error {
	_, err := s.users.FindByUsername(ctx, s.username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up admin identity: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.password), s.cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := &models.User{
		Username:     s.username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("create admin identity: %w", err)
	}

	slog.Info("admin identity created", "username", s.username)
	return nil
}

// VerifyCredentials returns the identity when password matches its stored hash.
// Store failures other than "not found" are returned as-is so callers can report a 500.
func (s *CredentialStore) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("look up identity: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
