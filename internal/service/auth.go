// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/keebmart/keebmart/internal/auth"
	"github.com/keebmart/keebmart/internal/metrics"
	"github.com/keebmart/keebmart/internal/model"
	"github.com/keebmart/keebmart/internal/store"
)

// Service errors.
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrUserExists    = errors.New("user already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password
	// so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore is the persistence capability the auth flow needs.
// *store.Store satisfies it; tests substitute a double.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// AuthService orchestrates registration, login, and profile reads.
type AuthService struct {
	store      UserStore
	tokens     *auth.TokenManager
	bcryptCost int
	metrics    metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(userStore UserStore, tokens *auth.TokenManager, bcryptCost int, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:      userStore,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		metrics:    recorder,
	}
}

// RegisterInput defines input for registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new account. The plaintext password is hashed and
// discarded; it is never persisted or logged. No token is issued - the
// caller must log in separately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return ErrMissingFields
	}

	_, err := s.store.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email
		if errors.Is(err, store.ErrEmailExists) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return nil
}

// LoginInput defines input for login.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a signed session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, error) {
	if input.Email == "" || input.Password == "" {
		return "", ErrMissingFields
	}

	user, err := s.store.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		s.metrics.IncLoginFailure()
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()

	return token, nil
}

// Profile returns the account for a verified identity's email.
// The account may have vanished after the token was issued.
func (s *AuthService) Profile(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// ListUsers returns every registered account.
func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.store.ListUsers(ctx)
}
