package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"papertrade/internal/domain"
)

// CredentialService owns registration and authentication. Password strength
// is decided by the injected policy; new users start with the configured
// seed cash.
type CredentialService struct {
	userRepo     domain.UserRepository
	policy       PasswordPolicy
	startingCash decimal.Decimal
	bcryptCost   int
}

// NewCredentialService creates a new CredentialService
func NewCredentialService(userRepo domain.UserRepository, policy PasswordPolicy, startingCash decimal.Decimal, bcryptCost int) *CredentialService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &CredentialService{
		userRepo:     userRepo,
		policy:       policy,
		startingCash: startingCash,
		bcryptCost:   bcryptCost,
	}
}

// Register creates a new user with a salted password hash and the starting
// cash balance
func (s *CredentialService) Register(ctx context.Context, username, password, confirmation string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	if err := s.policy.Validate(password); err != nil {
		return nil, err
	}

	if confirmation != password {
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Cash:         s.startingCash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index decides duplicates, not a racy check-then-insert.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies a username/password pair and returns the user. An
// unknown username and a wrong password are indistinguishable to the caller.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}
