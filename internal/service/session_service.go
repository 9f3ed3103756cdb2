package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"papertrade/internal/domain"
)

// SessionService maps server-side tokens to authenticated users.
// Anonymous -> Create -> Authenticated -> Destroy or expiry -> Anonymous.
type SessionService struct {
	sessionRepo domain.SessionRepository
	ttl         time.Duration
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo domain.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		ttl:         ttl,
	}
}

// TTL returns the configured session lifetime
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create opens a session for a user and returns its token
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		Token:     uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session.Token, nil
}

// Resolve returns the user id behind a token. Expired sessions resolve to
// ErrSessionNotFound and are deleted on sight rather than waiting for the
// purge job.
func (s *SessionService) Resolve(ctx context.Context, token uuid.UUID) (uuid.UUID, error) {
	session, err := s.sessionRepo.Get(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return uuid.Nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.sessionRepo.Delete(ctx, token); err != nil {
			log.Printf("WARNING: Failed to delete expired session: %v", err)
		}
		return uuid.Nil, domain.ErrSessionNotFound
	}

	return session.UserID, nil
}

// Destroy ends a session. Destroying an unknown token is a no-op.
func (s *SessionService) Destroy(ctx context.Context, token uuid.UUID) error {
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// PurgeExpired removes all expired sessions. Run periodically by the
// scheduler.
func (s *SessionService) PurgeExpired(ctx context.Context) error {
	n, err := s.sessionRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	if n > 0 {
		log.Printf("[OK] Purged %d expired session(s)", n)
	}
	return nil
}
