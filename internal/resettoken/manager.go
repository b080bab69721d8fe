// Package resettoken issues, validates and consumes single-use password reset tokens.
package resettoken

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventos/internal/domain"
)

// TTL is how long an issued token stays valid.
const TTL = time.Hour

// Manager owns the reset token lifecycle: none -> issued -> expired | consumed.
type Manager struct {
	repo     domain.PasswordResetTokenRepository
	now      func() time.Time
	newToken func() (string, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithGenerator overrides token generation.
func WithGenerator(gen func() (string, error)) Option {
	return func(m *Manager) { m.newToken = gen }
}

// NewManager returns a Manager storing tokens in repo.
func NewManager(repo domain.PasswordResetTokenRepository, opts ...Option) *Manager {
	m := &Manager{repo: repo, now: time.Now, newToken: generateToken}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// generateToken returns a random (version 4) UUID; uuid reads from crypto/rand.
func generateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Issue replaces every token held by identifier with a fresh one expiring after TTL.
func (m *Manager) Issue(ctx context.Context, identifier string) (*domain.PasswordResetToken, error) {
	identifier = strings.TrimSpace(strings.ToLower(identifier))
	if identifier == "" {
		return nil, domain.Invalidf("identifier is required")
	}
	token, err := m.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	t := &domain.PasswordResetToken{
		Identifier: identifier,
		Token:      token,
		Expires:    m.now().Add(TTL),
	}
	if err := m.repo.Rotate(ctx, t); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}
	return t, nil
}

// canonical returns token in the lowercase hyphenated form it is stored in.
// uuid.Parse also accepts upper case, braces and the urn:uuid: prefix.
func canonical(token string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return "", domain.ErrMalformedToken
	}
	return id.String(), nil
}

// Validate returns the identifier owning token. Expired tokens are rejected but
// left in storage.
func (m *Manager) Validate(ctx context.Context, token string) (string, error) {
	token, err := canonical(token)
	if err != nil {
		return "", err
	}
	t, err := m.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return "", domain.ErrTokenNotFound
		}
		return "", fmt.Errorf("find reset token: %w", err)
	}
	if t.Expired(m.now()) {
		return "", domain.ErrTokenExpired
	}
	return t.Identifier, nil
}

// Consume deletes token. ErrTokenNotFound means it was already gone.
func (m *Manager) Consume(ctx context.Context, token string) error {
	token, err := canonical(token)
	if err != nil {
		return err
	}
	if err := m.repo.DeleteByToken(ctx, token); err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return domain.ErrTokenNotFound
		}
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

// PurgeExpired removes tokens already past expiry and returns how many were deleted.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired reset tokens: %w", err)
	}
	return n, nil
}
