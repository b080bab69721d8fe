package domain

import (
	"context"
	"errors"
	"time"
)

// Reset token failures. NotFound, Expired and Malformed all surface to clients
// as the same "invalid or expired token" response.
var (
	ErrTokenNotFound  = errors.New("reset token not found")
	ErrTokenExpired   = errors.New("reset token expired")
	ErrMalformedToken = errors.New("malformed reset token")
)

// PasswordResetToken is a single-use credential authorizing a password change for Identifier (an email).
type PasswordResetToken struct {
	Identifier string    `json:"identifier"`
	Token      string    `json:"-"`
	Expires    time.Time `json:"expires"`
}

// Expired reports whether the token is past its expiry at now.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return t.Expires.Before(now)
}

// PasswordResetTokenRepository defines storage for reset tokens.
type PasswordResetTokenRepository interface {
	// Rotate makes t the only token held by t.Identifier, atomically.
	Rotate(ctx context.Context, t *PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*PasswordResetToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ResetTokenManager owns the reset token lifecycle on top of a PasswordResetTokenRepository.
type ResetTokenManager interface {
	Issue(ctx context.Context, identifier string) (*PasswordResetToken, error)
	Validate(ctx context.Context, token string) (identifier string, err error)
	Consume(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// PasswordResetService runs the forgot-password and reset-password flows.
type PasswordResetService interface {
	// RequestReset never reveals whether the account exists.
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirmPassword string) error
}
