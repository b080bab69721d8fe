package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventos/internal/domain"
)

type passwordResetTokenRepository struct {
	DB *sql.DB
}

// NewPasswordResetTokenRepository returns a domain.PasswordResetTokenRepository implemented with Postgres.
func NewPasswordResetTokenRepository(db *sql.DB) domain.PasswordResetTokenRepository {
	return &passwordResetTokenRepository{DB: db}
}

// Rotate stores t as the only token of t.Identifier. The unique identifier column turns
// concurrent rotations for the same account into row-level upserts, so the last writer wins
// and at most one row survives.
func (r *passwordResetTokenRepository) Rotate(ctx context.Context, t *domain.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (identifier, token, expires)
		VALUES ($1, $2, $3)
		ON CONFLICT (identifier) DO UPDATE
		SET token = EXCLUDED.token, expires = EXCLUDED.expires
	`
	if _, err := r.DB.ExecContext(ctx, query, t.Identifier, t.Token, t.Expires); err != nil {
		return fmt.Errorf("rotate reset token: %w", err)
	}
	return nil
}

func (r *passwordResetTokenRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	query := `
		SELECT identifier, token, expires
		FROM password_reset_tokens
		WHERE token = $1
	`
	t := &domain.PasswordResetToken{}
	err := r.DB.QueryRowContext(ctx, query, token).Scan(&t.Identifier, &t.Token, &t.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *passwordResetTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE token = $1`, token)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *passwordResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
