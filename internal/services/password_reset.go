package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventos/internal/domain"
)

// defaultEmailTimeout bounds a detached reset email send.
const defaultEmailTimeout = 30 * time.Second

type passwordResetService struct {
	userRepo       domain.UserRepository
	tokens         domain.ResetTokenManager
	emailService   domain.EmailService
	hasher         domain.PasswordHasher
	logger         *slog.Logger
	contextTimeout time.Duration
	emailTimeout   time.Duration
	now            func() time.Time

	// wg tracks in-flight reset emails.
	wg sync.WaitGroup
}

// NewPasswordResetService wires the forgot-password and reset-password flows.
func NewPasswordResetService(
	userRepo domain.UserRepository,
	tokens domain.ResetTokenManager,
	emailService domain.EmailService,
	hasher domain.PasswordHasher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.PasswordResetService {
	return &passwordResetService{
		userRepo:       userRepo,
		tokens:         tokens,
		emailService:   emailService,
		hasher:         hasher,
		logger:         logger.With("component", "password_reset"),
		contextTimeout: timeout,
		emailTimeout:   defaultEmailTimeout,
		now:            time.Now,
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		s.logger.InfoContext(ctx, "password reset requested for unknown account")
		return nil
	}

	token, err := s.tokens.Issue(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	s.sendAsync(ctx, email, token.Token)
	return nil
}

// sendAsync delivers the reset email without holding up the request. The send
// keeps ctx's values but not its cancellation.
func (s *passwordResetService) sendAsync(ctx context.Context, email, token string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.emailTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		if err := s.emailService.SendPasswordReset(sendCtx, email, token); err != nil {
			s.logger.ErrorContext(sendCtx, "failed to send password reset email", "err", err)
		}
	}()
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validatePassword(password); err != nil {
		return err
	}
	if password != confirmPassword {
		return domain.Invalidf("passwords do not match")
	}

	identifier, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, identifier, hash, s.now()); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Account is gone; the token can never be used.
			_ = s.tokens.Consume(ctx, token)
			return domain.ErrTokenNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.tokens.Consume(ctx, token); err != nil {
		// The credential already changed, so the reset itself stands.
		s.logger.ErrorContext(ctx, "reset token vanished before consumption", "err", err)
	}
	return nil
}
