package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"eventos/internal/domain"
	"eventos/internal/resettoken"
)

const passwordResetTemplate = "password_reset"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
// Links in outgoing mail are built against baseURL, the public origin of the web app.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, baseURL string, logger *slog.Logger) domain.EmailService {
	return &emailService{
		mailer:   mailer,
		renderer: renderer,
		baseURL:  baseURL,
		logger:   logger.With("component", "email"),
		now:      time.Now,
	}
}

// resetLink returns "{baseURL}/auth/reset-password?token={token}".
func resetLink(baseURL, token string) string {
	return baseURL + "/auth/reset-password?token=" + url.QueryEscape(token)
}

func (s *emailService) SendPasswordReset(ctx context.Context, email, token string) error {
	data := domain.PasswordResetEmailData{
		Email:            email,
		ResetLink:        resetLink(s.baseURL, token),
		ExpiresInMinutes: int(resettoken.TTL / time.Minute),
		Year:             s.now().Year(),
	}
	subject, htmlBody, textBody, err := s.renderer.Render(passwordResetTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", passwordResetTemplate, err)
	}
	if err := s.mailer.Send(ctx, email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	s.logger.InfoContext(ctx, "password reset email sent", "to", email)
	return nil
}
