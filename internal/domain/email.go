package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PasswordResetEmailData holds data for the password reset email.
type PasswordResetEmailData struct {
	Email            string
	ResetLink        string
	ExpiresInMinutes int
	Year             int
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	// SendPasswordReset delivers the reset link for token to email.
	SendPasswordReset(ctx context.Context, email, token string) error
}
