package services

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"eventos/internal/domain"
)

const (
	minPasswordLength = 6
	minNameLength     = 2
	minTitleLength    = 3
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// normalizeEmail trims and lowercases email and checks its format.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return "", domain.Invalidf("invalid email address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return domain.Invalidf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minNameLength {
		return "", domain.Invalidf("name must be at least %d characters", minNameLength)
	}
	return name, nil
}

// trimOptional trims s and maps empty results to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeEventInput validates in and returns a cleaned copy.
func normalizeEventInput(in domain.EventInput) (domain.EventInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if utf8.RuneCountInString(in.Title) < minTitleLength {
		return in, domain.Invalidf("title must be at least %d characters", minTitleLength)
	}
	if in.Date.IsZero() {
		return in, domain.Invalidf("date is required")
	}
	if in.Capacity != nil && *in.Capacity <= 0 {
		return in, domain.Invalidf("capacity must be a positive number")
	}
	in.Description = trimOptional(in.Description)
	in.Location = trimOptional(in.Location)
	in.ImageURL = trimOptional(in.ImageURL)
	if in.ImageURL != nil {
		u, err := url.Parse(*in.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, domain.Invalidf("image_url must be an absolute http(s) URL")
		}
	}
	return in, nil
}
