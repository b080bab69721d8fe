package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventos/internal/delivery/http/helpers"
	"eventos/internal/domain"
)

type contextKey string

const organizerIDKey contextKey = "organizerID"

// SetUserID returns ctx carrying the authenticated organizer's user ID.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, organizerIDKey, userID)
}

// UserIDFromContext returns the user ID stored by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(organizerIDKey).(string)
	return id, ok && id != ""
}

// bearerToken extracts the credential from "Authorization: Bearer <jwt>".
// The scheme is matched case-insensitively. On failure it returns the client-facing reason.
func bearerToken(r *http.Request) (token, reason string) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, rest, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization format"
	}
	if token = strings.TrimSpace(rest); token == "" {
		return "", "missing token"
	}
	return token, ""
}

// RequireAuth guards organizer routes. Requests without a valid access token get 401;
// otherwise the token's subject is stored in the request context for the handler.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, reason := bearerToken(r)
			if reason != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, reason)
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				reqID, _ := RequestIDFromContext(r.Context())
				logger.DebugContext(r.Context(), "access token rejected",
					"path", r.URL.Path,
					"request_id", reqID,
					"err", err,
				)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetUserID(r.Context(), userID)))
		}
	}
}
