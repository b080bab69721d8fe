package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventos/internal/delivery/http/helpers"
	"eventos/internal/delivery/http/middleware"
	"eventos/internal/domain"
)

// writeInternalError logs err and answers 500 without leaking details.
func writeInternalError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
}

// writeInvalidInput answers 400 with the validation message and reports whether err was one.
func writeInvalidInput(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	return true
}

// requireUserID reads the authenticated user ID, answering 401 when absent.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}
