package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/SubhajitManna-B/youtube-backend/internal/apperror"
	"github.com/SubhajitManna-B/youtube-backend/internal/logging"
	"github.com/SubhajitManna-B/youtube-backend/internal/models"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps the error taxonomy onto fixed status codes. Anything
// outside the taxonomy is a 500 with a generic message; the underlying
// detail only reaches the logs.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrMissingAsset):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else {
		logging.FromContext(ctx).Error("unexpected failure", "error", err)
	}

	respondJSON(ctx, w, status, map[string]string{"error": message})
}

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// setTokenCookies mirrors the token pair into same-site, http-only cookies
// so browser callers need not handle the body copy.
func setTokenCookies(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, tokenCookie(accessCookieName, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, tokenCookie(refreshCookieName, pair.RefreshToken, pair.RefreshExpiresAt))
}

// clearTokenCookies expires both token cookies.
func clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, expiredCookie(accessCookieName))
	http.SetCookie(w, expiredCookie(refreshCookieName))
}

func tokenCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
