package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/SubhajitManna-B/youtube-backend/internal/auth"
)

type accountIDKey struct{}

// TokenVerifier verifies an access token and returns the bound account id.
type TokenVerifier interface {
	Verify(token string, kind auth.TokenKind) (string, error)
}

// AccountIDFromContext returns the authenticated account id, if any.
func AccountIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(accountIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithAccountID stores the authenticated account id on the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey{}, accountID)
}

// Authenticate requires a valid access token, delivered either as a bearer
// Authorization header or as the access_token cookie, and stores the account
// id on the request context.
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "authentication required")
				return
			}

			accountID, err := tokens.Verify(token, auth.AccessToken)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
		})
	}
}

// MaybeAuthenticate resolves the account id when a valid access token is
// present but lets anonymous requests through. Profile reads use it for the
// viewer membership flag.
func MaybeAuthenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if accountID, err := tokens.Verify(token, auth.AccessToken); err == nil {
					r = r.WithContext(WithAccountID(r.Context(), accountID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
