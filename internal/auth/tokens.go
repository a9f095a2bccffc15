// Package auth implements the credential primitives: signed token pairs and
// password hashing. Tokens are HS256 JWTs; the access and refresh kinds are
// signed with independent secrets and expiry policies, so a leaked access
// token is only useful until its short expiry while the refresh token can be
// revoked by clearing the slot persisted on the account.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/SubhajitManna-B/youtube-backend/internal/models"
)

// ErrInvalidToken indicates a token that is malformed, expired, or signed
// with the wrong secret for its kind.
var ErrInvalidToken = errors.New("invalid token")

const issuer = "youtube-backend"

// TokenKind selects which secret and expiry policy applies during Verify.
type TokenKind int

const (
	// AccessToken is the short-lived bearer credential presented on every
	// authenticated request.
	AccessToken TokenKind = iota
	// RefreshToken is the long-lived credential used only to mint a new
	// pair; its current value is persisted on the owning account.
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// TokenService issues and verifies paired account credentials. It holds no
// state beyond the signing secrets and TTLs and is safe for concurrent use.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	nowFunc func() time.Time
}

// NewTokenService constructs a TokenService. Both secrets must be non-empty
// and distinct so that a token of one kind can never verify as the other.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(accessSecret) < 16 || len(refreshSecret) < 16 {
		return nil, errors.New("auth: token secrets must be at least 16 characters")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		nowFunc:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue produces a fresh access/refresh pair bound to the account identity.
// It has no side effects; persisting the refresh token is the caller's job.
func (s *TokenService) Issue(accountID string) (models.TokenPair, error) {
	if accountID == "" {
		return models.TokenPair{}, errors.New("auth: account id must be provided")
	}

	now := s.nowFunc()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)

	access, err := s.sign(accountID, now, accessExp, s.accessSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.sign(accountID, now, refreshExp, s.refreshSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify checks the signature and expiry of the presented token under the
// policy for kind and returns the bound account id.
func (s *TokenService) Verify(token string, kind TokenKind) (string, error) {
	secret := s.accessSecret
	if kind == RefreshToken {
		secret = s.refreshSecret
	}

	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowFunc),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s token rejected", ErrInvalidToken, kind)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}

func (s *TokenService) sign(accountID string, now, exp time.Time, secret []byte) (string, error) {
	// The jti makes every issued token unique even when two rotations land
	// within the same second, so stale-token comparison cannot collide.
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		Issuer:    issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
