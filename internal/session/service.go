// Package session orchestrates the credential lifecycle: registration,
// login, logout, refresh-token rotation, and password changes. Each account
// holds a single refresh-token slot, so issuing a new pair revokes the
// previous long-lived token by overwrite and logout revokes it by clearing.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SubhajitManna-B/youtube-backend/internal/apperror"
	"github.com/SubhajitManna-B/youtube-backend/internal/auth"
	"github.com/SubhajitManna-B/youtube-backend/internal/models"
	"github.com/SubhajitManna-B/youtube-backend/internal/repositories"
)

// Service implements the session flows over the account repository and the
// token service. It holds no mutable state and is safe for concurrent use.
type Service struct {
	accounts repositories.AccountRepository
	tokens   *auth.TokenService
	hasher   *auth.PasswordHasher
	nowFunc  func() time.Time
}

// NewService constructs a session Service.
func NewService(accounts repositories.AccountRepository, tokens *auth.TokenService, hasher *auth.PasswordHasher) *Service {
	if accounts == nil || tokens == nil || hasher == nil {
		panic("session: all dependencies must be provided")
	}
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput carries the typed registration fields. AvatarURL is the
// location returned by the media storage collaborator; CoverURL is optional.
type RegisterInput struct {
	Handle      string
	Email       string
	DisplayName string
	Password    string
	AvatarURL   string
	CoverURL    string
}

// validate trims and checks every required field, folding handle and email
// to lower case so uniqueness is case-insensitive.
func (in *RegisterInput) validate() error {
	in.Handle = strings.ToLower(strings.TrimSpace(in.Handle))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.CoverURL = strings.TrimSpace(in.CoverURL)

	switch {
	case in.Handle == "":
		return apperror.Validation("handle", "handle is required")
	case in.Email == "":
		return apperror.Validation("email", "email is required")
	case in.DisplayName == "":
		return apperror.Validation("displayName", "display name is required")
	case in.Password == "":
		return apperror.Validation("password", "password is required")
	}

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperror.Validation("email", "invalid email address")
	}
	if len(in.Password) < 8 {
		return apperror.Validation("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(in.AvatarURL) == "" {
		return apperror.MissingAsset("avatar")
	}

	return nil
}

// Register creates a new account with a hashed password and returns its
// public view. The view never includes the password hash or refresh token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.AccountView, error) {
	if err := in.validate(); err != nil {
		return models.AccountView{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.AccountView{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFunc()
	account := models.Account{
		ID:           uuid.NewString(),
		Handle:       in.Handle,
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		AvatarURL:    in.AvatarURL,
		CoverURL:     in.CoverURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.AccountView{}, apperror.Conflict("an account with that handle or email already exists")
		}
		return models.AccountView{}, fmt.Errorf("create account: %w", err)
	}

	return account.PublicView(), nil
}

// Login authenticates by handle or email, issues a token pair, and persists
// the refresh token on the account, superseding any prior value.
func (s *Service) Login(ctx context.Context, identifier, password string) (models.AccountView, models.TokenPair, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return models.AccountView{}, models.TokenPair{}, apperror.Validation("identifier", "handle or email is required")
	}

	account, err := s.accounts.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.AccountView{}, models.TokenPair{}, apperror.NotFound("account")
		}
		return models.AccountView{}, models.TokenPair{}, fmt.Errorf("find account: %w", err)
	}

	if !s.hasher.Verify(account.PasswordHash, password) {
		return models.AccountView{}, models.TokenPair{}, apperror.Unauthorized("invalid credentials")
	}

	pair, err := s.issueAndPersist(ctx, account.ID)
	if err != nil {
		return models.AccountView{}, models.TokenPair{}, err
	}

	return account.PublicView(), pair, nil
}

// Logout clears the account's persisted refresh token. Calling it when the
// slot is already empty is a no-op.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	if err := s.accounts.SetRefreshToken(ctx, accountID, ""); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("account")
		}
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Refresh rotates the credential pair. The presented token must verify
// under the refresh policy and match the value currently stored on the
// account; a stale token from before an earlier rotation or logout is
// rejected. The store-side compare-and-swap makes the check race-safe.
func (s *Service) Refresh(ctx context.Context, presented string) (models.TokenPair, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return models.TokenPair{}, apperror.Unauthorized("refresh token is required")
	}

	accountID, err := s.tokens.Verify(presented, auth.RefreshToken)
	if err != nil {
		return models.TokenPair{}, apperror.Unauthorized("invalid refresh token")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.TokenPair{}, apperror.Unauthorized("invalid refresh token")
		}
		return models.TokenPair{}, fmt.Errorf("find account: %w", err)
	}

	if account.RefreshToken == "" || account.RefreshToken != presented {
		return models.TokenPair{}, apperror.Unauthorized("refresh token superseded")
	}

	pair, err := s.tokens.Issue(account.ID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.accounts.SwapRefreshToken(ctx, account.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, repositories.ErrStaleToken) {
			return models.TokenPair{}, apperror.Unauthorized("refresh token superseded")
		}
		return models.TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	return pair, nil
}

// ChangePassword replaces the stored hash after verifying the old password.
func (s *Service) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperror.Validation("newPassword", "new password is required")
	}
	if len(newPassword) < 8 {
		return apperror.Validation("newPassword", "password must be at least 8 characters")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("account")
		}
		return fmt.Errorf("find account: %w", err)
	}

	if !s.hasher.Verify(account.PasswordHash, oldPassword) {
		return apperror.Unauthorized("old password does not match")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accounts.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	return nil
}

// Account returns the caller's public view.
func (s *Service) Account(ctx context.Context, accountID string) (models.AccountView, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.AccountView{}, apperror.NotFound("account")
		}
		return models.AccountView{}, fmt.Errorf("find account: %w", err)
	}
	return account.PublicView(), nil
}

// issueAndPersist mints a pair and overwrites the stored refresh token. The
// persisted write is the only externally visible effect of issuing.
func (s *Service) issueAndPersist(ctx context.Context, accountID string) (models.TokenPair, error) {
	pair, err := s.tokens.Issue(accountID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.accounts.SetRefreshToken(ctx, accountID, pair.RefreshToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return pair, nil
}
