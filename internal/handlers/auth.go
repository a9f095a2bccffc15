package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/SubhajitManna-B/youtube-backend/internal/logging"
	"github.com/SubhajitManna-B/youtube-backend/internal/middleware"
	"github.com/SubhajitManna-B/youtube-backend/internal/models"
	"github.com/SubhajitManna-B/youtube-backend/internal/session"
)

const maxUploadBytes = 32 << 20

// AuthHandler implements the identity endpoints.
type AuthHandler struct {
	Sessions SessionService
	Media    MediaStore
}

// Register handles POST /api/v1/auth/register. The body is multipart so the
// avatar (required) and cover image (optional) ride along with the fields;
// files are placed on the media host before the account is created.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "multipart form body is required"})
		return
	}

	in := session.RegisterInput{
		Handle:      r.FormValue("handle"),
		Email:       r.FormValue("email"),
		DisplayName: r.FormValue("displayName"),
		Password:    r.FormValue("password"),
	}

	avatarURL, ok := saveUpload(w, r, h.Media, "avatar", "avatars")
	if !ok {
		return
	}
	coverURL, ok := saveUpload(w, r, h.Media, "coverImage", "covers")
	if !ok {
		return
	}
	in.AvatarURL = avatarURL
	in.CoverURL = coverURL

	view, err := h.Sessions.Register(ctx, in)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logger.Info("account registered", "accountId", view.ID, "handle", view.Handle)
	respondJSON(ctx, w, http.StatusCreated, accountResponse{Account: view})
}

// Login handles POST /api/v1/auth/login. Tokens are returned in the body and
// mirrored as cookies.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	view, pair, err := h.Sessions.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setTokenCookies(w, pair)
	respondJSON(ctx, w, http.StatusOK, loginResponse{Account: view, Tokens: pair})
}

// Logout handles POST /api/v1/auth/logout. The route sits behind the
// authentication middleware, so an unauthenticated call never reaches here.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := middleware.AccountIDFromContext(ctx)
	if err := h.Sessions.Logout(ctx, accountID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearTokenCookies(w)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token may arrive in
// the body or as the refresh_token cookie.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	presented := strings.TrimSpace(req.RefreshToken)
	if presented == "" {
		if cookie, err := r.Cookie(refreshCookieName); err == nil {
			presented = cookie.Value
		}
	}

	pair, err := h.Sessions.Refresh(ctx, presented)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setTokenCookies(w, pair)
	respondJSON(ctx, w, http.StatusOK, tokenResponse{Tokens: pair})
}

// ChangePassword handles POST /api/v1/auth/password.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change password payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	accountID := middleware.AccountIDFromContext(ctx)
	if err := h.Sessions.ChangePassword(ctx, accountID, req.OldPassword, req.NewPassword); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "password changed"})
}

// Me handles GET /api/v1/auth/me.
func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.Sessions.Account(ctx, middleware.AccountIDFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, accountResponse{Account: view})
}

// saveUpload stores the named multipart file on the media host. A missing
// part is not an error here; required assets are enforced by the services
// so the rule stays testable in one place.
func saveUpload(w http.ResponseWriter, r *http.Request, media MediaStore, field, folder string) (string, bool) {
	ctx := r.Context()

	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", true
		}
		logging.FromContext(ctx).Warn("read upload", "field", field, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "malformed upload for " + field})
		return "", false
	}
	defer file.Close()

	if media == nil {
		logging.FromContext(ctx).Error("media store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "media storage unavailable"})
		return "", false
	}

	url, err := media.Save(ctx, folder, header.Filename, file)
	if err != nil {
		logging.FromContext(ctx).Error("store upload", "field", field, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store " + field})
		return "", false
	}

	return url, true
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type accountResponse struct {
	Account models.AccountView `json:"account"`
}

type loginResponse struct {
	Account models.AccountView `json:"account"`
	Tokens  models.TokenPair   `json:"tokens"`
}

type tokenResponse struct {
	Tokens models.TokenPair `json:"tokens"`
}
