package handlers

import (
	"net/http"

	"github.com/SubhajitManna-B/youtube-backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Sessions SessionService
	Channels ChannelService
	Media    MediaStore
	Tokens   middleware.TokenVerifier
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Sessions: deps.Sessions, Media: deps.Media}
	channels := ChannelHandler{Channels: deps.Channels, Media: deps.Media}

	required := middleware.Authenticate(deps.Tokens)
	optional := middleware.MaybeAuthenticate(deps.Tokens)

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/register", auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)
	mux.Handle("POST /api/v1/auth/logout", required(http.HandlerFunc(auth.Logout)))
	mux.Handle("POST /api/v1/auth/password", required(http.HandlerFunc(auth.ChangePassword)))
	mux.Handle("GET /api/v1/auth/me", required(http.HandlerFunc(auth.Me)))

	mux.Handle("GET /api/v1/channels/{handle}", optional(http.HandlerFunc(channels.Profile)))
	mux.Handle("POST /api/v1/channels/{handle}/subscribe", required(http.HandlerFunc(channels.Subscribe)))
	mux.Handle("DELETE /api/v1/channels/{handle}/subscribe", required(http.HandlerFunc(channels.Unsubscribe)))

	mux.Handle("GET /api/v1/history", required(http.HandlerFunc(channels.History)))
	mux.Handle("POST /api/v1/history", required(http.HandlerFunc(channels.RecordWatch)))
	mux.Handle("POST /api/v1/videos", required(http.HandlerFunc(channels.Publish)))
}
