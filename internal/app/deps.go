package app

import (
	"context"
	"fmt"

	"github.com/SubhajitManna-B/youtube-backend/internal/auth"
	"github.com/SubhajitManna-B/youtube-backend/internal/channels"
	"github.com/SubhajitManna-B/youtube-backend/internal/config"
	"github.com/SubhajitManna-B/youtube-backend/internal/db"
	"github.com/SubhajitManna-B/youtube-backend/internal/handlers"
	"github.com/SubhajitManna-B/youtube-backend/internal/repositories"
	"github.com/SubhajitManna-B/youtube-backend/internal/session"
	"github.com/SubhajitManna-B/youtube-backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	tokens, err := auth.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("configure token service: %w", err)
	}

	media, err := storage.NewS3MediaStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("configure media store: %w", err)
	}

	accounts := repositories.NewPostgresAccountRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)

	return handlers.Dependencies{
		Sessions: session.NewService(accounts, tokens, auth.NewPasswordHasher()),
		Channels: channels.NewService(accounts, subscriptions, videos),
		Media:    media,
		Tokens:   tokens,
	}, nil
}
