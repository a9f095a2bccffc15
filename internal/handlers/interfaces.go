package handlers

import (
	"context"
	"io"

	"github.com/SubhajitManna-B/youtube-backend/internal/channels"
	"github.com/SubhajitManna-B/youtube-backend/internal/models"
	"github.com/SubhajitManna-B/youtube-backend/internal/session"
)

// SessionService captures the credential lifecycle operations required by
// the auth handlers.
type SessionService interface {
	Register(ctx context.Context, in session.RegisterInput) (models.AccountView, error)
	Login(ctx context.Context, identifier, password string) (models.AccountView, models.TokenPair, error)
	Logout(ctx context.Context, accountID string) error
	Refresh(ctx context.Context, presented string) (models.TokenPair, error)
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
	Account(ctx context.Context, accountID string) (models.AccountView, error)
}

// ChannelService captures the aggregation and edge operations required by
// the channel handlers.
type ChannelService interface {
	Profile(ctx context.Context, viewerID, handle string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, accountID string) ([]models.WatchEntry, error)
	Subscribe(ctx context.Context, subscriberID, handle string) error
	Unsubscribe(ctx context.Context, subscriberID, handle string) error
	RecordWatch(ctx context.Context, accountID, videoID string) error
	Publish(ctx context.Context, in channels.PublishInput) (models.Video, error)
}

// MediaStore resolves uploaded files into hosted URLs.
type MediaStore interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (string, error)
}
