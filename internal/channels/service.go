// Package channels computes the derived views over the subscription
// relation and per-account watch history, and owns the edge writers that
// feed them. All reads are side-effect-free projections.
package channels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SubhajitManna-B/youtube-backend/internal/apperror"
	"github.com/SubhajitManna-B/youtube-backend/internal/models"
	"github.com/SubhajitManna-B/youtube-backend/internal/repositories"
)

// Service exposes channel profile and watch-history aggregation.
type Service struct {
	accounts      repositories.AccountRepository
	subscriptions repositories.SubscriptionRepository
	videos        repositories.VideoRepository
	nowFunc       func() time.Time
}

// NewService constructs a channel aggregation service.
func NewService(accounts repositories.AccountRepository, subscriptions repositories.SubscriptionRepository, videos repositories.VideoRepository) *Service {
	if accounts == nil || subscriptions == nil || videos == nil {
		panic("channels: all dependencies must be provided")
	}
	return &Service{
		accounts:      accounts,
		subscriptions: subscriptions,
		videos:        videos,
		nowFunc:       func() time.Time { return time.Now().UTC() },
	}
}

// Profile resolves a channel by handle (case-insensitive) and returns its
// reduced projection with subscription counts. viewerID may be empty, in
// which case IsSubscribed is reported false rather than erroring.
func (s *Service) Profile(ctx context.Context, viewerID, handle string) (models.ChannelProfile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return models.ChannelProfile{}, apperror.Validation("handle", "handle is required")
	}

	account, err := s.accounts.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.ChannelProfile{}, apperror.NotFound("channel")
		}
		return models.ChannelProfile{}, fmt.Errorf("find channel: %w", err)
	}

	stats, err := s.subscriptions.Stats(ctx, account.ID, viewerID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("subscription stats: %w", err)
	}

	return models.ChannelProfile{
		Handle:            account.Handle,
		DisplayName:       account.DisplayName,
		AvatarURL:         account.AvatarURL,
		CoverURL:          account.CoverURL,
		SubscriberCount:   stats.SubscriberCount,
		SubscribedToCount: stats.SubscribedToCount,
		IsSubscribed:      stats.IsSubscribed,
	}, nil
}

// WatchHistory returns the account's watch history, most recent first, with
// each entry's owner reduced to handle, display name, and avatar. Entries
// whose video has since been deleted are omitted.
func (s *Service) WatchHistory(ctx context.Context, accountID string) ([]models.WatchEntry, error) {
	entries, err := s.videos.WatchHistory(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load watch history: %w", err)
	}
	return entries, nil
}

// Subscribe adds an edge from the subscriber to the channel named by handle.
// Subscribing twice is a no-op; subscribing to yourself is rejected.
func (s *Service) Subscribe(ctx context.Context, subscriberID, handle string) error {
	channel, err := s.resolveChannel(ctx, handle)
	if err != nil {
		return err
	}
	if channel.ID == subscriberID {
		return apperror.Validation("handle", "cannot subscribe to your own channel")
	}

	if err := s.subscriptions.Add(ctx, subscriberID, channel.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("channel")
		}
		return fmt.Errorf("add subscription: %w", err)
	}

	return nil
}

// Unsubscribe removes the edge if present.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, handle string) error {
	channel, err := s.resolveChannel(ctx, handle)
	if err != nil {
		return err
	}

	if err := s.subscriptions.Remove(ctx, subscriberID, channel.ID); err != nil {
		return fmt.Errorf("remove subscription: %w", err)
	}

	return nil
}

// RecordWatch appends the video to the caller's watch history.
func (s *Service) RecordWatch(ctx context.Context, accountID, videoID string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return apperror.Validation("videoId", "video id is required")
	}

	exists, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return fmt.Errorf("check video: %w", err)
	}
	if !exists {
		return apperror.NotFound("video")
	}

	if err := s.videos.AppendWatch(ctx, accountID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("video")
		}
		return fmt.Errorf("append watch event: %w", err)
	}

	return nil
}

// PublishInput carries the fields for a new video. The URLs point at assets
// already placed on the media host.
type PublishInput struct {
	OwnerID         string
	Title           string
	Description     string
	VideoURL        string
	ThumbnailURL    string
	DurationSeconds int64
}

// Publish stores a new video record owned by the caller.
func (s *Service) Publish(ctx context.Context, in PublishInput) (models.Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return models.Video{}, apperror.Validation("title", "title is required")
	}
	if strings.TrimSpace(in.VideoURL) == "" {
		return models.Video{}, apperror.MissingAsset("video file")
	}

	video := models.Video{
		ID:              uuid.NewString(),
		OwnerID:         in.OwnerID,
		Title:           in.Title,
		Description:     strings.TrimSpace(in.Description),
		VideoURL:        in.VideoURL,
		ThumbnailURL:    in.ThumbnailURL,
		DurationSeconds: in.DurationSeconds,
		CreatedAt:       s.nowFunc(),
	}

	if err := s.videos.Create(ctx, video); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperror.NotFound("owner account")
		}
		return models.Video{}, fmt.Errorf("create video: %w", err)
	}

	return video, nil
}

func (s *Service) resolveChannel(ctx context.Context, handle string) (models.Account, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return models.Account{}, apperror.Validation("handle", "handle is required")
	}

	channel, err := s.accounts.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Account{}, apperror.NotFound("channel")
		}
		return models.Account{}, fmt.Errorf("find channel: %w", err)
	}

	return channel, nil
}
