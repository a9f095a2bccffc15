package repositories

import (
	"context"

	"github.com/SubhajitManna-B/youtube-backend/internal/models"
)

// SubscriptionRepository persists the directed subscriber → channel edges.
type SubscriptionRepository interface {
	// Add inserts an edge; inserting an existing pair is a no-op.
	Add(ctx context.Context, subscriberID, channelID string) error
	// Remove deletes an edge; removing a missing pair is a no-op.
	Remove(ctx context.Context, subscriberID, channelID string) error
	// Stats returns the subscriber count, subscribed-to count, and whether
	// viewerID subscribes to the channel. An empty viewerID yields false.
	Stats(ctx context.Context, channelID, viewerID string) (models.SubscriptionStats, error)
}

// VideoRepository persists uploaded videos and per-account watch history.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	Exists(ctx context.Context, videoID string) (bool, error)
	// AppendWatch records a watch event at the next history position.
	AppendWatch(ctx context.Context, accountID, videoID string) error
	// WatchHistory returns the account's history joined to videos and
	// their owners, most recent first. References to deleted videos are
	// omitted.
	WatchHistory(ctx context.Context, accountID string) ([]models.WatchEntry, error)
}
