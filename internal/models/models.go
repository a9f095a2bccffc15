package models

import "time"

// Account represents a registered channel owner on the platform.
type Account struct {
	ID           string
	Handle       string
	Email        string
	DisplayName  string
	PasswordHash string
	AvatarURL    string
	CoverURL     string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountView is the caller-facing projection of an Account. It never
// carries the password hash or the persisted refresh token.
type AccountView struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	CoverURL    string `json:"coverUrl,omitempty"`
}

// PublicView projects an account into its caller-facing shape.
func (a Account) PublicView() AccountView {
	return AccountView{
		ID:          a.ID,
		Handle:      a.Handle,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
		CoverURL:    a.CoverURL,
	}
}

// Subscription is a directed edge from a subscriber account to a channel
// account. The ordered pair is unique, so the relation behaves as a set.
type Subscription struct {
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Video stores an uploaded media item and its hosted asset locations.
type Video struct {
	ID              string
	OwnerID         string
	Title           string
	Description     string
	VideoURL        string
	ThumbnailURL    string
	DurationSeconds int64
	CreatedAt       time.Time
}

// TokenPair groups the credentials issued together on login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// ChannelProfile is the derived view returned for a channel page.
type ChannelProfile struct {
	Handle            string `json:"handle"`
	DisplayName       string `json:"displayName"`
	AvatarURL         string `json:"avatarUrl"`
	CoverURL          string `json:"coverUrl,omitempty"`
	SubscriberCount   int64  `json:"subscriberCount"`
	SubscribedToCount int64  `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// SubscriptionStats carries the derived counts and the viewer membership
// flag computed for a channel.
type SubscriptionStats struct {
	SubscriberCount   int64
	SubscribedToCount int64
	IsSubscribed      bool
}

// OwnerView is the minimal projection of a video owner embedded in watch
// history responses.
type OwnerView struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// WatchEntry joins a watch-history reference with its video and the video
// owner's reduced projection.
type WatchEntry struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	VideoURL     string    `json:"videoUrl"`
	WatchedAt    time.Time `json:"watchedAt"`
	Owner        OwnerView `json:"owner"`
}
