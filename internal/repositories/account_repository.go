package repositories

import (
	"context"

	"github.com/SubhajitManna-B/youtube-backend/internal/models"
)

// AccountRepository defines the data access contract for accounts and the
// refresh-token slot persisted on each account row.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByHandle(ctx context.Context, handle string) (models.Account, error)
	FindByIdentifier(ctx context.Context, identifier string) (models.Account, error)

	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// Login uses it to rotate; logout uses it with an empty value to revoke.
	SetRefreshToken(ctx context.Context, accountID, token string) error

	// SwapRefreshToken replaces the stored refresh token only when the
	// current value equals expected, returning ErrStaleToken otherwise.
	SwapRefreshToken(ctx context.Context, accountID, expected, next string) error

	UpdatePasswordHash(ctx context.Context, accountID, hash string) error
}
