package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SubhajitManna-B/youtube-backend/internal/db"
	"github.com/SubhajitManna-B/youtube-backend/internal/models"
)

// PostgresAccountRepository provides PostgreSQL-backed persistence for accounts.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `id, handle, email, display_name, password_hash, avatar_url, cover_url, refresh_token, created_at, updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Handle, &a.Email, &a.DisplayName, &a.PasswordHash,
		&a.AvatarURL, &a.CoverURL, &a.RefreshToken, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

// Create persists a new account record.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO accounts (id, handle, email, display_name, password_hash, avatar_url, cover_url, refresh_token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, account.ID, account.Handle, account.Email, account.DisplayName, account.PasswordHash,
		account.AvatarURL, account.CoverURL, account.RefreshToken, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// FindByID fetches an account by its identifier.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+accountColumns+`
        FROM accounts
        WHERE id = $1
    `, id)

	return scanAccount(row)
}

// FindByHandle fetches an account by handle. Handles are stored lower-cased,
// so the lookup folds case.
func (r *PostgresAccountRepository) FindByHandle(ctx context.Context, handle string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+accountColumns+`
        FROM accounts
        WHERE handle = $1
    `, strings.ToLower(handle))

	return scanAccount(row)
}

// FindByIdentifier fetches an account by handle or email.
func (r *PostgresAccountRepository) FindByIdentifier(ctx context.Context, identifier string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+accountColumns+`
        FROM accounts
        WHERE handle = $1 OR email = $1
    `, strings.ToLower(identifier))

	return scanAccount(row)
}

// SetRefreshToken overwrites the stored refresh token for the account.
func (r *PostgresAccountRepository) SetRefreshToken(ctx context.Context, accountID, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET refresh_token = $2, updated_at = NOW()
        WHERE id = $1
    `, accountID, token)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SwapRefreshToken rotates the stored refresh token only if the current
// value still equals expected. A zero-row update means a concurrent rotation
// or logout won the race.
func (r *PostgresAccountRepository) SwapRefreshToken(ctx context.Context, accountID, expected, next string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET refresh_token = $3, updated_at = NOW()
        WHERE id = $1 AND refresh_token = $2
    `, accountID, expected, next)
	if err != nil {
		return fmt.Errorf("swap refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrStaleToken
	}

	return nil
}

// UpdatePasswordHash replaces the stored password hash for the account.
func (r *PostgresAccountRepository) UpdatePasswordHash(ctx context.Context, accountID, hash string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET password_hash = $2, updated_at = NOW()
        WHERE id = $1
    `, accountID, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// subscription edges.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Add inserts a subscriber → channel edge. The pair is the primary key, so
// re-subscribing is absorbed by ON CONFLICT rather than surfacing an error.
func (r *PostgresSubscriptionRepository) Add(ctx context.Context, subscriberID, channelID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (subscriber_id, channel_id, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
    `, subscriberID, channelID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// Remove deletes a subscriber → channel edge if present.
func (r *PostgresSubscriptionRepository) Remove(ctx context.Context, subscriberID, channelID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	return nil
}

// Stats computes the derived counts for a channel plus the viewer membership
// flag in a single round trip.
func (r *PostgresSubscriptionRepository) Stats(ctx context.Context, channelID, viewerID string) (models.SubscriptionStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.SubscriptionStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1),
            EXISTS (
                SELECT 1 FROM subscriptions
                WHERE subscriber_id = $2 AND channel_id = $1
            )
    `, channelID, viewerID)

	var stats models.SubscriptionStats
	if err := row.Scan(&stats.SubscriberCount, &stats.SubscribedToCount, &stats.IsSubscribed); err != nil {
		return models.SubscriptionStats{}, fmt.Errorf("scan subscription stats: %w", err)
	}

	return stats, nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos
// and watch history.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail_url, duration_seconds, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoURL,
		video.ThumbnailURL, video.DurationSeconds, video.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// Exists reports whether a video with the given id is stored.
func (r *PostgresVideoRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)
    `, videoID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check video exists: %w", err)
	}

	return exists, nil
}

// AppendWatch records a watch event at the next position in the account's
// history sequence.
func (r *PostgresVideoRepository) AppendWatch(ctx context.Context, accountID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (account_id, video_id, position, watched_at)
        SELECT $1, $2, COALESCE(MAX(position), 0) + 1, NOW()
        FROM watch_history
        WHERE account_id = $1
    `, accountID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert watch event: %w", err)
	}

	return nil
}

// WatchHistory joins the account's history rows to videos and their owners,
// most recent first. The inner joins drop references to deleted videos.
func (r *PostgresVideoRepository) WatchHistory(ctx context.Context, accountID string) ([]models.WatchEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail_url, v.video_url, wh.watched_at,
               a.handle, a.display_name, a.avatar_url
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN accounts a ON a.id = v.owner_id
        WHERE wh.account_id = $1
        ORDER BY wh.position DESC
    `, accountID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchEntry
	for rows.Next() {
		var entry models.WatchEntry
		if err := rows.Scan(&entry.VideoID, &entry.Title, &entry.ThumbnailURL, &entry.VideoURL,
			&entry.WatchedAt, &entry.Owner.Handle, &entry.Owner.DisplayName, &entry.Owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan watch entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return entries, nil
}

var _ AccountRepository = (*PostgresAccountRepository)(nil)
var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
