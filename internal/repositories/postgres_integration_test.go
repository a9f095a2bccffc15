package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SubhajitManna-B/youtube-backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresAccountRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresAccountRepository(testPool)
	account := createTestAccount(t, repo, "alice")

	dup := account
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict creating duplicate handle, got %v", err)
	}

	fetched, err := repo.FindByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.Handle != account.Handle || fetched.PasswordHash != account.PasswordHash {
		t.Fatalf("unexpected account fetched: %+v", fetched)
	}

	if _, err := repo.FindByHandle(ctx, "ALICE"); err != nil {
		t.Fatalf("find by handle should fold case: %v", err)
	}

	fetched, err = repo.FindByIdentifier(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find by email identifier: %v", err)
	}
	if fetched.ID != account.ID {
		t.Fatalf("expected account %s got %s", account.ID, fetched.ID)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestPostgresAccountRepository_RefreshTokenSlot(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresAccountRepository(testPool)
	account := createTestAccount(t, repo, "alice")

	if err := repo.SetRefreshToken(ctx, account.ID, "token-1"); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}

	if err := repo.SwapRefreshToken(ctx, account.ID, "token-1", "token-2"); err != nil {
		t.Fatalf("swap refresh token: %v", err)
	}

	// A second swap presenting the superseded value must lose.
	if err := repo.SwapRefreshToken(ctx, account.ID, "token-1", "token-3"); !errors.Is(err, ErrStaleToken) {
		t.Fatalf("expected ErrStaleToken on stale swap, got %v", err)
	}

	fetched, err := repo.FindByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if fetched.RefreshToken != "token-2" {
		t.Fatalf("expected slot to hold token-2, got %q", fetched.RefreshToken)
	}

	// Logout clears unconditionally.
	if err := repo.SetRefreshToken(ctx, account.ID, ""); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, account.ID, "token-2", "token-4"); !errors.Is(err, ErrStaleToken) {
		t.Fatalf("expected ErrStaleToken after clear, got %v", err)
	}

	if err := repo.SetRefreshToken(ctx, uuid.NewString(), "token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown account, got %v", err)
	}
}

func TestPostgresAccountRepository_UpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresAccountRepository(testPool)
	account := createTestAccount(t, repo, "alice")

	if err := repo.UpdatePasswordHash(ctx, account.ID, "rotated-hash"); err != nil {
		t.Fatalf("update password hash: %v", err)
	}

	fetched, err := repo.FindByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if fetched.PasswordHash != "rotated-hash" {
		t.Fatalf("expected rotated hash, got %q", fetched.PasswordHash)
	}

	if err := repo.UpdatePasswordHash(ctx, uuid.NewString(), "hash"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown account, got %v", err)
	}
}

func TestPostgresSubscriptionRepository_Stats(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	accountRepo := NewPostgresAccountRepository(testPool)
	channel := createTestAccount(t, accountRepo, "channel")
	alice := createTestAccount(t, accountRepo, "alice")
	bob := createTestAccount(t, accountRepo, "bob")

	repo := NewPostgresSubscriptionRepository(testPool)

	for _, subscriberID := range []string{alice.ID, bob.ID} {
		if err := repo.Add(ctx, subscriberID, channel.ID); err != nil {
			t.Fatalf("add subscription: %v", err)
		}
	}
	// Re-subscribing is absorbed, not an error.
	if err := repo.Add(ctx, alice.ID, channel.ID); err != nil {
		t.Fatalf("re-add subscription: %v", err)
	}
	// The channel also follows alice, raising its subscribed-to count.
	if err := repo.Add(ctx, channel.ID, alice.ID); err != nil {
		t.Fatalf("add reverse subscription: %v", err)
	}

	stats, err := repo.Stats(ctx, channel.ID, alice.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.SubscriberCount != 2 {
		t.Fatalf("expected 2 subscribers, got %d", stats.SubscriberCount)
	}
	if stats.SubscribedToCount != 1 {
		t.Fatalf("expected subscribed-to count 1, got %d", stats.SubscribedToCount)
	}
	if !stats.IsSubscribed {
		t.Fatal("expected alice to be flagged as subscribed")
	}

	stats, err = repo.Stats(ctx, channel.ID, "")
	if err != nil {
		t.Fatalf("stats for anonymous viewer: %v", err)
	}
	if stats.IsSubscribed {
		t.Fatal("anonymous viewer must not be flagged as subscribed")
	}

	if err := repo.Add(ctx, alice.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown channel, got %v", err)
	}

	if err := repo.Remove(ctx, alice.ID, channel.ID); err != nil {
		t.Fatalf("remove subscription: %v", err)
	}
	if err := repo.Remove(ctx, alice.ID, channel.ID); err != nil {
		t.Fatalf("remove should tolerate a missing edge: %v", err)
	}

	stats, err = repo.Stats(ctx, channel.ID, alice.ID)
	if err != nil {
		t.Fatalf("stats after removal: %v", err)
	}
	if stats.SubscriberCount != 1 || stats.IsSubscribed {
		t.Fatalf("expected alice removed from stats, got %+v", stats)
	}
}

func TestPostgresVideoRepository_WatchHistory(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	accountRepo := NewPostgresAccountRepository(testPool)
	owner := createTestAccount(t, accountRepo, "owner")
	viewer := createTestAccount(t, accountRepo, "viewer")

	repo := NewPostgresVideoRepository(testPool)

	videos := make([]models.Video, 3)
	for i := range videos {
		videos[i] = models.Video{
			ID:              uuid.NewString(),
			OwnerID:         owner.ID,
			Title:           fmt.Sprintf("clip %d", i+1),
			VideoURL:        fmt.Sprintf("https://media.example.com/videos/%d.mp4", i+1),
			ThumbnailURL:    fmt.Sprintf("https://media.example.com/thumbnails/%d.png", i+1),
			DurationSeconds: 60,
			CreatedAt:       time.Now().UTC(),
		}
		if err := repo.Create(ctx, videos[i]); err != nil {
			t.Fatalf("create video %d: %v", i, err)
		}
	}

	orphan := models.Video{ID: uuid.NewString(), OwnerID: uuid.NewString(), Title: "orphan", VideoURL: "u", CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, orphan); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown owner, got %v", err)
	}

	exists, err := repo.Exists(ctx, videos[0].ID)
	if err != nil || !exists {
		t.Fatalf("expected video to exist, got exists=%v err=%v", exists, err)
	}

	for _, video := range videos {
		if err := repo.AppendWatch(ctx, viewer.ID, video.ID); err != nil {
			t.Fatalf("append watch %s: %v", video.ID, err)
		}
	}

	history, err := repo.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	if history[0].VideoID != videos[2].ID || history[2].VideoID != videos[0].ID {
		t.Fatalf("expected most recent first, got %+v", history)
	}
	if history[0].Owner.Handle != owner.Handle {
		t.Fatalf("expected owner projection, got %+v", history[0].Owner)
	}

	// Deleting a video leaves a dangling history reference that the join
	// silently drops.
	if _, err := testPool.Exec(ctx, "DELETE FROM videos WHERE id = $1", videos[1].ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	history, err = repo.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history after delete: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected dangling reference dropped, got %d entries", len(history))
	}
	if history[0].VideoID != videos[2].ID || history[1].VideoID != videos[0].ID {
		t.Fatalf("expected surviving entries in order, got %+v", history)
	}

	if history, err := repo.WatchHistory(ctx, owner.ID); err != nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries err=%v", len(history), err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE watch_history, subscriptions, videos, accounts CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestAccount(t *testing.T, repo *PostgresAccountRepository, handle string) models.Account {
	t.Helper()
	account := models.Account{
		ID:           uuid.NewString(),
		Handle:       handle,
		Email:        handle + "@example.com",
		DisplayName:  handle,
		PasswordHash: "password-hash",
		AvatarURL:    "https://media.example.com/avatars/" + handle + ".png",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("create test account: %v", err)
	}
	return account
}
