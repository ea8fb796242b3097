package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-webinar-management/internal/config"
	"github.com/sanosuguru/go-webinar-management/internal/domain/user"
	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg := config.Load()
	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skip("PostgreSQL not available")
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db.DB, "../../../migrations"))
	_, err = db.Exec("DELETE FROM webinars")
	require.NoError(t, err)
	return db
}

func newTestWebinar() *webinar.Webinar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return webinar.NewWebinar("alice", "Webinar title", start, start.Add(1*time.Hour), 100)
}

func TestWebinarRepository_CreateAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebinarRepository(db)
	ctx := context.Background()

	w := newTestWebinar()
	require.NoError(t, repo.Create(ctx, w))
	require.NotEmpty(t, w.ID)

	got, err := repo.FindByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, "alice", got.OrganizerID)
	assert.Equal(t, "Webinar title", got.Title)
	assert.Equal(t, 100, got.Seats)
	assert.Equal(t, 0, got.Version)
	assert.True(t, w.StartAt.Equal(got.StartAt))
}

func TestWebinarRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebinarRepository(db)

	_, err := repo.FindByID(context.Background(), "non-existing-webinar-id")
	assert.ErrorIs(t, err, webinar.ErrWebinarNotFound)
}

func TestWebinarRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebinarRepository(db)
	ctx := context.Background()

	t.Run("座席数を更新できる", func(t *testing.T) {
		w := newTestWebinar()
		require.NoError(t, repo.Create(ctx, w))

		w.ChangeSeats(200)
		require.NoError(t, repo.Save(ctx, w))
		assert.Equal(t, 1, w.Version)

		got, err := repo.FindByID(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, 200, got.Seats)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("古いバージョンでの更新は競合エラー", func(t *testing.T) {
		w := newTestWebinar()
		require.NoError(t, repo.Create(ctx, w))

		stale, err := repo.FindByID(ctx, w.ID)
		require.NoError(t, err)

		w.ChangeSeats(150)
		require.NoError(t, repo.Save(ctx, w))

		stale.ChangeSeats(300)
		err = repo.Save(ctx, stale)
		assert.ErrorIs(t, err, webinar.ErrOptimisticLockConflict)

		got, err := repo.FindByID(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, 150, got.Seats)
	})

	t.Run("存在しないウェビナーはErrWebinarNotFound", func(t *testing.T) {
		w := newTestWebinar()
		w.ID = "non-existing-webinar-id"

		err := repo.Save(ctx, w)
		assert.ErrorIs(t, err, webinar.ErrWebinarNotFound)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("シードユーザーを取得できる", func(t *testing.T) {
		u, err := repo.GetByID(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice@gmail.com", u.Email)
	})

	t.Run("存在しないユーザーはErrUserNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "charlie")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
