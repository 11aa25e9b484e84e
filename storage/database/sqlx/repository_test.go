package sqlxrepos

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/storage/database"
)

// testDB connects to CLASSROOM_TEST_DATABASE_URL and migrates it; the test is skipped when it is unset.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("CLASSROOM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CLASSROOM_TEST_DATABASE_URL is not set")
	}
	db, err := sqlx.Open("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Ping())
	require.NoError(t, database.Migrate(db.DB))
	return db
}

func TestSessionRepository(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, uuid.NewString()), session.ErrNotFound)
	})

	t.Run("save, upsert and delete", func(t *testing.T) {
		rec := session.Record{
			ID: uuid.NewString(), Token: "tkn", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
			User: &user.User{ID: "1", Name: "Ada", Email: "ada@example.com", Role: user.RoleStudent},
		}
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.Token, got.Token)
		assert.Equal(t, rec.User, got.User)
		assert.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))

		updated := rec
		updated.Token, updated.User = "other", nil
		updated.ExpiresAt = now.Add(2 * time.Hour)
		updated.CreatedAt = now.Add(time.Hour)
		require.NoError(t, repo.Save(ctx, updated))

		got, err = repo.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "other", got.Token)
		assert.Nil(t, got.User)
		assert.True(t, updated.ExpiresAt.Equal(got.ExpiresAt))
		assert.True(t, rec.CreatedAt.Equal(got.CreatedAt), "created_at is kept on upsert")

		require.NoError(t, repo.Delete(ctx, rec.ID))
		_, err = repo.Get(ctx, rec.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("purge expired", func(t *testing.T) {
		expired := session.Record{ID: uuid.NewString(), CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
		live := session.Record{ID: uuid.NewString(), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
		require.NoError(t, repo.Save(ctx, expired))
		require.NoError(t, repo.Save(ctx, live))
		t.Cleanup(func() { _ = repo.Delete(ctx, live.ID) })

		n, err := repo.PurgeExpired(ctx, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))

		_, err = repo.Get(ctx, expired.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
		_, err = repo.Get(ctx, live.ID)
		assert.NoError(t, err)
	})
}
