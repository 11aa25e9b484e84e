package session

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classroom/core/user"
)

func TestScoped(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)
	defer fixedNow(now)()

	repo := newMemRepo()
	st := Scoped(repo, "sid", 30*time.Minute)

	tkn, err := st.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tkn)

	usr, err := st.CachedUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, usr)

	require.NoError(t, st.SetToken(ctx, "tkn"))
	require.NoError(t, st.CacheUser(ctx, user.User{ID: "1", Role: user.RoleTeacher}))

	rec, err := repo.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "tkn", rec.Token)
	assert.Equal(t, "1", rec.User.ID)
	assert.Equal(t, now.Add(30*time.Minute), rec.ExpiresAt)

	t.Run("clear user keeps the token", func(t *testing.T) {
		require.NoError(t, st.ClearUser(ctx))
		usr, err := st.CachedUser(ctx)
		require.NoError(t, err)
		assert.Nil(t, usr)
		tkn, _ := st.Token(ctx)
		assert.Equal(t, "tkn", tkn)
	})

	t.Run("expired records are gone", func(t *testing.T) {
		defer fixedNow(now.Add(time.Hour))()
		tkn, err := st.Token(ctx)
		require.NoError(t, err)
		assert.Empty(t, tkn)
		_, err = repo.Get(ctx, "sid")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestScoped_ExpiredDeleteFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)
	defer fixedNow(now)()

	repo := newMemRepo()
	st := Scoped(repo, "sid", 30*time.Minute)
	require.NoError(t, st.SetToken(ctx, "tkn"))

	defer fixedNow(now.Add(time.Hour))()
	repo.deleteErr = errors.New("connection reset")

	tkn, err := st.Token(ctx)
	assert.EqualError(t, err, "deleting expired session: connection reset")
	assert.Empty(t, tkn)

	_, err = repo.Get(ctx, "sid")
	assert.NoError(t, err, "the record is still there")

	repo.deleteErr = nil
	tkn, err = st.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tkn)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	st := Scoped(repo, "sid", time.Hour)
	require.NoError(t, st.SetToken(ctx, "tkn"))
	require.NoError(t, st.CacheUser(ctx, user.User{ID: "1", Role: user.RoleStudent}))

	require.NoError(t, Logout(ctx, st))
	tkn, _ := st.Token(ctx)
	assert.Empty(t, tkn)
	usr, _ := st.CachedUser(ctx)
	assert.Nil(t, usr)

	// idempotent
	assert.NoError(t, Logout(ctx, st))
}

func TestRecord_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, Record{}.Expired(now))
	assert.True(t, Record{ExpiresAt: now}.Expired(now))
	assert.False(t, NewRecord(now, time.Minute).Expired(now))
}
