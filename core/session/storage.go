package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/user"
)

var ErrNotFound = errors.New("session not found")

// TokenStore keeps the durable bearer token. An absent token is "" with a nil error.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// UserCache mirrors the current user for the lifetime of a session. A miss is (nil, nil).
type UserCache interface {
	CachedUser(ctx context.Context) (*user.User, error)
	CacheUser(ctx context.Context, usr user.User) error
	ClearUser(ctx context.Context) error
}

type Storage interface {
	TokenStore
	UserCache
}

// Record is one server-side session.
type Record struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	User      *user.User `json:"user,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func NewRecord(now time.Time, ttl time.Duration) Record {
	return Record{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Repository persists session records. Get returns ErrNotFound for unknown ids.
type Repository interface {
	Get(ctx context.Context, id string) (Record, error)
	Save(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id string) error
}

// Purger removes records that expired before `now`, returning how many were removed.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

var nowFunc = time.Now // mockable

type scoped struct {
	repo Repository
	id   string
	ttl  time.Duration
}

// Scoped exposes the record `id` of `repo` as a Storage. Saving refreshes the expiry by `ttl`.
func Scoped(repo Repository, id string, ttl time.Duration) Storage {
	return &scoped{repo: repo, id: id, ttl: ttl}
}

func (s *scoped) load(ctx context.Context) (Record, error) {
	rec, err := s.repo.Get(ctx, s.id)
	if err != nil {
		return Record{}, err
	}
	if rec.Expired(nowFunc()) {
		if err = s.repo.Delete(ctx, s.id); err != nil && !errors.Is(err, ErrNotFound) {
			return Record{}, errors.Wrap(err, "deleting expired session")
		}
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *scoped) update(ctx context.Context, fn func(rec *Record)) error {
	now := nowFunc()
	rec, err := s.load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		rec = NewRecord(now, s.ttl)
		rec.ID = s.id
	case err != nil:
		return err
	}
	fn(&rec)
	rec.ExpiresAt = now.Add(s.ttl)
	return errors.Wrap(s.repo.Save(ctx, rec), "saving session")
}

func (s *scoped) Token(ctx context.Context) (string, error) {
	rec, err := s.load(ctx)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return rec.Token, err
}

func (s *scoped) SetToken(ctx context.Context, token string) error {
	return s.update(ctx, func(rec *Record) { rec.Token = token })
}

// ClearToken ends the session.
func (s *scoped) ClearToken(ctx context.Context) error {
	err := s.repo.Delete(ctx, s.id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (s *scoped) CachedUser(ctx context.Context) (*user.User, error) {
	rec, err := s.load(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return rec.User, err
}

func (s *scoped) CacheUser(ctx context.Context, usr user.User) error {
	return s.update(ctx, func(rec *Record) { rec.User = &usr })
}

func (s *scoped) ClearUser(ctx context.Context) error {
	if _, err := s.load(ctx); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.update(ctx, func(rec *Record) { rec.User = nil })
}

// Logout clears the cached user and the token of `st`.
func Logout(ctx context.Context, st Storage) error {
	if err := st.ClearUser(ctx); err != nil {
		return errors.Wrap(err, "clearing cached user")
	}
	return errors.Wrap(st.ClearToken(ctx), "clearing token")
}
