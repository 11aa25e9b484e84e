package boltdb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
)

var (
	authBucket  = []byte("auth")
	cacheBucket = []byte("cache")

	tokenKey = []byte("token")
	userKey  = []byte("user")
)

type cachedUser struct {
	User      user.User `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store keeps the CLI's durable token and its cached user in a bbolt file.
type Store struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

var _ session.Storage = (*Store)(nil)

// Open opens (or creates) the state file at `path`. Cached users expire after `ttl`; 0 keeps them until logout.
func Open(path string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "creating state dir")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening state file")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{authBucket, cacheBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "creating bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(bucket, key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			val = append([]byte(nil), v...)
		}
		return nil
	})
	return val, err
}

func (s *Store) put(bucket, key, val []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, val)
	})
}

func (s *Store) delete(bucket, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}

func (s *Store) Token(context.Context) (string, error) {
	val, err := s.get(authBucket, tokenKey)
	return string(val), errors.Wrap(err, "reading token")
}

func (s *Store) SetToken(_ context.Context, token string) error {
	return errors.Wrap(s.put(authBucket, tokenKey, []byte(token)), "saving token")
}

func (s *Store) ClearToken(context.Context) error {
	return errors.Wrap(s.delete(authBucket, tokenKey), "clearing token")
}

func (s *Store) CachedUser(ctx context.Context) (*user.User, error) {
	val, err := s.get(cacheBucket, userKey)
	if err != nil || val == nil {
		return nil, errors.Wrap(err, "reading cached user")
	}

	var cached cachedUser
	if err = json.Unmarshal(val, &cached); err != nil {
		return nil, errors.Wrap(err, "decoding cached user")
	}
	if !cached.ExpiresAt.IsZero() && !s.now().Before(cached.ExpiresAt) {
		return nil, s.ClearUser(ctx)
	}
	return &cached.User, nil
}

func (s *Store) CacheUser(_ context.Context, usr user.User) error {
	cached := cachedUser{User: usr}
	if s.ttl > 0 {
		cached.ExpiresAt = s.now().Add(s.ttl)
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return errors.Wrap(err, "encoding cached user")
	}
	return errors.Wrap(s.put(cacheBucket, userKey, data), "caching user")
}

func (s *Store) ClearUser(context.Context) error {
	return errors.Wrap(s.delete(cacheBucket, userKey), "clearing cached user")
}
