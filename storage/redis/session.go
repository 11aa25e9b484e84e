package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/session"
)

const keyPrefix = "classroom:session:"

// Open connects to redis and checks the connection.
func Open(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// sessionRepository stores records as JSON; redis expires them on their own.
type sessionRepository struct {
	client redis.Cmdable
	now    func() time.Time
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(client redis.Cmdable) *sessionRepository {
	return &sessionRepository{client: client, now: time.Now}
}

func key(id string) string {
	return keyPrefix + id
}

func (repo *sessionRepository) Get(ctx context.Context, id string) (session.Record, error) {
	data, err := repo.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Record{}, session.ErrNotFound
		}
		return session.Record{}, errors.Wrap(err, "getting session")
	}

	var rec session.Record
	if err = json.Unmarshal(data, &rec); err != nil {
		return session.Record{}, errors.Wrap(err, "decoding session")
	}
	return rec, nil
}

func (repo *sessionRepository) Save(ctx context.Context, rec session.Record) error {
	ttl := expiration(rec, repo.now())
	if ttl < 0 {
		if err := repo.Delete(ctx, rec.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
			return err
		}
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return errors.Wrap(repo.client.Set(ctx, key(rec.ID), data, ttl).Err(), "setting session")
}

func (repo *sessionRepository) Delete(ctx context.Context, id string) error {
	n, err := repo.client.Del(ctx, key(id)).Result()
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}

// expiration is the redis TTL of `rec`: 0 keeps it forever, a negative value means it already expired.
func expiration(rec session.Record, now time.Time) time.Duration {
	if rec.ExpiresAt.IsZero() {
		return 0
	}
	if ttl := rec.ExpiresAt.Sub(now); ttl > 0 {
		return ttl
	}
	return -1
}
