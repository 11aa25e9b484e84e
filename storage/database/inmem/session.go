package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/classroom/core/session"
)

type sessionRepository struct {
	db *sessionTable
}

var (
	_ session.Repository = (*sessionRepository)(nil)
	_ session.Purger     = (*sessionRepository)(nil)
)

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) Get(_ context.Context, id string) (session.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return copyRecord(*rec), nil
	}
	return session.Record{}, session.ErrNotFound
}

func (repo *sessionRepository) Save(_ context.Context, rec session.Record) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec = copyRecord(rec)
	repo.db.table[rec.ID] = &rec
	return nil
}

func (repo *sessionRepository) Delete(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return session.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *sessionRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int64
	for id, rec := range repo.db.table {
		if rec.Expired(now) {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}

// copyRecord detaches the cached user from the caller's copy.
func copyRecord(rec session.Record) session.Record {
	if rec.User != nil {
		usr := *rec.User
		rec.User = &usr
	}
	return rec
}
