package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/user"
)

type memRepo struct {
	mu        sync.Mutex
	recs      map[string]Record
	deleteErr error
}

func newMemRepo() *memRepo { return &memRepo{recs: make(map[string]Record)} }

func (r *memRepo) Get(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *memRepo) Save(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.ID] = rec
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.recs[id]; !ok {
		return ErrNotFound
	}
	delete(r.recs, id)
	return nil
}

type fakeFetcher struct {
	usr   user.User
	err   error
	calls int
}

func (f *fakeFetcher) GetCurrentUser(context.Context) (user.User, error) {
	f.calls++
	return f.usr, f.err
}

type recordingNotifier struct {
	notes []core.Notification
}

func (n *recordingNotifier) Notify(note core.Notification) {
	n.notes = append(n.notes, note)
}

type brokenStorage struct {
	Storage
}

func (brokenStorage) Token(context.Context) (string, error) {
	return "", errors.New("disk on fire")
}

func fixedNow(t time.Time) func() {
	prev := nowFunc
	nowFunc = func() time.Time { return t }
	return func() { nowFunc = prev }
}
