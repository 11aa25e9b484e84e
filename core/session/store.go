package session

import (
	"sync"

	"github.com/trezcool/classroom/core/user"
)

// Listener is notified with the type of every action dispatched to a Store.
type Listener func(actionType string)

// Snapshot is a consistent copy of a Store's state.
type Snapshot struct {
	User   user.State  `json:"user"`
	Loader LoaderState `json:"loader"`
}

// Store holds the user and loader states of one session.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	user      user.State
	loader    LoaderState
	listeners []Listener
}

func NewStore() *Store {
	return &Store{
		user:   user.InitialState,
		loader: InitialLoaderState,
	}
}

func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) DispatchUser(action user.Action) user.State {
	s.mu.Lock()
	s.user = user.Reduce(s.user, action)
	state, listeners := s.user, s.listeners
	s.mu.Unlock()

	s.emit(listeners, action.Type())
	return state
}

func (s *Store) DispatchLoader(action LoaderAction) LoaderState {
	s.mu.Lock()
	s.loader = ReduceLoader(s.loader, action)
	state, listeners := s.loader, s.listeners
	s.mu.Unlock()

	s.emit(listeners, action.Type())
	return state
}

func (s *Store) emit(listeners []Listener, actionType string) {
	for _, fn := range listeners {
		fn(actionType)
	}
}

// User returns a copy of the logged in user, or nil.
func (s *Store) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user.User == nil {
		return nil
	}
	usr := *s.user.User
	return &usr
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loader.Loading
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Loader: s.loader}
	if s.user.User != nil {
		usr := *s.user.User
		snap.User.User = &usr
	}
	return snap
}
