// Package session holds the local, token-less session store. The signed-in
// profile lives in memory and under the "user" key of local storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/events"
	"hakey-storefront/internal/metrics"
	"hakey-storefront/internal/repository/localstore"
)

const metricsStore = "session"

type Options struct {
	Logger    *log.Logger
	Publisher events.Publisher
	Metrics   *metrics.Registry
}

type Store struct {
	mu          sync.Mutex
	state       State
	repo        localstore.Repository
	logger      *log.Logger
	publisher   events.Publisher
	metrics     *metrics.Registry
	initialized bool
	recovered   bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// New returns a store that is still loading. Call Init to hydrate it.
func New(repo localstore.Repository, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	return &Store{
		state:     State{Loading: true},
		repo:      repo,
		logger:    opts.Logger,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		subs:      make(map[int]func(State)),
	}
}

// Open is New followed by Init.
func Open(ctx context.Context, repo localstore.Repository, opts Options) *Store {
	s := New(repo, opts)
	s.Init(ctx)
	return s
}

// Init reads the persisted profile and ends the loading phase. A corrupt
// record is deleted and the session starts logged out. Later calls do
// nothing.
func (s *Store) Init(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	user := s.load(ctx)
	next, _ := Reduce(s.state, Hydrated{User: user})
	s.state = next
	snapshot := next.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// load runs with s.mu held.
func (s *Store) load(ctx context.Context) *domain.UserProfile {
	raw, err := s.repo.Get(ctx, localstore.SessionKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Printf("session store: hydrate error=%v", err)
		return nil
	}
	var user *domain.UserProfile
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Printf("session store: discarding corrupt user record error=%v", err)
		s.recovered = true
		s.metrics.Recovered(metricsStore)
		if err := s.repo.Delete(ctx, localstore.SessionKey); err != nil {
			s.logger.Printf("session store: delete corrupt record error=%v", err)
		}
		return nil
	}
	return user
}

// Login replaces the current profile and persists it.
func (s *Store) Login(ctx context.Context, profile domain.UserProfile) State {
	return s.dispatch(ctx, Login{Profile: profile})
}

// Logout clears the profile and deletes the persisted record.
func (s *Store) Logout(ctx context.Context) State {
	return s.dispatch(ctx, Logout{})
}

// UpdateProfile shallow-merges patch onto the current profile.
func (s *Store) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) State {
	return s.dispatch(ctx, UpdateProfile{Patch: patch})
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// User returns a copy of the signed-in profile, or nil.
func (s *Store) User() *domain.UserProfile {
	return s.State().User
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated()
}

func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAdmin()
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Loading
}

// Recovered reports whether Init had to discard a corrupt record.
func (s *Store) Recovered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recovered
}

func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) dispatch(ctx context.Context, a Action) State {
	s.mu.Lock()
	next, effects := Reduce(s.state, a)
	s.state = next
	for _, e := range effects {
		s.run(ctx, e)
	}
	s.metrics.Mutation(metricsStore, a.actionName())
	snapshot := next.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return snapshot
}

func (s *Store) run(ctx context.Context, e Effect) {
	switch e := e.(type) {
	case PersistUser:
		b, err := json.Marshal(e.Profile)
		if err == nil {
			err = s.repo.Set(ctx, localstore.SessionKey, b)
		}
		if err != nil {
			s.logger.Printf("session store: persist error=%v", err)
			s.metrics.PersistFailed(metricsStore)
		}
	case DeleteUser:
		if err := s.repo.Delete(ctx, localstore.SessionKey); err != nil {
			s.logger.Printf("session store: delete error=%v", err)
			s.metrics.PersistFailed(metricsStore)
		}
	case Publish:
		err := s.publisher.Publish(ctx, events.New(metricsStore, e.Type, e.Data))
		if err != nil {
			s.logger.Printf("session store: publish type=%s error=%v", e.Type, err)
		}
		s.metrics.EventPublished(err == nil)
	}
}

func (s *Store) notify(state State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}
