// Package cart holds the shopping cart store: an in-memory cart that is
// persisted to local storage on every mutation and rehydrated on startup.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/events"
	"hakey-storefront/internal/metrics"
	"hakey-storefront/internal/repository/localstore"
)

const (
	// DefaultNotificationTTL is how long the add-to-cart notification lives.
	DefaultNotificationTTL = 3 * time.Second

	metricsStore = "cart"
)

type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

type Options struct {
	Logger          *log.Logger
	NotificationTTL time.Duration
	Publisher       events.Publisher
	Metrics         *metrics.Registry
}

// Store serializes cart mutations. Subscribers are called synchronously,
// outside the lock, after every change.
type Store struct {
	mu        sync.Mutex
	state     State
	repo      localstore.Repository
	logger    *log.Logger
	ttl       time.Duration
	publisher events.Publisher
	metrics   *metrics.Registry
	after     afterFunc
	newID     func() string
	timer     stopper
	recovered bool
	closed    bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// New builds a store and hydrates it from the "cart" key. Missing,
// unreadable or malformed data yields an empty cart, never an error.
func New(ctx context.Context, repo localstore.Repository, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = DefaultNotificationTTL
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	s := &Store{
		state:     State{Items: []domain.LineItem{}},
		repo:      repo,
		logger:    opts.Logger,
		ttl:       opts.NotificationTTL,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		after:     realAfterFunc,
		newID:     uuid.NewString,
		subs:      make(map[int]func(State)),
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	raw, err := s.repo.Get(ctx, localstore.CartKey)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Printf("cart store: hydrate error=%v", err)
		return
	}
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Printf("cart store: discarding malformed cart error=%v", err)
		s.recovered = true
		s.metrics.Recovered(metricsStore)
		return
	}
	items, fixed := normalize(items)
	if fixed {
		s.logger.Printf("cart store: normalized persisted cart items=%d", len(items))
		s.recovered = true
		s.metrics.Recovered(metricsStore)
	}
	s.state.Items = items
	s.metrics.SetCartItems(s.state.ItemCount())
}

// AddItem adds one unit of game, or increments its line, and raises the
// confirmation notification.
func (s *Store) AddItem(ctx context.Context, game domain.Game) State {
	return s.dispatch(ctx, AddItem{Game: game, NotificationID: s.newID()})
}

func (s *Store) RemoveItem(ctx context.Context, id domain.GameID) State {
	return s.dispatch(ctx, RemoveItem{ID: id})
}

// SetQuantity sets a line's quantity. A quantity <= 0 removes the line.
func (s *Store) SetQuantity(ctx context.Context, id domain.GameID, quantity int) State {
	return s.dispatch(ctx, SetQuantity{ID: id, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) State {
	return s.dispatch(ctx, Clear{})
}

// State returns a copy of the current cart.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Items() []domain.LineItem {
	return s.State().Items
}

func (s *Store) Notification() *domain.Notification {
	return s.State().Notification
}

func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Total()
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ItemCount()
}

// Recovered reports whether hydration had to discard or repair stored data.
func (s *Store) Recovered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recovered
}

// Subscribe registers fn for state changes and returns its cancel func.
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

// Close stops the pending notification timer.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Store) dispatch(ctx context.Context, a Action) State {
	s.mu.Lock()
	prev := s.state
	next, effects := Reduce(prev, a)
	s.state = next
	for _, e := range effects {
		s.run(ctx, e)
	}
	changed := len(effects) > 0 || prev.Notification != next.Notification
	if changed {
		s.metrics.Mutation(metricsStore, a.actionName())
		s.metrics.SetCartItems(next.ItemCount())
	}
	snapshot := next.Clone()
	s.mu.Unlock()

	if changed {
		s.notify(snapshot)
	}
	return snapshot
}

// run executes one effect. Callers hold s.mu.
func (s *Store) run(ctx context.Context, e Effect) {
	switch e := e.(type) {
	case PersistItems:
		items := e.Items
		if items == nil {
			items = []domain.LineItem{}
		}
		b, err := json.Marshal(items)
		if err == nil {
			err = s.repo.Set(ctx, localstore.CartKey, b)
		}
		if err != nil {
			s.logger.Printf("cart store: persist error=%v", err)
			s.metrics.PersistFailed(metricsStore)
		}
	case ScheduleExpiry:
		if s.timer != nil {
			s.timer.Stop()
		}
		if s.closed {
			return
		}
		id := e.NotificationID
		s.timer = s.after(s.ttl, func() {
			s.dispatch(context.Background(), ExpireNotification{ID: id})
		})
	case Publish:
		err := s.publisher.Publish(ctx, events.New(metricsStore, e.Type, e.Data))
		if err != nil {
			s.logger.Printf("cart store: publish type=%s error=%v", e.Type, err)
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
