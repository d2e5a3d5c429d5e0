package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/events"
	"hakey-storefront/internal/metrics"
	"hakey-storefront/internal/repository/localstore"
)

type stubRepo struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newStubRepo() *stubRepo { return &stubRepo{data: map[string][]byte{}} }

func (s *stubRepo) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *stubRepo) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *stubRepo) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubRepo) Close() error { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fakeTimer struct{ stopped bool }

func (f *fakeTimer) Stop() bool {
	f.stopped = true
	return true
}

// manualClock captures scheduled expiries so tests can fire them.
type manualClock struct {
	mu    sync.Mutex
	fns   []func()
	delay []time.Duration
}

func (c *manualClock) after(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, f)
	c.delay = append(c.delay, d)
	return &fakeTimer{}
}

func (c *manualClock) fire(i int) {
	c.mu.Lock()
	f := c.fns[i]
	c.mu.Unlock()
	f()
}

func newTestStore(t *testing.T, repo localstore.Repository, opts Options) (*Store, *manualClock) {
	t.Helper()
	s := New(context.Background(), repo, opts)
	clock := &manualClock{}
	s.after = clock.after
	t.Cleanup(s.Close)
	return s, clock
}

func TestStoreStartsEmptyWithoutRecord(t *testing.T) {
	s, _ := newTestStore(t, newStubRepo(), Options{})
	if items := s.Items(); items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", items)
	}
	if s.Notification() != nil || s.Recovered() {
		t.Fatalf("fresh store should have no notification and not be recovered")
	}
}

func TestStorePersistsEveryMutation(t *testing.T) {
	repo := newStubRepo()
	s, _ := newTestStore(t, repo, Options{})
	ctx := context.Background()

	s.AddItem(ctx, game("A", 10))
	s.AddItem(ctx, game("A", 10))
	s.AddItem(ctx, game("B", 5))
	s.SetQuantity(ctx, "B", 2)
	s.RemoveItem(ctx, "A")

	raw, err := repo.Get(ctx, localstore.CartKey)
	if err != nil {
		t.Fatalf("expected persisted cart: %v", err)
	}
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("persisted cart is not valid json: %v", err)
	}
	if len(items) != 1 || items[0].ID != "B" || items[0].Quantity != 2 {
		t.Fatalf("persisted items don't match memory: %+v", items)
	}
	if repo.sets != 5 {
		t.Fatalf("expected 5 writes, got %d", repo.sets)
	}

	s.Clear(ctx)
	raw, _ = repo.Get(ctx, localstore.CartKey)
	if string(raw) != "[]" {
		t.Fatalf("cleared cart should persist as [], got %s", raw)
	}
}

func TestStoreScenarioTotals(t *testing.T) {
	s, _ := newTestStore(t, newStubRepo(), Options{})
	ctx := context.Background()
	s.AddItem(ctx, game("A", 10))
	s.AddItem(ctx, game("A", 10))
	s.AddItem(ctx, game("B", 5))
	if s.Total() != 25 || s.ItemCount() != 3 {
		t.Fatalf("expected total 25 and count 3, got %v/%d", s.Total(), s.ItemCount())
	}
}

func TestStoreRoundTripsThroughLocalStorage(t *testing.T) {
	repo := localstore.NewMemory()
	ctx := context.Background()
	first, _ := newTestStore(t, repo, Options{})
	first.AddItem(ctx, game("A", 10))
	first.AddItem(ctx, game("A", 10))
	first.AddItem(ctx, game("B", 5))

	second, _ := newTestStore(t, repo, Options{})
	got := second.Items()
	want := first.Items()
	if len(got) != len(want) {
		t.Fatalf("expected %d items after restart, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Quantity != want[i].Quantity || got[i].Price != want[i].Price {
			t.Fatalf("item %d differs: %+v vs %+v", i, got[i], want[i])
		}
	}
	if second.Notification() != nil {
		t.Fatalf("notifications are not persisted")
	}
}

func TestStoreRecoversFromMalformedRecord(t *testing.T) {
	repo := newStubRepo()
	repo.data[localstore.CartKey] = []byte("{not json")
	s, _ := newTestStore(t, repo, Options{})
	if len(s.Items()) != 0 {
		t.Fatalf("malformed record should yield empty cart, got %+v", s.Items())
	}
	if !s.Recovered() {
		t.Fatalf("expected recovered flag")
	}
}

func TestStoreNormalizesHydratedDuplicates(t *testing.T) {
	repo := newStubRepo()
	repo.data[localstore.CartKey] = []byte(`[{"id":1,"title":"A","price":10,"quantity":1},{"id":"1","title":"A","price":10,"quantity":2},{"id":2,"title":"B","price":5,"quantity":0}]`)
	s, _ := newTestStore(t, repo, Options{})
	items := s.Items()
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("expected merged line with quantity 3, got %+v", items)
	}
	if !s.Recovered() {
		t.Fatalf("expected recovered flag")
	}
}

func TestStoreIgnoresReadErrors(t *testing.T) {
	repo := newStubRepo()
	repo.getErr = errors.New("disk gone")
	s, _ := newTestStore(t, repo, Options{})
	if len(s.Items()) != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestStoreKeepsStateWhenPersistFails(t *testing.T) {
	repo := newStubRepo()
	repo.setErr = errors.New("quota exceeded")
	s, _ := newTestStore(t, repo, Options{})
	s.AddItem(context.Background(), game("A", 10))
	if s.ItemCount() != 1 {
		t.Fatalf("in-memory state should survive persist failure")
	}
}

func TestStoreNotificationExpires(t *testing.T) {
	s, clock := newTestStore(t, newStubRepo(), Options{NotificationTTL: 50 * time.Millisecond})
	s.AddItem(context.Background(), game("A", 10))
	if s.Notification() == nil {
		t.Fatalf("expected notification after add")
	}
	if clock.delay[0] != 50*time.Millisecond {
		t.Fatalf("expected ttl 50ms, got %v", clock.delay[0])
	}
	clock.fire(0)
	if s.Notification() != nil {
		t.Fatalf("notification should clear after expiry")
	}
}

func TestStoreNewerNotificationSupersedesOlderTimer(t *testing.T) {
	s, clock := newTestStore(t, newStubRepo(), Options{})
	ctx := context.Background()
	s.AddItem(ctx, game("A", 10))
	s.AddItem(ctx, game("B", 5))

	clock.fire(0)
	n := s.Notification()
	if n == nil || n.Message != "\"Game B\" agregado al carrito" {
		t.Fatalf("older timer cleared newer notification: %+v", n)
	}
	clock.fire(1)
	if s.Notification() != nil {
		t.Fatalf("expected notification cleared by its own timer")
	}
}

func TestStoreNotificationExpiresWithRealTimer(t *testing.T) {
	s := New(context.Background(), newStubRepo(), Options{NotificationTTL: 10 * time.Millisecond})
	defer s.Close()
	s.AddItem(context.Background(), game("A", 10))

	deadline := time.Now().Add(2 * time.Second)
	for s.Notification() != nil {
		if time.Now().After(deadline) {
			t.Fatalf("notification never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStoreSubscribers(t *testing.T) {
	s, _ := newTestStore(t, newStubRepo(), Options{})
	var got []int
	cancel := s.Subscribe(func(st State) { got = append(got, st.ItemCount()) })
	ctx := context.Background()
	s.AddItem(ctx, game("A", 10))
	s.AddItem(ctx, game("A", 10))
	cancel()
	s.Clear(ctx)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected notifications %v", got)
	}
}

func TestStorePublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	s, _ := newTestStore(t, newStubRepo(), Options{Publisher: pub})
	ctx := context.Background()
	s.AddItem(ctx, game("A", 10))
	s.SetQuantity(ctx, "A", 3)
	s.RemoveItem(ctx, "A")
	s.Clear(ctx)

	want := []string{events.CartItemAdded, events.CartQuantityChanged, events.CartItemRemoved, events.CartCleared}
	if len(pub.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(pub.events))
	}
	for i, typ := range want {
		if pub.events[i].Type != typ || pub.events[i].Aggregate != "cart" {
			t.Fatalf("event %d: got %s/%s", i, pub.events[i].Aggregate, pub.events[i].Type)
		}
	}
}

func TestStorePublishFailureIsCounted(t *testing.T) {
	reg := metrics.NewRegistry()
	pub := &recordingPublisher{err: errors.New("kafka write: connection refused")}
	s, _ := newTestStore(t, newStubRepo(), Options{Publisher: pub, Metrics: reg})

	s.AddItem(context.Background(), game("A", 10))
	if s.ItemCount() != 1 {
		t.Fatalf("mutation should apply even when publishing fails")
	}
	if got := testutil.ToFloat64(reg.EventsPublished.WithLabelValues("error")); got != 1 {
		t.Fatalf("failed publishes=%v want 1", got)
	}
	if got := testutil.ToFloat64(reg.EventsPublished.WithLabelValues("ok")); got != 0 {
		t.Fatalf("ok publishes=%v want 0", got)
	}
}

func TestStoreClearKeepsNotification(t *testing.T) {
	s, clock := newTestStore(t, newStubRepo(), Options{})
	ctx := context.Background()
	s.AddItem(ctx, game("A", 10))
	s.Clear(ctx)

	n := s.Notification()
	if n == nil || n.Message != "\"Game A\" agregado al carrito" {
		t.Fatalf("notification should survive clear, got %+v", n)
	}
	if len(clock.fns) != 1 {
		t.Fatalf("clear should not schedule another expiry, got %d", len(clock.fns))
	}
	clock.fire(0)
	if s.Notification() != nil {
		t.Fatalf("original timer should still clear the notification")
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t, newStubRepo(), Options{})
	s.AddItem(context.Background(), game("A", 10))
	items := s.Items()
	items[0].Quantity = 99
	items[0].Platform[0] = "changed"
	fresh := s.Items()
	if fresh[0].Quantity != 1 || fresh[0].Platform[0] != "PC" {
		t.Fatalf("caller mutation leaked into store: %+v", fresh[0])
	}
}

func TestStoreConcurrentAdds(t *testing.T) {
	s, _ := newTestStore(t, localstore.NewMemory(), Options{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(context.Background(), game("A", 10))
		}()
	}
	wg.Wait()
	if s.ItemCount() != 50 || len(s.Items()) != 1 {
		t.Fatalf("expected one line with 50 units, got %+v", s.Items())
	}
}
