package cart

import (
	"testing"

	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/events"
)

func game(id string, price float64) domain.Game {
	return domain.Game{ID: domain.GameID(id), Title: "Game " + id, Price: price, Platform: []string{"PC"}}
}

func TestReduceAddItemNewLine(t *testing.T) {
	s, effects := Reduce(State{}, AddItem{Game: game("1", 10), NotificationID: "n1"})
	if len(s.Items) != 1 || s.Items[0].Quantity != 1 {
		t.Fatalf("expected one line with quantity 1, got %+v", s.Items)
	}
	if s.Notification == nil || s.Notification.ID != "n1" || s.Notification.Type != NotificationSuccess {
		t.Fatalf("unexpected notification %+v", s.Notification)
	}
	if s.Notification.Message != "\"Game 1\" agregado al carrito" {
		t.Fatalf("unexpected message %q", s.Notification.Message)
	}
	if len(effects) != 3 {
		t.Fatalf("expected persist, schedule, publish; got %#v", effects)
	}
	if _, ok := effects[0].(PersistItems); !ok {
		t.Fatalf("first effect should persist, got %T", effects[0])
	}
	if sched, ok := effects[1].(ScheduleExpiry); !ok || sched.NotificationID != "n1" {
		t.Fatalf("second effect should schedule n1, got %#v", effects[1])
	}
	if pub, ok := effects[2].(Publish); !ok || pub.Type != events.CartItemAdded {
		t.Fatalf("third effect should publish item_added, got %#v", effects[2])
	}
}

func TestReduceAddItemIncrementsExistingLine(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10), NotificationID: "a"})
	s, _ = Reduce(s, AddItem{Game: game("1", 10), NotificationID: "b"})
	if len(s.Items) != 1 || s.Items[0].Quantity != 2 {
		t.Fatalf("expected single line with quantity 2, got %+v", s.Items)
	}
	if s.Notification.ID != "b" {
		t.Fatalf("latest notification should win, got %s", s.Notification.ID)
	}
}

func TestReduceKeepsSnapshotFromFirstAdd(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10)})
	repriced := game("1", 99)
	s, _ = Reduce(s, AddItem{Game: repriced})
	if s.Items[0].Price != 10 {
		t.Fatalf("line item should keep original snapshot price, got %v", s.Items[0].Price)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10)})
	before := s.Clone()
	_, _ = Reduce(s, AddItem{Game: game("1", 10)})
	_, _ = Reduce(s, SetQuantity{ID: "1", Quantity: 7})
	_, _ = Reduce(s, Clear{})
	if s.Items[0].Quantity != before.Items[0].Quantity || len(s.Items) != 1 {
		t.Fatalf("input state was mutated: %+v", s.Items)
	}
}

func TestReduceRemoveItem(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10)})
	s, _ = Reduce(s, AddItem{Game: game("2", 5)})
	s, effects := Reduce(s, RemoveItem{ID: "1"})
	if len(s.Items) != 1 || s.Items[0].ID != "2" {
		t.Fatalf("expected only item 2 left, got %+v", s.Items)
	}
	if len(effects) != 2 {
		t.Fatalf("expected persist and publish, got %#v", effects)
	}
}

func TestReduceRemoveAbsentIsNoop(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10)})
	next, effects := Reduce(s, RemoveItem{ID: "9"})
	if len(next.Items) != 1 {
		t.Fatalf("absent removal changed items: %+v", next.Items)
	}
	for _, e := range effects {
		if _, ok := e.(Publish); ok {
			t.Fatalf("absent removal should not publish")
		}
	}
}

func TestReduceSetQuantity(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10)})
	s, _ = Reduce(s, SetQuantity{ID: "1", Quantity: 4})
	if s.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", s.Items[0].Quantity)
	}
	for _, q := range []int{0, -3} {
		next, effects := Reduce(s, SetQuantity{ID: "1", Quantity: q})
		if len(next.Items) != 0 {
			t.Fatalf("quantity %d should remove the line, got %+v", q, next.Items)
		}
		pub, ok := effects[len(effects)-1].(Publish)
		if !ok || pub.Type != events.CartItemRemoved {
			t.Fatalf("quantity %d should publish item_removed, got %#v", q, effects)
		}
	}
}

func TestReduceSetQuantityAbsentIsNoop(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10)})
	next, _ := Reduce(s, SetQuantity{ID: "2", Quantity: 3})
	if len(next.Items) != 1 || next.Items[0].Quantity != 1 {
		t.Fatalf("unexpected items %+v", next.Items)
	}
}

func TestReduceClear(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10)})
	s, _ = Reduce(s, Clear{})
	if s.Items == nil || len(s.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", s.Items)
	}
	if s.Total() != 0 || s.ItemCount() != 0 {
		t.Fatalf("expected zero totals, got %v/%d", s.Total(), s.ItemCount())
	}
}

func TestReduceClearKeepsNotification(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10), NotificationID: "n1"})
	s, effects := Reduce(s, Clear{})
	if s.Notification == nil || s.Notification.ID != "n1" {
		t.Fatalf("clear should leave the notification alone, got %+v", s.Notification)
	}
	for _, e := range effects {
		if _, ok := e.(ScheduleExpiry); ok {
			t.Fatalf("clear should not reschedule expiry: %#v", effects)
		}
	}
}

func TestReduceExpireNotificationMatchesID(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("1", 10), NotificationID: "old"})
	s, _ = Reduce(s, AddItem{Game: game("2", 5), NotificationID: "new"})

	s, effects := Reduce(s, ExpireNotification{ID: "old"})
	if s.Notification == nil || s.Notification.ID != "new" {
		t.Fatalf("stale expiry cleared a newer notification: %+v", s.Notification)
	}
	if len(effects) != 0 {
		t.Fatalf("expiry should have no effects, got %#v", effects)
	}

	s, _ = Reduce(s, ExpireNotification{ID: "new"})
	if s.Notification != nil {
		t.Fatalf("expected notification cleared, got %+v", s.Notification)
	}
}

func TestTotals(t *testing.T) {
	s, _ := Reduce(State{}, AddItem{Game: game("A", 10)})
	s, _ = Reduce(s, AddItem{Game: game("A", 10)})
	s, _ = Reduce(s, AddItem{Game: game("B", 5)})
	if got := s.Total(); got != 25 {
		t.Fatalf("expected total 25, got %v", got)
	}
	if got := s.ItemCount(); got != 3 {
		t.Fatalf("expected item count 3, got %d", got)
	}
}

func TestNormalize(t *testing.T) {
	items := []domain.LineItem{
		{Game: game("1", 10), Quantity: 1},
		{Game: game("2", 5), Quantity: 0},
		{Game: game("1", 10), Quantity: 2},
		{Game: game("3", 1), Quantity: -1},
	}
	out, fixed := normalize(items)
	if !fixed {
		t.Fatalf("expected fixed flag")
	}
	if len(out) != 1 || out[0].ID != "1" || out[0].Quantity != 3 {
		t.Fatalf("unexpected normalized items %+v", out)
	}

	clean := []domain.LineItem{{Game: game("1", 10), Quantity: 2}}
	if _, fixed := normalize(clean); fixed {
		t.Fatalf("clean input should not be flagged")
	}
}
