package cart

import (
	"fmt"

	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/events"
)

// NotificationSuccess is the type of the add-to-cart notification.
const NotificationSuccess = "success"

// State is the cart contents plus the pending notification, if any.
type State struct {
	Items        []domain.LineItem    `json:"items"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// Total is Σ price*quantity, unrounded.
func (s State) Total() float64 {
	var total float64
	for _, item := range s.Items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount is Σ quantity.
func (s State) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// Clone returns a copy that shares no slices or pointers with s.
func (s State) Clone() State {
	out := State{Items: make([]domain.LineItem, len(s.Items))}
	for i, item := range s.Items {
		out.Items[i] = domain.LineItem{Game: item.Game.Clone(), Quantity: item.Quantity}
	}
	if s.Notification != nil {
		n := *s.Notification
		out.Notification = &n
	}
	return out
}

func (s State) indexOf(id domain.GameID) int {
	for i, item := range s.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Action is a state transition request handled by Reduce.
type Action interface {
	actionName() string
}

type AddItem struct {
	Game           domain.Game
	NotificationID string
}

type RemoveItem struct {
	ID domain.GameID
}

// SetQuantity replaces a line item's quantity; Quantity <= 0 removes it.
type SetQuantity struct {
	ID       domain.GameID
	Quantity int
}

type Clear struct{}

// ExpireNotification clears the notification only if it is still the one
// identified by ID.
type ExpireNotification struct {
	ID string
}

func (AddItem) actionName() string            { return "add_item" }
func (RemoveItem) actionName() string         { return "remove_item" }
func (SetQuantity) actionName() string        { return "set_quantity" }
func (Clear) actionName() string              { return "clear" }
func (ExpireNotification) actionName() string { return "expire_notification" }

// Effect is a side effect requested by Reduce and executed by the Store.
type Effect interface {
	effect()
}

// PersistItems writes the full item sequence to local storage.
type PersistItems struct {
	Items []domain.LineItem
}

// ScheduleExpiry arms the notification timer.
type ScheduleExpiry struct {
	NotificationID string
}

// Publish emits an activity event.
type Publish struct {
	Type string
	Data map[string]any
}

func (PersistItems) effect()   {}
func (ScheduleExpiry) effect() {}
func (Publish) effect()        {}

// Reduce applies a to s. It is pure: s is never modified and the returned
// effects describe every side effect the transition needs.
func Reduce(s State, a Action) (State, []Effect) {
	switch a := a.(type) {
	case AddItem:
		next := s.Clone()
		qty := 1
		if i := next.indexOf(a.Game.ID); i >= 0 {
			next.Items[i].Quantity++
			qty = next.Items[i].Quantity
		} else {
			next.Items = append(next.Items, domain.LineItem{Game: a.Game.Clone(), Quantity: 1})
		}
		next.Notification = &domain.Notification{
			ID:      a.NotificationID,
			Message: fmt.Sprintf("\"%s\" agregado al carrito", a.Game.Title),
			Type:    NotificationSuccess,
		}
		return next, []Effect{
			persist(next),
			ScheduleExpiry{NotificationID: a.NotificationID},
			Publish{Type: events.CartItemAdded, Data: map[string]any{"id": a.Game.ID.String(), "quantity": qty}},
		}

	case RemoveItem:
		next := s.Clone()
		i := next.indexOf(a.ID)
		if i < 0 {
			return next, []Effect{persist(next)}
		}
		next.Items = append(next.Items[:i], next.Items[i+1:]...)
		return next, []Effect{
			persist(next),
			Publish{Type: events.CartItemRemoved, Data: map[string]any{"id": a.ID.String()}},
		}

	case SetQuantity:
		if a.Quantity <= 0 {
			return Reduce(s, RemoveItem{ID: a.ID})
		}
		next := s.Clone()
		i := next.indexOf(a.ID)
		if i < 0 {
			return next, []Effect{persist(next)}
		}
		next.Items[i].Quantity = a.Quantity
		return next, []Effect{
			persist(next),
			Publish{Type: events.CartQuantityChanged, Data: map[string]any{"id": a.ID.String(), "quantity": a.Quantity}},
		}

	case Clear:
		next := s.Clone()
		next.Items = []domain.LineItem{}
		return next, []Effect{
			persist(next),
			Publish{Type: events.CartCleared},
		}

	case ExpireNotification:
		if s.Notification == nil || s.Notification.ID != a.ID {
			return s, nil
		}
		next := s.Clone()
		next.Notification = nil
		return next, nil
	}
	return s, nil
}

func persist(s State) PersistItems {
	return PersistItems{Items: s.Clone().Items}
}

// normalize enforces the one-line-per-id and quantity >= 1 invariants on
// hydrated data. It reports whether anything had to be fixed.
func normalize(items []domain.LineItem) ([]domain.LineItem, bool) {
	out := make([]domain.LineItem, 0, len(items))
	index := make(map[domain.GameID]int, len(items))
	fixed := false
	for _, item := range items {
		if item.Quantity <= 0 {
			fixed = true
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			fixed = true
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out, fixed
}
