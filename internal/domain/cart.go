package domain

// LineItem is a cart row: a denormalized copy of the game at the time it was
// added plus a quantity. The copy is not refreshed when the catalog changes.
type LineItem struct {
	Game
	Quantity int `json:"quantity"`
}

// Subtotal returns price*quantity without rounding.
func (l LineItem) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Notification is the transient message shown after a cart change.
type Notification struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Type    string `json:"type"`
}
