package order

import "time"

// Item is one line of the immutable snapshot taken from the cart at create
// or update time.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order drives a strict lifecycle: created with CartID set, optionally
// updated, then either paid (CartID cleared, PaidBy set) or deleted while
// unpaid. There is no way out of paid.
type Order struct {
	ID         string    `json:"id"`
	CartID     *string   `json:"cartId"`
	Discount   int       `json:"discount"`
	FinalPrice float64   `json:"finalPrice"`
	Items      []Item    `json:"itemsInOrder"`
	CreatedAt  time.Time `json:"createdAt"`
	PaidBy     *string   `json:"paidBy"`
}

// Paid reports whether the order reached its terminal paid state.
func (o *Order) Paid() bool {
	return o.CartID == nil
}

// CartSnapshot is the slice of a cart the order service needs: its owner and
// the current total.
type CartSnapshot struct {
	ID     string
	UserID string
	Total  float64
}
