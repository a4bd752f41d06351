package cart

// TaxRate is applied to every line added to a cart.
const TaxRate = 0.21

type Item struct {
	ID        string `json:"id"`
	CartID    string `json:"cartId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart caches its monetary aggregates. They are adjusted incrementally on
// every mutation, never recomputed from the items during normal operation.
type Cart struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	Items      []Item  `json:"items"`
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	Total      float64 `json:"total"`
	PlaceOrder bool    `json:"placeOrder"`
}

// AddUnits folds qty units at the given price into the aggregates.
func (c *Cart) AddUnits(price float64, qty int) {
	line := price * float64(qty)
	c.Subtotal += line
	c.Tax += line * TaxRate
	c.Total = c.Subtotal + c.Tax
}

// RemoveUnits subtracts qty units at the given price and their tax share.
// Product stock is unaffected: units removed from a cart are not put back on
// the shelf.
func (c *Cart) RemoveUnits(price float64, qty int) {
	line := price * float64(qty)
	c.Subtotal -= line
	c.Tax -= line * TaxRate
	c.Total -= line + line*TaxRate
}
