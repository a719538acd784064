package domain

import "time"

// LineItem is a single product position in a cart. Prices are kept in minor
// currency units (paise) to avoid float rounding in totals.
type LineItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Name      string `json:"name" bson:"name"`
	UnitPrice int64  `json:"unit_price" bson:"unit_price"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

type Cart struct {
	UserID    string     `json:"user_id" bson:"user_id"`
	Items     []LineItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// Count returns the total number of units across all items.
func (c *Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal returns the cart total in minor units, recomputed from current items.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += int64(item.Quantity) * item.UnitPrice
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
