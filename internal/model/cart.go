package model

// CartItem is one line of a user's cart snapshot.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the snapshot of a user's cart consumed at checkout. The cart
// itself is owned by an external collaborator; checkout only reads and
// clears it.
type Cart struct {
	UserID string     `json:"userId"`
	Items  []CartItem `json:"items"`
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}
