package cozy_nook

// CartItem is a cart line joined with the product it references.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`    // unit price
	Quantity  int     `json:"quantity"` // units in the cart
	Subtotal  float64 `json:"subtotal"`
}

// CartView is what the cart page renders. Lines pointing at deleted
// products are not part of Items or Total.
type CartView struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
	Count int        `json:"count"` // units across all items
}

// CheckoutResult is returned once inventory has been decremented.
type CheckoutResult struct {
	Success bool    `json:"success"`
	OrderID string  `json:"order_id,omitempty"`
	Total   float64 `json:"total"`
}
