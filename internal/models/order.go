package models

import "time"

// Order is the record left behind by a successful checkout.
type Order struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	PlacedAt time.Time   `json:"placed_at"`
	Lines    []OrderLine `json:"lines"`
	Total    float64     `json:"total"`
}

// OrderLine freezes name and price as they were at checkout.
type OrderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
