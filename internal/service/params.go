package service

import "time"

// ProductInput carries the admin form values as typed by the user; price and
// quantity are parsed and validated by the catalog.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Quantity    string
	Image       string // blank means the placeholder image
}

// ProductPatch overwrites only the non-nil fields.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *string
	Quantity    *string
	Image       *string
}

// OrderFilter narrows the order history; zero values mean unbounded.
type OrderFilter struct {
	From     time.Time // inclusive
	To       time.Time // inclusive
	Username string
}
