package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cozy_nook/internal/models"
	"cozy_nook/internal/repository"
)

type OrderService struct {
	orders repository.OrderRepo
}

func NewOrderService(orders repository.OrderRepo) *OrderService {
	return &OrderService{orders: orders}
}

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// ListOrders returns the checkout history, oldest first.
func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, fmt.Errorf("%w: from must be <= to", ErrValidation)
	}
	return s.orders.List(ctx, from, to, strings.TrimSpace(f.Username))
}
