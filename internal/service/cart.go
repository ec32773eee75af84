package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"cozy_nook"
	"cozy_nook/internal/logger"
	"cozy_nook/internal/models"
	"cozy_nook/internal/repository"

	"github.com/google/uuid"
)

type CartService struct {
	mu       *sync.Mutex
	carts    repository.CartRepo
	sessions repository.SessionRepo
	orders   repository.OrderRepo
	catalog  *CatalogService
	notify   *Notifier
	log      *logger.Logger
}

func NewCartService(
	mu *sync.Mutex,
	carts repository.CartRepo,
	sessions repository.SessionRepo,
	orders repository.OrderRepo,
	catalog *CatalogService,
	notify *Notifier,
	log *logger.Logger,
) *CartService {
	return &CartService{
		mu:       mu,
		carts:    carts,
		sessions: sessions,
		orders:   orders,
		catalog:  catalog,
		notify:   notify,
		log:      log,
	}
}

// CartLines returns the stored lines, including ones whose product is gone.
func (s *CartService) CartLines(ctx context.Context) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts.Load(ctx)
}

// CartView joins the cart with the current catalog. Lines whose product was
// deleted are skipped, not reported.
func (s *CartService) CartView(ctx context.Context) (cozy_nook.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.carts.Load(ctx)
	if err != nil {
		return cozy_nook.CartView{}, err
	}
	products, err := s.catalog.load(ctx)
	if err != nil {
		return cozy_nook.CartView{}, err
	}

	view := cozy_nook.CartView{Items: make([]cozy_nook.CartItem, 0, len(lines))}
	total := 0.0
	for _, l := range lines {
		i := findProduct(products, l.ProductID)
		if i < 0 {
			continue
		}
		p := products[i]
		sub := p.Price * float64(l.Quantity)
		total += sub
		view.Count += l.Quantity
		view.Items = append(view.Items, cozy_nook.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Price:     p.Price,
			Quantity:  l.Quantity,
			Subtotal:  roundCents(sub),
		})
	}
	view.Total = roundCents(total)
	return view, nil
}

// AddToCart bumps the line for productID or appends one with quantity 1.
func (s *CartService) AddToCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.catalog.load(ctx)
	if err != nil {
		return err
	}
	if findProduct(products, productID) < 0 {
		return fmt.Errorf("%w: product %q", ErrNotFound, productID)
	}

	lines, err := s.carts.Load(ctx)
	if err != nil {
		return err
	}
	if i := findLine(lines, productID); i >= 0 {
		lines[i].Quantity++
	} else {
		lines = append(lines, models.CartLine{ProductID: productID, Quantity: 1})
	}
	return s.save(ctx, lines)
}

// SetCartQuantity rejects zero and negative quantities; removing a line is
// RemoveFromCart's job.
func (s *CartService) SetCartQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.carts.Load(ctx)
	if err != nil {
		return err
	}
	i := findLine(lines, productID)
	if i < 0 {
		return fmt.Errorf("%w: product %q is not in the cart", ErrNotFound, productID)
	}
	lines[i].Quantity = quantity
	return s.save(ctx, lines)
}

// RemoveFromCart is a no-op when the product is not in the cart.
func (s *CartService) RemoveFromCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.carts.Load(ctx)
	if err != nil {
		return err
	}
	i := findLine(lines, productID)
	if i < 0 {
		return nil
	}
	return s.save(ctx, append(lines[:i], lines[i+1:]...))
}

func (s *CartService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.carts.Clear(ctx); err != nil {
		return err
	}
	s.notify.Publish(TopicCart)
	return nil
}

// Checkout validates every line against the catalog before changing any
// stock. If one line cannot be filled nothing is written. On success the
// catalog is saved once, the cart is cleared and an order is recorded.
func (s *CartService) Checkout(ctx context.Context) (cozy_nook.CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.carts.Load(ctx)
	if err != nil {
		return cozy_nook.CheckoutResult{}, err
	}
	if len(lines) == 0 {
		return cozy_nook.CheckoutResult{}, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	products, err := s.catalog.load(ctx)
	if err != nil {
		return cozy_nook.CheckoutResult{}, err
	}
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return cozy_nook.CheckoutResult{}, err
	}

	// validate
	wanted := make(map[string]int, len(lines))
	for _, l := range lines {
		wanted[l.ProductID] += l.Quantity
	}
	var short []string
	for _, l := range lines {
		i := findProduct(products, l.ProductID)
		if i < 0 {
			short = append(short, fmt.Sprintf("%s (no longer sold)", l.ProductID))
			continue
		}
		if wanted[l.ProductID] > products[i].Quantity {
			short = append(short, fmt.Sprintf("%s (%d left)", products[i].Name, products[i].Quantity))
		}
	}
	if len(short) > 0 {
		return cozy_nook.CheckoutResult{}, fmt.Errorf("%w: %s", ErrInsufficientStock, strings.Join(short, ", "))
	}

	// apply
	order := models.Order{
		ID:       uuid.NewString(),
		PlacedAt: time.Now().UTC(),
		Lines:    make([]models.OrderLine, 0, len(lines)),
	}
	if sess != nil {
		order.Username = sess.Username
	}
	total := 0.0
	for _, l := range lines {
		i := findProduct(products, l.ProductID)
		products[i].Quantity -= l.Quantity
		total += products[i].Price * float64(l.Quantity)
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID: products[i].ID,
			Name:      products[i].Name,
			Price:     products[i].Price,
			Quantity:  l.Quantity,
		})
	}
	order.Total = roundCents(total)

	if err := s.catalog.save(ctx, products); err != nil {
		return cozy_nook.CheckoutResult{}, err
	}
	if err := s.carts.Clear(ctx); err != nil {
		return cozy_nook.CheckoutResult{}, err
	}
	s.notify.Publish(TopicCart)

	res := cozy_nook.CheckoutResult{Success: true, OrderID: order.ID, Total: order.Total}
	// stock is already committed; a lost history entry must not undo the sale
	if err := s.orders.Append(ctx, order); err != nil {
		s.log.Errorw("order_record_failed", "order_id", order.ID, "err", err)
		res.OrderID = ""
		return res, nil
	}
	s.notify.Publish(TopicOrders)
	return res, nil
}

func (s *CartService) save(ctx context.Context, lines []models.CartLine) error {
	if err := s.carts.Save(ctx, lines); err != nil {
		return err
	}
	s.notify.Publish(TopicCart)
	return nil
}

func findLine(lines []models.CartLine, productID string) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
