package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cozy_nook/internal/models"
	"cozy_nook/internal/repository"
)

// memOrders is an in-test OrderRepo.
type memOrders struct {
	mu        sync.Mutex
	orders    []models.Order
	appendErr error
	lastFrom  time.Time
	lastTo    time.Time
	lastUser  string
}

func (m *memOrders) Append(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.orders = append(m.orders, o)
	return nil
}

func (m *memOrders) List(_ context.Context, from, to time.Time, username string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFrom, m.lastTo, m.lastUser = from, to, username
	return append([]models.Order(nil), m.orders...), nil
}

// countingKV records writes so tests can assert that nothing was persisted.
type countingKV struct {
	*repository.KVMemory
	mu     sync.Mutex
	sets   map[string]int
	setErr error
}

func newCountingKV() *countingKV {
	return &countingKV{KVMemory: repository.NewKVMemory(), sets: map[string]int{}}
}

func (c *countingKV) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets[key]++
	err := c.setErr
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.KVMemory.Set(ctx, key, value)
}

func (c *countingKV) writes(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

type fixture struct {
	svc    *Service
	kv     *countingKV
	orders *memOrders
	repos  *repository.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := newCountingKV()
	js := repository.NewJSONStore(kv)
	orders := &memOrders{}
	repos := &repository.Repository{
		Users:    repository.NewUserStore(js),
		Products: repository.NewProductStore(js),
		Session:  repository.NewSessionStore(js),
		Cart:     repository.NewCartStore(js),
		Orders:   orders,
	}
	svc := NewService(repos, Options{SigningKey: "test-key", TokenTTL: time.Hour})
	return &fixture{svc: svc, kv: kv, orders: orders, repos: repos}
}

// withCatalog replaces the stored catalog with products.
func (f *fixture) withCatalog(t *testing.T, products ...models.Product) {
	t.Helper()
	if err := f.repos.Products.Save(context.Background(), products); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func (f *fixture) withCart(t *testing.T, lines ...models.CartLine) {
	t.Helper()
	if err := f.repos.Cart.Save(context.Background(), lines); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

var errDiskFull = errors.New("disk full")
