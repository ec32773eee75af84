package service

import (
	"context"
	"sync"
	"time"

	"cozy_nook"
	"cozy_nook/internal/logger"
	"cozy_nook/internal/models"
	"cozy_nook/internal/repository"
)

// UserDirectory owns the registered accounts.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, error)
	EnsureAdminBootstrap(ctx context.Context) error
}

// Sessions tracks who is logged in and mints the bearer tokens handed to
// the HTTP client.
type Sessions interface {
	Current(ctx context.Context) (*models.Session, error)
	Establish(ctx context.Context, u models.User) (models.Session, error)
	// End logs out and empties the cart in one step.
	End(ctx context.Context) error
	IssueToken(s models.Session) (string, error)
	Authenticate(ctx context.Context, token string) (models.Session, error)
}

// Catalog manages the purchasable products and their stock.
type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, p ProductPatch) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	DecrementInventory(ctx context.Context, id string, amount int) (models.Product, error)
}

// Cart manages the shopper's basket and checkout.
type Cart interface {
	CartView(ctx context.Context) (cozy_nook.CartView, error)
	CartLines(ctx context.Context) ([]models.CartLine, error)
	AddToCart(ctx context.Context, productID string) error
	SetCartQuantity(ctx context.Context, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, productID string) error
	Checkout(ctx context.Context) (cozy_nook.CheckoutResult, error)
	ClearCart(ctx context.Context) error
}

// Orders exposes the checkout history.
type Orders interface {
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
}

// Changes lets the presentation layer re-render after mutations.
type Changes interface {
	Subscribe() (<-chan Change, func())
}

type Service struct {
	UserDirectory
	Sessions
	Catalog
	Cart
	Orders
	Changes
}

// Options configures the pieces of the service that are not storage.
type Options struct {
	SigningKey string
	TokenTTL   time.Duration
	Log        *logger.Logger
}

// NewService wires the repositories into the storefront services. All of them
// share one mutex, so every operation runs alone, like event handlers in the
// single browser tab this state used to live in.
func NewService(repos *repository.Repository, opts Options) *Service {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	mu := &sync.Mutex{}
	notifier := NewNotifier()
	tokens := NewTokenIssuer(opts.SigningKey, opts.TokenTTL)

	catalog := NewCatalogService(mu, repos.Products, notifier)
	sessions := NewSessionService(mu, repos.Session, repos.Cart, tokens, notifier)
	return &Service{
		UserDirectory: NewUserService(mu, repos.Users, repos.Session, notifier),
		Sessions:      sessions,
		Catalog:       catalog,
		Cart:          NewCartService(mu, repos.Cart, repos.Session, repos.Orders, catalog, notifier, opts.Log),
		Orders:        NewOrderService(repos.Orders),
		Changes:       notifier,
	}
}
