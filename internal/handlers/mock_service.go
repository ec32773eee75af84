package handlers

import (
	"context"
	"net/http"

	"cozy_nook"
	"cozy_nook/internal/models"
	"cozy_nook/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockUsers struct {
	users []models.User
	user  models.User
	err   error

	lastUsername string
	lastPassword string
}

func (m *mockUsers) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.users, m.err
}
func (m *mockUsers) Register(ctx context.Context, username, password string) (models.User, error) {
	m.lastUsername = username
	m.lastPassword = password
	return m.user, m.err
}
func (m *mockUsers) Login(ctx context.Context, username, password string) (models.User, error) {
	m.lastUsername = username
	m.lastPassword = password
	return m.user, m.err
}
func (m *mockUsers) EnsureAdminBootstrap(ctx context.Context) error {
	return m.err
}

type mockSessions struct {
	current    *models.Session
	currentErr error
	endErr     error
	endCalls   int
	token      string
	tokenErr   error
	authSess   models.Session
	authErr    error

	lastIssued models.Session
	lastToken  string
}

func (m *mockSessions) Current(ctx context.Context) (*models.Session, error) {
	return m.current, m.currentErr
}
func (m *mockSessions) Establish(ctx context.Context, u models.User) (models.Session, error) {
	return models.SessionOf(u), nil
}
func (m *mockSessions) End(ctx context.Context) error {
	m.endCalls++
	return m.endErr
}
func (m *mockSessions) IssueToken(s models.Session) (string, error) {
	m.lastIssued = s
	return m.token, m.tokenErr
}
func (m *mockSessions) Authenticate(ctx context.Context, token string) (models.Session, error) {
	m.lastToken = token
	return m.authSess, m.authErr
}

type mockCatalog struct {
	products []models.Product
	product  models.Product
	err      error

	lastID     string
	lastInput  service.ProductInput
	lastPatch  service.ProductPatch
	lastAmount int
}

func (m *mockCatalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	return m.products, m.err
}
func (m *mockCatalog) GetProduct(ctx context.Context, id string) (models.Product, error) {
	m.lastID = id
	return m.product, m.err
}
func (m *mockCatalog) CreateProduct(ctx context.Context, in service.ProductInput) (models.Product, error) {
	m.lastInput = in
	return m.product, m.err
}
func (m *mockCatalog) UpdateProduct(ctx context.Context, id string, p service.ProductPatch) (models.Product, error) {
	m.lastID = id
	m.lastPatch = p
	return m.product, m.err
}
func (m *mockCatalog) DeleteProduct(ctx context.Context, id string) error {
	m.lastID = id
	return m.err
}
func (m *mockCatalog) DecrementInventory(ctx context.Context, id string, amount int) (models.Product, error) {
	m.lastID = id
	m.lastAmount = amount
	return m.product, m.err
}

type mockCart struct {
	view     cozy_nook.CartView
	lines    []models.CartLine
	result   cozy_nook.CheckoutResult
	err      error
	viewErr  error
	clearHit int

	lastProductID string
	lastQuantity  int
}

func (m *mockCart) CartView(ctx context.Context) (cozy_nook.CartView, error) {
	return m.view, m.viewErr
}
func (m *mockCart) CartLines(ctx context.Context) ([]models.CartLine, error) {
	return m.lines, m.err
}
func (m *mockCart) AddToCart(ctx context.Context, productID string) error {
	m.lastProductID = productID
	return m.err
}
func (m *mockCart) SetCartQuantity(ctx context.Context, productID string, quantity int) error {
	m.lastProductID = productID
	m.lastQuantity = quantity
	return m.err
}
func (m *mockCart) RemoveFromCart(ctx context.Context, productID string) error {
	m.lastProductID = productID
	return m.err
}
func (m *mockCart) Checkout(ctx context.Context) (cozy_nook.CheckoutResult, error) {
	return m.result, m.err
}
func (m *mockCart) ClearCart(ctx context.Context) error {
	m.clearHit++
	return m.err
}

type mockOrders struct {
	orders     []models.Order
	err        error
	lastFilter service.OrderFilter
}

func (m *mockOrders) ListOrders(ctx context.Context, f service.OrderFilter) ([]models.Order, error) {
	m.lastFilter = f
	return m.orders, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// loggedIn returns a session mock that accepts any bearer token.
func loggedIn(username string, admin bool) *mockSessions {
	return &mockSessions{authSess: models.Session{Username: username, IsAdmin: admin}}
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
