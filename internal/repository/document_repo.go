package repository

import (
	"context"

	"cozy_nook/internal/models"
)

type UserStore struct{ js *JSONStore }

func NewUserStore(js *JSONStore) *UserStore { return &UserStore{js: js} }

var _ UserRepo = (*UserStore)(nil)

// Load returns an empty list when no user has been stored yet.
func (r *UserStore) Load(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if _, err := r.js.Read(ctx, KeyUsers, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (r *UserStore) Save(ctx context.Context, users []models.User) error {
	return r.js.Write(ctx, KeyUsers, users)
}

type ProductStore struct{ js *JSONStore }

func NewProductStore(js *JSONStore) *ProductStore { return &ProductStore{js: js} }

var _ ProductRepo = (*ProductStore)(nil)

// Load treats a stored JSON null the same as a missing key.
func (r *ProductStore) Load(ctx context.Context) ([]models.Product, bool, error) {
	var products []models.Product
	found, err := r.js.Read(ctx, KeyProducts, &products)
	if err != nil {
		return nil, false, err
	}
	if !found || products == nil {
		return nil, false, nil
	}
	return products, true, nil
}

func (r *ProductStore) Save(ctx context.Context, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	return r.js.Write(ctx, KeyProducts, products)
}

type SessionStore struct{ js *JSONStore }

func NewSessionStore(js *JSONStore) *SessionStore { return &SessionStore{js: js} }

var _ SessionRepo = (*SessionStore)(nil)

// Load returns nil when nobody is logged in.
func (r *SessionStore) Load(ctx context.Context) (*models.Session, error) {
	var s *models.Session
	if _, err := r.js.Read(ctx, KeyCurrentUser, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionStore) Save(ctx context.Context, s models.Session) error {
	return r.js.Write(ctx, KeyCurrentUser, s)
}

func (r *SessionStore) Clear(ctx context.Context) error {
	return r.js.Remove(ctx, KeyCurrentUser)
}

type CartStore struct{ js *JSONStore }

func NewCartStore(js *JSONStore) *CartStore { return &CartStore{js: js} }

var _ CartRepo = (*CartStore)(nil)

func (r *CartStore) Load(ctx context.Context) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	if _, err := r.js.Read(ctx, KeyCart, &lines); err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

func (r *CartStore) Save(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return r.js.Write(ctx, KeyCart, lines)
}

// Clear drops the key entirely, as the original logout did.
func (r *CartStore) Clear(ctx context.Context) error {
	return r.js.Remove(ctx, KeyCart)
}
