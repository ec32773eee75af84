package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cozy_nook/internal/models"
)

// ErrStorageUnavailable is returned when the backing store cannot be read
// or written. Callers surface it; nothing in this package retries.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Keys of the four persisted documents.
const (
	KeyUsers       = "users"
	KeyProducts    = "products"
	KeyCurrentUser = "currentUser"
	KeyCart        = "cart"
)

// KVStore is a string-keyed store of string values. Set replaces the whole
// value atomically.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type UserRepo interface {
	Load(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, users []models.User) error
}

type ProductRepo interface {
	// Load reports found=false when the catalog has never been written.
	Load(ctx context.Context) (products []models.Product, found bool, err error)
	Save(ctx context.Context, products []models.Product) error
}

type SessionRepo interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

type CartRepo interface {
	Load(ctx context.Context) ([]models.CartLine, error)
	Save(ctx context.Context, lines []models.CartLine) error
	Clear(ctx context.Context) error
}

type OrderRepo interface {
	Append(ctx context.Context, o models.Order) error
	List(ctx context.Context, from, to time.Time, username string) ([]models.Order, error)
}

type Repository struct {
	Users    UserRepo
	Products ProductRepo
	Session  SessionRepo
	Cart     CartRepo
	Orders   OrderRepo
}

// NewRepository builds the document stores on kv and the order log on db.
func NewRepository(db *sql.DB, kv KVStore) *Repository {
	js := NewJSONStore(kv)
	return &Repository{
		Users:    NewUserStore(js),
		Products: NewProductStore(js),
		Session:  NewSessionStore(js),
		Cart:     NewCartStore(js),
		Orders:   NewOrderSQLite(db),
	}
}
