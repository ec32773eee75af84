package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"cozy_nook/internal/models"
	"cozy_nook/internal/repository"

	"github.com/google/uuid"
)

const (
	legacyImagePrefix = "/public/images/"
	imagePrefix       = "images/"
	placeholderImage  = "images/placeholder.jpg"
)

type CatalogService struct {
	mu       *sync.Mutex
	products repository.ProductRepo
	notify   *Notifier
}

func NewCatalogService(mu *sync.Mutex, products repository.ProductRepo, notify *Notifier) *CatalogService {
	return &CatalogService{mu: mu, products: products, notify: notify}
}

// defaultProducts is the bakery's starting catalog.
func defaultProducts() []models.Product {
	return []models.Product{
		{
			ID:          uuid.NewString(),
			Name:        "Chocolate Chip Cookies",
			Description: "Classic cookies with rich chocolate chips.",
			Price:       3.0,
			Quantity:    30,
			Image:       "images/cookies.jpg",
		},
		{
			ID:          uuid.NewString(),
			Name:        "Cinnamon Rolls",
			Description: "Soft rolls swirled with cinnamon and topped with icing.",
			Price:       4.5,
			Quantity:    20,
			Image:       "images/cinnamon_rolls.jpg",
		},
		{
			ID:          uuid.NewString(),
			Name:        "Blueberry Muffins",
			Description: "Moist muffins bursting with fresh blueberries.",
			Price:       3.5,
			Quantity:    25,
			Image:       "images/muffins.jpg",
		},
	}
}

// ListProducts seeds the defaults on first use and rewrites legacy image
// paths, saving only when something changed.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := findProduct(products, id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("%w: product %q", ErrNotFound, id)
	}
	return products[i], nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Product{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return models.Product{}, err
	}
	qty, err := parseQuantity(in.Quantity)
	if err != nil {
		return models.Product{}, err
	}
	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = placeholderImage
	}

	p := models.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Quantity:    qty,
		Image:       image,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.save(ctx, append(products, p)); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// UpdateProduct validates every provided field before touching the record.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := findProduct(products, id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("%w: product %q", ErrNotFound, id)
	}

	p, err := applyPatch(products[i], patch)
	if err != nil {
		return models.Product{}, err
	}
	products[i] = p
	if err := s.save(ctx, products); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// DeleteProduct leaves cart lines pointing at id in place.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := findProduct(products, id)
	if i < 0 {
		return fmt.Errorf("%w: product %q", ErrNotFound, id)
	}
	return s.save(ctx, append(products[:i], products[i+1:]...))
}

func (s *CatalogService) DecrementInventory(ctx context.Context, id string, amount int) (models.Product, error) {
	if amount <= 0 {
		return models.Product{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := findProduct(products, id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("%w: product %q does not exist", ErrInsufficientStock, id)
	}
	if amount > products[i].Quantity {
		return models.Product{}, fmt.Errorf("%w: %q has %d, requested %d",
			ErrInsufficientStock, products[i].Name, products[i].Quantity, amount)
	}
	products[i].Quantity -= amount
	if err := s.save(ctx, products); err != nil {
		return models.Product{}, err
	}
	return products[i], nil
}

// load returns the catalog, seeding and migrating as needed. Callers hold mu.
func (s *CatalogService) load(ctx context.Context) ([]models.Product, error) {
	products, found, err := s.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		products = defaultProducts()
		if err := s.save(ctx, products); err != nil {
			return nil, err
		}
		return products, nil
	}
	if migrateImagePaths(products) {
		if err := s.save(ctx, products); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (s *CatalogService) save(ctx context.Context, products []models.Product) error {
	if err := s.products.Save(ctx, products); err != nil {
		return err
	}
	s.notify.Publish(TopicProducts)
	return nil
}

// migrateImagePaths rewrites /public/images/x to images/x in place and
// reports whether anything changed.
func migrateImagePaths(products []models.Product) bool {
	changed := false
	for i := range products {
		if strings.HasPrefix(products[i].Image, legacyImagePrefix) {
			products[i].Image = imagePrefix + strings.TrimPrefix(products[i].Image, legacyImagePrefix)
			changed = true
		}
	}
	return changed
}

func applyPatch(p models.Product, patch ProductPatch) (models.Product, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return p, fmt.Errorf("%w: name is required", ErrValidation)
		}
		p.Name = name
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		price, err := parsePrice(*patch.Price)
		if err != nil {
			return p, err
		}
		p.Price = price
	}
	if patch.Quantity != nil {
		qty, err := parseQuantity(*patch.Quantity)
		if err != nil {
			return p, err
		}
		p.Quantity = qty
	}
	if patch.Image != nil {
		p.Image = strings.TrimSpace(*patch.Image)
	}
	return p, nil
}

// parsePrice accepts any finite, non-negative decimal. Garbage and negative
// values are both ErrValidation.
func parsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: price is required", ErrValidation)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: price %q is not a number", ErrValidation, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return v, nil
}

func parseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: quantity is required", ErrValidation)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %q is not a whole number", ErrValidation, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return v, nil
}

func findProduct(products []models.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
