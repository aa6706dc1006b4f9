package repository

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
)

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned when a stored collection cannot be decoded. Only
	// that collection is affected.
	ErrCorrupt = errors.New("corrupt stored value")
)

// Keys of the four persisted collections.
const (
	KeyProducts = "products"
	KeyCart     = "cart"
	KeyUser     = "user"
	KeyOrders   = "orders"
)

// ProductRepository stores the catalogue.
type ProductRepository interface {
	// LoadProducts seeds the catalogue the first time it is read from an empty store.
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	// SaveProduct replaces the product with the same id in place, or appends it.
	SaveProduct(ctx context.Context, p domain.Product) error
	// ReplaceProduct overwrites an existing product and returns ErrNotFound
	// when there is none with p.ID.
	ReplaceProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// CartRepository mirrors the in-memory cart.
type CartRepository interface {
	LoadCart(ctx context.Context) ([]domain.CartItem, error)
	SaveCart(ctx context.Context, items []domain.CartItem) error
}

// UserRepository holds the single current-user slot.
type UserRepository interface {
	// LoadCurrentUser returns nil when nobody is logged in.
	LoadCurrentUser(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, role domain.Role, name string) (domain.User, error)
	Logout(ctx context.Context) error
}

// OrderRepository stores the append-only order history.
type OrderRepository interface {
	LoadOrders(ctx context.Context, userID string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, o domain.Order) error
}

// ProductFilter narrows a catalogue listing.
type ProductFilter struct {
	// Query matches the title case-insensitively.
	Query    string
	Category string
	SellerID string
}

// Match reports whether p passes every non-empty criterion.
func (f ProductFilter) Match(p domain.Product) bool {
	if !containsIgnoreCase(p.Title, f.Query) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.SellerID != "" && p.SellerID != f.SellerID {
		return false
	}
	return true
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
