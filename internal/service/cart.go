package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Cart holds the session's line items. The in-memory list is authoritative;
// it is read from the repository once and mirrored back after each mutation.
type Cart struct {
	mu    sync.Mutex
	items []domain.CartItem
	repo  repository.CartRepository
	log   *zap.Logger
}

func NewCart(ctx context.Context, repo repository.CartRepository, log *zap.Logger) (*Cart, error) {
	if log == nil {
		log = zap.NewNop()
	}
	items, err := repo.LoadCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &Cart{items: items, repo: repo, log: log}, nil
}

// Items returns a copy of the current line items.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartItem{}, c.items...)
}

// Add puts one unit of p in the cart. An existing line keeps its original
// snapshot and only gains quantity.
func (c *Cart) Add(ctx context.Context, p domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ctx, addItem(c.items, p))
}

// Remove drops the line for id, if any.
func (c *Cart) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ctx, removeItem(c.items, id))
}

// UpdateQuantity sets the quantity for id. Quantities below 1 are ignored;
// they never remove the line.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, q int) error {
	if q < 1 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ctx, setQuantity(c.items, id, q))
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ctx, []domain.CartItem{})
}

// Deduct takes the quantities in ordered out of the cart. Units added after
// ordered was read stay in the cart.
func (c *Cart) Deduct(ctx context.Context, ordered []domain.CartItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ctx, deductItems(c.items, ordered))
}

// apply must be called with c.mu held.
func (c *Cart) apply(ctx context.Context, next []domain.CartItem) error {
	c.items = next
	if err := c.repo.SaveCart(ctx, next); err != nil {
		c.log.Warn("cart mirror failed", zap.Error(err))
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// reducers; they never modify their input

func addItem(items []domain.CartItem, p domain.Product) []domain.CartItem {
	out := slices.Clone(items)
	for i := range out {
		if out[i].ID == p.ID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, domain.CartItem{Product: p, Quantity: 1})
}

func removeItem(items []domain.CartItem, id string) []domain.CartItem {
	return slices.DeleteFunc(slices.Clone(items), func(it domain.CartItem) bool { return it.ID == id })
}

func deductItems(items, ordered []domain.CartItem) []domain.CartItem {
	taken := make(map[string]int, len(ordered))
	for _, it := range ordered {
		taken[it.ID] += it.Quantity
	}
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		it.Quantity -= taken[it.ID]
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}

func setQuantity(items []domain.CartItem, id string, q int) []domain.CartItem {
	out := slices.Clone(items)
	if q < 1 {
		return out
	}
	for i := range out {
		if out[i].ID == id {
			out[i].Quantity = q
		}
	}
	return out
}
