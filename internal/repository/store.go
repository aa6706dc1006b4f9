package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/kv"
)

// Fixed identities: every customer shares one id and every seller another.
const (
	CustomerID = "user-1"
	SellerID   = "seller-1"
)

// Options tune a Store. The zero value is usable.
type Options struct {
	// SeedCount is the number of sample products; 0 means DefaultSeedCount.
	SeedCount int
	// Rand drives sample product generation; nil means a randomly seeded source.
	Rand   *rand.Rand
	Logger *zap.Logger
}

// Store is the persistent store: four JSON collections over a kv.Backend.
// The mutex only serialises read-modify-write cycles inside this process;
// other processes sharing the backend are not coordinated.
type Store struct {
	mu        sync.Mutex
	kv        kv.Backend
	seedCount int
	rnd       *rand.Rand
	log       *zap.Logger
}

// Ensure interfaces
var (
	_ ProductRepository = (*Store)(nil)
	_ CartRepository    = (*Store)(nil)
	_ UserRepository    = (*Store)(nil)
	_ OrderRepository   = (*Store)(nil)
)

func NewStore(b kv.Backend, opts Options) *Store {
	s := &Store{kv: b, seedCount: opts.SeedCount, rnd: opts.Rand, log: opts.Logger}
	if s.seedCount <= 0 {
		s.seedCount = DefaultSeedCount
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Products

func (s *Store) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProducts(ctx)
}

func (s *Store) loadProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	found, err := s.read(ctx, KeyProducts, &products)
	if err != nil {
		return nil, err
	}
	if found {
		return products, nil
	}
	products = sampleProducts(s.seedCount, s.rnd)
	if err := s.write(ctx, KeyProducts, products); err != nil {
		return nil, err
	}
	s.log.Info("seeded product catalogue", zap.Int("count", len(products)))
	return products, nil
}

func (s *Store) SaveProduct(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	products, err := s.loadProducts(ctx)
	if err != nil {
		return err
	}
	if i := slices.IndexFunc(products, func(x domain.Product) bool { return x.ID == p.ID }); i >= 0 {
		products[i] = p
	} else {
		products = append(products, p)
	}
	return s.write(ctx, KeyProducts, products)
}

func (s *Store) ReplaceProduct(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	products, err := s.loadProducts(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(products, func(x domain.Product) bool { return x.ID == p.ID })
	if i < 0 {
		return fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
	}
	products[i] = p
	return s.write(ctx, KeyProducts, products)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	products, err := s.loadProducts(ctx)
	if err != nil {
		return err
	}
	products = slices.DeleteFunc(products, func(x domain.Product) bool { return x.ID == id })
	return s.write(ctx, KeyProducts, products)
}

// Cart

func (s *Store) LoadCart(ctx context.Context) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if _, err := s.read(ctx, KeyCart, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

func (s *Store) SaveCart(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	return s.write(ctx, KeyCart, items)
}

// Session user

func (s *Store) LoadCurrentUser(ctx context.Context) (*domain.User, error) {
	var u domain.User
	found, err := s.read(ctx, KeyUser, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

// Login overwrites the current-user slot with the fixed identity for role.
// There is no credential check.
func (s *Store) Login(ctx context.Context, role domain.Role, name string) (domain.User, error) {
	u := NewUser(role, name)
	if err := s.write(ctx, KeyUser, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyUser); err != nil {
		return fmt.Errorf("clear %s: %w", KeyUser, err)
	}
	return nil
}

// NewUser derives the identity record for a login: the id depends only on
// the role and the email on the name.
func NewUser(role domain.Role, name string) domain.User {
	id := CustomerID
	if role == domain.RoleSeller {
		id = SellerID
	}
	return domain.User{
		ID:    id,
		Name:  name,
		Email: strings.ReplaceAll(strings.ToLower(name), " ", "") + "@example.com",
		Role:  role,
	}
}

// Orders

// LoadOrders returns the orders of one user in the order they were placed.
func (s *Store) LoadOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	all, err := s.AllOrders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// AllOrders returns the global order history.
func (s *Store) AllOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if _, err := s.read(ctx, KeyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder appends o to the global history. Orders are never rewritten.
func (s *Store) CreateOrder(ctx context.Context, o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []domain.Order
	if _, err := s.read(ctx, KeyOrders, &orders); err != nil {
		return err
	}
	orders = append(orders, o)
	return s.write(ctx, KeyOrders, orders)
}

// helpers

// read decodes key into v. Absence is not an error.
func (s *Store) read(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
