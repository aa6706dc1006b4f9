package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// ProductService holds the catalogue rules.
type ProductService struct {
	repo repository.ProductRepository
	log  *zap.Logger
}

func NewProductService(repo repository.ProductRepository, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{repo: repo, log: log}
}

var ErrInvalidInput = errors.New("invalid input")

// List returns the catalogue in stored order, narrowed by f.
func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	all, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	all, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(all, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	cp := all[i]
	return &cp, nil
}

// Create lists a new product for seller. Rating and review count start at zero.
func (s *ProductService) Create(ctx context.Context, seller domain.User, p domain.Product) (*domain.Product, error) {
	cp := p
	cp.ID = newID("prod-")
	cp.Title = strings.TrimSpace(cp.Title)
	cp.Rating = 0
	cp.Reviews = 0
	cp.SellerID = seller.ID
	if cp.Image == "" {
		cp.Image = "https://picsum.photos/seed/" + cp.ID + "/300/300"
	}
	if err := validateProduct(cp); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProduct(ctx, cp); err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.String("id", cp.ID), zap.String("seller", seller.ID))
	return &cp, nil
}

// Update fully replaces an existing product.
func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	cp := p
	cp.Title = strings.TrimSpace(cp.Title)
	if err := validateProduct(cp); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceProduct(ctx, cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Delete removes the product if present. Deleting an unknown id is not an error.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.DeleteProduct(ctx, id)
}

func validateProduct(p domain.Product) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	case p.OriginalPrice != 0 && p.OriginalPrice < p.Price:
		return fmt.Errorf("%w: original price below price", ErrInvalidInput)
	case !domain.IsCategory(p.Category):
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, p.Category)
	case p.Rating < 0 || p.Rating > 5 || p.Reviews < 0:
		return fmt.Errorf("%w: rating or reviews out of range", ErrInvalidInput)
	}
	return nil
}

// newID returns prefix plus a time-ordered UUID.
func newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + id.String()
}
