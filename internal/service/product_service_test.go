package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/kv"
	"storefront/internal/repository"
)

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(kv.NewMemory(), repository.Options{})
}

func setupPS(t *testing.T) *ProductService {
	t.Helper()
	return NewProductService(newStore(t), nil)
}

var seller = domain.User{ID: repository.SellerID, Name: "Alice", Role: domain.RoleSeller}

func TestProduct_Create_Valid(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, err := ps.Create(ctx, seller, domain.Product{Title: " Lamp ", Price: 100, Category: "Home & Lifestyle", Rating: 4.9, Reviews: 77})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.HasPrefix(p.ID, "prod-") {
		t.Fatalf("expected id assigned, got %q", p.ID)
	}
	if p.Title != "Lamp" || p.SellerID != seller.ID || p.Rating != 0 || p.Reviews != 0 {
		t.Fatalf("unexpected product: %+v", p)
	}
	got, err := ps.GetByID(ctx, p.ID)
	if err != nil || *got != *p {
		t.Fatalf("get after create: %+v %v", got, err)
	}
}

func TestProduct_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	cases := []domain.Product{
		{Title: "", Price: 1, Category: "Groceries & Pets"},
		{Title: "N", Price: 0, Category: "Groceries & Pets"},
		{Title: "N", Price: -1, Category: "Groceries & Pets"},
		{Title: "N", Price: 10, OriginalPrice: 5, Category: "Groceries & Pets"},
		{Title: "N", Price: 10, Category: "Spaceships"},
	}
	for _, c := range cases {
		if _, err := ps.Create(ctx, seller, c); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected validation error for %+v, got %v", c, err)
		}
	}
}

func TestProduct_Update_Get_Delete(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, _ := ps.Create(ctx, seller, domain.Product{Title: "A", Price: 10, Category: "Babies & Toys"})

	// update
	p.Title = "A+"
	p.Price = 12
	p.OriginalPrice = 20
	up, err := ps.Update(ctx, *p)
	if err != nil {
		t.Fatalf("update err: %v", err)
	}
	if up.Title != "A+" || up.Price != 12 {
		t.Fatalf("not updated")
	}
	got, _ := ps.GetByID(ctx, p.ID)
	if got.OriginalPrice != 20 {
		t.Fatalf("update not persisted: %+v", got)
	}

	// update of unknown id
	ghost := *p
	ghost.ID = "prod-ghost"
	if _, err := ps.Update(ctx, ghost); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// delete twice
	if err := ps.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete err: %v", err)
	}
	if err := ps.Delete(ctx, p.ID); err != nil {
		t.Fatalf("second delete err: %v", err)
	}
	if _, err := ps.GetByID(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found after delete")
	}

	// update of a deleted product
	if _, err := ps.Update(ctx, *up); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found updating deleted product, got %v", err)
	}
	if _, err := ps.GetByID(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("deleted product came back")
	}
}

func TestProduct_List_Filtering(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	seeded, err := ps.List(ctx, repository.ProductFilter{})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	if len(seeded) != repository.DefaultSeedCount {
		t.Fatalf("expected seeded catalogue, got %d", len(seeded))
	}

	other := domain.User{ID: "seller-2", Role: domain.RoleSeller}
	must := func(p *domain.Product, err error) *domain.Product {
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
	must(ps.Create(ctx, seller, domain.Product{Title: "Aspirin Box", Price: 100, Category: "Health & Beauty"}))
	must(ps.Create(ctx, other, domain.Product{Title: "Paracetamol", Price: 50, Category: "Health & Beauty"}))
	must(ps.Create(ctx, other, domain.Product{Title: "Football", Price: 150, Category: "Sports & Outdoor"}))

	// substring, case-insensitive
	list, _ := ps.List(ctx, repository.ProductFilter{Query: "ASPIRIN"})
	if len(list) != 1 || list[0].Title != "Aspirin Box" {
		t.Fatalf("query filter failed: %v", list)
	}

	// category
	list, _ = ps.List(ctx, repository.ProductFilter{Category: "Sports & Outdoor"})
	for _, p := range list {
		if p.Category != "Sports & Outdoor" {
			t.Fatalf("category filter failed")
		}
	}

	// seller
	list, _ = ps.List(ctx, repository.ProductFilter{SellerID: "seller-2"})
	if len(list) != 2 {
		t.Fatalf("seller filter: expected 2, got %d", len(list))
	}

	// combined
	list, _ = ps.List(ctx, repository.ProductFilter{SellerID: "seller-2", Category: "Health & Beauty"})
	if len(list) != 1 || list[0].Title != "Paracetamol" {
		t.Fatalf("combined filter failed: %v", list)
	}
}
