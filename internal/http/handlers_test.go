package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/assistant"
	"storefront/internal/domain"
	"storefront/internal/kv"
	"storefront/internal/repository"
	"storefront/internal/service"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	return setupServerOn(t, kv.NewMemory())
}

func setupServerOn(t *testing.T, b kv.Backend) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store := repository.NewStore(b, repository.Options{SeedCount: 3})
	cart, err := service.NewCart(ctx, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	session, err := service.NewSession(ctx, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(Services{
		Products:  service.NewProductService(store, nil),
		Orders:    service.NewOrderService(store, service.DefaultShippingFee, nil),
		Cart:      cart,
		Session:   session,
		Assistant: assistant.NewService(nil, 0, nil),
	}, nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func login(t *testing.T, s *Server, role, name string) {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/session/login", map[string]any{"role": role, "name": name})
	if w.Code != http.StatusOK {
		t.Fatalf("login code %v: %s", w.Code, w.Body.String())
	}
}

func TestProductFlow(t *testing.T) {
	s := setupServer(t)

	// seeded catalogue
	w := doJSON(t, s, http.MethodGet, "/api/v1/products", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code %v", w.Code)
	}
	if got := decode[[]domain.Product](t, w); len(got) != 3 {
		t.Fatalf("expected 3 seeded products, got %d", len(got))
	}

	login(t, s, "seller", "Alice")

	// create
	w = doJSON(t, s, http.MethodPost, "/api/v1/products", map[string]any{
		"title": "Aspirin", "price": 10, "category": "Health & Beauty",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %v: %s", w.Code, w.Body.String())
	}
	p := decode[domain.Product](t, w)
	if p.SellerID != repository.SellerID || p.Image == "" {
		t.Fatalf("unexpected product %+v", p)
	}

	// get
	w = doJSON(t, s, http.MethodGet, "/api/v1/products/"+p.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get code %v", w.Code)
	}

	// update
	w = doJSON(t, s, http.MethodPut, "/api/v1/products/"+p.ID, map[string]any{
		"title": "Aspirin+", "price": 12, "originalPrice": 15, "category": "Health & Beauty",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update code %v: %s", w.Code, w.Body.String())
	}
	if up := decode[domain.Product](t, w); up.Title != "Aspirin+" || up.Image != p.Image {
		t.Fatalf("unexpected update %+v", up)
	}

	// list with filter
	w = doJSON(t, s, http.MethodGet, "/api/v1/products?q=asp", nil)
	if got := decode[[]domain.Product](t, w); len(got) != 1 {
		t.Fatalf("filter expected 1, got %d", len(got))
	}

	// seller listings: seeded products carry seller-1 too
	w = doJSON(t, s, http.MethodGet, "/api/v1/seller/products", nil)
	if got := decode[[]domain.Product](t, w); len(got) != 4 {
		t.Fatalf("seller listings expected 4, got %d", len(got))
	}

	// delete, twice
	for i := 0; i < 2; i++ {
		w = doJSON(t, s, http.MethodDelete, "/api/v1/products/"+p.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete code %v", w.Code)
		}
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/products/"+p.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %v", w.Code)
	}
}

func TestProductWrites_RequireSeller(t *testing.T) {
	s := setupServer(t)
	body := map[string]any{"title": "X", "price": 1, "category": "Health & Beauty"}

	w := doJSON(t, s, http.MethodPost, "/api/v1/products", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", w.Code)
	}

	login(t, s, "customer", "John")
	w = doJSON(t, s, http.MethodPost, "/api/v1/products", body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodDelete, "/api/v1/products/prod-1", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", w.Code)
	}
}

func TestCheckoutFlow(t *testing.T) {
	s := setupServer(t)

	// add prod-1 twice and prod-2 once
	for _, id := range []string{"prod-1", "prod-1", "prod-2"} {
		w := doJSON(t, s, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": id})
		if w.Code != http.StatusOK {
			t.Fatalf("add %s code %v", id, w.Code)
		}
	}
	w := doJSON(t, s, http.MethodGet, "/api/v1/cart", nil)
	cart := decode[cartResp](t, w)
	if cart.Count != 3 || len(cart.Items) != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if cart.Total != cart.Subtotal+service.DefaultShippingFee {
		t.Fatalf("total %v != subtotal %v + fee", cart.Total, cart.Subtotal)
	}

	// quantity below one is ignored
	w = doJSON(t, s, http.MethodPut, "/api/v1/cart/items/prod-1", map[string]any{"quantity": 0})
	if got := decode[cartResp](t, w); got.Count != 3 {
		t.Fatalf("quantity 0 changed cart: %+v", got)
	}

	// anonymous checkout is refused and the cart survives
	w = doJSON(t, s, http.MethodPost, "/api/v1/checkout", map[string]any{"paymentMethod": "cod"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", w.Code)
	}

	login(t, s, "customer", "John Doe")
	w = doJSON(t, s, http.MethodPost, "/api/v1/checkout", map[string]any{"paymentMethod": "bkash"})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout code %v: %s", w.Code, w.Body.String())
	}
	o := decode[domain.Order](t, w)
	if o.Total != cart.Total || o.UserID != repository.CustomerID || o.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected order %+v", o)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/cart", nil)
	if got := decode[cartResp](t, w); got.Count != 0 || got.Total != 0 || got.ShippingFee != 0 {
		t.Fatalf("cart not cleared: %+v", got)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders", nil)
	if got := decode[[]domain.Order](t, w); len(got) != 1 || got[0].ID != o.ID {
		t.Fatalf("unexpected orders %+v", got)
	}

	// empty cart cannot be checked out
	w = doJSON(t, s, http.MethodPost, "/api/v1/checkout", map[string]any{"paymentMethod": "cod"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/session", nil)
	if got := decode[sessionResp](t, w); got.LoggedIn {
		t.Fatalf("expected anonymous session")
	}

	login(t, s, "customer", "Alice")
	login(t, s, "seller", "Bob")
	w = doJSON(t, s, http.MethodGet, "/api/v1/session", nil)
	got := decode[sessionResp](t, w)
	if !got.LoggedIn || got.User.ID != repository.SellerID || got.User.Email != "bob@example.com" {
		t.Fatalf("unexpected session %+v", got)
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/session/logout", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/orders", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %v", w.Code)
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	s := setupServer(t)

	// blank name
	w := doJSON(t, s, http.MethodPost, "/api/v1/session/login", map[string]any{"role": "customer", "name": "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}

	// invalid product body
	login(t, s, "seller", "Alice")
	w = doJSON(t, s, http.MethodPost, "/api/v1/products", map[string]any{"title": "", "price": 1, "category": "Health & Beauty"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}

	// unknown payment method
	_ = doJSON(t, s, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "prod-1"})
	w = doJSON(t, s, http.MethodPost, "/api/v1/checkout", map[string]any{"paymentMethod": "card"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
}

func TestHTTP_NotFound(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/products/prod-999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "prod-999"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
}

func TestHTTP_CorruptCollection(t *testing.T) {
	b := kv.NewMemory()
	s := setupServerOn(t, b)
	login(t, s, "customer", "John")
	if err := b.Put(context.Background(), repository.KeyOrders, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, s, http.MethodGet, "/api/v1/orders", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v: %s", w.Code, w.Body.String())
	}
	// other collections still work
	w = doJSON(t, s, http.MethodGet, "/api/v1/products", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %v", w.Code)
	}
}

func TestMapErrorToStatus(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("wrap: %w", service.ErrInvalidInput):      http.StatusBadRequest,
		service.ErrNotAuthenticated:                          http.StatusUnauthorized,
		service.ErrForbidden:                                 http.StatusForbidden,
		fmt.Errorf("wrap: %w", repository.ErrNotFound):       http.StatusNotFound,
		fmt.Errorf("%w: orders: bad", repository.ErrCorrupt): http.StatusInternalServerError,
		errors.New("boom"):                                   http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := mapErrorToStatus(err); got != want {
			t.Errorf("%v: expected %d, got %d", err, want, got)
		}
	}
}

func TestAssistant_Offline(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/assistant/chat", map[string]any{"message": "hi"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat code %v", w.Code)
	}
	if r := decode[assistant.Reply](t, w); !r.Fallback || r.Text != assistant.OfflineText {
		t.Fatalf("unexpected reply %+v", r)
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/assistant/description", map[string]any{"title": "Lamp"})
	if r := decode[assistant.Reply](t, w); !r.Fallback {
		t.Fatalf("expected fallback, got %+v", r)
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/assistant/chat", map[string]any{"message": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
}

func TestCategories(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/categories", nil)
	if got := decode[[]string](t, w); len(got) != len(domain.Categories) {
		t.Fatalf("unexpected categories %v", got)
	}
}
