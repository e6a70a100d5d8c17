package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JaoPred0/Dinna-Fitness/internal/cart"
	"github.com/JaoPred0/Dinna-Fitness/internal/cart/cache"
	"github.com/JaoPred0/Dinna-Fitness/internal/cart/repository"
	"github.com/JaoPred0/Dinna-Fitness/internal/cart/service"
	"github.com/JaoPred0/Dinna-Fitness/internal/catalog"
	"github.com/JaoPred0/Dinna-Fitness/internal/identity"
)

type memCartRepo struct {
	m     sync.RWMutex
	carts map[string]*cart.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]*cart.Cart{}}
}

func (r *memCartRepo) GetCart(_ context.Context, userID string) (*cart.Cart, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	cp.Items = c.Items.Clone()
	return &cp, nil
}

func (r *memCartRepo) UpsertCart(_ context.Context, c *cart.Cart) error {
	r.m.Lock()
	defer r.m.Unlock()
	cp := *c
	cp.Items = c.Items.Clone()
	r.carts[c.UserID] = &cp
	return nil
}

func (r *memCartRepo) DeleteCart(_ context.Context, userID string) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(r.carts, userID)
	return nil
}

// missCache never holds anything; the handler tests exercise the repo path.
type missCache struct{}

func (missCache) Get(context.Context, string) (*cart.Cart, error)    { return nil, cache.ErrCacheMiss }
func (missCache) Set(context.Context, string, *cart.Cart) error      { return nil }
func (missCache) Delete(context.Context, string) error               { return nil }

type memCatalogRepo struct {
	m          sync.RWMutex
	products   map[string]catalog.Product
	categories map[string]catalog.Category
	nextID     int
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{
		products:   map[string]catalog.Product{},
		categories: map[string]catalog.Category{},
	}
}

func (r *memCatalogRepo) ListProducts(context.Context) ([]catalog.Product, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memCatalogRepo) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (r *memCatalogRepo) CreateProduct(_ context.Context, p *catalog.Product) (string, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.nextID++
	id := fmt.Sprintf("prod-%d", r.nextID)
	cp := *p
	cp.ID = id
	r.products[id] = cp
	return id, nil
}

func (r *memCatalogRepo) UpdateProduct(_ context.Context, p *catalog.Product) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	r.products[p.ID] = *p
	return nil
}

func (r *memCatalogRepo) DeleteProduct(_ context.Context, id string) error {
	r.m.Lock()
	defer r.m.Unlock()
	delete(r.products, id)
	return nil
}

func (r *memCatalogRepo) ListCategories(context.Context) ([]catalog.Category, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCatalogRepo) CreateCategory(_ context.Context, c *catalog.Category) (string, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.nextID++
	id := fmt.Sprintf("cat-%d", r.nextID)
	cp := *c
	cp.ID = id
	r.categories[id] = cp
	return id, nil
}

func (r *memCatalogRepo) DeleteCategory(_ context.Context, id string) error {
	r.m.Lock()
	defer r.m.Unlock()
	delete(r.categories, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedProduct(t *testing.T, repo *memCatalogRepo, p catalog.Product) string {
	t.Helper()
	id, err := repo.CreateProduct(context.Background(), &p)
	if err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return id
}

func newTestCartHandler(t *testing.T) (*CartHandler, *memCartRepo, *memCatalogRepo) {
	t.Helper()
	cartRepo := newMemCartRepo()
	catalogRepo := newMemCatalogRepo()
	carts := service.NewCartService(cartRepo, missCache{}, testLogger())
	handler := NewCartHandler(carts, catalog.NewService(catalogRepo), 5*time.Second)
	return handler, cartRepo, catalogRepo
}

func asUser(request *http.Request, uid string) *http.Request {
	ctx := context.WithValue(request.Context(), ctxKeyIdentity, identity.Identity{UID: uid, Email: uid + "@example.com"})
	return request.WithContext(ctx)
}

func withURLParam(request *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))
}

func TestGetCart_Success(t *testing.T) {
	handler, cartRepo, _ := newTestCartHandler(t)

	cartRepo.UpsertCart(context.Background(), &cart.Cart{
		UserID: "u1",
		Items: cart.Items{
			{ProductID: "p1", Title: "Legging", UnitPrice: 99.90, Quantity: 2},
		},
	})

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/", nil), "u1")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(response.Items))
	}
	if response.Subtotal != 199.80 {
		t.Errorf("Expected subtotal 199.80, got %v", response.Subtotal)
	}
}

func TestGetCart_EmptyForNewUser(t *testing.T) {
	handler, _, _ := newTestCartHandler(t)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/", nil), "nobody")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(response.Items))
	}
}

func TestAddItem_Success(t *testing.T) {
	handler, _, catalogRepo := newTestCartHandler(t)
	id := seedProduct(t, catalogRepo, catalog.Product{Title: "Tenis Runner", Price: 100, Sizes: []string{"40", "42"}})

	req := &AddItemRequestDTO{ProductID: id, Quantity: 2, SelectedSize: "42"}
	reqBytes, _ := json.Marshal(req)
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/items", bytes.NewReader(reqBytes)), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(response.Items))
	}
	// The catalog, not the client, dictates the snapshot fields.
	if response.Items[0].Title != "Tenis Runner" {
		t.Errorf("Expected title from catalog, got '%s'", response.Items[0].Title)
	}
	if response.Items[0].Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", response.Items[0].Quantity)
	}
	if response.Subtotal != 200 {
		t.Errorf("Expected subtotal 200, got %v", response.Subtotal)
	}
}

func TestAddItem_MergesSameLine(t *testing.T) {
	handler, _, catalogRepo := newTestCartHandler(t)
	id := seedProduct(t, catalogRepo, catalog.Product{Title: "Tenis Runner", Price: 100, Sizes: []string{"42"}})

	for i := 0; i < 2; i++ {
		req := &AddItemRequestDTO{ProductID: id, Quantity: 1, SelectedSize: "42"}
		reqBytes, _ := json.Marshal(req)
		recorder := httptest.NewRecorder()
		request := asUser(httptest.NewRequest("POST", "/items", bytes.NewReader(reqBytes)), "u1")
		handler.AddItem(recorder, request)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
		}
		if i == 0 {
			continue
		}
		var response CartResponseDTO
		if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response.Items) != 1 {
			t.Fatalf("Expected merged line, got %d items", len(response.Items))
		}
		if response.Items[0].Quantity != 2 {
			t.Errorf("Expected quantity 2 after merge, got %d", response.Items[0].Quantity)
		}
	}
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler, _, _ := newTestCartHandler(t)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/items", bytes.NewReader([]byte("invalid json"))), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_request" {
		t.Errorf("Expected error code 'invalid_request', got '%s'", response.Code)
	}
}

func TestAddItem_MissingProductID(t *testing.T) {
	handler, _, _ := newTestCartHandler(t)

	req := &AddItemRequestDTO{Quantity: 1}
	reqBytes, _ := json.Marshal(req)
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/items", bytes.NewReader(reqBytes)), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_product_id" {
		t.Errorf("Expected error code 'invalid_product_id', got '%s'", response.Code)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	handler, _, _ := newTestCartHandler(t)

	req := &AddItemRequestDTO{ProductID: "ghost", Quantity: 1}
	reqBytes, _ := json.Marshal(req)
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/items", bytes.NewReader(reqBytes)), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestAddItem_SizeRequired(t *testing.T) {
	handler, _, catalogRepo := newTestCartHandler(t)
	id := seedProduct(t, catalogRepo, catalog.Product{Title: "Tenis Runner", Price: 100, Sizes: []string{"40", "42"}})

	req := &AddItemRequestDTO{ProductID: id, Quantity: 1}
	reqBytes, _ := json.Marshal(req)
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/items", bytes.NewReader(reqBytes)), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "size_required" {
		t.Errorf("Expected error code 'size_required', got '%s'", response.Code)
	}
}

func TestAddItem_InvalidSize(t *testing.T) {
	handler, _, catalogRepo := newTestCartHandler(t)
	id := seedProduct(t, catalogRepo, catalog.Product{Title: "Tenis Runner", Price: 100, Sizes: []string{"40", "42"}})

	req := &AddItemRequestDTO{ProductID: id, Quantity: 1, SelectedSize: "99"}
	reqBytes, _ := json.Marshal(req)
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/items", bytes.NewReader(reqBytes)), "u1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_size" {
		t.Errorf("Expected error code 'invalid_size', got '%s'", response.Code)
	}
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	handler, _, catalogRepo := newTestCartHandler(t)
	id := seedProduct(t, catalogRepo, catalog.Product{Title: "Top Fitness", Price: 49.90})

	tests := []struct {
		name     string
		quantity int
	}{
		{"negative quantity", -1},
		{"quantity too high", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &AddItemRequestDTO{ProductID: id, Quantity: tt.quantity}
			reqBytes, _ := json.Marshal(req)
			recorder := httptest.NewRecorder()
			request := asUser(httptest.NewRequest("POST", "/items", bytes.NewReader(reqBytes)), "u1")

			handler.AddItem(recorder, request)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
			}

			var response ErrorResponse
			json.NewDecoder(recorder.Body).Decode(&response)
			if response.Code != "invalid_quantity" {
				t.Errorf("Expected error code 'invalid_quantity', got '%s'", response.Code)
			}
		})
	}
}

func TestUpdateQuantity_Success(t *testing.T) {
	handler, cartRepo, _ := newTestCartHandler(t)

	cartRepo.UpsertCart(context.Background(), &cart.Cart{
		UserID: "u1",
		Items: cart.Items{
			{ProductID: "p1", Title: "Legging", UnitPrice: 100, Quantity: 2, SelectedSize: "M"},
		},
	})

	req := &UpdateQuantityRequestDTO{Quantity: 5, SelectedSize: "M"}
	reqBytes, _ := json.Marshal(req)
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("PUT", "/items/p1", bytes.NewReader(reqBytes)), "u1")
	request = withURLParam(request, "product_id", "p1")

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Items[0].Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", response.Items[0].Quantity)
	}
	if response.Subtotal != 500 {
		t.Errorf("Expected subtotal 500, got %v", response.Subtotal)
	}
}

func TestUpdateQuantity_InvalidQuantity(t *testing.T) {
	handler, _, _ := newTestCartHandler(t)

	tests := []struct {
		name     string
		quantity int
	}{
		{"zero quantity", 0},
		{"negative quantity", -1},
		{"quantity too high", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &UpdateQuantityRequestDTO{Quantity: tt.quantity}
			reqBytes, _ := json.Marshal(req)
			recorder := httptest.NewRecorder()
			request := asUser(httptest.NewRequest("PUT", "/items/p1", bytes.NewReader(reqBytes)), "u1")
			request = withURLParam(request, "product_id", "p1")

			handler.UpdateQuantity(recorder, request)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
			}

			var response ErrorResponse
			json.NewDecoder(recorder.Body).Decode(&response)
			if response.Code != "invalid_quantity" {
				t.Errorf("Expected error code 'invalid_quantity', got '%s'", response.Code)
			}
		})
	}
}

func TestUpdateQuantity_ItemNotFound(t *testing.T) {
	handler, _, _ := newTestCartHandler(t)

	req := &UpdateQuantityRequestDTO{Quantity: 3}
	reqBytes, _ := json.Marshal(req)
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("PUT", "/items/ghost", bytes.NewReader(reqBytes)), "u1")
	request = withURLParam(request, "product_id", "ghost")

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestRemoveItem_Success(t *testing.T) {
	handler, cartRepo, _ := newTestCartHandler(t)

	cartRepo.UpsertCart(context.Background(), &cart.Cart{
		UserID: "u1",
		Items: cart.Items{
			{ProductID: "p1", Title: "Legging", UnitPrice: 100, Quantity: 1, SelectedSize: "M"},
			{ProductID: "p1", Title: "Legging", UnitPrice: 100, Quantity: 1, SelectedSize: "G"},
		},
	})

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("DELETE", "/items/p1?size=M", nil), "u1")
	request = withURLParam(request, "product_id", "p1")

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	// Only the size-M line goes; the other variant stays.
	if len(response.Items) != 1 {
		t.Fatalf("Expected 1 remaining item, got %d", len(response.Items))
	}
	if response.Items[0].SelectedSize != "G" {
		t.Errorf("Expected remaining size 'G', got '%s'", response.Items[0].SelectedSize)
	}
}

func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	handler, _, _ := newTestCartHandler(t)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("DELETE", "/items/ghost", nil), "u1")
	request = withURLParam(request, "product_id", "ghost")

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestClearCart_Success(t *testing.T) {
	handler, cartRepo, _ := newTestCartHandler(t)

	cartRepo.UpsertCart(context.Background(), &cart.Cart{
		UserID: "u1",
		Items: cart.Items{
			{ProductID: "p1", Title: "Legging", UnitPrice: 100, Quantity: 3},
		},
	})

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("DELETE", "/", nil), "u1")

	handler.ClearCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(response.Items))
	}
	if response.Subtotal != 0 {
		t.Errorf("Expected subtotal 0, got %v", response.Subtotal)
	}
}

func TestCartRoundsAtPresentation(t *testing.T) {
	handler, cartRepo, _ := newTestCartHandler(t)

	// 3 x 19.99 = 59.97 exactly; the wire value must carry two decimals.
	cartRepo.UpsertCart(context.Background(), &cart.Cart{
		UserID: "u1",
		Items: cart.Items{
			{ProductID: "p1", Title: "Meia", UnitPrice: 19.99, Quantity: 3},
		},
	})

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/", nil), "u1")

	handler.GetCart(recorder, request)

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Subtotal != 59.97 {
		t.Errorf("Expected subtotal 59.97, got %v", response.Subtotal)
	}
	if response.Items[0].LineTotal != 59.97 {
		t.Errorf("Expected line total 59.97, got %v", response.Items[0].LineTotal)
	}
}
