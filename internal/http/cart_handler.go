package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JaoPred0/Dinna-Fitness/internal/cart"
	"github.com/JaoPred0/Dinna-Fitness/internal/cart/service"
	"github.com/JaoPred0/Dinna-Fitness/internal/catalog"
)

type CartHandler struct {
	carts   *service.CartService
	catalog *catalog.Service
	timeout time.Duration
}

func NewCartHandler(carts *service.CartService, catalog *catalog.Service, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID    string `json:"product_id"`
	Quantity     int    `json:"quantity"`
	SelectedSize string `json:"selected_size"`
}

type UpdateQuantityRequestDTO struct {
	Quantity     int    `json:"quantity"`
	SelectedSize string `json:"selected_size"`
}

type CartItemDTO struct {
	ProductID    string   `json:"product_id"`
	Title        string   `json:"title"`
	UnitPrice    float64  `json:"unit_price"`
	Quantity     int      `json:"quantity"`
	Images       []string `json:"images"`
	SelectedSize string   `json:"selected_size,omitempty"`
	LineTotal    float64  `json:"line_total"`
}

type CartResponseDTO struct {
	Items    []CartItemDTO `json:"items"`
	Subtotal float64       `json:"subtotal"`
}

func convertCart(c *cart.Cart) *CartResponseDTO {
	resp := &CartResponseDTO{Items: make([]CartItemDTO, len(c.Items))}
	for i, it := range c.Items {
		resp.Items[i] = CartItemDTO{
			ProductID:    it.ProductID,
			Title:        it.Title,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			Images:       it.Images,
			SelectedSize: it.SelectedSize,
			LineTotal:    roundCurrency(it.LineTotal()),
		}
	}
	resp.Subtotal = roundCurrency(c.Items.Subtotal())
	return resp
}

// roundCurrency rounds at the presentation boundary only; the domain keeps
// full precision.
func roundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	id := identityFromContext(ctx)
	c, err := h.carts.GetCart(ctx, id.UID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get cart")
		return
	}

	respondJSON(w, http.StatusOK, convertCart(c))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	id := identityFromContext(ctx)

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	// The catalog is the source of truth for title, price and images; the
	// client only says what and how many.
	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to validate product")
		return
	}

	if product.HasSizes() && req.SelectedSize == "" {
		respondError(w, http.StatusBadRequest, "size_required", "select a size before adding to cart")
		return
	}
	if req.SelectedSize != "" && !product.HasSize(req.SelectedSize) {
		respondError(w, http.StatusBadRequest, "invalid_size", "size not offered for this product")
		return
	}

	c, err := h.carts.AddItem(ctx, id.UID, cart.Item{
		ProductID:    product.ID,
		Title:        product.Title,
		UnitPrice:    product.Price,
		Quantity:     req.Quantity, // 0 defaults to 1 in the domain
		Images:       product.Images,
		SelectedSize: req.SelectedSize,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item to cart")
		return
	}

	respondJSON(w, http.StatusCreated, convertCart(c))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	id := identityFromContext(ctx)
	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	c, err := h.carts.UpdateQuantity(ctx, id.UID, productID, req.SelectedSize, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item not found in cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update item quantity")
		return
	}

	respondJSON(w, http.StatusOK, convertCart(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	id := identityFromContext(ctx)
	productID := chi.URLParam(r, "product_id")
	size := r.URL.Query().Get("size")

	c, err := h.carts.RemoveItem(ctx, id.UID, productID, size)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		return
	}

	respondJSON(w, http.StatusOK, convertCart(c))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	id := identityFromContext(ctx)
	c, err := h.carts.ClearCart(ctx, id.UID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, convertCart(c))
}
