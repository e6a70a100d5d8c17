package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JaoPred0/Dinna-Fitness/internal/catalog"
)

type ProductHandler struct {
	catalog *catalog.Service
	timeout time.Duration
}

func NewProductHandler(catalog *catalog.Service, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []catalog.Product `json:"products"`
}

type CategoriesResponse struct {
	Categories []catalog.Category `json:"categories"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter := catalog.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	if v := q.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = f
		}
	}
	if v := q.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = f
		}
	}

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list categories")
		return
	}
	if categories == nil {
		categories = []catalog.Category{}
	}

	respondJSON(w, http.StatusOK, &CategoriesResponse{Categories: categories})
}

// Admin surface.

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, err := h.catalog.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidProduct) {
			respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create product")
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.ID = chi.URLParam(r, "id")

	product, err := h.catalog.UpdateProduct(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			respondError(w, http.StatusNotFound, "not_found", "product not found")
		case errors.Is(err, catalog.ErrInvalidProduct):
			respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to update product")
		}
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type CreateCategoryRequestDTO struct {
	Name string `json:"name"`
}

func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req CreateCategoryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	category, err := h.catalog.CreateCategory(ctx, req.Name)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidProduct) {
			respondError(w, http.StatusBadRequest, "invalid_category", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create category")
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

func (h *ProductHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if err := h.catalog.DeleteCategory(ctx, chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
