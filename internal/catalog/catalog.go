package catalog

import (
	"sort"
	"strings"
	"time"
)

// Product is one catalog entry. Prices are display amounts; carts copy the
// price at add time and never re-sync it.
type Product struct {
	ID          string    `json:"id" firestore:"-"`
	Title       string    `json:"title" firestore:"title"`
	Price       float64   `json:"price" firestore:"price"`
	Sizes       []string  `json:"sizes" firestore:"sizes"`
	Images      []string  `json:"images" firestore:"images"`
	Categories  []string  `json:"categories" firestore:"categories"`
	ProductLink string    `json:"productLink" firestore:"productLink"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// HasSizes reports whether adding this product to a cart requires a size
// selection.
func (p Product) HasSizes() bool { return len(p.Sizes) > 0 }

// HasSize reports whether size is one of the product's offered sizes.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

type Category struct {
	ID   string `json:"id" firestore:"-"`
	Name string `json:"name" firestore:"name"`
}

// Slug derives the storefront path for a product title, e.g.
// "Legging Preta" -> "/produtos/legging-preta".
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.Join(strings.Fields(s), "-")
	return "/produtos/" + s
}

// Sort orders accepted by Filter.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// Filter narrows and orders a product list the way the storefront's product
// page does: title substring, category membership, inclusive price range.
type Filter struct {
	Search   string
	Category string
	MinPrice float64
	MaxPrice float64 // 0 means unbounded
	Sort     string
}

// Apply filters and sorts products, returning a new slice.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))

	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		if f.Category != "" && !containsString(p.Categories, f.Category) {
			continue
		}
		if p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	return out
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
