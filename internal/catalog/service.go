package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidProduct = errors.New("invalid product")

// Service wraps the repository with the storefront's read shaping and the
// admin dashboard's validation rules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListProducts fetches the catalog and applies filter/sort in memory, the
// way the storefront's product page always did.
func (s *Service) ListProducts(ctx context.Context, f Filter) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(products), nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// CreateProduct validates the admin form rules (title, positive price, at
// least one category) and derives the product link from the title.
func (s *Service) CreateProduct(ctx context.Context, p Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	p.ProductLink = Slug(p.Title)
	p.CreatedAt = time.Now()

	id, err := s.repo.CreateProduct(ctx, &p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, p Product) (*Product, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = existing.CreatedAt
	p.ProductLink = Slug(p.Title)

	if err := s.repo.UpdateProduct(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory rejects blank and duplicate names.
func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is empty", ErrInvalidProduct)
	}

	existing, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}

	c := Category{Name: name}
	id, err := s.repo.CreateCategory(ctx, &c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	if len(p.Categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidProduct)
	}
	return nil
}
