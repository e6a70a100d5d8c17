package catalog

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names follow the original deployment.
const (
	productsCollection   = "produtos"
	categoriesCollection = "categorias"
)

type firestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) ListProducts(ctx context.Context) ([]Product, error) {
	iter := r.client.Collection(productsCollection).Documents(ctx)
	defer iter.Stop()

	var products []Product
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}

		var p Product
		if err := snap.DataTo(&p); err != nil {
			return nil, fmt.Errorf("failed to decode product %s: %w", snap.Ref.ID, err)
		}
		p.ID = snap.Ref.ID
		products = append(products, p)
	}
	return products, nil
}

func (r *firestoreRepository) GetProduct(ctx context.Context, id string) (*Product, error) {
	snap, err := r.client.Collection(productsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	var p Product
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

func (r *firestoreRepository) CreateProduct(ctx context.Context, p *Product) (string, error) {
	ref, _, err := r.client.Collection(productsCollection).Add(ctx, p)
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}
	return ref.ID, nil
}

func (r *firestoreRepository) UpdateProduct(ctx context.Context, p *Product) error {
	_, err := r.client.Collection(productsCollection).Doc(p.ID).Set(ctx, p)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *firestoreRepository) DeleteProduct(ctx context.Context, id string) error {
	_, err := r.client.Collection(productsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (r *firestoreRepository) ListCategories(ctx context.Context) ([]Category, error) {
	iter := r.client.Collection(categoriesCollection).Documents(ctx)
	defer iter.Stop()

	var categories []Category
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}

		var c Category
		if err := snap.DataTo(&c); err != nil {
			return nil, fmt.Errorf("failed to decode category %s: %w", snap.Ref.ID, err)
		}
		c.ID = snap.Ref.ID
		categories = append(categories, c)
	}
	return categories, nil
}

func (r *firestoreRepository) CreateCategory(ctx context.Context, c *Category) (string, error) {
	ref, _, err := r.client.Collection(categoriesCollection).Add(ctx, c)
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}
	return ref.ID, nil
}

func (r *firestoreRepository) DeleteCategory(ctx context.Context, id string) error {
	_, err := r.client.Collection(categoriesCollection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
