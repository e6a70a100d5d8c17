package siteconfig

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// The whole configuration lives in one document, config/site, exactly as
// the storefront reads it.
const (
	configCollection = "config"
	siteDocument     = "site"
)

// Repository is the persistence contract for the site document.
type Repository interface {
	Get(ctx context.Context) (*Site, error)
	SetBanners(ctx context.Context, banners []Banner) error
	SetNavbarBanner(ctx context.Context, b NavbarBanner) error
}

type firestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) doc() *firestore.DocumentRef {
	return r.client.Collection(configCollection).Doc(siteDocument)
}

// Get returns the site config; a missing document resolves to defaults.
func (r *firestoreRepository) Get(ctx context.Context) (*Site, error) {
	snap, err := r.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &Site{}, nil
		}
		return nil, fmt.Errorf("failed to get site config: %w", err)
	}

	var site Site
	if err := snap.DataTo(&site); err != nil {
		return nil, fmt.Errorf("failed to decode site config: %w", err)
	}
	return &site, nil
}

func (r *firestoreRepository) SetBanners(ctx context.Context, banners []Banner) error {
	_, err := r.doc().Set(ctx, map[string]any{"banners": banners}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save banners: %w", err)
	}
	return nil
}

func (r *firestoreRepository) SetNavbarBanner(ctx context.Context, b NavbarBanner) error {
	_, err := r.doc().Set(ctx, map[string]any{"bannerConfig": b}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save navbar banner: %w", err)
	}
	return nil
}
