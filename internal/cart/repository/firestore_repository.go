package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JaoPred0/Dinna-Fitness/internal/cart"
)

// firestoreRepository stores one document per user in the "carts"
// collection, keyed by uid, shaped as {items, createdAt, updatedAt}.
type firestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) CartRepository {
	return &firestoreRepository{client: client}
}

// cartDoc keeps the wire shape decoupled from the domain struct.
type cartDoc struct {
	Items     []cart.Item `firestore:"items"`
	CreatedAt time.Time   `firestore:"createdAt"`
	UpdatedAt time.Time   `firestore:"updatedAt"`
}

func (r *firestoreRepository) col() *firestore.CollectionRef {
	return r.client.Collection("carts")
}

func (r *firestoreRepository) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	snap, err := r.col().Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var doc cartDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &cart.Cart{
		ID:        snap.Ref.ID,
		UserID:    userID,
		Items:     doc.Items,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *firestoreRepository) UpsertCart(ctx context.Context, c *cart.Cart) error {
	now := time.Now()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	items := c.Items
	if items == nil {
		items = cart.Items{}
	}

	// Overwrite full doc (simple & predictable).
	_, err := r.col().Doc(c.UserID).Set(ctx, cartDoc{
		Items:     items,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (r *firestoreRepository) DeleteCart(ctx context.Context, userID string) error {
	_, err := r.col().Doc(userID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrCartNotFound
		}
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
