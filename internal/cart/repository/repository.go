package repository

import (
	"context"
	"errors"

	"github.com/JaoPred0/Dinna-Fitness/internal/cart"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository is the persistence contract for whole-cart records.
// Consumers define this interface, not the backing store.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*cart.Cart, error)
	UpsertCart(ctx context.Context, c *cart.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

// Adapter exposes a CartRepository through the load/save contract the
// session store consumes. A missing record loads as an empty list; saves
// replace the stored list wholesale.
type Adapter struct {
	repo CartRepository
}

func NewAdapter(repo CartRepository) *Adapter {
	return &Adapter{repo: repo}
}

func (a *Adapter) Load(ctx context.Context, userID string) (cart.Items, error) {
	c, err := a.repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return cart.Items{}, nil
		}
		return nil, err
	}
	return c.Items, nil
}

func (a *Adapter) Save(ctx context.Context, userID string, items cart.Items) error {
	return a.repo.UpsertCart(ctx, &cart.Cart{
		UserID: userID,
		Items:  items,
	})
}
