package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JaoPred0/Dinna-Fitness/internal/cart"
	"github.com/JaoPred0/Dinna-Fitness/internal/cart/cache"
	"github.com/JaoPred0/Dinna-Fitness/internal/cart/repository"
)

var ErrItemNotFound = errors.New("item not found in cart")

// CartService is the request-scoped view of a user's cart: reads go through
// the cache, mutations load the record, apply the domain operation and save
// the whole list back.
type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	logger *slog.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, logger *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// GetCart returns the user's cart; a user with no stored record gets an
// empty cart, never an error.
func (s *CartService) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		c, err := s.cache.Get(ctx, userID)
		if err == nil {
			return c, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get error", "user_id", userID, "error", err) // log cache error but continue
		}

		c, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return &cart.Cart{
				UserID:    userID,
				Items:     cart.Items{},
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), userID, c); errSet != nil {
				s.logger.Warn("cache set error", "user_id", userID, "error", errSet)
			}
		}()

		return c, nil // cart was not in cache, return it from repo
	})

	if err != nil {
		return nil, err
	}

	return v.(*cart.Cart), nil
}

// AddItem merges the candidate into the stored cart by
// (ProductID, SelectedSize) and saves the full list back.
func (s *CartService) AddItem(ctx context.Context, userID string, item cart.Item) (*cart.Cart, error) {
	return s.mutate(ctx, userID, func(items *cart.Items) error {
		items.Add(item)
		return nil
	})
}

// UpdateQuantity sets the matching line's quantity. The line must exist;
// quantities below 1 never reach this method (rejected at the boundary).
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) (*cart.Cart, error) {
	return s.mutate(ctx, userID, func(items *cart.Items) error {
		if !contains(*items, productID, size) {
			return ErrItemNotFound
		}
		items.SetQuantity(productID, size, quantity)
		return nil
	})
}

// RemoveItem deletes the matching line; removing an absent line succeeds.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID, size string) (*cart.Cart, error) {
	return s.mutate(ctx, userID, func(items *cart.Items) error {
		items.Remove(productID, size)
		return nil
	})
}

// ClearCart empties the stored list. The record itself stays.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*cart.Cart, error) {
	return s.mutate(ctx, userID, func(items *cart.Items) error {
		items.Clear()
		return nil
	})
}

func (s *CartService) mutate(ctx context.Context, userID string, fn func(*cart.Items) error) (*cart.Cart, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		c = &cart.Cart{UserID: userID, Items: cart.Items{}}
	} else if err != nil {
		s.logger.Error("cart load failed", "user_id", userID, "error", err)
		return nil, err
	}

	if err := fn(&c.Items); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCart(ctx, c); err != nil {
		s.logger.Error("cart save failed", "user_id", userID, "error", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return c, nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cache invalidate error", "user_id", userID, "error", err)
	}
}

func contains(items cart.Items, productID, size string) bool {
	for _, it := range items {
		if it.ProductID == productID && it.SelectedSize == size {
			return true
		}
	}
	return false
}
