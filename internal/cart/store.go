package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/JaoPred0/Dinna-Fitness/internal/identity"
	"github.com/JaoPred0/Dinna-Fitness/pkg/circuitbreaker"
)

// PersistenceAdapter is the remote copy of a signed-in user's cart. The
// store defines the interface it consumes; backends live in the repository
// package.
type PersistenceAdapter interface {
	// Load returns the stored items for userID. A missing record resolves
	// to an empty list, not an error.
	Load(ctx context.Context, userID string) (Items, error)
	// Save replaces the stored items wholesale.
	Save(ctx context.Context, userID string, items Items) error
}

const persistTimeout = 5 * time.Second

// Store holds the authoritative in-memory cart for the active identity.
//
// Mutations apply to the in-memory list synchronously and then persist the
// full list fire-and-forget; a failed save is logged and the local state
// stays, so the remote copy may lag until the next successful save.
// Anonymous carts live in memory only and are never persisted.
type Store struct {
	adapter PersistenceAdapter
	logger  *slog.Logger
	breaker *gobreaker.CircuitBreaker[any]

	unsubscribe func()
	wg          sync.WaitGroup

	mu     sync.Mutex
	owner  identity.Identity
	items  Items
	closed bool
}

// NewStore builds a store bound to provider's identity stream. The store
// registers a single observer for its lifetime; Close unregisters it.
func NewStore(adapter PersistenceAdapter, provider identity.Provider, logger *slog.Logger) *Store {
	s := &Store{
		adapter: adapter,
		logger:  logger,
		breaker: circuitbreaker.New("cart-persist"),
	}
	s.unsubscribe = provider.Subscribe(s.onIdentity)
	return s
}

// Close unregisters the identity observer and waits for in-flight saves.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.unsubscribe()
	s.wg.Wait()
}

// Items returns a copy of the current lines.
func (s *Store) Items() Items {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Subtotal sums UnitPrice*Quantity over the current lines.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Subtotal()
}

// AddItem merges candidate by (ProductID, SelectedSize), appending a new
// line when no match exists.
func (s *Store) AddItem(candidate Item) {
	s.mutate(func(items *Items) { items.Add(candidate) })
}

// RemoveItem deletes the matching line; absent lines are a no-op.
func (s *Store) RemoveItem(productID, size string) {
	s.mutate(func(items *Items) { items.Remove(productID, size) })
}

// UpdateQuantity sets the matching line's quantity. Values below 1 are
// rejected silently and the existing quantity is kept.
func (s *Store) UpdateQuantity(productID, size string, quantity int) {
	if quantity < 1 {
		return
	}
	s.mutate(func(items *Items) { items.SetQuantity(productID, size, quantity) })
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mutate(func(items *Items) { items.Clear() })
}

func (s *Store) mutate(fn func(*Items)) {
	s.mu.Lock()
	fn(&s.items)
	owner := s.owner
	snapshot := s.items.Clone()
	s.mu.Unlock()

	s.persist(owner, snapshot)
}

// persist saves snapshot for owner in the background. Anonymous carts are
// never persisted.
func (s *Store) persist(owner identity.Identity, snapshot Items) {
	if owner.IsNone() {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		err := circuitbreaker.Do(s.breaker, func() error {
			return s.adapter.Save(ctx, owner.UID, snapshot)
		})
		if err != nil {
			s.logger.Error("cart save failed", "user_id", owner.UID, "error", err)
		}
	}()
}

// onIdentity reloads from the adapter when a user signs in and clears the
// in-memory list on sign-out. The remote copy is never erased on sign-out.
func (s *Store) onIdentity(id identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.owner = id
	if id.IsNone() {
		s.items = Items{}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	items, err := s.adapter.Load(ctx, id.UID)
	if err != nil {
		s.logger.Error("cart load failed", "user_id", id.UID, "error", err)
		items = Items{}
	}
	// Wholesale replace: any anonymous in-memory state is discarded.
	s.items = items.Clone()
}
