package identity

import "sync"

// Identity is the signed-in principal. The zero value means "none"
// (anonymous session).
type Identity struct {
	UID   string
	Email string
}

// None is the anonymous identity.
var None = Identity{}

func (id Identity) IsNone() bool { return id.UID == "" }

// Provider emits the current identity at subscription time and on every
// sign-in/sign-out.
type Provider interface {
	Current() Identity
	Subscribe(fn func(Identity)) (unsubscribe func())
}

// Hub is an in-process Provider. Observers are notified synchronously from
// the goroutine that changes the identity.
type Hub struct {
	mu        sync.Mutex
	current   Identity
	nextID    int
	observers map[int]func(Identity)
}

func NewHub() *Hub {
	return &Hub{observers: make(map[int]func(Identity))}
}

func (h *Hub) Current() Identity {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *Hub) Subscribe(fn func(Identity)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.observers[id] = fn
	current := h.current
	h.mu.Unlock()

	// Initial emission so the subscriber starts from the present state.
	fn(current)

	return func() {
		h.mu.Lock()
		delete(h.observers, id)
		h.mu.Unlock()
	}
}

// SignIn switches the current identity and notifies observers.
func (h *Hub) SignIn(id Identity) { h.set(id) }

// SignOut switches to the anonymous identity and notifies observers.
func (h *Hub) SignOut() { h.set(None) }

func (h *Hub) set(id Identity) {
	h.mu.Lock()
	h.current = id
	fns := make([]func(Identity), 0, len(h.observers))
	for _, fn := range h.observers {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}
