package cart

import "sync"

// Registry maps terminal identifiers to their live carts. Carts are created
// lazily on first access and dropped when the session ends; nothing here is
// persisted.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		carts: make(map[string]*Cart),
	}
}

// Get returns the terminal's cart, creating it on first use.
func (r *Registry) Get(terminal string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[terminal]
	if !ok {
		c = New()
		r.carts[terminal] = c
	}
	return c
}

// Drop discards the terminal's cart entirely, including its seeded
// availability view. The next Get starts a fresh session.
func (r *Registry) Drop(terminal string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, terminal)
}
