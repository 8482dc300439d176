package wm

import (
	"slices"

	"github.com/1broseidon/tagwm/internal/platform"
)

// Registry is the table of managed clients keyed by window id.
type Registry struct {
	clients map[platform.Window]*Client
	order   []platform.Window
	seq     uint64
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[platform.Window]*Client)}
}

// Register stores c. It is a no-op for the zero window and for windows
// already registered.
func (r *Registry) Register(c Client) (*Client, bool) {
	if c.Window == 0 {
		return nil, false
	}
	if _, ok := r.clients[c.Window]; ok {
		return nil, false
	}
	r.seq++
	stored := c
	stored.seq = r.seq
	r.clients[c.Window] = &stored
	r.order = append(r.order, c.Window)
	return &stored, true
}

// Unregister removes and returns the client for id, if known.
func (r *Registry) Unregister(id platform.Window) (*Client, bool) {
	c, ok := r.clients[id]
	if !ok {
		return nil, false
	}
	delete(r.clients, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return c, true
}

func (r *Registry) Lookup(id platform.Window) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Clients returns every client in registration order.
func (r *Registry) Clients() []*Client {
	out := make([]*Client, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.clients[id])
	}
	return out
}

// Windows returns the registered ids in registration order.
func (r *Registry) Windows() []platform.Window {
	return slices.Clone(r.order)
}

func (r *Registry) Len() int {
	return len(r.clients)
}
