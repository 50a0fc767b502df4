// Package realtime implements the live chat layer: a presence registry
// mapping connection ids to display names, a hub that routes events between
// connections, and the websocket plumbing underneath.
package realtime

import "sync"

// Registry is the single source of truth for who is online. It maps opaque
// connection ids to display names. All methods are safe for concurrent use;
// the hub is the only mutator.
//
// Duplicate display names are permitted. FindByName returns an arbitrary
// match in that case, so clients sharing a name also share private messages.
type Registry struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]string)}
}

// Put associates a display name with a connection id.
func (r *Registry) Put(connID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[connID] = name
}

// Remove deletes the entry and reports the name it held, if any.
func (r *Registry) Remove(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[connID]
	delete(r.names, connID)
	return name, ok
}

// Get reports the display name registered for a connection id, if any.
func (r *Registry) Get(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[connID]
	return name, ok
}

// Size returns the number of joined connections.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// AllNames returns a snapshot of the registered display names, in no
// particular order.
func (r *Registry) AllNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for _, name := range r.names {
		names = append(names, name)
	}
	return names
}

// FindByName returns the connection id registered under name, if any.
func (r *Registry) FindByName(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for connID, n := range r.names {
		if n == name {
			return connID, true
		}
	}
	return "", false
}
