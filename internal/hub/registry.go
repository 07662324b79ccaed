// ABOUTME: Registry tracks every live connection by id.
// ABOUTME: Register and remove are idempotent so pumps can race teardown safely.

package hub

import "sync"

type registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func newRegistry() *registry {
	return &registry{conns: make(map[string]*Conn)}
}

// add registers the connection, replacing any stale entry under the same id.
// The replaced connection, if any, is returned so the caller can close it.
func (r *registry) add(c *Conn) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.conns[c.id]
	r.conns[c.id] = c
	return old
}

// remove unregisters by id and returns the connection, or nil if it was
// already gone.
func (r *registry) remove(id string) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return nil
	}
	delete(r.conns, id)
	return c
}

func (r *registry) get(id string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// snapshot returns all live connections for shutdown fan-out.
func (r *registry) snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}
