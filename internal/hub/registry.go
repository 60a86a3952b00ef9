package hub

import "time"

// Registry tracks one entry per live connection. It is not safe for
// concurrent use on its own: the hub is its sole owner and serializes all
// access under the hub lock.
type Registry struct {
	conns map[string]*Connection
	order []string
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Connection)}
}

// Register inserts a new online entry. It fails with ErrNameTaken when an
// online entry already holds this exact name (case-sensitive match).
func (r *Registry) Register(connID, name string) (Connection, error) {
	for _, id := range r.order {
		if c := r.conns[id]; c.Online && c.Name == name {
			return Connection{}, ErrNameTaken
		}
	}

	conn := &Connection{ID: connID, Name: name, Online: true}
	r.conns[connID] = conn
	r.order = append(r.order, connID)
	return *conn, nil
}

// Get returns a copy of the entry for connID, if present.
func (r *Registry) Get(connID string) (Connection, bool) {
	c, ok := r.conns[connID]
	if !ok {
		return Connection{}, false
	}
	return *c, true
}

// MarkOffline stamps the entry offline with lastSeen=now, removes it from
// the registry, and returns the pre-removal snapshot for the departure
// notification. Unknown ids return ok=false.
func (r *Registry) MarkOffline(connID string, now time.Time) (Connection, bool) {
	c, ok := r.conns[connID]
	if !ok {
		return Connection{}, false
	}

	c.Online = false
	c.LastSeen = now
	snapshot := *c

	delete(r.conns, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return snapshot, true
}

// SnapshotAll returns copies of all entries in insertion order.
func (r *Registry) SnapshotAll() []Connection {
	out := make([]Connection, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.conns[id])
	}
	return out
}

// Len reports the number of registered connections.
func (r *Registry) Len() int { return len(r.conns) }
