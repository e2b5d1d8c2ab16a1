package realtime

import (
	"sync"

	"github.com/usetandem/tandem/internal/observability"
)

// Conn is one user's live outbound channel. Send must not block; it reports
// an error when the message cannot be accepted.
type Conn interface {
	Send(data []byte) error
}

// Registry maps a user id to at most one live connection. It is shared,
// mutable, process-wide state rebuilt from zero on restart; it is exposed
// as an interface so tests can substitute a fake.
type Registry interface {
	Get(userID string) (Conn, bool)
	Set(userID string, conn Conn)
	Remove(userID string, conn Conn)
}

type registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() Registry {
	return &registry{conns: make(map[string]Conn)}
}

func (r *registry) Get(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

func (r *registry) Set(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[userID]; !ok {
		observability.LiveConnections.Inc()
	}
	r.conns[userID] = conn
}

// Remove deletes the entry only when conn is still the registered one. A
// reconnect replaces the entry before the old connection's teardown runs,
// and that teardown must not evict the replacement.
func (r *registry) Remove(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[userID]; ok && current == conn {
		observability.LiveConnections.Dec()
		delete(r.conns, userID)
	}
}
