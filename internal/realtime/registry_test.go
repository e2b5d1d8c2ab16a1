package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct {
	id string
}

func (c *stubConn) Send(data []byte) error {
	return nil
}

func TestRegistrySetGetRemove(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Get("user-1")
	assert.False(t, ok)

	conn := &stubConn{id: "a"}
	registry.Set("user-1", conn)

	got, ok := registry.Get("user-1")
	require.True(t, ok)
	assert.Same(t, conn, got)

	registry.Remove("user-1", conn)
	_, ok = registry.Get("user-1")
	assert.False(t, ok)
}

func TestRegistryReplaceConnection(t *testing.T) {
	registry := NewRegistry()

	old := &stubConn{id: "old"}
	replacement := &stubConn{id: "new"}

	registry.Set("user-1", old)
	registry.Set("user-1", replacement)

	got, ok := registry.Get("user-1")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestRegistryStaleRemoveKeepsReplacement(t *testing.T) {
	registry := NewRegistry()

	old := &stubConn{id: "old"}
	replacement := &stubConn{id: "new"}

	// Reconnect: the new connection registers before the old one's
	// teardown runs its deferred removal.
	registry.Set("user-1", old)
	registry.Set("user-1", replacement)
	registry.Remove("user-1", old)

	got, ok := registry.Get("user-1")
	require.True(t, ok)
	assert.Same(t, replacement, got)

	registry.Remove("user-1", replacement)
	_, ok = registry.Get("user-1")
	assert.False(t, ok)
}

func TestRegistryRemoveMissingIsNoop(t *testing.T) {
	registry := NewRegistry()
	registry.Remove("nobody", &stubConn{})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n%10)
			conn := &stubConn{}
			registry.Set(userID, conn)
			registry.Get(userID)
			registry.Remove(userID, conn)
		}(i)
	}
	wg.Wait()
}
