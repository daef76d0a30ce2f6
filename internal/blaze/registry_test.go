package blaze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionRegistry_AddLookupRemove(t *testing.T) {
	r := NewSessionRegistry()
	s := &Session{closeCh: make(chan struct{})}

	handle := r.Add(42, s)
	assert.Same(t, s, r.Lookup(42))

	handle.Remove()
	assert.Nil(t, r.Lookup(42))
}

func TestSessionRegistry_DuplicateLoginReplaces(t *testing.T) {
	r := NewSessionRegistry()
	old := &Session{closeCh: make(chan struct{})}
	fresh := &Session{closeCh: make(chan struct{})}

	oldHandle := r.Add(42, old)
	r.Add(42, fresh)
	assert.Same(t, fresh, r.Lookup(42))

	// The replaced session releasing its handle must not evict the newer one.
	oldHandle.Remove()
	assert.Same(t, fresh, r.Lookup(42))
}

func TestSessionRegistry_LookupDropsDeadSessions(t *testing.T) {
	r := NewSessionRegistry()
	s := &Session{closeCh: make(chan struct{})}
	r.Add(42, s)

	s.closed.Store(true)
	assert.Nil(t, r.Lookup(42))
	assert.Zero(t, r.Count())
}

func TestAuthHandle_RemoveNilSafe(t *testing.T) {
	var h *AuthHandle
	h.Remove() // must not panic
}
