package blaze

import "sync"

// SessionRegistry tracks the live session for each authenticated user.
// Entries behave like weak links: lookup drops sessions that have died,
// and each Add returns a handle whose Remove deletes only its own entry.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[uint32]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[uint32]*Session)}
}

// AuthHandle undoes one Add. Removing is idempotent and never evicts a
// newer session that replaced this one on duplicate login.
type AuthHandle struct {
	registry *SessionRegistry
	userID   uint32
	session  *Session
}

// Add associates userID with session, replacing any previous entry
// (duplicate login: the older session notices when it next publishes).
func (r *SessionRegistry) Add(userID uint32, session *Session) *AuthHandle {
	r.mu.Lock()
	r.sessions[userID] = session
	r.mu.Unlock()
	return &AuthHandle{registry: r, userID: userID, session: session}
}

// Lookup returns the live session for userID. Dead entries are removed on
// the way out.
func (r *SessionRegistry) Lookup(userID uint32) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	if s.IsClosed() {
		delete(r.sessions, userID)
		return nil
	}
	return s
}

// Count returns the number of registered sessions, dead or alive.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove deletes the handle's entry unless a newer session replaced it.
func (h *AuthHandle) Remove() {
	if h == nil || h.registry == nil {
		return
	}
	h.registry.mu.Lock()
	if h.registry.sessions[h.userID] == h.session {
		delete(h.registry.sessions, h.userID)
	}
	h.registry.mu.Unlock()
}
