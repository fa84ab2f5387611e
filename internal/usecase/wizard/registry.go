package wizard

import (
	"sync"
	"time"
)

type sessionKey struct {
	sellerID  string
	requestID string
}

type registryEntry struct {
	session *Session
	touched time.Time
}

// Registry keeps in-flight sessions between HTTP calls, keyed by (seller, request).
// Idle sessions are dropped after ttl.
type Registry struct {
	mu       sync.Mutex
	sessions map[sessionKey]*registryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[sessionKey]*registryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Put stores the session, replacing any previous one of the same seller and request.
func (r *Registry) Put(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionKey{session.SellerID, session.RequestID}] = &registryEntry{session: session, touched: r.now()}
}

func (r *Registry) Get(sellerID, requestID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{sellerID, requestID}
	entry, ok := r.sessions[key]
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.ttl > 0 && now.Sub(entry.touched) > r.ttl {
		delete(r.sessions, key)
		return nil, false
	}
	entry.touched = now
	return entry.session, true
}

func (r *Registry) Delete(sellerID, requestID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{sellerID, requestID}
	_, ok := r.sessions[key]
	delete(r.sessions, key)
	return ok
}

// Cleanup drops idle sessions and returns how many were removed.
func (r *Registry) Cleanup() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for key, entry := range r.sessions {
		if now.Sub(entry.touched) > r.ttl {
			delete(r.sessions, key)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
