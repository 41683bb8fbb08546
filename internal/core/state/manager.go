package state

import (
	"sync"

	"insureadmin/internal/core/services"
	"insureadmin/internal/core/session"
)

// Deps are the services a store dispatches into
type Deps struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Policies *services.PolicyService
	Reports  *services.ReportService
	Notifier *services.NotificationService
}

// Manager owns one Store per signed-in user. Stores are created lazily,
// rehydrated from the session store's snapshot, and dropped on reset.
type Manager struct {
	mu       sync.Mutex
	stores   map[string]*Store
	deps     Deps
	sessions *session.Store
}

// NewManager creates a new state manager
func NewManager(deps Deps, sessions *session.Store) *Manager {
	return &Manager{
		stores:   make(map[string]*Store),
		deps:     deps,
		sessions: sessions,
	}
}

// Store returns the user's store, creating and rehydrating it on first use
func (m *Manager) Store(userID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s
	}
	s := newStore(userID, m.deps, &sessionPersister{sessions: m.sessions, owner: userID})
	m.stores[userID] = s
	return s
}

// Reset clears the user's store back to defaults and forgets the cached
// instance, so the next access starts fresh.
func (m *Manager) Reset(userID string) {
	m.mu.Lock()
	s, ok := m.stores[userID]
	delete(m.stores, userID)
	m.mu.Unlock()

	if ok {
		s.Reset()
	}
}

// sessionPersister snapshots one user's store into the session store
type sessionPersister struct {
	sessions *session.Store
	owner    string
}

func (p *sessionPersister) Save(snapshot []byte) error {
	return p.sessions.Set(p.owner, session.KeyStateSnapshot, string(snapshot))
}

func (p *sessionPersister) Load() ([]byte, bool) {
	v, ok := p.sessions.Get(p.owner, session.KeyStateSnapshot)
	if !ok {
		return nil, false
	}
	return []byte(v), true
}
