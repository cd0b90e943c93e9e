package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"obozy/internal/catalog"
	"obozy/internal/draft"
)

var ErrSessionNotFound = errors.New("wizard: session not found")

// Manager hands out wizard sessions. A session lives in memory while the
// process does; after a restart (or on another instance) it is rebuilt from
// the persisted draft and freshly fetched catalogs.
type Manager struct {
	store draft.Store
	src   catalog.Source

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store draft.Store, src catalog.Source) *Manager {
	return &Manager{
		store:    store,
		src:      src,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new wizard session for a camp edition and materializes its
// empty draft blob.
func (m *Manager) Create(ctx context.Context, campID, propertyID string) (*Session, error) {
	id := uuid.NewString()
	if _, err := m.store.Apply(ctx, id, draft.InitAction{CampID: campID, PropertyID: propertyID}); err != nil {
		return nil, fmt.Errorf("wizard: create session: %w", err)
	}
	session, err := NewSession(ctx, id, m.store, m.src)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	return session, nil
}

// Get returns the in-memory session, rebuilding it from the persisted draft
// when the process no longer holds one.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return session, nil
	}

	st, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrSessionNotFound
	}
	session, err = NewSession(ctx, id, m.store, m.src)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	// Another request may have rebuilt it first; keep the winner.
	if existing, ok := m.sessions[id]; ok {
		session = existing
	} else {
		m.sessions[id] = session
	}
	m.mu.Unlock()
	return session, nil
}

// Drop forgets the in-memory session and deletes its draft.
func (m *Manager) Drop(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return m.store.Delete(ctx, id)
}
