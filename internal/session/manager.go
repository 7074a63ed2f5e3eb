package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// StateStore persists session state keyed by session id.
// Load returns (nil, nil) for an unknown session.
type StateStore interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, state State) error
	Delete(ctx context.Context, id string) error
}

// Recorder observes completed session operations.
type Recorder interface {
	RecordOperation(operation string, latency time.Duration)
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Manager hands out one Session per id, loading it from the StateStore on
// first use. Mutations on a session are serialised and the resulting state is
// persisted once the in-memory state is consistent.
type Manager struct {
	store    StateStore
	recorder Recorder

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager creates a Manager. recorder may be nil.
func NewManager(store StateStore, recorder Recorder) *Manager {
	return &Manager{
		store:    store,
		recorder: recorder,
		entries:  make(map[string]*entry),
	}
}

// Do runs a mutating operation against a session and persists the result.
// Persistence failures are logged, not returned: the in-memory state is
// already authoritative.
func (m *Manager) Do(ctx context.Context, id, operation string, fn func(*Session) error) error {
	e, err := m.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	start := time.Now()
	if err := fn(e.session); err != nil {
		return err
	}
	if m.recorder != nil {
		m.recorder.RecordOperation(operation, time.Since(start))
	}

	if err := m.store.Save(ctx, id, e.session.State()); err != nil {
		log.Printf("Warning: failed to persist session %s after %s: %v", id, operation, err)
	}
	return nil
}

// View runs a read-only function against a session.
func (m *Manager) View(ctx context.Context, id string, fn func(*Session)) error {
	e, err := m.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	fn(e.session)
	return nil
}

// Forget drops a session from memory and from the store.
func (m *Manager) Forget(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// Active returns the number of sessions held in memory.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// acquire returns the locked entry for id, loading it if needed.
func (m *Manager) acquire(ctx context.Context, id string) (*entry, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		e = &entry{}
		m.entries[id] = e
	}
	m.mu.Unlock()

	e.mu.Lock()
	if e.session != nil {
		return e, nil
	}

	state, err := m.store.Load(ctx, id)
	if err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if state == nil {
		e.session = New(id)
	} else {
		e.session = FromState(id, *state)
	}
	return e, nil
}
