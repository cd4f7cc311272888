// internal/store/memory.go
//
// In-memory registry of live rounds for the HTTP API.
//
// Characteristics:
//   - Sessions are keyed by a random UUID assigned on Create.
//   - The map is guarded by an RWMutex; each Session carries its own mutex so
//     a round is only ever driven by one request at a time.
//   - Idle sessions are dropped by Sweep; state is lost on restart.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hangman/internal/round"
)

var ErrNotFound = errors.New("store: round not found")

// Session wraps a round with the lock that serializes access to it.
type Session struct {
	ID string

	mu       sync.Mutex
	round    *round.Round
	lastUsed time.Time
}

// Do runs fn with exclusive access to the session's round.
func (s *Session) Do(fn func(r *round.Round) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return fn(s.round)
}

// Store defines the registry interface.
type Store interface {
	// Create registers r under a fresh id.
	Create(ctx context.Context, r *round.Round) (*Session, error)

	// Get retrieves a session by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete forgets a session. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Sweep drops sessions idle for longer than ttl and returns how many.
	Sweep(ctx context.Context, ttl time.Duration) int
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Create(ctx context.Context, r *round.Round) (*Session, error) {
	s := &Session{ID: uuid.NewString(), round: r, lastUsed: time.Now()}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.RLock()
	snapshot := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		snapshot = append(snapshot, s)
	}
	m.mu.RUnlock()

	// Session locks are taken without holding the registry lock.
	var idle []*Session
	for _, s := range snapshot {
		s.mu.Lock()
		if s.lastUsed.Before(cutoff) {
			idle = append(idle, s)
		}
		s.mu.Unlock()
	}
	if len(idle) == 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range idle {
		// Skip ids that were deleted or replaced since the snapshot.
		if cur, ok := m.sessions[s.ID]; ok && cur == s {
			delete(m.sessions, s.ID)
			n++
		}
	}
	return n
}
