package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"newsrag/internal/domain"
)

// Store is an in-process session store with lazy expiry. Histories are kept
// serialized so callers never share slices with the store.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{entries: make(map[string]entry), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// live returns the entry for id, dropping it if expired. Callers hold mu.
func (s *Store) live(id string) (entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return entry{}, false
	}
	return e, true
}

func (s *Store) Get(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.Lock()
	e, ok := s.live(sessionID)
	s.mu.Unlock()
	if !ok {
		return []domain.Turn{}, nil
	}
	var history []domain.Turn
	if err := json.Unmarshal(e.data, &history); err != nil {
		return nil, domain.Wrap(err, domain.ErrSessionStore, "decoding history", "session_id", sessionID)
	}
	if history == nil {
		history = []domain.Turn{}
	}
	return history, nil
}

func (s *Store) Set(_ context.Context, sessionID string, history []domain.Turn, ttl time.Duration) error {
	if ttl <= 0 {
		return domain.Errorf(domain.ErrValidation, "session ttl must be positive, got %s", ttl)
	}
	if history == nil {
		history = []domain.Turn{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return domain.Wrap(err, domain.ErrSessionStore, "encoding history", "session_id", sessionID)
	}
	s.mu.Lock()
	s.entries[sessionID] = entry{data: data, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(sessionID); !ok {
		return false, nil
	}
	delete(s.entries, sessionID)
	return true, nil
}

// Len returns the number of unexpired sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id := range s.entries {
		if _, ok := s.live(id); ok {
			n++
		}
	}
	return n
}
