package session

import (
	"context"
	"sync"
	"time"
)

// Store keeps the append-only error log of each session.
type Store interface {
	Append(ctx context.Context, sessionID, entry string) error
	Entries(ctx context.Context, sessionID string) ([]string, error)
	Clear(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	entries  []string
	lastSeen time.Time
}

// MemoryStore is a process-local Store. Sessions idle for longer than ttl
// are swept.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Append(_ context.Context, sessionID, entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		e = &memoryEntry{}
		s.sessions[sessionID] = e
	}
	e.entries = append(e.entries, entry)
	e.lastSeen = s.now()
	return nil
}

func (s *MemoryStore) Entries(_ context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if s.expired(e) {
		delete(s.sessions, sessionID)
		return nil, nil
	}
	e.lastSeen = s.now()
	out := make([]string, len(e.entries))
	copy(out, e.entries)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Sweep drops idle sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) expired(e *memoryEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl
}
