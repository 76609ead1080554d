package storage

import (
	"context"
	"sort"
	"sync"

	"sasfit/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	sessions    map[string]model.SessionRecord
	theories    map[string]model.TheoryRecord
	history     map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.sessions = make(map[string]model.SessionRecord)
	s.theories = make(map[string]model.TheoryRecord)
	s.history = make(map[string][]float64)
	return nil
}

func (s *MemoryStore) SaveSession(_ context.Context, session model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (model.SessionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	return session, ok, nil
}

func (s *MemoryStore) ListSessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveTheory(_ context.Context, theory model.TheoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := theory
	copied.X = append([]float64(nil), theory.X...)
	copied.Theory = append([]float64(nil), theory.Theory...)
	s.theories[theory.SessionID] = copied
	return nil
}

func (s *MemoryStore) GetTheory(_ context.Context, sessionID string) (model.TheoryRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	theory, ok := s.theories[sessionID]
	if !ok {
		return model.TheoryRecord{}, false, nil
	}
	copied := theory
	copied.X = append([]float64(nil), theory.X...)
	copied.Theory = append([]float64(nil), theory.Theory...)
	return copied, true, nil
}

func (s *MemoryStore) SaveNLLFHistory(_ context.Context, sessionID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := append([]float64(nil), history...)
	s.history[sessionID] = copied
	return nil
}

func (s *MemoryStore) GetNLLFHistory(_ context.Context, sessionID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[sessionID]
	if !ok {
		return nil, false, nil
	}
	copied := append([]float64(nil), history...)
	return copied, true, nil
}
