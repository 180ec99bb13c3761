// Package storage keeps dashboard sessions in memory.
package storage

import (
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/crossview/internal/dashboard"
)

type SessionStore struct {
	sessions map[string]*dashboard.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*dashboard.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*dashboard.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *dashboard.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *SessionStore) GetAll() map[string]*dashboard.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*dashboard.Session, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

// List returns every session, oldest first.
func (s *SessionStore) List() []*dashboard.Session {
	all := s.GetAll()
	list := make([]*dashboard.Session, 0, len(all))
	for _, session := range all {
		list = append(list, session)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Delete removes a session and stops its pending work. It reports
// whether the session existed.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	session, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if exists {
		session.Close()
	}
	return exists
}
