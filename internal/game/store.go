package game

import (
	"context"
	"fmt"
	"sync"

	"example.com/wordlink/internal/puzzle"
)

// SessionStore is durable key-value persistence for sessions with a conditional update.
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Update replaces the stored session only if its version still equals prevVersion,
	// otherwise it returns ErrConcurrentUpdate.
	Update(ctx context.Context, s Session, prevVersion int64) error
	Counts(ctx context.Context) (total, completed int, err error)
}

type InMemorySessionStore struct {
	mu sync.Mutex
	m  map[string]Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		m: make(map[string]Session),
	}
}

func (s *InMemorySessionStore) Create(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[sess.ID]; ok {
		return fmt.Errorf("session %s already exists", sess.ID)
	}
	s.m[sess.ID] = cloneSession(sess)
	return nil
}

func (s *InMemorySessionStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

func (s *InMemorySessionStore) Update(_ context.Context, sess Session, prevVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[sess.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if cur.Version != prevVersion {
		return ErrConcurrentUpdate
	}
	s.m[sess.ID] = cloneSession(sess)
	return nil
}

func (s *InMemorySessionStore) Counts(_ context.Context) (total, completed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.m {
		total++
		if sess.State.Terminal() {
			completed++
		}
	}
	return total, completed, nil
}

func cloneSession(s Session) Session {
	s.FoundGroups = append([]puzzle.Category{}, s.FoundGroups...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	if s.TimeTakenSeconds != nil {
		n := *s.TimeTakenSeconds
		s.TimeTakenSeconds = &n
	}
	return s
}
