package puzzle

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"example.com/wordlink/internal/apperr"
)

var (
	ErrNotFound     = apperr.New(apperr.NotFound, "puzzle_not_found", "puzzle not found")
	ErrNoneApproved = apperr.New(apperr.NotFound, "no_approved_puzzles", "no approved puzzles available")
	ErrNotApproved  = apperr.New(apperr.InvalidInput, "puzzle_not_approved", "puzzle has not been approved yet")
	ErrBadDate      = apperr.New(apperr.InvalidInput, "bad_date", "date must be YYYY-MM-DD")
)

// Store persists puzzle records. Content is written once by Create; afterwards only the
// approval flag and the play stats change.
type Store interface {
	Create(ctx context.Context, p Puzzle) error
	Get(ctx context.Context, id string) (Puzzle, error)
	List(ctx context.Context, approvedOnly bool) ([]Puzzle, error)
	SetApproved(ctx context.Context, id string, approved bool) (Puzzle, error)
	Delete(ctx context.Context, id string) error
	RandomApproved(ctx context.Context) (Puzzle, error)
	Counts(ctx context.Context) (total, approved int, err error)
}

// Schedule maps calendar dates (YYYY-MM-DD) to daily puzzles.
type Schedule interface {
	SetDaily(ctx context.Context, date, puzzleID string) error
	DailyID(ctx context.Context, date string) (string, bool, error)
}

type LogEntry struct {
	ID        int64           `json:"id"`
	Action    string          `json:"action"` // generate|approve|reject|set_daily
	PuzzleID  string          `json:"puzzleId,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AuditLog records admin actions on puzzles.
type AuditLog interface {
	Append(ctx context.Context, e LogEntry) error
	Recent(ctx context.Context, limit int) ([]LogEntry, error)
}

// MemoryStore implements Store, Schedule and AuditLog in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	puzzles map[string]Puzzle
	daily   map[string]string
	logs    []LogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		puzzles: make(map[string]Puzzle),
		daily:   make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, p Puzzle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puzzles[p.ID] = clonePuzzle(p)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.puzzles[id]
	if !ok {
		return Puzzle{}, ErrNotFound
	}
	return clonePuzzle(p), nil
}

func (s *MemoryStore) List(_ context.Context, approvedOnly bool) ([]Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Puzzle, 0, len(s.puzzles))
	for _, p := range s.puzzles {
		if approvedOnly && !p.Approved {
			continue
		}
		out = append(out, clonePuzzle(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) SetApproved(_ context.Context, id string, approved bool) (Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.puzzles[id]
	if !ok {
		return Puzzle{}, ErrNotFound
	}
	p.Approved = approved
	s.puzzles[id] = p
	return clonePuzzle(p), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.puzzles[id]; !ok {
		return ErrNotFound
	}
	delete(s.puzzles, id)
	for date, pid := range s.daily {
		if pid == id {
			delete(s.daily, date)
		}
	}
	return nil
}

func (s *MemoryStore) RandomApproved(ctx context.Context) (Puzzle, error) {
	approved, _ := s.List(ctx, true)
	if len(approved) == 0 {
		return Puzzle{}, ErrNoneApproved
	}
	return approved[rand.IntN(len(approved))], nil
}

func (s *MemoryStore) Counts(_ context.Context) (total, approved int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.puzzles {
		total++
		if p.Approved {
			approved++
		}
	}
	return total, approved, nil
}

// UpdateStats applies fn to the puzzle's play stats under the store lock.
func (s *MemoryStore) UpdateStats(_ context.Context, id string, fn func(PlayStats) PlayStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.puzzles[id]
	if !ok {
		return ErrNotFound
	}
	p.Stats = fn(p.Stats)
	s.puzzles[id] = p
	return nil
}

func (s *MemoryStore) SetDaily(_ context.Context, date, puzzleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily[date] = puzzleID
	return nil
}

func (s *MemoryStore) DailyID(_ context.Context, date string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.daily[date]
	return id, ok, nil
}

func (s *MemoryStore) Append(_ context.Context, e LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = int64(len(s.logs) + 1)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.logs = append(s.logs, e)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []LogEntry
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}

func clonePuzzle(p Puzzle) Puzzle {
	p.Words = append([]string(nil), p.Words...)
	cats := make([]Category, len(p.Categories))
	for i, c := range p.Categories {
		c.Words = append([]string(nil), c.Words...)
		cats[i] = c
	}
	p.Categories = cats
	return p
}
