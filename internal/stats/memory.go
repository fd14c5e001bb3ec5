package stats

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"example.com/wordlink/internal/puzzle"
)

// PuzzleStatsUpdater mutates a puzzle's play stats in place.
type PuzzleStatsUpdater interface {
	UpdateStats(ctx context.Context, id string, fn func(puzzle.PlayStats) puzzle.PlayStats) error
}

// MemoryStore keeps player aggregates in memory and forwards puzzle aggregates to the
// puzzle store. Apply holds one lock for the whole update.
type MemoryStore struct {
	mu      sync.Mutex
	puzzles PuzzleStatsUpdater
	players map[string]PlayerStats
	applied map[string]bool
	now     func() time.Time
}

func NewMemoryStore(puzzles PuzzleStatsUpdater) *MemoryStore {
	return &MemoryStore{
		puzzles: puzzles,
		players: make(map[string]PlayerStats),
		applied: make(map[string]bool),
		now:     time.Now,
	}
}

func (s *MemoryStore) Apply(ctx context.Context, o Outcome) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applied[o.SessionID] {
		return false, nil
	}

	if s.puzzles != nil {
		err := s.puzzles.UpdateStats(ctx, o.PuzzleID, func(ps puzzle.PlayStats) puzzle.PlayStats {
			return ApplyToPuzzle(ps, o)
		})
		// a rejected puzzle no longer has a record to update
		if err != nil && !errors.Is(err, puzzle.ErrNotFound) {
			return false, err
		}
	}

	if o.Username != "" {
		s.players[o.Username] = ApplyToPlayer(s.players[o.Username], o, s.now().UTC())
	}
	s.applied[o.SessionID] = true
	return true, nil
}

func (s *MemoryStore) Player(_ context.Context, username string) (PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[username]
	if !ok {
		return PlayerStats{}, ErrPlayerNotFound
	}
	return p, nil
}

func (s *MemoryStore) Leaderboard(_ context.Context, limit int) ([]PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PlayerStats, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Sync(_ context.Context, in LocalStats) (PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Merge(s.players[in.Username], in, s.now().UTC())
	s.players[in.Username] = p
	return p, nil
}

func (s *MemoryStore) CountPlayers(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players), nil
}
