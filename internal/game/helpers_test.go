package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"example.com/wordlink/internal/puzzle"
	"example.com/wordlink/internal/stats"
	"github.com/stretchr/testify/require"
)

var (
	groupF = []string{"F1", "F2", "F3", "F4"}
	groupG = []string{"G1", "G2", "G3", "G4"}
	groupH = []string{"H1", "H2", "H3", "H4"}
	groupI = []string{"I1", "I2", "I3", "I4"}
)

func letterPuzzle(id string, approved bool) puzzle.Puzzle {
	var words []string
	for _, g := range [][]string{groupF, groupG, groupH, groupI} {
		words = append(words, g...)
	}
	return puzzle.Puzzle{
		ID:    id,
		Words: words,
		Categories: []puzzle.Category{
			{Name: "F group", Words: groupF, Tier: puzzle.Tier1},
			{Name: "G group", Words: groupG, Tier: puzzle.Tier2},
			{Name: "H group", Words: groupH, Tier: puzzle.Tier3},
			{Name: "I group", Words: groupI, Tier: puzzle.Tier4},
		},
		Difficulty: puzzle.DifficultyEasy,
		Approved:   approved,
	}
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeRecorder struct {
	mu  sync.Mutex
	got []stats.Outcome
	err error
}

func (f *fakeRecorder) Record(_ context.Context, o stats.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, o)
	return f.err
}

func (f *fakeRecorder) outcomes() []stats.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stats.Outcome(nil), f.got...)
}

type flakySessionStore struct {
	*InMemorySessionStore
	updateErr error
}

func (s *flakySessionStore) Update(ctx context.Context, sess Session, prevVersion int64) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.InMemorySessionStore.Update(ctx, sess, prevVersion)
}

type testGame struct {
	svc      *Service
	puzzles  *puzzle.MemoryStore
	sessions *flakySessionStore
	recorder *fakeRecorder
	clock    *testClock
}

func newTestGame(t *testing.T, puzzles ...puzzle.Puzzle) *testGame {
	t.Helper()

	ps := puzzle.NewMemoryStore()
	for _, p := range puzzles {
		require.NoError(t, ps.Create(context.Background(), p))
	}
	g := &testGame{
		puzzles:  ps,
		sessions: &flakySessionStore{InMemorySessionStore: NewInMemorySessionStore()},
		recorder: &fakeRecorder{},
		clock:    &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	g.svc = NewService(ps, g.sessions, g.recorder, nil)
	g.svc.now = g.clock.Now
	return g
}

func (g *testGame) start(t *testing.T, puzzleID string) Session {
	t.Helper()
	sess, _, err := g.svc.StartSession(context.Background(), puzzleID, "")
	require.NoError(t, err)
	return sess
}

func (g *testGame) guess(t *testing.T, id string, words ...string) GuessOutcome {
	t.Helper()
	out, err := g.svc.SubmitGuess(context.Background(), id, words)
	require.NoError(t, err)
	return out
}

func (g *testGame) session(t *testing.T, id string) Session {
	t.Helper()
	sess, err := g.svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, sess.Check())
	return sess
}

var errBackend = errors.New("backend unavailable")
