package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"example.com/wordlink/internal/apperr"
	"example.com/wordlink/internal/puzzle"
	"example.com/wordlink/internal/stats"
	"github.com/google/uuid"
)

type PuzzleSource interface {
	Get(ctx context.Context, id string) (puzzle.Puzzle, error)
}

// StatsRecorder receives every terminal transition exactly once.
type StatsRecorder interface {
	Record(ctx context.Context, o stats.Outcome) error
}

// Service owns the session state machine:
//   - creates sessions against approved puzzles
//   - serializes guesses per session and persists each transition with a conditional write
//   - hands terminal sessions to the stats recorder
type Service struct {
	log      *slog.Logger
	puzzles  PuzzleSource
	sessions SessionStore
	stats    StatsRecorder
	locks    *keyedMutex

	now   func() time.Time
	newID func() string
}

func NewService(puzzles PuzzleSource, sessions SessionStore, recorder StatsRecorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		log:      log,
		puzzles:  puzzles,
		sessions: sessions,
		stats:    recorder,
		locks:    newKeyedMutex(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *Service) StartSession(ctx context.Context, puzzleID, username string) (Session, puzzle.Puzzle, error) {
	p, err := s.loadPuzzle(ctx, puzzleID)
	if err != nil {
		return Session{}, puzzle.Puzzle{}, err
	}
	if !p.Approved {
		return Session{}, puzzle.Puzzle{}, ErrPuzzleNotApproved
	}

	sess := NewSession(s.newID(), p.ID, strings.TrimSpace(username), s.now().UTC())
	if err := s.sessions.Create(ctx, sess); err != nil {
		return Session{}, puzzle.Puzzle{}, apperr.Wrap(ErrStore, err)
	}

	s.log.Info("game session started", "sessionId", sess.ID, "puzzleId", p.ID, "username", sess.Username)
	return sess, p, nil
}

func (s *Service) SubmitGuess(ctx context.Context, sessionID string, words []string) (GuessOutcome, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return GuessOutcome{}, err
	}
	if sess.State.Terminal() {
		return GuessOutcome{}, ErrAlreadyCompleted
	}
	if len(words) != puzzle.GroupSize {
		return GuessOutcome{}, ErrInvalidGuessSize
	}

	p, err := s.loadPuzzle(ctx, sess.PuzzleID)
	if err != nil {
		return GuessOutcome{}, err
	}
	if len(puzzle.NewWordSet(words...)) != puzzle.GroupSize {
		return GuessOutcome{}, ErrDuplicateWord
	}
	inPuzzle := puzzle.NewWordSet(p.Words...)
	for _, w := range words {
		if !inPuzzle.Has(w) {
			return GuessOutcome{}, apperr.Wrap(ErrUnknownWord, fmt.Errorf("%q", strings.TrimSpace(w)))
		}
	}

	r := Classify(words, p.Categories, sess.FoundGroups)
	if r.Ambiguous {
		s.log.Error("selection matches more than one category; puzzle categories overlap",
			"sessionId", sess.ID, "puzzleId", p.ID, "matched", r.Matched.Name)
	}

	next := sess.applyGuess(r, s.now().UTC())
	if err := s.sessions.Update(ctx, next, sess.Version); err != nil {
		if errors.Is(err, ErrConcurrentUpdate) || errors.Is(err, ErrSessionNotFound) {
			return GuessOutcome{}, err
		}
		return GuessOutcome{}, apperr.Wrap(ErrStore, err)
	}

	if r.Matched != nil {
		s.log.Info("correct group found", "sessionId", sess.ID, "groupName", r.Matched.Name, "found", len(next.FoundGroups))
	} else {
		s.log.Info("incorrect guess", "sessionId", sess.ID, "mistakesRemaining", next.MistakesRemaining, "oneAway", r.OneAway)
	}

	if next.State.Terminal() {
		s.onTerminal(ctx, next)
	}
	return next.outcome(r), nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	return s.loadSession(ctx, sessionID)
}

// onTerminal runs once per session, right after the terminal transition was persisted.
// Aggregate failures are logged only; the game result is already final.
func (s *Service) onTerminal(ctx context.Context, sess Session) {
	s.log.Info("game session finished",
		"sessionId", sess.ID,
		"state", sess.State,
		"attempts", sess.Attempts,
		"timeTakenSeconds", *sess.TimeTakenSeconds,
	)
	if s.stats == nil {
		return
	}
	if err := s.stats.Record(context.WithoutCancel(ctx), sess.StatsOutcome()); err != nil {
		s.log.Error("stats update failed", "sessionId", sess.ID, "err", err)
	}
}

func (s *Service) loadSession(ctx context.Context, id string) (Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, apperr.Wrap(ErrStore, err)
	}
	return sess, nil
}

func (s *Service) loadPuzzle(ctx context.Context, id string) (puzzle.Puzzle, error) {
	p, err := s.puzzles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, puzzle.ErrNotFound) {
			return puzzle.Puzzle{}, ErrPuzzleNotFound
		}
		return puzzle.Puzzle{}, apperr.Wrap(ErrStore, err)
	}
	return p, nil
}
