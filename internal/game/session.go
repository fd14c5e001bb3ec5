package game

import (
	"fmt"
	"time"

	"example.com/wordlink/internal/puzzle"
	"example.com/wordlink/internal/stats"
)

const MaxMistakes = 4

type State string

const (
	InProgress State = "in_progress"
	Won        State = "won"
	Lost       State = "lost"
)

func (s State) Terminal() bool { return s == Won || s == Lost }

// Session is one player's attempt at one puzzle. It changes only through applyGuess.
type Session struct {
	ID                string            `json:"id"`
	PuzzleID          string            `json:"puzzleId"`
	Username          string            `json:"username,omitempty"`
	StartedAt         time.Time         `json:"startedAt"`
	FoundGroups       []puzzle.Category `json:"foundGroups"`
	MistakesRemaining int               `json:"mistakesRemaining"`
	Attempts          int               `json:"attempts"`
	State             State             `json:"state"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	TimeTakenSeconds  *int              `json:"timeTakenSeconds,omitempty"`
	Version           int64             `json:"version"`
}

func NewSession(id, puzzleID, username string, now time.Time) Session {
	return Session{
		ID:                id,
		PuzzleID:          puzzleID,
		Username:          username,
		StartedAt:         now,
		FoundGroups:       []puzzle.Category{},
		MistakesRemaining: MaxMistakes,
		State:             InProgress,
		Version:           1,
	}
}

func (s Session) MistakesMade() int { return MaxMistakes - s.MistakesRemaining }

// GuessOutcome is the player-facing result of one guess.
type GuessOutcome struct {
	Success           bool             `json:"success"`
	MatchedCategory   *puzzle.Category `json:"matchedCategory,omitempty"`
	IsOneAway         bool             `json:"isOneAway"`
	IsComplete        bool             `json:"isComplete"`
	IsWon             bool             `json:"isWon"`
	MistakesRemaining int              `json:"mistakesRemaining"`
}

// applyGuess returns the session after one classified guess. s must be in progress.
func (s Session) applyGuess(r Result, now time.Time) Session {
	next := s
	next.FoundGroups = append(make([]puzzle.Category, 0, len(s.FoundGroups)+1), s.FoundGroups...)
	next.Attempts++
	next.Version++

	if r.Matched != nil {
		next.FoundGroups = append(next.FoundGroups, *r.Matched)
		if len(next.FoundGroups) == puzzle.GroupCount {
			next.finish(Won, now)
		}
		return next
	}

	next.MistakesRemaining--
	if next.MistakesRemaining <= 0 {
		next.MistakesRemaining = 0
		next.finish(Lost, now)
	}
	return next
}

func (s *Session) finish(state State, now time.Time) {
	s.State = state
	completed := now
	s.CompletedAt = &completed

	secs := int(completed.Sub(s.StartedAt) / time.Second)
	if secs < 0 {
		secs = 0
	}
	s.TimeTakenSeconds = &secs
}

func (s Session) outcome(r Result) GuessOutcome {
	return GuessOutcome{
		Success:           r.Matched != nil,
		MatchedCategory:   r.Matched,
		IsOneAway:         r.OneAway,
		IsComplete:        s.State.Terminal(),
		IsWon:             s.State == Won,
		MistakesRemaining: s.MistakesRemaining,
	}
}

// StatsOutcome is the contribution of a finished session to the aggregates.
func (s Session) StatsOutcome() stats.Outcome {
	o := stats.Outcome{
		SessionID:    s.ID,
		PuzzleID:     s.PuzzleID,
		Username:     s.Username,
		Won:          s.State == Won,
		MistakesMade: s.MistakesMade(),
	}
	if s.TimeTakenSeconds != nil {
		o.TimeTakenSeconds = *s.TimeTakenSeconds
	}
	return o
}

// Check reports the first violated session invariant.
func (s Session) Check() error {
	switch {
	case s.MistakesRemaining < 0 || s.MistakesRemaining > MaxMistakes:
		return fmt.Errorf("mistakesRemaining=%d out of range", s.MistakesRemaining)
	case len(s.FoundGroups) > puzzle.GroupCount:
		return fmt.Errorf("foundGroups=%d out of range", len(s.FoundGroups))
	}
	switch s.State {
	case Won:
		if len(s.FoundGroups) != puzzle.GroupCount {
			return fmt.Errorf("won with %d groups", len(s.FoundGroups))
		}
	case Lost:
		if s.MistakesRemaining != 0 || len(s.FoundGroups) >= puzzle.GroupCount {
			return fmt.Errorf("lost with mistakesRemaining=%d groups=%d", s.MistakesRemaining, len(s.FoundGroups))
		}
	case InProgress:
		if s.MistakesRemaining == 0 || len(s.FoundGroups) >= puzzle.GroupCount {
			return fmt.Errorf("in progress with mistakesRemaining=%d groups=%d", s.MistakesRemaining, len(s.FoundGroups))
		}
	default:
		return fmt.Errorf("unknown state %q", s.State)
	}
	if s.State.Terminal() != (s.CompletedAt != nil && s.TimeTakenSeconds != nil) {
		return fmt.Errorf("completion stamp does not match state %s", s.State)
	}
	return nil
}
