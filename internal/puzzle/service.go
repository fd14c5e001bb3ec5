package puzzle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service is the authoring and approval workflow around puzzle records.
type Service struct {
	log      *slog.Logger
	store    Store
	schedule Schedule
	audit    AuditLog
	gen      Generator
	quota    Quota

	now   func() time.Time
	newID func() string
}

func NewService(store Store, schedule Schedule, audit AuditLog, gen Generator, quota Quota, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		log:      log,
		store:    store,
		schedule: schedule,
		audit:    audit,
		gen:      gen,
		quota:    quota,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Generate asks the generator for a new puzzle and stores it unapproved. One unit of the
// daily quota is consumed; it is given back if generation or validation fails.
func (s *Service) Generate(ctx context.Context, target Difficulty) (Puzzle, QuotaStatus, error) {
	st, err := s.quota.Take(ctx)
	if err != nil {
		if errors.Is(err, ErrQuotaExhausted) {
			s.log.Warn("daily puzzle generation limit reached", "limit", st.Limit, "resetsAt", st.ResetsAt)
		}
		return Puzzle{}, st, err
	}

	p, err := s.generate(ctx, target)
	if err != nil {
		if rerr := s.quota.Refund(ctx); rerr != nil {
			s.log.Error("quota refund failed", "err", rerr)
		} else {
			st.Remaining++
		}
		s.log.Error("puzzle generation failed", "err", err)
		return Puzzle{}, st, err
	}

	s.record(ctx, "generate", p.ID, map[string]any{
		"difficulty":     p.Difficulty,
		"remainingQuota": st.Remaining,
	})
	s.log.Info("puzzle generated", "puzzleId", p.ID, "difficulty", p.Difficulty, "remainingQuota", st.Remaining)
	return p, st, nil
}

func (s *Service) generate(ctx context.Context, target Difficulty) (Puzzle, error) {
	d, err := s.gen.Generate(ctx, target)
	if err != nil {
		return Puzzle{}, err
	}
	return s.Admit(ctx, d, false)
}

// Admit validates a draft and stores it as a new puzzle.
func (s *Service) Admit(ctx context.Context, d Draft, approved bool) (Puzzle, error) {
	if err := Validate(d.Words, d.Categories); err != nil {
		return Puzzle{}, err
	}
	if d.Difficulty == "" {
		d.Difficulty = DifficultyMedium
	}

	p := clonePuzzle(Puzzle{
		ID:         s.newID(),
		Words:      d.Words,
		Categories: d.Categories,
		Difficulty: d.Difficulty,
		Reasoning:  d.Reasoning,
		Approved:   approved,
		CreatedAt:  s.now().UTC(),
	})
	if err := s.store.Create(ctx, p); err != nil {
		return Puzzle{}, fmt.Errorf("create puzzle: %w", err)
	}
	return p, nil
}

func (s *Service) Approve(ctx context.Context, id string) (Puzzle, error) {
	prev, err := s.store.Get(ctx, id)
	if err != nil {
		return Puzzle{}, err
	}
	p, err := s.store.SetApproved(ctx, id, true)
	if err != nil {
		return Puzzle{}, err
	}
	s.record(ctx, "approve", id, map[string]any{"previousStatus": prev.Approved})
	s.log.Info("puzzle approved", "puzzleId", id)
	return p, nil
}

// Reject deletes the puzzle.
func (s *Service) Reject(ctx context.Context, id string) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	s.record(ctx, "reject", id, map[string]any{"difficulty": p.Difficulty})
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("puzzle rejected and deleted", "puzzleId", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Puzzle, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, approvedOnly bool) ([]Puzzle, error) {
	return s.store.List(ctx, approvedOnly)
}

func (s *Service) Random(ctx context.Context) (Puzzle, error) {
	return s.store.RandomApproved(ctx)
}

// Daily returns the puzzle scheduled for today (UTC), or a random approved one.
func (s *Service) Daily(ctx context.Context) (Puzzle, error) {
	date := s.now().UTC().Format(time.DateOnly)
	id, ok, err := s.schedule.DailyID(ctx, date)
	if err != nil {
		return Puzzle{}, err
	}
	if ok {
		p, err := s.store.Get(ctx, id)
		if err == nil && p.Approved {
			return p, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Puzzle{}, err
		}
	}
	return s.store.RandomApproved(ctx)
}

func (s *Service) SetDaily(ctx context.Context, date, puzzleID string) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return ErrBadDate
	}
	p, err := s.store.Get(ctx, puzzleID)
	if err != nil {
		return err
	}
	if !p.Approved {
		return ErrNotApproved
	}
	if err := s.schedule.SetDaily(ctx, date, puzzleID); err != nil {
		return fmt.Errorf("set daily puzzle: %w", err)
	}
	s.record(ctx, "set_daily", puzzleID, map[string]any{"date": date})
	return nil
}

func (s *Service) QuotaStatus(ctx context.Context) (QuotaStatus, error) {
	return s.quota.Status(ctx)
}

func (s *Service) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.audit.Recent(ctx, min(limit, 500))
}

func (s *Service) Counts(ctx context.Context) (total, approved int, err error) {
	return s.store.Counts(ctx)
}

func (s *Service) record(ctx context.Context, action, puzzleID string, details map[string]any) {
	b, _ := json.Marshal(details)
	err := s.audit.Append(ctx, LogEntry{
		Action:    action,
		PuzzleID:  puzzleID,
		Details:   b,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("admin log append failed", "action", action, "puzzleId", puzzleID, "err", err)
	}
}
