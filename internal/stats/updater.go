package stats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"example.com/wordlink/internal/apperr"
)

var ErrBadUsername = apperr.New(apperr.InvalidInput, "bad_username", "username is required")

// Store applies aggregate updates atomically. Apply must be idempotent per session id:
// a repeated call reports applied=false and changes nothing.
type Store interface {
	Apply(ctx context.Context, o Outcome) (applied bool, err error)
	Player(ctx context.Context, username string) (PlayerStats, error)
	Leaderboard(ctx context.Context, limit int) ([]PlayerStats, error)
	Sync(ctx context.Context, in LocalStats) (PlayerStats, error)
	CountPlayers(ctx context.Context) (int, error)
}

// Updater is the terminal-transition hook and the read side of player stats.
type Updater struct {
	store Store
	log   *slog.Logger
}

func NewUpdater(store Store, log *slog.Logger) *Updater {
	if log == nil {
		log = slog.Default()
	}
	return &Updater{store: store, log: log}
}

// Record applies a finished session to puzzle and player aggregates.
func (u *Updater) Record(ctx context.Context, o Outcome) error {
	applied, err := u.store.Apply(ctx, o)
	if err != nil {
		return fmt.Errorf("apply stats for session %s: %w", o.SessionID, err)
	}
	if !applied {
		u.log.Warn("stats already applied for session", "sessionId", o.SessionID)
		return nil
	}
	u.log.Info("stats updated",
		"sessionId", o.SessionID,
		"puzzleId", o.PuzzleID,
		"username", o.Username,
		"won", o.Won,
		"mistakes", o.MistakesMade,
		"timeTakenSeconds", o.TimeTakenSeconds,
	)
	return nil
}

func (u *Updater) Player(ctx context.Context, username string) (PlayerStats, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return PlayerStats{}, ErrBadUsername
	}
	return u.store.Player(ctx, username)
}

func (u *Updater) Leaderboard(ctx context.Context, limit int) ([]PlayerStats, error) {
	if limit <= 0 {
		limit = 10
	}
	return u.store.Leaderboard(ctx, min(limit, 100))
}

func (u *Updater) Sync(ctx context.Context, in LocalStats) (PlayerStats, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return PlayerStats{}, ErrBadUsername
	}
	if in.TotalGames < 0 || in.TotalWins < 0 || in.PerfectGames < 0 || in.CurrentStreak < 0 || in.BestStreak < 0 {
		return PlayerStats{}, apperr.New(apperr.InvalidInput, "bad_request", "counters must not be negative")
	}
	st, err := u.store.Sync(ctx, in)
	if err != nil {
		return PlayerStats{}, err
	}
	u.log.Info("local stats synced", "username", in.Username)
	return st, nil
}

func (u *Updater) CountPlayers(ctx context.Context) (int, error) {
	return u.store.CountPlayers(ctx)
}
