package store

import (
	"context"
	"errors"
	"time"

	"example.com/wordlink/internal/puzzle"
	"example.com/wordlink/internal/stats"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const playerColumns = `username, games_played, wins, perfect_games, current_streak, best_streak,
	avg_completion_seconds, avg_mistakes, updated_at`

// StatsStore implements stats.Store. Every aggregate change runs in one transaction
// with the touched rows locked.
type StatsStore struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewStatsStore(db *pgxpool.Pool) *StatsStore {
	return &StatsStore{db: db, now: time.Now}
}

func (s *StatsStore) Apply(ctx context.Context, o stats.Outcome) (bool, error) {
	applied := false
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO stats_applications (session_id) VALUES ($1)
			ON CONFLICT (session_id) DO NOTHING
		`, o.SessionID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		if err := applyPuzzleStats(ctx, tx, o); err != nil {
			return err
		}
		if o.Username != "" {
			p, err := lockPlayer(ctx, tx, o.Username)
			if err != nil {
				return err
			}
			if err := savePlayer(ctx, tx, stats.ApplyToPlayer(p, o, s.now().UTC())); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// applyPuzzleStats skips puzzles that were deleted after the session started.
func applyPuzzleStats(ctx context.Context, tx pgx.Tx, o stats.Outcome) error {
	if !validUUID(o.PuzzleID) {
		return nil
	}
	var ps puzzle.PlayStats
	err := tx.QueryRow(ctx, `
		SELECT play_count, avg_completion_seconds, avg_mistakes
		FROM puzzles WHERE id = $1
		FOR UPDATE
	`, o.PuzzleID).Scan(&ps.PlayCount, &ps.AvgCompletionSeconds, &ps.AvgMistakes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	ps = stats.ApplyToPuzzle(ps, o)
	_, err = tx.Exec(ctx, `
		UPDATE puzzles
		SET play_count = $2, avg_completion_seconds = $3, avg_mistakes = $4
		WHERE id = $1
	`, o.PuzzleID, ps.PlayCount, ps.AvgCompletionSeconds, ps.AvgMistakes)
	return err
}

// lockPlayer makes sure the row exists and locks it for the rest of the transaction.
func lockPlayer(ctx context.Context, tx pgx.Tx, username string) (stats.PlayerStats, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO player_stats (username) VALUES ($1)
		ON CONFLICT (username) DO NOTHING
	`, username)
	if err != nil {
		return stats.PlayerStats{}, err
	}
	row := tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM player_stats WHERE username = $1 FOR UPDATE`, username)
	return scanPlayer(row)
}

func savePlayer(ctx context.Context, tx pgx.Tx, p stats.PlayerStats) error {
	_, err := tx.Exec(ctx, `
		UPDATE player_stats
		SET games_played = $2,
		    wins = $3,
		    perfect_games = $4,
		    current_streak = $5,
		    best_streak = $6,
		    avg_completion_seconds = $7,
		    avg_mistakes = $8,
		    updated_at = $9
		WHERE username = $1
	`, p.Username, p.GamesPlayed, p.Wins, p.PerfectGames, p.CurrentStreak, p.BestStreak,
		p.AvgCompletionSeconds, p.AvgMistakes, p.UpdatedAt)
	return err
}

func (s *StatsStore) Player(ctx context.Context, username string) (stats.PlayerStats, error) {
	row := s.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM player_stats WHERE username = $1`, username)
	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats.PlayerStats{}, stats.ErrPlayerNotFound
	}
	return p, err
}

func (s *StatsStore) Leaderboard(ctx context.Context, limit int) ([]stats.PlayerStats, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM player_stats
		ORDER BY wins DESC, username
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []stats.PlayerStats{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *StatsStore) Sync(ctx context.Context, in stats.LocalStats) (stats.PlayerStats, error) {
	var out stats.PlayerStats
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		p, err := lockPlayer(ctx, tx, in.Username)
		if err != nil {
			return err
		}
		out = stats.Merge(p, in, s.now().UTC())
		return savePlayer(ctx, tx, out)
	})
	if err != nil {
		return stats.PlayerStats{}, err
	}
	return out, nil
}

func (s *StatsStore) CountPlayers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM player_stats`).Scan(&n)
	return n, err
}

func scanPlayer(row pgx.Row) (stats.PlayerStats, error) {
	var p stats.PlayerStats
	err := row.Scan(&p.Username, &p.GamesPlayed, &p.Wins, &p.PerfectGames, &p.CurrentStreak,
		&p.BestStreak, &p.AvgCompletionSeconds, &p.AvgMistakes, &p.UpdatedAt)
	return p, err
}
