package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"example.com/wordlink/internal/puzzle"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const puzzleColumns = `id, words, categories, difficulty, reasoning, approved,
	play_count, avg_completion_seconds, avg_mistakes, created_at`

// PuzzleStore implements puzzle.Store, puzzle.Schedule and puzzle.AuditLog on Postgres.
type PuzzleStore struct {
	db *pgxpool.Pool
}

func NewPuzzleStore(db *pgxpool.Pool) *PuzzleStore {
	return &PuzzleStore{db: db}
}

func (s *PuzzleStore) Create(ctx context.Context, p puzzle.Puzzle) error {
	words, err := json.Marshal(p.Words)
	if err != nil {
		return err
	}
	cats, err := json.Marshal(p.Categories)
	if err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO puzzles (id, words, categories, difficulty, reasoning, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, words, cats, string(p.Difficulty), p.Reasoning, p.Approved, p.CreatedAt)
	return err
}

func (s *PuzzleStore) Get(ctx context.Context, id string) (puzzle.Puzzle, error) {
	if !validUUID(id) {
		return puzzle.Puzzle{}, puzzle.ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+puzzleColumns+` FROM puzzles WHERE id = $1`, id)
	p, err := scanPuzzle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return puzzle.Puzzle{}, puzzle.ErrNotFound
	}
	return p, err
}

func (s *PuzzleStore) List(ctx context.Context, approvedOnly bool) ([]puzzle.Puzzle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+puzzleColumns+`
		FROM puzzles
		WHERE approved OR NOT $1
		ORDER BY created_at DESC
	`, approvedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []puzzle.Puzzle{}
	for rows.Next() {
		p, err := scanPuzzle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PuzzleStore) SetApproved(ctx context.Context, id string, approved bool) (puzzle.Puzzle, error) {
	if !validUUID(id) {
		return puzzle.Puzzle{}, puzzle.ErrNotFound
	}
	row := s.db.QueryRow(ctx, `
		UPDATE puzzles SET approved = $2 WHERE id = $1
		RETURNING `+puzzleColumns, id, approved)
	p, err := scanPuzzle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return puzzle.Puzzle{}, puzzle.ErrNotFound
	}
	return p, err
}

// Delete removes the puzzle; its sessions and schedule entries go with it.
func (s *PuzzleStore) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return puzzle.ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM puzzles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return puzzle.ErrNotFound
	}
	return nil
}

func (s *PuzzleStore) RandomApproved(ctx context.Context) (puzzle.Puzzle, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+puzzleColumns+`
		FROM puzzles WHERE approved
		ORDER BY random() LIMIT 1
	`)
	p, err := scanPuzzle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return puzzle.Puzzle{}, puzzle.ErrNoneApproved
	}
	return p, err
}

func (s *PuzzleStore) Counts(ctx context.Context) (total, approved int, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE approved) FROM puzzles
	`).Scan(&total, &approved)
	return total, approved, err
}

func (s *PuzzleStore) SetDaily(ctx context.Context, date, puzzleID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO daily_puzzles (date, puzzle_id) VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET puzzle_id = EXCLUDED.puzzle_id
	`, date, puzzleID)
	return err
}

func (s *PuzzleStore) DailyID(ctx context.Context, date string) (string, bool, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT puzzle_id FROM daily_puzzles WHERE date = $1`, date).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *PuzzleStore) Append(ctx context.Context, e puzzle.LogEntry) error {
	var puzzleID any
	if validUUID(e.PuzzleID) {
		puzzleID = e.PuzzleID
	}
	var details any
	if len(e.Details) > 0 {
		details = []byte(e.Details)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO admin_logs (action, puzzle_id, details) VALUES ($1, $2, $3)
	`, e.Action, puzzleID, details)
	return err
}

func (s *PuzzleStore) Recent(ctx context.Context, limit int) ([]puzzle.LogEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, action, puzzle_id, details, created_at
		FROM admin_logs
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []puzzle.LogEntry
	for rows.Next() {
		var (
			e        puzzle.LogEntry
			puzzleID *string
			details  []byte
		)
		if err := rows.Scan(&e.ID, &e.Action, &puzzleID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if puzzleID != nil {
			e.PuzzleID = *puzzleID
		}
		if len(details) > 0 {
			e.Details = json.RawMessage(details)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanPuzzle(row pgx.Row) (puzzle.Puzzle, error) {
	var (
		p                 puzzle.Puzzle
		words, categories []byte
		difficulty        string
	)
	err := row.Scan(
		&p.ID, &words, &categories, &difficulty, &p.Reasoning, &p.Approved,
		&p.Stats.PlayCount, &p.Stats.AvgCompletionSeconds, &p.Stats.AvgMistakes, &p.CreatedAt,
	)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	if err := json.Unmarshal(words, &p.Words); err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("decode words of puzzle %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(categories, &p.Categories); err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("decode categories of puzzle %s: %w", p.ID, err)
	}
	p.Difficulty = puzzle.Difficulty(difficulty)
	return p, nil
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
