package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"example.com/wordlink/internal/game"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionStore implements game.SessionStore. Update is a conditional write on version.
type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, sess game.Session) error {
	found, err := json.Marshal(sess.FoundGroups)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO game_sessions (
			id, puzzle_id, username, started_at, found_groups, mistakes_remaining,
			attempts, state, completed_at, time_taken_seconds, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, sess.ID, sess.PuzzleID, sess.Username, sess.StartedAt, found, sess.MistakesRemaining,
		sess.Attempts, string(sess.State), sess.CompletedAt, sess.TimeTakenSeconds, sess.Version)
	return err
}

func (s *SessionStore) Get(ctx context.Context, id string) (game.Session, error) {
	if !validUUID(id) {
		return game.Session{}, game.ErrSessionNotFound
	}

	var (
		sess  game.Session
		found []byte
		state string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, puzzle_id, username, started_at, found_groups, mistakes_remaining,
		       attempts, state, completed_at, time_taken_seconds, version
		FROM game_sessions
		WHERE id = $1
	`, id).Scan(&sess.ID, &sess.PuzzleID, &sess.Username, &sess.StartedAt, &found, &sess.MistakesRemaining,
		&sess.Attempts, &state, &sess.CompletedAt, &sess.TimeTakenSeconds, &sess.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.Session{}, game.ErrSessionNotFound
	}
	if err != nil {
		return game.Session{}, err
	}
	if err := json.Unmarshal(found, &sess.FoundGroups); err != nil {
		return game.Session{}, fmt.Errorf("decode found groups of session %s: %w", id, err)
	}
	sess.State = game.State(state)
	return sess, nil
}

func (s *SessionStore) Update(ctx context.Context, sess game.Session, prevVersion int64) error {
	found, err := json.Marshal(sess.FoundGroups)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE game_sessions
		SET found_groups = $3,
		    mistakes_remaining = $4,
		    attempts = $5,
		    state = $6,
		    completed_at = $7,
		    time_taken_seconds = $8,
		    version = $9
		WHERE id = $1 AND version = $2
	`, sess.ID, prevVersion, found, sess.MistakesRemaining, sess.Attempts, string(sess.State),
		sess.CompletedAt, sess.TimeTakenSeconds, sess.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// distinguish a lost race from a missing row
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM game_sessions WHERE id = $1)`, sess.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return game.ErrSessionNotFound
	}
	return game.ErrConcurrentUpdate
}

func (s *SessionStore) Counts(ctx context.Context) (total, completed int, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE state <> 'in_progress') FROM game_sessions
	`).Scan(&total, &completed)
	return total, completed, err
}
