package httpapi

import (
	"log/slog"
	"net/http"

	"example.com/wordlink/internal/puzzle"
)

type PuzzleHandler struct {
	Puzzles *puzzle.Service
	Log     *slog.Logger
}

// PublicPuzzle is what players see before starting a session: no groups.
type PublicPuzzle struct {
	ID         string            `json:"id"`
	Words      []string          `json:"words"`
	Difficulty puzzle.Difficulty `json:"difficulty"`
}

func publicPuzzle(p puzzle.Puzzle) PublicPuzzle {
	return PublicPuzzle{ID: p.ID, Words: p.Words, Difficulty: p.Difficulty}
}

func (h *PuzzleHandler) Daily(w http.ResponseWriter, r *http.Request) {
	p, err := h.Puzzles.Daily(r.Context())
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicPuzzle(p))
}

func (h *PuzzleHandler) Random(w http.ResponseWriter, r *http.Request) {
	p, err := h.Puzzles.Random(r.Context())
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicPuzzle(p))
}
