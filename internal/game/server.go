package game

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"example.com/wordlink/internal/apperr"
	"github.com/google/uuid"
)

// Server is the HTTP and WebSocket transport of the game service.
type Server struct {
	log   *slog.Logger
	games *Service
}

func NewServer(games *Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, games: games}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/game/start", s.handleStart)
	mux.HandleFunc("POST /api/game/guess", s.handleGuess)
	mux.HandleFunc("GET /api/game/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /ws/sessions/{id}", s.handleWS)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	req.PuzzleID = strings.TrimSpace(req.PuzzleID)
	if req.PuzzleID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "puzzleId is required")
		return
	}

	sess, p, err := s.games.StartSession(r.Context(), req.PuzzleID, req.Username)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StartResponse{
		SessionID: sess.ID,
		Puzzle: PuzzleView{
			ID:         p.ID,
			Words:      p.Words,
			Categories: p.Categories,
			Difficulty: p.Difficulty,
		},
	})
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	id, ok := parseSessionID(req.SessionID)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid sessionId")
		return
	}

	out, err := s.games.SubmitGuess(r.Context(), id, req.SelectedWords)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid session id")
		return
	}

	sess, err := s.games.GetSession(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := apperr.Public(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("game request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeError(w, status, code, msg)
}

// parseSessionID accepts any UUID spelling and returns the canonical form used as the store key.
func parseSessionID(raw string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, ErrorPayload{Code: errCode, Message: msg})
}
