package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"example.com/wordlink/internal/puzzle"
	"example.com/wordlink/internal/stats"
)

// SessionCounter reports how many game sessions exist and how many have finished.
type SessionCounter interface {
	Counts(ctx context.Context) (total, completed int, err error)
}

type AdminHandler struct {
	Puzzles  *puzzle.Service
	Stats    *stats.Updater
	Sessions SessionCounter
	Log      *slog.Logger
}

type GenerateRequest struct {
	TargetDifficulty string `json:"targetDifficulty,omitempty"`
}

type GenerateResponse struct {
	Puzzle         puzzle.Puzzle `json:"puzzle"`
	RemainingQuota int           `json:"remainingQuota"`
}

type SetDailyRequest struct {
	Date     string `json:"date"`
	PuzzleID string `json:"puzzleId"`
}

type Overview struct {
	TotalPuzzles    int                `json:"totalPuzzles"`
	ApprovedPuzzles int                `json:"approvedPuzzles"`
	PendingPuzzles  int                `json:"pendingPuzzles"`
	TotalGames      int                `json:"totalGames"`
	CompletedGames  int                `json:"completedGames"`
	TotalPlayers    int                `json:"totalPlayers"`
	Quota           puzzle.QuotaStatus `json:"quota"`
}

func (h *AdminHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	var target puzzle.Difficulty
	if s := strings.TrimSpace(req.TargetDifficulty); s != "" {
		d, ok := puzzle.ParseDifficulty(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", "targetDifficulty must be easy|medium|tricky|hard")
			return
		}
		target = d
	}

	p, quota, err := h.Puzzles.Generate(r.Context(), target)
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Puzzle: p, RemainingQuota: quota.Remaining})
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	approvedOnly := r.URL.Query().Get("approved") == "true"
	list, err := h.Puzzles.List(r.Context(), approvedOnly)
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	p, err := h.Puzzles.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.Puzzles.Reject(r.Context(), r.PathValue("id")); err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "puzzle rejected and deleted"})
}

func (h *AdminHandler) SetDaily(w http.ResponseWriter, r *http.Request) {
	var req SetDailyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" || req.PuzzleID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "date and puzzleId are required")
		return
	}
	if err := h.Puzzles.SetDaily(r.Context(), req.Date, req.PuzzleID); err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		o   Overview
		err error
	)
	if o.TotalPuzzles, o.ApprovedPuzzles, err = h.Puzzles.Counts(ctx); err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	o.PendingPuzzles = o.TotalPuzzles - o.ApprovedPuzzles
	if o.TotalGames, o.CompletedGames, err = h.Sessions.Counts(ctx); err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	if o.TotalPlayers, err = h.Stats.CountPlayers(ctx); err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	if o.Quota, err = h.Puzzles.QuotaStatus(ctx); err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	logs, err := h.Puzzles.Logs(r.Context(), limit)
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	if logs == nil {
		logs = []puzzle.LogEntry{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *AdminHandler) Quota(w http.ResponseWriter, r *http.Request) {
	st, err := h.Puzzles.QuotaStatus(r.Context())
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
