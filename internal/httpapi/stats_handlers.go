package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"example.com/wordlink/internal/stats"
)

type StatsHandler struct {
	Stats *stats.Updater
	Log   *slog.Logger
}

func (h *StatsHandler) User(w http.ResponseWriter, r *http.Request) {
	st, err := h.Stats.Player(r.Context(), r.PathValue("username"))
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	board, err := h.Stats.Leaderboard(r.Context(), limit)
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *StatsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var in stats.LocalStats
	if !decodeJSON(w, r, &in) {
		return
	}
	st, err := h.Stats.Sync(r.Context(), in)
	if err != nil {
		writeErr(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// queryInt returns 0 when the parameter is absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", name+" must be an integer")
		return 0, false
	}
	return n, true
}
