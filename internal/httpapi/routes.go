package httpapi

import (
	"log/slog"
	"net/http"
)

// Routes holds the handlers of the public puzzle, stats and admin APIs.
type Routes struct {
	Auth    *AuthHandler
	Puzzles *PuzzleHandler
	Stats   *StatsHandler
	Admin   *AdminHandler
	Admins  TokenAuthenticator
}

func (rt Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/puzzles/daily", rt.Puzzles.Daily)
	mux.HandleFunc("GET /api/puzzles/random", rt.Puzzles.Random)

	mux.HandleFunc("GET /api/stats/users/{username}", rt.Stats.User)
	mux.HandleFunc("GET /api/stats/leaderboard", rt.Stats.Leaderboard)
	mux.HandleFunc("POST /api/stats/sync", rt.Stats.Sync)

	mux.HandleFunc("POST /api/admin/login", rt.Auth.Login)

	admin := AdminMiddleware(rt.Admins)
	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, admin(h))
	}
	protect("POST /api/admin/logout", rt.Auth.Logout)
	protect("POST /api/admin/puzzles/generate", rt.Admin.Generate)
	protect("GET /api/admin/puzzles", rt.Admin.List)
	protect("POST /api/admin/puzzles/{id}/approve", rt.Admin.Approve)
	protect("DELETE /api/admin/puzzles/{id}", rt.Admin.Reject)
	protect("POST /api/admin/daily", rt.Admin.SetDaily)
	protect("GET /api/admin/stats", rt.Admin.Overview)
	protect("GET /api/admin/logs", rt.Admin.Logs)
	protect("GET /api/admin/quota", rt.Admin.Quota)
}

// Handler wraps mux with request logging.
func Handler(mux *http.ServeMux, log *slog.Logger) http.Handler {
	return LogRequests(log)(mux)
}
