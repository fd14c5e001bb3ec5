package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example.com/wordlink/internal/auth"
	"example.com/wordlink/internal/game"
	"example.com/wordlink/internal/puzzle"
	"example.com/wordlink/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "let-me-in"

type testAPI struct {
	h       http.Handler
	puzzles *puzzle.Service
	stats   *stats.Updater
}

func newTestAPI(t *testing.T, quotaLimit int) *testAPI {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	admins := auth.NewAdminService([]byte("test-secret"), string(hash), time.Hour, nil)

	ps := puzzle.NewMemoryStore()
	puzzles := puzzle.NewService(ps, ps, ps, &puzzle.SampleGenerator{}, puzzle.NewMemoryQuota(quotaLimit, time.Now), nil)
	st := stats.NewUpdater(stats.NewMemoryStore(ps), nil)

	mux := http.NewServeMux()
	Routes{
		Auth:    &AuthHandler{Admins: admins},
		Puzzles: &PuzzleHandler{Puzzles: puzzles},
		Stats:   &StatsHandler{Stats: st},
		Admin:   &AdminHandler{Puzzles: puzzles, Stats: st, Sessions: game.NewInMemorySessionStore()},
		Admins:  admins,
	}.Register(mux)

	return &testAPI{h: Handler(mux, nil), puzzles: puzzles, stats: st}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/admin/login", "", LoginRequest{Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	return resp.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	assert.Equal(t, code, decodeBody[ErrorResponse](t, rec).Code)
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t, 1)
	rec := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestPublicPuzzles(t *testing.T) {
	a := newTestAPI(t, 1)

	requireErrorCode(t, a.do(t, http.MethodGet, "/api/puzzles/daily", "", nil), http.StatusNotFound, "no_approved_puzzles")
	requireErrorCode(t, a.do(t, http.MethodGet, "/api/puzzles/random", "", nil), http.StatusNotFound, "no_approved_puzzles")

	p, err := a.puzzles.Admit(context.Background(), puzzle.SampleDrafts()[1], true)
	require.NoError(t, err)

	for _, path := range []string{"/api/puzzles/daily", "/api/puzzles/random"} {
		rec := a.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		raw := decodeBody[map[string]json.RawMessage](t, rec)
		assert.NotContains(t, raw, "categories")
		got := decodeBody[PublicPuzzle](t, rec)
		assert.Equal(t, p.ID, got.ID)
		assert.Len(t, got.Words, puzzle.WordCount)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	a := newTestAPI(t, 1)

	cases := []struct {
		method, path, token string
	}{
		{http.MethodPost, "/api/admin/puzzles/generate", ""},
		{http.MethodGet, "/api/admin/puzzles", "not-a-token"},
		{http.MethodGet, "/api/admin/stats", ""},
		{http.MethodPost, "/api/admin/logout", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			requireErrorCode(t, a.do(t, tc.method, tc.path, tc.token, nil), http.StatusUnauthorized, "unauthorized")
		})
	}

	requireErrorCode(t, a.do(t, http.MethodPost, "/api/admin/login", "", LoginRequest{Password: "nope"}), http.StatusUnauthorized, "invalid_password")
	requireErrorCode(t, a.do(t, http.MethodPost, "/api/admin/login", "", LoginRequest{}), http.StatusBadRequest, "bad_request")
}

func TestAdminPuzzleLifecycle(t *testing.T) {
	a := newTestAPI(t, 2)
	token := a.login(t)

	rec := a.do(t, http.MethodPost, "/api/admin/puzzles/generate", token, GenerateRequest{TargetDifficulty: "hard"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gen := decodeBody[GenerateResponse](t, rec)
	assert.Equal(t, 1, gen.RemainingQuota)
	assert.False(t, gen.Puzzle.Approved)
	assert.Equal(t, puzzle.DifficultyHard, gen.Puzzle.Difficulty)
	id := gen.Puzzle.ID

	// daily puzzle must be approved first
	requireErrorCode(t, a.do(t, http.MethodPost, "/api/admin/daily", token, SetDailyRequest{Date: "2025-03-01", PuzzleID: id}),
		http.StatusBadRequest, "puzzle_not_approved")

	rec = a.do(t, http.MethodPost, "/api/admin/puzzles/"+id+"/approve", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[puzzle.Puzzle](t, rec).Approved)

	requireErrorCode(t, a.do(t, http.MethodPost, "/api/admin/daily", token, SetDailyRequest{Date: "03/01/2025", PuzzleID: id}),
		http.StatusBadRequest, "bad_date")
	rec = a.do(t, http.MethodPost, "/api/admin/daily", token, SetDailyRequest{Date: time.Now().UTC().Format(time.DateOnly), PuzzleID: id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/puzzles/daily", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeBody[PublicPuzzle](t, rec).ID)

	rec = a.do(t, http.MethodGet, "/api/admin/puzzles", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]puzzle.Puzzle](t, rec), 1)

	rec = a.do(t, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	o := decodeBody[Overview](t, rec)
	assert.Equal(t, 1, o.TotalPuzzles)
	assert.Equal(t, 1, o.ApprovedPuzzles)
	assert.Zero(t, o.PendingPuzzles)
	assert.Equal(t, 1, o.Quota.Remaining)

	rec = a.do(t, http.MethodDelete, "/api/admin/puzzles/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	requireErrorCode(t, a.do(t, http.MethodDelete, "/api/admin/puzzles/"+id, token, nil), http.StatusNotFound, "puzzle_not_found")

	rec = a.do(t, http.MethodGet, "/api/admin/logs?limit=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var actions []string
	for _, e := range decodeBody[[]puzzle.LogEntry](t, rec) {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{"reject", "set_daily", "approve", "generate"}, actions)
}

func TestAdminGenerateQuota(t *testing.T) {
	a := newTestAPI(t, 1)
	token := a.login(t)

	requireErrorCode(t, a.do(t, http.MethodPost, "/api/admin/puzzles/generate", token, GenerateRequest{TargetDifficulty: "impossible"}),
		http.StatusBadRequest, "bad_request")

	rec := a.do(t, http.MethodPost, "/api/admin/puzzles/generate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Zero(t, decodeBody[GenerateResponse](t, rec).RemainingQuota)

	requireErrorCode(t, a.do(t, http.MethodPost, "/api/admin/puzzles/generate", token, nil), http.StatusTooManyRequests, "quota_exhausted")

	rec = a.do(t, http.MethodGet, "/api/admin/quota", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decodeBody[puzzle.QuotaStatus](t, rec)
	assert.Equal(t, 1, q.Limit)
	assert.Zero(t, q.Remaining)
	assert.True(t, q.ResetsAt.After(time.Now()))
}

func TestAdminLogoutRevokesToken(t *testing.T) {
	a := newTestAPI(t, 1)
	token := a.login(t)

	rec := a.do(t, http.MethodPost, "/api/admin/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	requireErrorCode(t, a.do(t, http.MethodGet, "/api/admin/quota", token, nil), http.StatusUnauthorized, "unauthorized")
}

func TestStatsEndpoints(t *testing.T) {
	a := newTestAPI(t, 1)
	avg := 75.0

	for _, in := range []stats.LocalStats{
		{Username: "alice", TotalGames: 5, TotalWins: 4, BestStreak: 3, AvgTimeSeconds: &avg},
		{Username: "bob", TotalGames: 9, TotalWins: 6},
	} {
		rec := a.do(t, http.MethodPost, "/api/stats/sync", "", in)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := a.do(t, http.MethodGet, "/api/stats/users/alice", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	alice := decodeBody[stats.PlayerStats](t, rec)
	assert.Equal(t, 4, alice.Wins)
	assert.InDelta(t, 75.0, alice.AvgCompletionSeconds, 1e-9)

	rec = a.do(t, http.MethodGet, "/api/stats/leaderboard?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decodeBody[[]stats.PlayerStats](t, rec)
	require.Len(t, board, 1)
	assert.Equal(t, "bob", board[0].Username)

	requireErrorCode(t, a.do(t, http.MethodGet, "/api/stats/users/carol", "", nil), http.StatusNotFound, "stats_not_found")
	requireErrorCode(t, a.do(t, http.MethodGet, "/api/stats/leaderboard?limit=ten", "", nil), http.StatusBadRequest, "bad_request")
	requireErrorCode(t, a.do(t, http.MethodPost, "/api/stats/sync", "", stats.LocalStats{Username: "  "}), http.StatusBadRequest, "bad_username")
	requireErrorCode(t, a.do(t, http.MethodPost, "/api/stats/sync", "", stats.LocalStats{Username: "dan", TotalGames: -1}), http.StatusBadRequest, "bad_request")
}
