package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"example.com/wordlink/internal/auth"
	"example.com/wordlink/internal/config"
	"example.com/wordlink/internal/game"
	"example.com/wordlink/internal/httpapi"
	"example.com/wordlink/internal/migrate"
	"example.com/wordlink/internal/puzzle"
	"example.com/wordlink/internal/stats"
	"example.com/wordlink/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const devAdminPassword = "admin"

type App struct {
	cfg config.Config
	log *slog.Logger

	db  *pgxpool.Pool
	rdb *redis.Client

	Puzzles  *puzzle.Service
	Stats    *stats.Updater
	Games    *game.Service
	Sessions game.SessionStore

	srv *http.Server
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{cfg: cfg, log: log}

	if err := a.connect(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	// --- Data (puzzles, schedule, audit log, player stats) ---
	var (
		puzzleStore puzzle.Store
		schedule    puzzle.Schedule
		audit       puzzle.AuditLog
		statsStore  stats.Store
		seedMemory  bool
	)
	switch cfg.DataBackend {
	case config.BackendPostgres:
		ps := store.NewPuzzleStore(a.db)
		puzzleStore, schedule, audit = ps, ps, ps
		statsStore = store.NewStatsStore(a.db)
	default:
		ms := puzzle.NewMemoryStore()
		puzzleStore, schedule, audit = ms, ms, ms
		statsStore = stats.NewMemoryStore(ms)
		seedMemory = true
	}

	// --- Sessions ---
	switch cfg.Game.SessionBackend {
	case config.BackendPostgres:
		a.Sessions = store.NewSessionStore(a.db)
	case config.BackendRedis:
		a.Sessions = game.NewRedisSessionStore(a.rdb, cfg.Redis.SessionTTL)
	default:
		a.Sessions = game.NewInMemorySessionStore()
	}

	// --- Generation quota and generator ---
	var quota puzzle.Quota
	switch cfg.Generator.QuotaBackend {
	case config.BackendRedis:
		quota = puzzle.NewRedisQuota(a.rdb, cfg.Generator.DailyLimit)
	default:
		quota = puzzle.NewMemoryQuota(cfg.Generator.DailyLimit, time.Now)
	}

	var gen puzzle.Generator
	if cfg.Generator.URL != "" {
		gen = puzzle.NewHTTPGenerator(puzzle.GeneratorConfig{
			URL:          cfg.Generator.URL,
			APIKey:       cfg.Generator.APIKey,
			APIKeyHeader: cfg.Generator.APIKeyHeader,
			Headers:      cfg.Generator.Headers,
			Model:        cfg.Generator.Model,
			Timeout:      cfg.Generator.Timeout,
		})
	} else {
		log.Warn("GENERATOR_URL not set, generation serves built-in sample puzzles")
		gen = &puzzle.SampleGenerator{}
	}

	// --- Admin auth ---
	hash := cfg.Auth.AdminPasswordHash
	if hash == "" {
		h, err := auth.HashPassword(devAdminPassword)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("hash dev admin password: %w", err)
		}
		hash = h
		log.Warn("ADMIN_PASSWORD_HASH not set, using the dev admin password", "env", cfg.Env)
	}
	admins := auth.NewAdminService([]byte(cfg.Auth.Secret), hash, cfg.Auth.TokenTTL, log)

	// --- Services ---
	a.Puzzles = puzzle.NewService(puzzleStore, schedule, audit, gen, quota, log)
	a.Stats = stats.NewUpdater(statsStore, log)
	a.Games = game.NewService(puzzleStore, a.Sessions, a.Stats, log)

	if seedMemory {
		if err := a.Seed(ctx); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	mux := http.NewServeMux()
	game.NewServer(a.Games, log).RegisterRoutes(mux)
	httpapi.Routes{
		Auth:    &httpapi.AuthHandler{Admins: admins, Log: log},
		Puzzles: &httpapi.PuzzleHandler{Puzzles: a.Puzzles, Log: log},
		Stats:   &httpapi.StatsHandler{Stats: a.Stats, Log: log},
		Admin:   &httpapi.AdminHandler{Puzzles: a.Puzzles, Stats: a.Stats, Sessions: a.Sessions, Log: log},
		Admins:  admins,
	}.Register(mux)

	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.Handler(mux, log),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	return a, nil
}

// connect opens only the backends the configuration asks for.
func (a *App) connect(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if a.cfg.NeedsPostgres() {
		if a.cfg.Postgres.RunMigrations {
			if err := migrate.Up(pingCtx, a.cfg.Postgres.URL, a.cfg.Postgres.MigrationsDir, a.log); err != nil {
				return err
			}
		}
		db, err := pgxpool.New(ctx, a.cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("pgxpool: %w", err)
		}
		a.db = db
		if err := db.Ping(pingCtx); err != nil {
			return fmt.Errorf("postgres ping: %w", err)
		}
	}

	if a.cfg.NeedsRedis() {
		a.rdb = redis.NewClient(&redis.Options{
			Addr: a.cfg.Redis.Addr,
			DB:   a.cfg.Redis.DB,
		})
		if err := a.rdb.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis ping (%s db=%d): %w", a.cfg.Redis.Addr, a.cfg.Redis.DB, err)
		}
	}
	return nil
}

// Seed stores the sample puzzles as approved (only into an empty catalog) and merges the
// sample player records.
func (a *App) Seed(ctx context.Context) error {
	total, _, err := a.Puzzles.Counts(ctx)
	if err != nil {
		return fmt.Errorf("seed: count puzzles: %w", err)
	}
	if total == 0 {
		for _, d := range puzzle.SampleDrafts() {
			if _, err := a.Puzzles.Admit(ctx, d, true); err != nil {
				return fmt.Errorf("seed: puzzle: %w", err)
			}
		}
	}
	for _, p := range stats.SamplePlayers() {
		if _, err := a.Stats.Sync(ctx, p); err != nil {
			return fmt.Errorf("seed: player %s: %w", p.Username, err)
		}
	}
	a.log.Info("sample data seeded", "puzzlesAdded", total == 0)
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting",
		"addr", a.cfg.HTTP.Addr,
		"data", a.cfg.DataBackend,
		"sessions", a.cfg.Game.SessionBackend,
		"quota", a.cfg.Generator.QuotaBackend,
	)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		if err := a.srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("http server shutdown", "err", err)
		}
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(_ context.Context) error {
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return nil
}
