package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Up applies all pending migrations.
func Up(ctx context.Context, dbURL, dir string, log *slog.Logger) error {
	return Run(ctx, dbURL, dir, "up", log)
}

// Run executes a goose command (up, down, status, version, redo, reset) against dbURL.
//
// It returns an error (no log.Fatal) so the caller can decide how to handle it.
func Run(ctx context.Context, dbURL, dir, command string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("migrations: open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("database close error", "err", err)
		}
	}()

	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}

	log.Info("running database migrations", "command", command, "dir", dir)
	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return fmt.Errorf("migrations: goose %s: %w", command, err)
	}
	log.Info("database migrations done", "command", command)
	return nil
}

// gooseLogger routes goose progress lines into slog.
type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
	os.Exit(1)
}
