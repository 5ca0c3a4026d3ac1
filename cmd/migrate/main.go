package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"libro/internal/config"
	"libro/internal/platform/logger"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, version, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	_ = logger.Initialize("info", false)
	defer logger.Sync()
	log := logger.Named("migrate")

	s := loadSettings()
	if *command == "create" {
		if err := create(s.MigrationsDir, *name); err != nil {
			log.Fatalw("create migration failed", "error", err)
		}
		log.Infow("migration created", "name", *name, "dir", s.MigrationsDir)
		return
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, s.DSN)
	if err != nil {
		log.Fatalw("failed to connect to database", "dsn", config.RedactDSN(s.DSN), "error", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := run(ctx, db, *command, s.MigrationsDir); err != nil {
		log.Fatalw("migration failed", "command", *command, "error", err)
	}
	log.Infow("migration command finished", "command", *command)
}

func create(dir, name string) error {
	if name == "" {
		return fmt.Errorf("name is required for 'create' command")
	}
	return goose.Create(nil, dir, name, "sql")
}

func run(ctx context.Context, db *sql.DB, command, dir string) error {
	goose.SetBaseFS(os.DirFS(dir))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db, ".")
	case "down":
		return goose.DownContext(ctx, db, ".")
	case "status":
		return goose.StatusContext(ctx, db, ".")
	case "version":
		return goose.VersionContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown command %q, use: up, down, status, version, create", command)
	}
}
