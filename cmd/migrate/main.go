// Command migrate applies or rolls back the PostgreSQL schema used by the
// postgres store backend.
package main

import (
	"fmt"
	"os"

	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/database"
	"github.com/lambdaless-api/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		direction string
		path      string
	)
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&direction, "direction", "up", "up applies pending migrations, down rolls back one step")
	flagSet.StringVar(&path, "path", "", "migrations directory (default: MIGRATIONS_PATH)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Store.Backend != config.BackendPostgres {
		return fmt.Errorf("STORE_BACKEND is %q; migrations only apply to postgres", cfg.Store.Backend)
	}
	if path == "" {
		path = cfg.Store.MigrationsPath
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	switch direction {
	case "up":
		return db.RunMigrations(path)
	case "down":
		return db.MigrateDown(path)
	default:
		return fmt.Errorf("unknown direction %q (want up or down)", direction)
	}
}
