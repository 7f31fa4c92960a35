package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
)

func main() {
	migrationsDir := flag.String("dir", "migrations", "Directory holding the SQL migration files")
	status := flag.Bool("status", false, "List applied migrations and exit")
	wait := flag.Duration("wait", 30*time.Second, "How long to wait for PostgreSQL to accept connections")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.DBDriver == "postgres" {
		raw, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open database")
		}
		defer raw.Close()

		if err := waitForPostgres(raw, *wait); err != nil {
			logging.Fatal().Err(err).Msg("Database not reachable")
		}
		if *status {
			if err := printStatus(raw); err != nil {
				logging.Fatal().Err(err).Msg("Failed to read migration status")
			}
			return
		}
	} else if *status {
		logging.Info().Str("driver", cfg.DBDriver).Msg("SQL migrations are only tracked for postgres")
		return
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.RunMigrations(db, *migrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("Migration failed")
	}
	logging.Info().Msg("All migrations applied successfully")
}

// waitForPostgres pings until the server answers or timeout passes.
func waitForPostgres(db *sql.DB, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := db.PingContext(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("postgres did not become ready within %s: %w", timeout, err)
		}
		logging.Debug().Err(err).Msg("Waiting for postgres")
		time.Sleep(time.Second)
	}
}

func printStatus(db *sql.DB) error {
	rows, err := db.Query(`SELECT name, applied_at FROM migrations ORDER BY name`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var appliedAt time.Time
		if err := rows.Scan(&name, &appliedAt); err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", appliedAt.Format(time.RFC3339), name)
	}
	return rows.Err()
}
