package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"

	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

const sourceDir = "postgres"

func main() {
	var (
		dryRun  = flag.Bool("dry-run", false, "Print migration SQL without executing it")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if *dryRun {
		if err := printUpMigrations(); err != nil {
			log.Fatalf("Failed to read migrations: %v", err)
		}
		return
	}

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	source, err := iofs.New(migrations.Postgres, sourceDir)
	if err != nil {
		logger.Fatalw("Failed to create migration source", "error", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host, "database", cfg.Postgres.DBName)
	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.Postgres.GetURL())
	if err != nil {
		logger.Fatalw("Failed to create migrator", "error", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			logger.Fatalw("Failed to get version", "error", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			logger.Fatalw("Failed to force version", "version", *force, "error", err)
		}
		logger.Infow("Forced migration version", "version", *force)
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatalw("Failed to run down migrations", "error", err)
		}
		logger.Info("Migrations reverted successfully")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatalw("Failed to run migration steps", "steps", *steps, "error", err)
		}
		logger.Infow("Applied migration steps", "steps", *steps)
	case *up:
		fallthrough
	default:
		logger.Info("Running database migrations...")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatalw("Failed to run up migrations", "error", err)
		}
		logger.Info("Migration completed successfully")
	}
}

func printUpMigrations() error {
	files, err := fs.Glob(migrations.Postgres, sourceDir+"/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, name := range files {
		data, err := fs.ReadFile(migrations.Postgres, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "-- %s\n%s\n", name, data)
	}
	return nil
}
