package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/SlotSync/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	dbURL := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", "slotsync"),
		env.GetEnv("DB_PASSWORD", "slotsync"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "slotsync"),
	)
	source := "file://" + env.GetEnv("MIGRATIONS_PATH", "migrations")

	log.Infof("[Migrate] connecting to %s@%s:%s/%s",
		env.GetEnv("DB_USER", "slotsync"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "slotsync"),
	)

	m, err := migrate.New(source, dbURL)
	if err != nil {
		log.Fatalf("[Migrate] init failed: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Errorf("[Migrate] close failed: %v, %v", sourceErr, dbErr)
		}
	}()

	if err := run(m, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("[Migrate] %s: %v", os.Args[1], err)
	}
}

func run(m *migrate.Migrate, command string, args []string) error {
	switch command {
	case "up":
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("[Migrate] no change, schema is up to date")
			return nil
		}
		if err == nil {
			log.Info("[Migrate] all migrations applied")
		}
		return err

	case "down":
		if err := m.Steps(-1); err != nil {
			return err
		}
		log.Info("[Migrate] rolled back one migration")
		return nil

	case "goto":
		if len(args) < 1 {
			return errors.New("missing version")
		}
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version: %w", err)
		}
		err = m.Migrate(uint(version))
		if errors.Is(err, migrate.ErrNoChange) {
			log.Infof("[Migrate] already at version %d", version)
			return nil
		}
		if err == nil {
			log.Infof("[Migrate] migrated to version %d", version)
		}
		return err

	case "status":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("[Migrate] no migrations applied yet")
			return nil
		}
		if err != nil {
			return err
		}
		dirtyStatus := ""
		if dirty {
			dirtyStatus = " (dirty)"
		}
		log.Infof("[Migrate] current version: %d%s", version, dirtyStatus)
		return nil

	default:
		printUsage()
		os.Exit(1)
		return nil
	}
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/migrate [command]")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - print the current version")
}
