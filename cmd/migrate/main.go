package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"wavespace/internal/config"
	"wavespace/internal/logger"
)

const migrationsDir = "db/migrations"

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down [steps] | create NAME")
	os.Exit(2)
}

func main() {
	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()
	if dotenvErr != nil {
		log.Warn("failed to load .env", zap.Error(dotenvErr))
	}

	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "up":
		m := open(cfg, log)
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("database migration failed", zap.Error(err))
		}
		log.Info("database migrations applied")
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			n, err := strconv.Atoi(os.Args[2])
			if err != nil || n <= 0 {
				usage()
			}
			steps = n
		}
		m := open(cfg, log)
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("database rollback failed", zap.Error(err))
		}
		log.Info("database migrations rolled back", zap.Int("steps", steps))
	case "create":
		if len(os.Args) < 3 {
			usage()
		}
		upPath, downPath, err := create(os.Args[2], time.Now().UTC())
		if err != nil {
			log.Fatal("create migration failed", zap.Error(err))
		}
		log.Info("migration created", zap.String("up", upPath), zap.String("down", downPath))
	default:
		usage()
	}
}

func open(cfg config.Config, log *zap.Logger) *migrate.Migrate {
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	m, err := migrate.New("file://"+migrationsDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("migration setup failed", zap.Error(err))
	}
	return m
}

func create(name string, now time.Time) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", errors.New("migration name is required")
	}
	if strings.ContainsAny(name, " /\\") {
		return "", "", errors.New("migration name must not contain spaces or slashes")
	}
	base := fmt.Sprintf("%s_%s", now.Format("20060102150405"), name)
	upPath := filepath.Join(migrationsDir, base+".up.sql")
	downPath := filepath.Join(migrationsDir, base+".down.sql")
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create migrations dir: %w", err)
	}
	if err := writeFile(upPath, "-- up migration\n"); err != nil {
		return "", "", err
	}
	if err := writeFile(downPath, "-- down migration\n"); err != nil {
		return "", "", err
	}
	return upPath, downPath, nil
}

func writeFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
