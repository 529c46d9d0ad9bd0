package persistence

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"morningbrief/internal/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// MigrationStatus represents the status of a migration
type MigrationStatus struct {
	Version     uint
	Description string
	Applied     bool
}

// MigrationManager applies the embedded schema migrations
type MigrationManager struct {
	store *SQLStore
	log   *slog.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(store *SQLStore) *MigrationManager {
	return &MigrationManager{store: store, log: logger.Get()}
}

func (m *MigrationManager) dir() string {
	if m.store.Dialect() == DialectPostgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// instance builds a migrate runner over the store's pool. The runner is not
// closed because closing it would close the shared pool.
func (m *MigrationManager) instance() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFS, m.dir())
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source: %w", err)
	}

	var driver database.Driver
	switch m.store.Dialect() {
	case DialectPostgres:
		driver, err = pgmigrate.WithInstance(m.store.DB(), &pgmigrate.Config{})
	default:
		driver, err = sqlitemigrate.WithInstance(m.store.DB(), &sqlitemigrate.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", m.store.Dialect(), err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, string(m.store.Dialect()), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mg, nil
}

// Migrate runs all pending migrations
func (m *MigrationManager) Migrate(ctx context.Context) error {
	m.log.Info("Starting database migration", "dialect", m.store.Dialect())

	mg, err := m.instance()
	if err != nil {
		return err
	}

	if err := mg.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info("No pending migrations")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, err := mg.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	m.log.Info("Migration completed successfully", "version", version)
	return nil
}

// Status lists every embedded migration and whether it has been applied
func (m *MigrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	mg, err := m.instance()
	if err != nil {
		return nil, err
	}

	current, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return nil, fmt.Errorf("database is dirty at version %d; fix it manually and force the version", current)
	}

	available, err := m.available()
	if err != nil {
		return nil, err
	}
	for i := range available {
		available[i].Applied = available[i].Version <= current
	}
	return available, nil
}

// Rollback reverts the last applied migration
func (m *MigrationManager) Rollback(ctx context.Context) error {
	mg, err := m.instance()
	if err != nil {
		return err
	}

	version, _, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("no migrations to rollback")
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	m.log.Warn("Rolling back migration", "version", version)
	if err := mg.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration %d: %w", version, err)
	}
	return nil
}

// available parses the up files, e.g. "000001_initial_schema.up.sql"
func (m *MigrationManager) available() ([]MigrationStatus, error) {
	entries, err := fs.ReadDir(migrationFS, m.dir())
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []MigrationStatus
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(name, ".up.sql"), "_", 2)
		if len(parts) < 2 {
			m.log.Warn("Skipping migration file with invalid format", "file", name)
			continue
		}
		version, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			m.log.Warn("Skipping migration file with invalid version", "file", name)
			continue
		}
		migrations = append(migrations, MigrationStatus{
			Version:     uint(version),
			Description: strings.ReplaceAll(parts[1], "_", " "),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}
