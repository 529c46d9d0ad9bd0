// Package persistence stores the user settings and the generated briefings
package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"morningbrief/internal/config"
	"morningbrief/internal/core"
)

var (
	// ErrNotFound is returned when a requested briefing does not exist
	ErrNotFound = errors.New("not found")
	// ErrBriefingExists is returned when a briefing already exists for the report date
	ErrBriefingExists = errors.New("briefing already exists for report date")
)

// Store is the persistence boundary of the application
type Store interface {
	// GetSettings returns the singleton settings row, or defaults when none was saved
	GetSettings(ctx context.Context) (*core.Settings, error)

	// SaveSettings merges a partial update into the settings row
	SaveSettings(ctx context.Context, update core.SettingsUpdate) (*core.Settings, error)

	// HasBriefingOn reports whether a briefing exists for the report date
	HasBriefingOn(ctx context.Context, date core.Date) (bool, error)

	// GetLatestBriefing returns the briefing with the most recent report date
	GetLatestBriefing(ctx context.Context) (*core.Briefing, error)

	// GetBriefingHistory returns up to limit briefings, newest first
	GetBriefingHistory(ctx context.Context, limit int) ([]core.Briefing, error)

	// GetBriefingByID retrieves a briefing by ID
	GetBriefingByID(ctx context.Context, id string) (*core.Briefing, error)

	// SaveBriefing inserts a briefing. It never overwrites.
	SaveBriefing(ctx context.Context, b *core.Briefing) error

	// DeleteAllBriefings removes every briefing and returns the count
	DeleteAllBriefings(ctx context.Context) (int, error)

	// DeleteBriefingsSince removes briefings whose report date is on or after date
	DeleteBriefingsSince(ctx context.Context, date core.Date) (int, error)

	// Ping verifies the database connection
	Ping(ctx context.Context) error

	// Close closes the database connection
	Close() error
}

// Defaults are the settings values used before the user saves any
type Defaults struct {
	LogisticsCost float64
	TaxRate       float64
}

// DefaultsFromConfig reads the farm defaults
func DefaultsFromConfig(farm config.Farm) Defaults {
	return Defaults{LogisticsCost: farm.DefaultLogisticsCost, TaxRate: farm.DefaultTaxRate}
}

// Open creates the store selected by the database configuration
func Open(ctx context.Context, cfg config.Database, defaults Defaults) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgresStore(ctx, cfg.ConnectionString, defaults)
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return NewSQLiteStore(ctx, cfg.SQLitePath, defaults)
	case "memory":
		return NewMemoryStore(defaults), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}
