package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"morningbrief/internal/config"
	"morningbrief/internal/core"
)

var testDefaults = Defaults{LogisticsCost: 80, TaxRate: 0.05}

func newTestSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "test.db"), testDefaults)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := NewMigrationManager(store).Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return store
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": newTestSQLiteStore(t),
		"memory": NewMemoryStore(testDefaults),
	}
}

func briefingOn(date core.Date) *core.Briefing {
	in, out := 1200, 3400
	return &core.Briefing{
		ID:           uuid.New().String(),
		Title:        "Briefing Diário - " + date.String(),
		Content:      "## ABERTURA PERSONALIZADA\n\nBom dia",
		Summary:      "Bom dia",
		ReportDate:   date,
		ModelID:      "gemini-2.5-flash",
		InputTokens:  &in,
		OutputTokens: &out,
		Sections:     []core.SectionID{core.SectionOpening},
	}
}

func TestSettingsDefaultsAndMerge(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			settings, err := store.GetSettings(ctx)
			if err != nil {
				t.Fatalf("GetSettings failed: %v", err)
			}
			if settings.IsConfigured || settings.ProductionCost != nil {
				t.Errorf("Expected unconfigured defaults, got %+v", settings)
			}
			if settings.LogisticsCost != 80 {
				t.Errorf("Expected default logistics 80, got %v", settings.LogisticsCost)
			}

			tax := 0.1
			if _, err := store.SaveSettings(ctx, core.SettingsUpdate{TaxRate: &tax}); err != nil {
				t.Fatalf("SaveSettings failed: %v", err)
			}
			settings, _ = store.GetSettings(ctx)
			if settings.IsConfigured {
				t.Error("Expected settings without production cost to stay unconfigured")
			}

			production := 1520.0
			saved, err := store.SaveSettings(ctx, core.SettingsUpdate{ProductionCost: &production})
			if err != nil {
				t.Fatalf("SaveSettings failed: %v", err)
			}
			if !saved.IsConfigured || *saved.ProductionCost != 1520 {
				t.Errorf("Expected configured settings, got %+v", saved)
			}

			settings, _ = store.GetSettings(ctx)
			if settings.TaxRate != 0.1 || settings.LogisticsCost != 80 || *settings.ProductionCost != 1520 {
				t.Errorf("Expected merged settings, got %+v", settings)
			}
			farm, err := settings.FarmEconomics()
			if err != nil || farm.TotalCost() != 1600 {
				t.Errorf("Expected total cost 1600, got %v (%v)", farm.TotalCost(), err)
			}
		})
	}
}

func TestBriefingUniquePerDate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			day := core.NewDate(2026, time.January, 12)

			has, err := store.HasBriefingOn(ctx, day)
			if err != nil || has {
				t.Fatalf("Expected no briefing yet, got %v (%v)", has, err)
			}

			if err := store.SaveBriefing(ctx, briefingOn(day)); err != nil {
				t.Fatalf("SaveBriefing failed: %v", err)
			}
			if has, _ := store.HasBriefingOn(ctx, day); !has {
				t.Error("Expected a briefing for the day after saving")
			}
			if has, _ := store.HasBriefingOn(ctx, day.AddDays(1)); has {
				t.Error("Expected the next day to be free")
			}

			err = store.SaveBriefing(ctx, briefingOn(day))
			if !errors.Is(err, ErrBriefingExists) {
				t.Errorf("Expected ErrBriefingExists, got %v", err)
			}
		})
	}
}

func TestBriefingHistoryAndLookup(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := store.GetLatestBriefing(ctx); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound on empty store, got %v", err)
			}

			start := core.NewDate(2026, time.January, 10)
			var ids []string
			for i := 0; i < 3; i++ {
				b := briefingOn(start.AddDays(i))
				if err := store.SaveBriefing(ctx, b); err != nil {
					t.Fatalf("SaveBriefing failed: %v", err)
				}
				ids = append(ids, b.ID)
			}

			history, err := store.GetBriefingHistory(ctx, 2)
			if err != nil {
				t.Fatalf("GetBriefingHistory failed: %v", err)
			}
			if len(history) != 2 {
				t.Fatalf("Expected 2 briefings, got %d", len(history))
			}
			if history[0].ReportDate != start.AddDays(2) || history[1].ReportDate != start.AddDays(1) {
				t.Errorf("Expected newest first, got %s, %s", history[0].ReportDate, history[1].ReportDate)
			}

			latest, err := store.GetLatestBriefing(ctx)
			if err != nil || latest.ID != ids[2] {
				t.Errorf("Expected latest %s, got %v (%v)", ids[2], latest, err)
			}

			got, err := store.GetBriefingByID(ctx, ids[0])
			if err != nil {
				t.Fatalf("GetBriefingByID failed: %v", err)
			}
			if got.Title != "Briefing Diário - 2026-01-10" || got.ModelID != "gemini-2.5-flash" {
				t.Errorf("Unexpected briefing %+v", got)
			}
			if got.InputTokens == nil || *got.InputTokens != 1200 || got.OutputTokens == nil || *got.OutputTokens != 3400 {
				t.Error("Expected token counts to round-trip")
			}
			if len(got.Sections) != 1 || got.Sections[0] != core.SectionOpening {
				t.Errorf("Expected sections to round-trip, got %v", got.Sections)
			}
			if got.CreatedAt.IsZero() {
				t.Error("Expected CreatedAt to be set")
			}

			if _, err := store.GetBriefingByID(ctx, uuid.New().String()); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestBriefingWithoutUsage(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := briefingOn(core.NewDate(2026, time.February, 2))
			b.InputTokens, b.OutputTokens = nil, nil
			if err := store.SaveBriefing(ctx, b); err != nil {
				t.Fatalf("SaveBriefing failed: %v", err)
			}
			got, err := store.GetBriefingByID(ctx, b.ID)
			if err != nil {
				t.Fatalf("GetBriefingByID failed: %v", err)
			}
			if got.InputTokens != nil || got.OutputTokens != nil {
				t.Error("Expected absent usage to stay nil")
			}
		})
	}
}

func TestDeleteBriefings(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			start := core.NewDate(2026, time.January, 10)
			for i := 0; i < 4; i++ {
				if err := store.SaveBriefing(ctx, briefingOn(start.AddDays(i))); err != nil {
					t.Fatalf("SaveBriefing failed: %v", err)
				}
			}

			n, err := store.DeleteBriefingsSince(ctx, start.AddDays(2))
			if err != nil || n != 2 {
				t.Errorf("Expected 2 deleted, got %d (%v)", n, err)
			}
			if has, _ := store.HasBriefingOn(ctx, start.AddDays(2)); has {
				t.Error("Expected deleted day to be free again")
			}
			if has, _ := store.HasBriefingOn(ctx, start.AddDays(1)); !has {
				t.Error("Expected earlier day to be kept")
			}

			n, err = store.DeleteAllBriefings(ctx)
			if err != nil || n != 2 {
				t.Errorf("Expected 2 deleted, got %d (%v)", n, err)
			}
			history, _ := store.GetBriefingHistory(ctx, 0)
			if len(history) != 0 {
				t.Errorf("Expected empty history, got %d", len(history))
			}
		})
	}
}

func TestMigrationStatusAndRollback(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	manager := NewMigrationManager(store)

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(status) == 0 || !status[0].Applied || status[0].Description != "initial schema" {
		t.Errorf("Unexpected status %+v", status)
	}

	if err := manager.Migrate(ctx); err != nil {
		t.Errorf("Expected repeated Migrate to be a no-op, got %v", err)
	}

	if err := manager.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	status, _ = manager.Status(ctx)
	if status[0].Applied {
		t.Error("Expected migration to be reverted")
	}
	if err := manager.Rollback(ctx); err == nil {
		t.Error("Expected error when nothing is left to roll back")
	}
}

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), config.Database{Driver: "memory"}, testDefaults)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Expected a MemoryStore, got %T", store)
	}
	if _, err := Open(context.Background(), config.Database{Driver: "oracle"}, testDefaults); err == nil {
		t.Error("Expected error for unknown driver")
	}
}

func TestStatementBuilderPlaceholders(t *testing.T) {
	since := core.NewDate(2026, time.January, 10)

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectPostgres, "report_date >= $1"},
		{DialectSQLite, "report_date >= ?"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			query, args, err := statementBuilder(tt.dialect).
				Delete("briefings").
				Where(sq.GtOrEq{"report_date": since.String()}).
				ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}
			if !strings.Contains(query, tt.want) {
				t.Errorf("Expected query to contain %q, got %q", tt.want, query)
			}
			if len(args) != 1 || args[0] != "2026-01-10" {
				t.Errorf("Expected args [2026-01-10], got %v", args)
			}
		})
	}

	query, _, err := statementBuilder(DialectPostgres).
		Select(briefingColumns...).
		From("briefings").
		Where(sq.Eq{"id": "abc"}).
		ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}
	if !strings.Contains(query, "id = $1") || strings.Contains(query, "?") {
		t.Errorf("Expected dollar placeholders, got %q", query)
	}
}
