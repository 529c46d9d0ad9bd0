package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"morningbrief/internal/config"
	"morningbrief/internal/logger"
	"morningbrief/internal/persistence"
)

// NewMigrateCmd creates the migrate command for database migrations
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Manage database schema migrations.

Subcommands:
  up       Apply all pending migrations
  status   Show migration status
  rollback Revert the last migration (use with caution!)

Migrations are embedded in the binary, one set per driver (postgres,
sqlite). The applied version is tracked in the schema_migrations table.

Examples:
  # Apply all pending migrations
  morningbrief migrate up

  # Check migration status
  morningbrief migrate status

  # Revert the last migration
  morningbrief migrate rollback`,
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateStatusCmd())
	cmd.AddCommand(newMigrateRollbackCmd())

	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(cmd.Context())
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd.Context())
		},
	}
}

func newMigrateRollbackCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Revert the last migration",
		Long: `Revert the last applied migration by running its down script.

⚠️  WARNING: Reverting the initial schema drops the settings and briefings
    tables and every briefing in them.

Use --force to skip confirmation prompt.

Example:
  morningbrief migrate rollback
  morningbrief migrate rollback --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateRollback(cmd.Context(), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

// getMigrator opens the configured SQL store without migrating it.
func getMigrator(ctx context.Context) (*persistence.MigrationManager, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := openStoreNoMigrate(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	sqlStore, ok := store.(*persistence.SQLStore)
	if !ok {
		_ = store.Close()
		return nil, nil, fmt.Errorf("driver %q has no schema to migrate", cfg.Database.Driver)
	}

	return persistence.NewMigrationManager(sqlStore), func() { _ = store.Close() }, nil
}

func runMigrateUp(ctx context.Context) error {
	log := logger.Get()
	log.Info("Starting database migration")

	migrator, closeFn, err := getMigrator(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("✅ All migrations applied successfully")
	return nil
}

func runMigrateStatus(ctx context.Context) error {
	migrator, closeFn, err := getMigrator(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	status, err := migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if len(status) == 0 {
		fmt.Println("No migrations found")
		return nil
	}

	fmt.Println(titleStyle.Render("📊 Migration Status"))
	fmt.Printf("%-10s %-10s %s\n", "Version", "Status", "Description")
	fmt.Println(ruleStyle.Render(rule))

	appliedCount := 0
	pendingCount := 0

	for _, m := range status {
		statusStr := warnStyle.Render("⏳ pending")
		if m.Applied {
			statusStr = okStyle.Render("✅ applied")
			appliedCount++
		} else {
			pendingCount++
		}

		fmt.Printf("%-10d %-10s %s\n", m.Version, statusStr, m.Description)
	}

	fmt.Println()
	fmt.Printf("Applied: %d | Pending: %d | Total: %d\n", appliedCount, pendingCount, len(status))

	if pendingCount > 0 {
		fmt.Println("\nRun 'morningbrief migrate up' to apply pending migrations")
	}

	return nil
}

func runMigrateRollback(ctx context.Context, force bool) error {
	log := logger.Get()

	if !force {
		fmt.Println("⚠️  WARNING: Rolling back migrations is dangerous!")
		fmt.Println("The down script of the last migration will run and may drop data.")
		if !confirm("Are you sure you want to proceed?") {
			fmt.Println("Rollback cancelled")
			return nil
		}
	}

	migrator, closeFn, err := getMigrator(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := migrator.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	log.Warn("Last migration reverted")
	fmt.Println("⚠️  Last migration reverted")

	return nil
}

// confirm asks a yes/no question on stdin.
func confirm(question string) bool {
	fmt.Printf("%s (yes/no): ", question)

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}
	return response == "yes"
}
