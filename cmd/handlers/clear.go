package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"morningbrief/internal/calendar"
	"morningbrief/internal/logger"
)

// NewClearCmd creates the clear command
func NewClearCmd() *cobra.Command {
	var (
		days  int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored briefings so they can be regenerated",
		Long: `Delete stored briefings.

Without --days every briefing is deleted. With --days N the briefings of
the last N days (today included) are deleted, freeing those days for a
new generation.

Examples:
  morningbrief clear --days 1
  morningbrief clear --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must be positive")
			}
			return runClear(cmd.Context(), days, force)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Only delete the last N days (0 deletes everything)")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func runClear(ctx context.Context, days int, force bool) error {
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	question := "Delete ALL briefings?"
	if days > 0 {
		since := a.briefings.Today().AddDays(-(days - 1))
		question = fmt.Sprintf("Delete briefings since %s?", calendar.FormatShort(since))
	}
	if !force && !confirm(question) {
		fmt.Println("Clear cancelled")
		return nil
	}

	var deleted int
	if days > 0 {
		deleted, err = a.store.DeleteBriefingsSince(ctx, a.briefings.Today().AddDays(-(days - 1)))
	} else {
		deleted, err = a.store.DeleteAllBriefings(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to delete briefings: %w", err)
	}

	logger.Info("Briefings deleted", "deleted", deleted, "days", days)
	fmt.Printf("🗑  Deleted %d briefing(s)\n", deleted)
	return nil
}
