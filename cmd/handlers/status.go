package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"morningbrief/internal/calendar"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether today's briefing can be generated",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

func runStatus(ctx context.Context) error {
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.briefings.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	lines := []string{
		field("Hoje", calendar.FormatLong(st.Today)),
		field("Configurado", yesNo(st.IsConfigured)),
		field("Pode gerar", yesNo(st.CanGenerate)),
	}
	if latest := st.LatestBriefing; latest != nil {
		lines = append(lines,
			field("Último briefing", calendar.FormatShort(latest.ReportDate)),
			field("ID", latest.ID),
		)
	} else {
		lines = append(lines, field("Último briefing", "nenhum"))
	}

	fmt.Println(box("☕ Morning Brief", lines...))

	if !st.IsConfigured {
		fmt.Println("\nConfigure o custo base: morningbrief settings set --cost-basis <R$/saca>")
	}
	return nil
}
