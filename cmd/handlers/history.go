package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"morningbrief/internal/calendar"
	"morningbrief/internal/core"
	"morningbrief/internal/persistence"
	"morningbrief/internal/sections"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past briefings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 30, "Maximum number of briefings to list")

	return cmd
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var (
		section string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a briefing (the latest when no ID is given)",
		Long: `Print a stored briefing as markdown or HTML.

Examples:
  # Latest briefing
  morningbrief show

  # Only the coffee market section of a given briefing
  morningbrief show 6f1c... --section cafe

  # Rendered HTML
  morningbrief show --format html > briefing.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runShow(cmd.Context(), id, section, format)
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Print only this section (e.g. cafe, esportes)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown or html")

	return cmd
}

func runHistory(ctx context.Context, limit int) error {
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	briefings, err := a.store.GetBriefingHistory(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list briefings: %w", err)
	}

	if len(briefings) == 0 {
		fmt.Println("Nenhum briefing gerado ainda")
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("📚 %d briefing(s)", len(briefings))))
	fmt.Println(ruleStyle.Render(rule))
	for _, b := range briefings {
		fmt.Printf("%s  %s  %-24s %d seções\n",
			calendar.FormatShort(b.ReportDate), b.ID, b.ModelID, len(b.Sections))
	}
	return nil
}

func runShow(ctx context.Context, id, section, format string) error {
	if format != "markdown" && format != "html" {
		return fmt.Errorf("invalid --format %q: use markdown or html", format)
	}

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	var b *core.Briefing
	if id == "" {
		b, err = a.store.GetLatestBriefing(ctx)
	} else {
		b, err = a.store.GetBriefingByID(ctx, id)
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("briefing não encontrado")
	}
	if err != nil {
		return fmt.Errorf("failed to load briefing: %w", err)
	}

	content := b.Content
	if section != "" {
		text, ok := sections.Content(b.Content, core.SectionID(strings.ToLower(section)))
		if !ok {
			return fmt.Errorf("seção %q ausente neste briefing", section)
		}
		content = text
	}

	if format == "html" {
		fmt.Print(sections.RenderHTML(content))
		return nil
	}
	fmt.Println(content)
	return nil
}
