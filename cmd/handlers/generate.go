package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"morningbrief/internal/briefing"
	"morningbrief/internal/calendar"
	"morningbrief/internal/core"
	"morningbrief/internal/logger"
	"morningbrief/internal/validation"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		dryRun     bool
		showPrompt bool
		prefetch   string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's briefing",
		Long: `Generate, validate and store today's briefing.

Only one briefing can exist per day (America/Sao_Paulo). The farm cost basis
must be configured first with 'morningbrief settings set'.

With --dry-run nothing is sent to the model: the prompts are built,
sources are pre-fetched and the expected cost is printed.

Examples:
  # Generate and print today's briefing
  morningbrief generate

  # Pre-fetch every catalog source and save the markdown to a file
  morningbrief generate --prefetch full --output briefing.md

  # Inspect the prompts and cost without calling the model
  morningbrief generate --dry-run --show-prompt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch prefetch {
			case "", string(briefing.PrefetchQuick), string(briefing.PrefetchFull), string(briefing.PrefetchOff):
			default:
				return fmt.Errorf("invalid --prefetch %q: use quick, full or off", prefetch)
			}
			if dryRun {
				return runGenerateDryRun(cmd.Context(), prefetch, showPrompt)
			}
			return runGenerate(cmd.Context(), prefetch, outputFile)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build prompts and estimate cost without calling the model")
	cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "Print the system and user prompts (with --dry-run)")
	cmd.Flags().StringVar(&prefetch, "prefetch", "", "Pre-fetch mode: quick, full or off (default from config)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the briefing markdown to a file instead of stdout")

	return cmd
}

func runGenerate(ctx context.Context, prefetch, outputFile string) error {
	log := logger.Get()

	a, err := newApp(ctx, appOptions{withModel: true, prefetch: prefetch})
	if err != nil {
		return err
	}
	defer a.Close()

	b, result, err := a.briefings.Generate(ctx)
	if err != nil {
		return userError(err)
	}

	log.Info("Briefing generated", "id", b.ID, "date", b.ReportDate.String(), "valid", result.Valid)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(b.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputFile, err)
		}
	} else {
		fmt.Println(b.Content)
	}

	fmt.Fprintln(os.Stderr, box("✅ "+b.Title,
		field("ID", b.ID),
		field("Modelo", b.ModelID),
		field("Tokens", usageText(b)),
		field("Seções", len(b.Sections)),
		field("Validação", validityText(*result)),
	))
	return nil
}

func runGenerateDryRun(ctx context.Context, prefetch string, showPrompt bool) error {
	a, err := newApp(ctx, appOptions{prefetch: prefetch})
	if err != nil {
		return err
	}
	defer a.Close()

	today := a.briefings.Today()
	p, err := a.briefings.Prepare(ctx, today, true)
	if err != nil {
		return userError(err)
	}

	if showPrompt {
		fmt.Println(titleStyle.Render("SYSTEM PROMPT"))
		fmt.Println(p.SystemPrompt)
		fmt.Println(titleStyle.Render("USER PROMPT"))
		fmt.Println(p.UserPrompt)
	}

	categories := make([]string, 0, len(p.Plan.Categories))
	for _, c := range p.Plan.Categories {
		categories = append(categories, fmt.Sprintf("%s %s (%s)", c.Icon, c.Name, c.Priority))
	}

	lines := []string{
		field("Data", calendar.FormatLong(today)),
		field("Custo total", calendar.FormatBRL(p.Farm.TotalCost())+"/saca"),
		field("Fontes diretas", p.Fetched),
	}
	if p.PreFetch != nil {
		for key, reason := range p.PreFetch.Failed {
			lines = append(lines, warnStyle.Render(fmt.Sprintf("  ⚠ %s: %s", key, reason)))
		}
	}
	for _, hint := range p.Plan.DayHints {
		lines = append(lines, field("Dica do dia", hint))
	}
	lines = append(lines, "", "Categorias:", "  "+strings.Join(categories, "\n  "), "", strings.TrimRight(p.Estimate.Format(), "\n"))

	fmt.Println(box("🔎 Dry run", lines...))
	return nil
}

// userError replaces typed pipeline errors with their Portuguese message.
func userError(err error) error {
	return errors.New(core.UserMessage(err, err.Error()))
}

func usageText(b *core.Briefing) string {
	if b.InputTokens == nil || b.OutputTokens == nil {
		return "n/d"
	}
	return fmt.Sprintf("%d entrada, %d saída", *b.InputTokens, *b.OutputTokens)
}

func validityText(r validation.Result) string {
	if r.Valid {
		return okStyle.Render("válido")
	}
	return errStyle.Render(fmt.Sprintf("%d erro(s) corrigido(s)", len(r.Corrections)))
}
