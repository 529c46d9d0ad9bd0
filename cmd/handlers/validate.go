package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"morningbrief/internal/calendar"
	"morningbrief/internal/config"
	"morningbrief/internal/core"
	"morningbrief/internal/validation"
)

var errInvalidBriefing = errors.New("briefing failed validation")

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	var (
		format  string
		date    string
		fix     bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a briefing for future dates and implausible prices",
		Long: `Validate a briefing markdown file without touching the database.

The validator flags dates after today, prices outside the expected ranges,
market quotes presented as live on weekends and figures without a source.
It exits with status 1 when hard errors are found.

Examples:
  # Human-readable report
  morningbrief validate briefing.md

  # Machine-readable report, validated as of a past day
  morningbrief validate briefing.md --format json --date 2026-01-12

  # Apply the suggested corrections
  morningbrief validate briefing.md --fix --output corrected.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0], format, date, fix, outFile)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Report format: text, json or yaml")
	cmd.Flags().StringVar(&date, "date", "", "Validate as of this date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&fix, "fix", false, "Write the corrected briefing")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Where --fix writes (default stdout)")

	return cmd
}

func runValidate(w io.Writer, path, format, date string, fix bool, outFile string) error {
	text, err := readInput(path)
	if err != nil {
		return err
	}

	today, err := validationDate(date)
	if err != nil {
		return err
	}

	result := validation.ValidateOn(text, today)
	if err := writeReport(w, result, format); err != nil {
		return err
	}

	if fix && len(result.Corrections) > 0 {
		corrected := validation.ApplyCorrections(text, result.Corrections)
		if outFile == "" {
			fmt.Fprintln(w, corrected)
		} else if err := os.WriteFile(outFile, []byte(corrected), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outFile, err)
		}
	}

	if !result.Valid {
		return errInvalidBriefing
	}
	return nil
}

func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// validationDate parses --date, or takes today in the configured timezone.
func validationDate(date string) (core.Date, error) {
	if date != "" {
		d, err := core.ParseDate(date)
		if err != nil {
			return core.Date{}, fmt.Errorf("invalid --date: %w", err)
		}
		return d, nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return core.Date{}, fmt.Errorf("failed to load config: %w", err)
	}
	locale, err := calendar.LoadLocale(cfg.App.Timezone)
	if err != nil {
		return core.Date{}, err
	}
	return locale.Today(calendar.SystemClock{}), nil
}

func writeReport(w io.Writer, result validation.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(result)
	case "text":
		report := validation.Report(result)
		if result.Valid {
			fmt.Fprintln(w, okStyle.Render(report))
		} else {
			fmt.Fprintln(w, errStyle.Render(report))
		}
		return nil
	default:
		return fmt.Errorf("invalid --format %q: use text, json or yaml", format)
	}
}
