package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"morningbrief/internal/calendar"
	"morningbrief/internal/core"
)

// NewSettingsCmd creates the settings command
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the farm economics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsShow(cmd.Context())
		},
	}

	cmd.AddCommand(newSettingsSetCmd())

	return cmd
}

func newSettingsSetCmd() *cobra.Command {
	var costBasis, logistics, taxRate float64

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the farm economics",
		Long: `Update the farm economics used in every briefing.

Only the flags given are changed. The production cost must be positive
before a briefing can be generated.

Example:
  morningbrief settings set --cost-basis 1520 --logistics 80`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var update core.SettingsUpdate
			if cmd.Flags().Changed("cost-basis") {
				if costBasis <= 0 {
					return fmt.Errorf("custo de produção inválido")
				}
				update.ProductionCost = &costBasis
			}
			if cmd.Flags().Changed("logistics") {
				if logistics < 0 {
					return fmt.Errorf("custo logístico não pode ser negativo")
				}
				update.LogisticsCost = &logistics
			}
			if cmd.Flags().Changed("tax-rate") {
				if taxRate < 0 || taxRate >= 1 {
					return fmt.Errorf("alíquota deve estar entre 0 e 1")
				}
				update.TaxRate = &taxRate
			}
			if update == (core.SettingsUpdate{}) {
				return fmt.Errorf("nothing to update: pass --cost-basis, --logistics or --tax-rate")
			}
			return runSettingsSet(cmd.Context(), update)
		},
	}

	cmd.Flags().Float64Var(&costBasis, "cost-basis", 0, "Production cost in R$/saca")
	cmd.Flags().Float64Var(&logistics, "logistics", 0, "Logistics cost in R$/saca")
	cmd.Flags().Float64Var(&taxRate, "tax-rate", 0, "Tax rate as a fraction (0.05 = 5%)")

	return cmd
}

func runSettingsShow(ctx context.Context) error {
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := a.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	printSettings(settings)
	return nil
}

func runSettingsSet(ctx context.Context, update core.SettingsUpdate) error {
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := a.store.SaveSettings(ctx, update)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	printSettings(settings)
	return nil
}

func printSettings(s *core.Settings) {
	production := "não configurado"
	total := "n/d"
	if s.ProductionCost != nil {
		production = calendar.FormatBRL(*s.ProductionCost) + "/saca"
		total = calendar.FormatBRL(*s.ProductionCost+s.LogisticsCost) + "/saca"
	}

	fmt.Println(box("🌱 Fazenda",
		field("Custo de produção", production),
		field("Custo logístico", calendar.FormatBRL(s.LogisticsCost)+"/saca"),
		field("Custo total", total),
		field("Alíquota", calendar.FormatPercent(s.TaxRate*100)),
		field("Configurado", yesNo(s.IsConfigured)),
	))
}
