// Package orchestrator decides the category priorities for a day and
// renders the search context appended to the generation prompt.
package orchestrator

import (
	"fmt"
	"strings"

	"morningbrief/internal/calendar"
	"morningbrief/internal/categories"
	"morningbrief/internal/core"
)

// Result is the per-request output of Orchestrate.
type Result struct {
	SearchContext string          `json:"search_context"`
	Categories    []core.Category `json:"categories"` // Effective priorities, critical first
	Context       core.DayContext `json:"context"`
	DayHints      []string        `json:"day_hints"`
}

// Orchestrator combines the category registry with a calendar oracle.
type Orchestrator struct {
	registry *categories.Registry
	oracle   calendar.Oracle
}

// New creates an orchestrator. Nil arguments fall back to the default
// registry and the no-op oracle.
func New(registry *categories.Registry, oracle calendar.Oracle) *Orchestrator {
	if registry == nil {
		registry = categories.Default()
	}
	if oracle == nil {
		oracle = calendar.NoopOracle{}
	}
	return &Orchestrator{registry: registry, oracle: oracle}
}

// Registry returns the category registry in use.
func (o *Orchestrator) Registry() *categories.Registry {
	return o.registry
}

// Orchestrate resolves the day context for date, re-prioritizes the
// categories and renders the search context. Output depends only on the
// inputs. Invalid farm economics yield a *core.ConfigurationError.
func (o *Orchestrator) Orchestrate(date core.Date, farm core.FarmEconomics) (*Result, error) {
	if err := farm.Validate(); err != nil {
		return nil, err
	}

	ctx := calendar.ResolveContext(date, o.oracle)
	prioritized := o.registry.Prioritized(ctx)
	hints := DayHints(ctx)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(farmContext(farm))
	b.WriteString("\n\n")
	b.WriteString(searchInstructions(prioritized, ctx))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "## DICAS DO DIA (%s):\n", calendar.WeekdayName(date))
	for i, h := range hints {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + h)
	}
	b.WriteString("\n")

	return &Result{
		SearchContext: b.String(),
		Categories:    prioritized,
		Context:       ctx,
		DayHints:      hints,
	}, nil
}

// DayHints returns the day-specific guidance lines for ctx.
func DayHints(ctx core.DayContext) []string {
	var hints []string
	if ctx.IsMonday {
		hints = append(hints,
			"É segunda-feira - inclua resumo dos resultados esportivos do fim de semana",
			"São Paulo FC provavelmente jogou no fim de semana - destaque o resultado",
		)
	}
	if ctx.IsFriday {
		hints = append(hints,
			"É sexta-feira - mencione eventos culturais do fim de semana em São Paulo",
			"Sugira leituras ou exposições para o fim de semana",
		)
	}
	if ctx.IsWeekend {
		hints = append(hints,
			"É fim de semana - foco em análises de longo prazo e reflexões",
			"Menos foco em dados de mercado (bolsas fechadas)",
		)
	}
	if ctx.DayOfWeek == 0 {
		hints = append(hints, "Domingo - o Tricolor pode estar jogando hoje")
	}
	if ctx.ClubPlayedRecently && !ctx.IsMonday {
		hints = append(hints, "O São Paulo FC jogou nos últimos dias - destaque o resultado")
	}
	if ctx.NationalTeamMatchDay {
		hints = append(hints, "IMPORTANTE: Hoje tem jogo da Seleção Brasileira - destaque a partida")
	}
	if ctx.IsPolicyDecisionDay {
		hints = append(hints, "IMPORTANTE: Hoje é dia de decisão do COPOM - destaque expectativas")
	}
	if ctx.IsInflationReleaseDay {
		hints = append(hints, "IMPORTANTE: Hoje sai o IPCA - analise impacto na curva de juros")
	}
	return hints
}

var tierHeaders = map[core.Priority]string{
	core.PriorityCritical: "#### 🔴 CRÍTICO (Liderar o briefing com estes):",
	core.PriorityHigh:     "#### 🟠 ALTA PRIORIDADE:",
	core.PriorityMedium:   "#### 🟡 MÉDIA PRIORIDADE:",
	core.PriorityLow:      "#### 🟢 MENOR PRIORIDADE (mas incluir):",
}

func searchInstructions(cats []core.Category, ctx core.DayContext) string {
	date := calendar.FormatShort(ctx.Date)
	month := calendar.MonthYear(ctx.Date)

	var b strings.Builder
	fmt.Fprintf(&b, "## INSTRUÇÕES DE PESQUISA - %s\n\n", date)
	b.WriteString("Você DEVE realizar buscas web ATUALIZADAS para cada categoria abaixo.\n")
	b.WriteString("Os dados devem ser de HOJE ou dos últimos 1-2 dias no máximo.\n\n")
	b.WriteString("### PRIORIDADE DE CATEGORIAS:\n")

	groups := make(map[core.Priority][]core.Category, len(core.Priorities))
	for _, c := range cats {
		groups[c.Priority] = append(groups[c.Priority], c)
	}

	for _, tier := range core.Priorities {
		group := groups[tier]
		if len(group) == 0 {
			continue
		}
		b.WriteString("\n" + tierHeaders[tier] + "\n")
		label := "Buscas:"
		if tier == core.PriorityCritical {
			label = "Buscas obrigatórias:"
		}
		for _, c := range group {
			fmt.Fprintf(&b, "\n**%s %s**\n%s\n", c.Icon, c.Name, label)
			for _, q := range c.Queries {
				b.WriteString("- " + categories.Render(q, date, month) + "\n")
			}
		}
	}
	return b.String()
}

func farmContext(farm core.FarmEconomics) string {
	total := calendar.FormatBRL(farm.TotalCost())

	var b strings.Builder
	b.WriteString("## DADOS DA FAZENDA DO DR. ORESTES\n\n")
	b.WriteString("- **Localização**: Guaxupé, Sul de Minas Gerais\n")
	fmt.Fprintf(&b, "- **Custo de Produção por Saca**: %s\n", calendar.FormatBRL(farm.ProductionCost))
	fmt.Fprintf(&b, "- **Custo Logístico por Saca**: %s\n", calendar.FormatBRL(farm.LogisticsCost))
	fmt.Fprintf(&b, "- **Custo Total por Saca**: %s\n\n", total)
	b.WriteString("### CÁLCULO DE MARGEM (OBRIGATÓRIO):\n\n")
	b.WriteString("Ao pesquisar o preço CEPEA/ESALQ do café arábica:\n")
	b.WriteString("1. Preço atual da saca: [buscar CEPEA]\n")
	fmt.Fprintf(&b, "2. Custo total: %s\n", total)
	b.WriteString("3. Margem = Preço - Custo Total\n")
	b.WriteString("4. Margem % = (Margem / Custo Total) × 100\n\n")
	b.WriteString(MarginBandsText())
	return b.String()
}

// MarginBandsText renders the three interpretation bands with their
// boundary rule.
func MarginBandsText() string {
	return fmt.Sprintf("Se margem > %.0f%%: \"%s\"\nSe margem entre %.0f%% e %.0f%% (inclusive): \"%s\"\nSe margem < %.0f%%: \"%s\"",
		FavorableAbove, MarginFavorable.Label(),
		UnfavorableBelow, FavorableAbove, MarginModerate.Label(),
		UnfavorableBelow, MarginUnfavorable.Label(),
	)
}
