package prompts

import (
	"fmt"
	"strings"

	"morningbrief/internal/calendar"
	"morningbrief/internal/categories"
	"morningbrief/internal/core"
	"morningbrief/internal/orchestrator"
	"morningbrief/internal/prefetch"
)

// UserPromptInput carries the per-request data of the user prompt. Plan
// and PreFetched are optional.
type UserPromptInput struct {
	Today      core.Date
	Farm       core.FarmEconomics
	Plan       *orchestrator.Result
	PreFetched []prefetch.Formatted
}

// BuildUserPrompt assembles the per-request prompt: date declaration, the
// pre-fetched primary sources, the farm cost table, the mandatory search
// checklist, the orchestrator's search context, the margin formula and the
// output format contract.
func BuildUserPrompt(in UserPromptInput) string {
	today := in.Today
	weekend := calendar.IsWeekend(today)
	short := calendar.FormatShort(today)
	lbd := calendar.FormatShort(calendar.LastBusinessDay(today))

	var b strings.Builder
	b.WriteString("Gere o briefing completo e personalizado para o Dr. Orestes Prado.\n\n")
	fmt.Fprintf(&b, "📅 DATA DE HOJE: %s\n", calendar.FormatLong(today))
	fmt.Fprintf(&b, "📅 DATA CURTA: %s\n", short)
	fmt.Fprintf(&b, "📅 ANO: %d\n", today.Year)
	if weekend {
		fmt.Fprintf(&b, "⚠️ MERCADOS FECHADOS - Último dia útil: %s\n", lbd)
	}
	if hint := dayContextHint(today, lbd); hint != "" {
		b.WriteString(hint + "\n")
	}

	if len(in.PreFetched) > 0 {
		b.WriteString("\n")
		b.WriteString(PreFetchedSection(in.PreFetched))
	}

	b.WriteString("\n")
	b.WriteString(farmTable(in.Farm))

	b.WriteString("\n")
	b.WriteString(banner("PESQUISAS OBRIGATÓRIAS (WEB SEARCH) - USE ESTAS QUERIES"))
	b.WriteString("\nIMPORTANTE: Para cada pesquisa, inclua o MÊS e ANO para obter dados recentes.\n")
	if weekend {
		fmt.Fprintf(&b, "LEMBRE-SE: Mercados fechados no fim de semana - busque dados de %s\n", lbd)
	}
	b.WriteString("\n")
	b.WriteString(searchChecklist(in.Plan, today))

	if in.Plan != nil && in.Plan.SearchContext != "" {
		b.WriteString("\n")
		b.WriteString(rule + "\n")
		b.WriteString(in.Plan.SearchContext)
	}

	b.WriteString("\n")
	b.WriteString(banner("CÁLCULO DE MARGEM"))
	b.WriteString("\nUse a fórmula:\n")
	b.WriteString("Margem % = ((Preço CEPEA - Custo Total) / Custo Total) × 100\n\n")
	b.WriteString("Onde:\n")
	b.WriteString("- Preço CEPEA = valor encontrado na pesquisa web (NÃO invente)\n")
	fmt.Fprintf(&b, "- Custo Total = %s/saca\n\n", calendar.FormatBRL(in.Farm.TotalCost()))
	b.WriteString("Interpretação:\n")
	b.WriteString(orchestrator.MarginBandsText())
	b.WriteString("\n\n")

	b.WriteString(banner("FORMATO DE SAÍDA OBRIGATÓRIO"))
	b.WriteString(`
Para CADA dado financeiro/cotação, use este formato:
"[MÉTRICA]: [VALOR] ([DATA DO DADO]) - Fonte: [site]"

Exemplo correto:
"CEPEA Arábica: R$ 2.225,39/saca (09/01/2026) - Fonte: cepea.org.br"

⚠️ A DATA DO DADO é quando o dado foi publicado/medido, NÃO a data de hoje.
⚠️ Se não encontrar o dado via web search, escreva "Dado não disponível".

`)
	b.WriteString(rule + "\n\n")
	b.WriteString("Gere o briefing COMPLETO seguindo TODAS as 14 seções da estrutura definida.\n")
	b.WriteString("Use APENAS dados obtidos via web search - não invente informações.\n")
	b.WriteString("Mantenha o tom FORMAL e PERSONALIZADO para o Dr. Orestes.")
	return b.String()
}

// PreFetchedSection renders the primary-source block that takes
// precedence over web search results.
func PreFetchedSection(sources []prefetch.Formatted) string {
	var b strings.Builder
	b.WriteString(banner("DADOS PRÉ-CARREGADOS (FONTE DIRETA - PRIORIDADE)"))
	b.WriteString("\nOs dados abaixo foram extraídos DIRETAMENTE das fontes oficiais.\n")
	b.WriteString("Use-os como REFERÊNCIA PRIMÁRIA. Se web search retornar valores diferentes,\n")
	b.WriteString("PRIORIZE os dados abaixo pois são de fonte direta.\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "\n### %s\n%s\n", strings.ToUpper(s.Key), s.Text)
	}
	b.WriteString("\n" + rule + "\n")
	return b.String()
}

func dayContextHint(today core.Date, lbd string) string {
	switch today.Weekday() {
	case 1:
		return "ATENÇÃO: É segunda-feira - dê destaque especial ao resumo esportivo do fim de semana (São Paulo FC, F1, tênis)."
	case 5:
		return "ATENÇÃO: É sexta-feira - inclua sugestões culturais para o fim de semana e a agenda esportiva."
	case 0, 6:
		return "ATENÇÃO: É fim de semana - mercados fechados. Use dados de " + lbd + " para cotações."
	}
	return ""
}

func farmTable(farm core.FarmEconomics) string {
	var b strings.Builder
	b.WriteString(banner("DADOS DA FAZENDA"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Custo de produção: %s/saca\n", calendar.FormatBRL(farm.ProductionCost))
	fmt.Fprintf(&b, "- Custo logístico (frete até Santos): %s/saca\n", calendar.FormatBRL(farm.LogisticsCost))
	fmt.Fprintf(&b, "- CUSTO TOTAL: %s/saca\n", calendar.FormatBRL(farm.TotalCost()))
	b.WriteString("- Localização: Guaxupé, Sul de Minas Gerais\n")
	b.WriteString("- Produto: Café Arábica tipo 6 (padrão CEPEA/ESALQ)\n")
	return b.String()
}

// searchChecklist lists every category's queries as a numbered checklist
// in priority order. On weekends {date} resolves to the last business day.
func searchChecklist(plan *orchestrator.Result, today core.Date) string {
	var cats []core.Category
	if plan != nil && len(plan.Categories) > 0 {
		cats = plan.Categories
	} else {
		cats = categories.Default().Prioritized(calendar.ResolveContext(today, nil))
	}

	date := calendar.FormatShort(calendar.LastBusinessDay(today))
	month := calendar.MonthYear(today)

	var b strings.Builder
	for i, c := range cats {
		label := "Pesquise na web"
		if c.Priority == core.PriorityCritical {
			label = "CRÍTICO - Pesquise na web agora"
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, strings.ToUpper(c.Name), label)
		for _, q := range c.Queries {
			fmt.Fprintf(&b, "   - \"%s\"\n", categories.Render(q, date, month))
		}
		b.WriteString("\n")
	}
	return b.String()
}
