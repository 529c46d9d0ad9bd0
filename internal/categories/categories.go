// Package categories holds the static catalog of briefing topics.
package categories

import (
	"sort"
	"strings"

	"morningbrief/internal/core"
)

// Query placeholders substituted by Render.
const (
	PlaceholderDate  = "{date}"
	PlaceholderMonth = "{month}"
)

// Registry is an immutable, ordered set of categories.
type Registry struct {
	categories []core.Category
}

// NewRegistry builds a registry preserving the given order.
func NewRegistry(cats []core.Category) *Registry {
	out := make([]core.Category, len(cats))
	copy(out, cats)
	return &Registry{categories: out}
}

// Default returns the registry of the fourteen briefing categories.
func Default() *Registry {
	return NewRegistry(defaultCategories)
}

// List returns the categories in registry order.
func (r *Registry) List() []core.Category {
	out := make([]core.Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// Get looks up a category by id.
func (r *Registry) Get(id string) (core.Category, bool) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// Prioritized returns the categories with their effective priority for ctx,
// stable-sorted from critical to low. Ties keep registry order.
func (r *Registry) Prioritized(ctx core.DayContext) []core.Category {
	out := make([]core.Category, len(r.categories))
	for i, c := range r.categories {
		c.Priority = c.EffectivePriority(ctx)
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// SectionOrder lists category ids in the order their content appears in
// the briefing.
func (r *Registry) SectionOrder() []string {
	ids := make([]string, len(r.categories))
	for i, c := range r.categories {
		ids[i] = c.ID
	}
	return ids
}

// Render substitutes the date and month placeholders in a query template.
func Render(query, date, month string) string {
	return strings.NewReplacer(PlaceholderDate, date, PlaceholderMonth, month).Replace(query)
}

// AllQueries renders every query of every category in registry order.
func (r *Registry) AllQueries(date, month string) []string {
	var out []string
	for _, c := range r.categories {
		for _, q := range c.Queries {
			out = append(out, Render(q, date, month))
		}
	}
	return out
}

func boostClub(ctx core.DayContext) core.Priority {
	if ctx.IsMonday || ctx.DayOfWeek == 0 || ctx.ClubPlayedRecently {
		return core.PriorityCritical
	}
	return core.PriorityHigh
}

func boostNationalTeam(ctx core.DayContext) core.Priority {
	if ctx.NationalTeamMatchDay {
		return core.PriorityCritical
	}
	return core.PriorityMedium
}

func boostCulture(ctx core.DayContext) core.Priority {
	if ctx.IsFriday {
		return core.PriorityMedium
	}
	return core.PriorityLow
}

var defaultCategories = []core.Category{
	{
		ID: "coffee", Name: "Mercado de Café", NameEn: "Coffee Market", Icon: "☕",
		Priority: core.PriorityCritical, AlwaysInclude: true,
		Queries: []string{
			"CEPEA arabica café preço hoje",
			"indicador CEPEA ESALQ café arábica saca {month}",
			"ICE KC coffee C futures price today",
			"Porto Santos café congestionamento fila navios",
			"Minas Gerais previsão tempo próximos 7 dias",
			"safra café Brasil 2025 2026 Conab",
			"exportação café brasileiro {month}",
		},
	},
	{
		ID: "brazil_economy", Name: "Brasil Economia", NameEn: "Brazil Economy", Icon: "📊",
		Priority: core.PriorityCritical, AlwaysInclude: true,
		Queries: []string{
			"IBOVESPA fechamento {date}",
			"B3 bolsa brasileira principais altas baixas",
			"dólar real cotação hoje",
			"USD BRL câmbio",
			"Selic taxa COPOM decisão",
			"IPCA inflação Brasil {month}",
			"DI futuro curva juros",
			"desemprego Brasil taxa IBGE",
			"reestruturação dívida corporativa Brasil",
		},
	},
	{
		ID: "brazil_politics", Name: "Política Nacional", NameEn: "Brazil Politics", Icon: "🏛️",
		Priority: core.PriorityCritical, AlwaysInclude: true,
		Queries: []string{
			"Lula governo notícias hoje",
			"arcabouço fiscal Brasil",
			"eleições 2026 Brasil pesquisa",
			"Congresso Nacional votação",
			"Banco Central Brasil comunicado",
			"ministério fazenda economia",
		},
	},
	{
		ID: "global_markets", Name: "Mercados Globais", NameEn: "Global Markets", Icon: "🌍",
		Priority: core.PriorityHigh, AlwaysInclude: true,
		Queries: []string{
			"S&P 500 Dow Jones Nasdaq today",
			"US stock market performance",
			"Federal Reserve Fed policy interest rate",
			"China economy GDP news",
			"European markets DAX FTSE",
			"oil price Brent WTI",
			"gold price commodities",
		},
	},
	{
		ID: "global_politics", Name: "Política Internacional", NameEn: "Global Politics", Icon: "🌐",
		Priority: core.PriorityHigh, AlwaysInclude: true,
		Queries: []string{
			"United States politics administration",
			"China geopolitics news",
			"European Union news",
			"Ukraine war latest",
			"Middle East tensions",
			"IMF World Bank outlook",
		},
	},
	{
		ID: "agribusiness", Name: "Agronegócio", NameEn: "Agribusiness", Icon: "🌾",
		Priority: core.PriorityHigh, AlwaysInclude: true,
		Queries: []string{
			"soja preço CEPEA hoje",
			"milho preço CEPEA",
			"safra soja milho Brasil 2025 2026",
			"exportação agronegócio Brasil China",
			"Porto Paranaguá Santos logística grãos",
		},
	},
	{
		ID: "spfc", Name: "São Paulo FC", NameEn: "São Paulo FC", Icon: "⚽",
		Priority: core.PriorityHigh, AlwaysInclude: true, Boost: boostClub,
		Queries: []string{
			"São Paulo FC resultado último jogo",
			"São Paulo FC próximo jogo",
			"São Paulo FC classificação Brasileirão",
			"São Paulo FC Paulistão Copa do Brasil",
			"São Paulo FC escalação notícias",
			"SPFC Tricolor Morumbi",
		},
	},
	{
		ID: "selecao", Name: "Seleção Brasileira", NameEn: "Brazil National Team", Icon: "🇧🇷",
		Priority: core.PriorityMedium, AlwaysInclude: true, Boost: boostNationalTeam,
		Queries: []string{
			"Seleção Brasileira próximo jogo",
			"Brasil eliminatórias Copa do Mundo 2026",
			"Carlo Ancelotti seleção brasileira",
			"convocação seleção brasileira",
		},
	},
	{
		ID: "tennis", Name: "Tênis", NameEn: "Tennis", Icon: "🎾",
		Priority: core.PriorityMedium, AlwaysInclude: true,
		Queries: []string{
			"ATP ranking top 10",
			"João Fonseca tênis brasileiro",
			"tênis torneio atual ATP",
			"Grand Slam calendário 2026",
		},
	},
	{
		ID: "f1", Name: "Fórmula 1", NameEn: "Formula 1", Icon: "🏎️",
		Priority: core.PriorityMedium, AlwaysInclude: true,
		Queries: []string{
			"F1 Formula 1 championship standings 2026",
			"F1 last race results",
			"F1 next race calendar",
			"GP Brasil Interlagos 2026",
		},
	},
	{
		ID: "real_estate", Name: "Mercado Imobiliário", NameEn: "Real Estate", Icon: "🏠",
		Priority: core.PriorityMedium, AlwaysInclude: true,
		Queries: []string{
			"mercado imobiliário São Paulo {month}",
			"IGPM índice imóveis",
			"construção civil Brasil",
			"lançamentos imobiliários SP",
		},
	},
	{
		ID: "technology", Name: "Tecnologia e Startups", NameEn: "Technology & Startups", Icon: "💻",
		Priority: core.PriorityLow, AlwaysInclude: true,
		Queries: []string{
			"fintechs Brasil notícias",
			"startups brasileiras investimento",
			"banco digital Brasil",
			"inovação financeira",
			"venture capital Brasil",
		},
	},
	{
		ID: "culture", Name: "Cultura e Arte", NameEn: "Culture & Arts", Icon: "🎭",
		Priority: core.PriorityLow, AlwaysInclude: true, Boost: boostCulture,
		Queries: []string{
			"MASP exposição São Paulo",
			"Pinacoteca SP eventos",
			"teatro São Paulo programação {month}",
			"eventos culturais SP",
			"música clássica São Paulo",
		},
	},
	{
		ID: "health", Name: "Saúde e Bem-Estar", NameEn: "Health & Wellness", Icon: "🏥",
		Priority: core.PriorityLow, AlwaysInclude: true,
		Queries: []string{
			"saúde idosos avanços médicos",
			"longevidade pesquisa",
			"medicina São Paulo",
			"bem-estar senior",
		},
	},
}
