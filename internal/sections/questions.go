package sections

import "morningbrief/internal/core"

var defaultQuestions = []string{
	"Qual é o resumo do briefing de hoje?",
	"Como está a margem da fazenda de café?",
	"Quais são os destaques dos mercados?",
	"Como foi o último jogo do São Paulo?",
}

var sectionQuestions = map[core.SectionID][]string{
	core.SectionCoffee: {
		"Qual é a margem atual da fazenda?",
		"É um bom momento para vender café?",
		"Como está o dólar afetando as exportações?",
	},
	core.SectionBrazil: {
		"Como está o IBOVESPA hoje?",
		"Qual a tendência do dólar?",
		"O que esperar do COPOM?",
	},
	core.SectionNationalPolitics: {
		"Quais votações importantes no Congresso?",
		"Como está o cenário fiscal?",
		"O que dizem as pesquisas para 2026?",
	},
	core.SectionGlobal: {
		"Como os mercados americanos afetam o Brasil?",
		"Quais commodities estão em alta?",
		"O que está acontecendo com o Fed?",
	},
	core.SectionInternationalPolitics: {
		"Quais tensões geopolíticas merecem atenção?",
		"Como a China afeta as exportações brasileiras?",
		"Há riscos para o comércio exterior?",
	},
	core.SectionAgribusiness: {
		"Como está a soja hoje?",
		"Qual a situação da safra?",
		"Como está a logística nos portos?",
	},
	core.SectionSports: {
		"Como foi o último jogo do São Paulo?",
		"Quando joga a Seleção?",
		"Como está João Fonseca no ranking?",
	},
	core.SectionRealEstate: {
		"Como está o mercado em São Paulo?",
		"Qual a tendência do IGPM?",
		"O que esperar dos preços?",
	},
	core.SectionTechnology: {
		"Quais fintechs estão em destaque?",
		"Houve investimentos em startups?",
		"Novidades dos bancos digitais?",
	},
	core.SectionCulture: {
		"O que está em cartaz no MASP?",
		"Alguma peça recomendada?",
		"Eventos para o fim de semana?",
	},
	core.SectionHealth: {
		"Quais avanços médicos recentes?",
		"Dicas de bem-estar?",
		"Novidades em longevidade?",
	},
	core.SectionAgenda: {
		"Quais eventos econômicos esta semana?",
		"Quando são os próximos jogos?",
		"O que tem de importante na agenda?",
	},
}

// SuggestedQuestions returns follow-up questions for a section, or the
// general questions when the section has none.
func SuggestedQuestions(id core.SectionID) []string {
	qs, ok := sectionQuestions[id]
	if !ok {
		qs = defaultQuestions
	}
	out := make([]string, len(qs))
	copy(out, qs)
	return out
}
