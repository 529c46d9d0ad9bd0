package prompts

import (
	"strings"
	"testing"
	"time"

	"morningbrief/internal/core"
	"morningbrief/internal/orchestrator"
	"morningbrief/internal/prefetch"
	"morningbrief/internal/sections"
)

var (
	monday = core.NewDate(2026, time.January, 12)
	sunday = core.NewDate(2026, time.January, 11)
	farm   = core.FarmEconomics{ProductionCost: 1520, LogisticsCost: 80}
)

func TestSystemPromptContainsEverySectionHeading(t *testing.T) {
	prompt := SystemPrompt(monday)
	for _, spec := range core.Sections() {
		if !strings.Contains(prompt, spec.Heading()+"\n") {
			t.Errorf("Expected heading %q in system prompt", spec.Heading())
		}
	}
}

func TestStructureParsesIntoAllSections(t *testing.T) {
	if missing := sections.Missing(Structure()); len(missing) != 0 {
		t.Errorf("Expected structure to declare every section, missing %v", missing)
	}
}

func TestGroundingInstructions(t *testing.T) {
	weekday := GroundingInstructions(monday)
	if !strings.Contains(weekday, "📅 DATA ATUAL: segunda-feira, 12 de janeiro de 2026") {
		t.Error("Expected long date in grounding block")
	}
	if strings.Contains(weekday, "HOJE É FIM DE SEMANA") {
		t.Error("Expected no weekend warning on Monday")
	}
	if !strings.Contains(weekday, "   - Café CEPEA: 1.800 - 3.200 R$/saca") {
		t.Error("Expected expected-range table from the validator")
	}

	weekend := GroundingInstructions(sunday)
	for _, want := range []string{
		"⚠️ HOJE É FIM DE SEMANA",
		"Use dados do último dia útil: 09/01/2026",
		"HOJE É DOMINGO - mercados FECHADOS",
		"\"Fechamento de sexta-feira, 09/01/2026\"",
	} {
		if !strings.Contains(weekend, want) {
			t.Errorf("Expected %q in weekend grounding block", want)
		}
	}
	if !strings.HasPrefix(SystemPrompt(sunday), weekend) {
		t.Error("Expected grounding instructions to lead the system prompt")
	}
}

func TestBuildUserPromptMonday(t *testing.T) {
	plan, err := orchestrator.New(nil, nil).Orchestrate(monday, farm)
	if err != nil {
		t.Fatalf("Orchestrate failed: %v", err)
	}
	prompt := BuildUserPrompt(UserPromptInput{Today: monday, Farm: farm, Plan: plan})

	for _, want := range []string{
		"📅 DATA CURTA: 12/01/2026",
		"ATENÇÃO: É segunda-feira",
		"- CUSTO TOTAL: R$ 1.600,00/saca",
		"1. MERCADO DE CAFÉ (CRÍTICO - Pesquise na web agora)",
		"\"IBOVESPA fechamento 12/01/2026\"",
		"## DICAS DO DIA (segunda-feira):",
		"Se margem entre 15% e 30% (inclusive)",
		"- Fonte: [site]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected %q in user prompt", want)
		}
	}
	if strings.Contains(prompt, "MERCADOS FECHADOS") || strings.Contains(prompt, "DADOS PRÉ-CARREGADOS") {
		t.Error("Expected no weekend or pre-fetch blocks")
	}
}

func TestBuildUserPromptWeekendUsesLastBusinessDay(t *testing.T) {
	prompt := BuildUserPrompt(UserPromptInput{Today: sunday, Farm: farm})
	for _, want := range []string{
		"⚠️ MERCADOS FECHADOS - Último dia útil: 09/01/2026",
		"ATENÇÃO: É fim de semana - mercados fechados. Use dados de 09/01/2026 para cotações.",
		"\"IBOVESPA fechamento 09/01/2026\"",
		"janeiro de 2026",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected %q in weekend user prompt", want)
		}
	}
	if strings.Contains(prompt, "{date}") || strings.Contains(prompt, "{month}") {
		t.Error("Expected placeholders substituted")
	}
}

func TestBuildUserPromptWithPreFetchedData(t *testing.T) {
	pre := []prefetch.Formatted{
		{Key: "cepea_coffee", Text: "Fonte: https://cepea.org.br\nCapturado em: 12/01/2026, 06:00:00\n\nR$ 2.225,39"},
	}
	prompt := BuildUserPrompt(UserPromptInput{Today: monday, Farm: farm, PreFetched: pre})

	section := strings.Index(prompt, "DADOS PRÉ-CARREGADOS (FONTE DIRETA - PRIORIDADE)")
	farmIdx := strings.Index(prompt, "DADOS DA FAZENDA")
	if section < 0 || farmIdx < 0 || section > farmIdx {
		t.Fatal("Expected pre-fetched section before the farm table")
	}
	if !strings.Contains(prompt, "### CEPEA_COFFEE\nFonte: https://cepea.org.br") {
		t.Error("Expected upper-cased source key followed by its content")
	}
}

func TestChatSystemPrompt(t *testing.T) {
	plain := ChatSystemPrompt("## MERCADO DE CAFÉ\n\nalta", "")
	if !strings.Contains(plain, "BRIEFING DE HOJE:\n## MERCADO DE CAFÉ\n\nalta") {
		t.Error("Expected briefing content embedded")
	}
	if strings.Contains(plain, "CONTEXTO DA SEÇÃO SELECIONADA") {
		t.Error("Expected no section context block")
	}

	withSection := ChatSystemPrompt("conteúdo", "Margem de 38%")
	if !strings.Contains(withSection, "CONTEXTO DA SEÇÃO SELECIONADA:") || !strings.Contains(withSection, "Margem de 38%") {
		t.Error("Expected section context block")
	}
	if !strings.HasSuffix(withSection, "Responda sempre em português do Brasil.") {
		t.Error("Expected closing instruction")
	}
}
