package sections

import (
	"strings"
	"testing"

	"morningbrief/internal/core"
)

const sample = `# Briefing

## ABERTURA PERSONALIZADA

O café abriu em alta.

## ☕ Mercado de Café

### Indicadores

| Métrica | Valor |
|---------|-------|
| CEPEA Arábica | R$ 2.225,39/saca |

## BRASIL HOJE

### Economia

IBOVESPA estável.

### Política Nacional

- Congresso: votação adiada.

## **ESPORTES**

Tricolor venceu.

## FONTES

- cepea.org.br
`

func TestExtract(t *testing.T) {
	got := Extract(sample)
	want := []core.SectionID{
		core.SectionOpening,
		core.SectionCoffee,
		core.SectionBrazil,
		core.SectionNationalPolitics,
		core.SectionSports,
		core.SectionSources,
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d sections, got %d: %+v", len(want), len(got), got)
	}
	for i, s := range got {
		if s.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], s.ID)
		}
	}
	if got[3].Level != 3 {
		t.Errorf("Expected national politics at level 3, got %d", got[3].Level)
	}
}

func TestMissing(t *testing.T) {
	missing := Missing(sample)
	if len(missing) != 8 {
		t.Errorf("Expected 8 missing sections, got %d: %v", len(missing), missing)
	}
	for _, id := range missing {
		if id == core.SectionCoffee {
			t.Error("Coffee section should not be reported missing")
		}
	}

	var full strings.Builder
	for _, spec := range core.Sections() {
		full.WriteString(spec.Heading() + "\n\ntexto\n\n")
	}
	if m := Missing(full.String()); len(m) != 0 {
		t.Errorf("Expected no missing sections, got %v", m)
	}
}

func TestContent(t *testing.T) {
	content, ok := Content(sample, core.SectionBrazil)
	if !ok {
		t.Fatal("Expected BRASIL HOJE content")
	}
	if !strings.Contains(content, "IBOVESPA estável.") || !strings.Contains(content, "votação adiada") {
		t.Errorf("Expected nested subsections in content, got %q", content)
	}
	if strings.Contains(content, "Tricolor") {
		t.Errorf("Expected content to stop at the next level-2 heading, got %q", content)
	}

	politics, ok := Content(sample, core.SectionNationalPolitics)
	if !ok || politics != "- Congresso: votação adiada." {
		t.Errorf("Unexpected politics content %q", politics)
	}

	sources, ok := Content(sample, core.SectionSources)
	if !ok || sources != "- cepea.org.br" {
		t.Errorf("Unexpected sources content %q", sources)
	}

	if _, ok := Content(sample, core.SectionHealth); ok {
		t.Error("Expected health section to be absent")
	}
}

func TestRenderHTML(t *testing.T) {
	out := RenderHTML("## MERCADO DE CAFÉ\n\n[CEPEA](https://www.cepea.org.br)")
	if !strings.Contains(out, "<h2") {
		t.Errorf("Expected h2 heading, got %s", out)
	}
	if !strings.Contains(out, `target="_blank"`) {
		t.Errorf("Expected external links to open in a new tab, got %s", out)
	}
	if RenderHTML("") != "" {
		t.Error("Expected empty output for empty input")
	}
}

func TestSuggestedQuestions(t *testing.T) {
	coffee := SuggestedQuestions(core.SectionCoffee)
	if len(coffee) != 3 || coffee[0] != "Qual é a margem atual da fazenda?" {
		t.Errorf("Unexpected coffee questions: %v", coffee)
	}
	if got := SuggestedQuestions(core.SectionSources); len(got) != 4 {
		t.Errorf("Expected default questions for sources, got %v", got)
	}
	coffee[0] = "mutated"
	if SuggestedQuestions(core.SectionCoffee)[0] == "mutated" {
		t.Error("Expected a copy of the question list")
	}
}
