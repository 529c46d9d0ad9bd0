package validation

import (
	"fmt"
	"sort"
	"strings"
)

// ApplyCorrections replaces every occurrence of each key of corrections
// with its value. Keys are applied longest first, ties in lexical order, so
// a key that is a substring of another never pre-empts it.
func ApplyCorrections(text string, corrections map[string]string) string {
	for _, original := range sortedKeys(corrections) {
		if original == "" {
			continue
		}
		text = strings.ReplaceAll(text, original, corrections[original])
	}
	return text
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

const reportRule = "═══════════════════════════════════════════════════════════════"

// Report renders r as a Portuguese text report for logs and the CLI.
func Report(r Result) string {
	lines := []string{
		reportRule,
		"                    RELATÓRIO DE VALIDAÇÃO",
		reportRule,
		"",
	}
	if r.Valid {
		lines = append(lines, "Status: ✅ VÁLIDO")
	} else {
		lines = append(lines, "Status: ❌ INVÁLIDO")
	}
	lines = append(lines,
		"",
		"Estatísticas:",
		fmt.Sprintf("  - Datas futuras encontradas: %d", r.Stats.FutureDates),
		fmt.Sprintf("  - Referências a mercados em fim de semana: %d", r.Stats.WeekendMarketReferences),
		fmt.Sprintf("  - Preços fora da faixa: %d", r.Stats.PricesOutOfRange),
		fmt.Sprintf("  - Dados sem data de referência: %d", r.Stats.MissingDates),
		"",
	)

	if len(r.Errors) > 0 {
		lines = append(lines, "ERROS (impedem validação):")
		for _, e := range r.Errors {
			lines = append(lines, "  ❌ "+e)
		}
		lines = append(lines, "")
	}
	if len(r.Warnings) > 0 {
		lines = append(lines, "AVISOS (requerem atenção):")
		for _, w := range r.Warnings {
			lines = append(lines, "  ⚠️ "+w)
		}
		lines = append(lines, "")
	}
	if len(r.Corrections) > 0 {
		lines = append(lines, "CORREÇÕES SUGERIDAS:")
		for _, k := range sortedKeys(r.Corrections) {
			lines = append(lines, fmt.Sprintf("  %s → %s", k, r.Corrections[k]))
		}
		lines = append(lines, "")
	}

	lines = append(lines, reportRule)
	return strings.Join(lines, "\n")
}
