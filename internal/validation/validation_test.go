package validation

import (
	"strings"
	"testing"
	"time"

	"morningbrief/internal/calendar"
	"morningbrief/internal/core"
)

var (
	sunday   = core.NewDate(2026, time.January, 11)
	saturday = core.NewDate(2026, time.January, 10)
	tuesday  = core.NewDate(2026, time.January, 13)
)

func TestFutureDateIsHardError(t *testing.T) {
	r := ValidateOn("Previsão para 15/03/2099 e dado de 10/01/2026.", sunday)
	if r.Valid {
		t.Fatal("Expected future date to invalidate the briefing")
	}
	if r.Stats.FutureDates != 1 || len(r.Errors) != 1 {
		t.Fatalf("Expected one future date error, got %+v", r)
	}
	if !strings.Contains(r.Errors[0], "15/03/2099") || !strings.Contains(r.Errors[0], "Hoje é 11/01/2026") {
		t.Errorf("Unexpected error message %q", r.Errors[0])
	}
	if got := r.Corrections["15/03/2099"]; got != "09/01/2026" {
		t.Errorf("Expected correction to the last business day 09/01/2026, got %q", got)
	}
}

func TestPastAndTodayDatesAreValid(t *testing.T) {
	r := ValidateOn("Fechamento de 09/01/2026 e agenda de 11/01/2026.", sunday)
	if !r.Valid || len(r.Errors) != 0 || len(r.Corrections) != 0 {
		t.Errorf("Expected valid result, got %+v", r)
	}
}

func TestFutureDatesSkipsNonDates(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		today core.Date
	}{
		{"out of range", "placar 45/99/2099 e 3/1/2026", sunday},
		{"day past month end", "dado de 31/02/2026", core.NewDate(2026, time.March, 2)},
		{"not a leap year", "vencimento 29/02/2027", sunday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FutureDates(tt.text, tt.today); len(got) != 0 {
				t.Errorf("Expected no future dates, got %v", got)
			}
		})
	}

	if got := FutureDates("vencimento 29/02/2028", sunday); len(got) != 1 {
		t.Errorf("Expected leap day 29/02/2028 to count, got %v", got)
	}
	got := FutureDates("12/01/2026, 12/01/2026 e 1/2/2027", sunday)
	if len(got) != 2 || got[0] != "12/01/2026" || got[1] != "1/2/2027" {
		t.Errorf("Expected distinct future dates in order, got %v", got)
	}
}

func TestWeekendMarketReferences(t *testing.T) {
	text := "O fechamento de hoje mostrou alta do café."

	sat := ValidateOn(text, saturday)
	if sat.Stats.WeekendMarketReferences < 1 {
		t.Fatalf("Expected weekend warning on Saturday, got %+v", sat)
	}
	if !strings.Contains(sat.Warnings[0], "Use dados de 09/01/2026") {
		t.Errorf("Expected last business day in warning, got %q", sat.Warnings[0])
	}
	if !sat.Valid {
		t.Error("Expected warnings not to affect validity")
	}

	tue := ValidateOn(text, tuesday)
	if tue.Stats.WeekendMarketReferences != 0 {
		t.Errorf("Expected no weekend warnings on Tuesday, got %d", tue.Stats.WeekendMarketReferences)
	}
}

func TestWeekendTermsAreCaseInsensitive(t *testing.T) {
	r := ValidateOn("HOJE A BOLSA abriu.", sunday)
	if r.Stats.WeekendMarketReferences != 1 {
		t.Errorf("Expected one weekend reference, got %d", r.Stats.WeekendMarketReferences)
	}
}

func TestPriceRanges(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"coffee too low", "Café CEPEA: R$ 500,00/saca (09/01/2026)", 1},
		{"coffee in range", "Café CEPEA: R$ 2.200,00/saca (09/01/2026)", 0},
		{"ibovespa in range", "IBOVESPA fechou em 128.500 pontos (09/01/2026)", 0},
		{"ibovespa too low", "IBOVESPA: 95.000 pontos (09/01/2026)", 1},
		{"dollar in range", "O dólar a R$ 5,45 (09/01/2026)", 0},
		{"dollar too high", "O dólar a R$ 9,80 (09/01/2026)", 1},
		{"soy too high", "Soja: R$ 250,00/saca", 1},
		{"corn in range", "Milho: R$ 72,50/saca", 0},
		{"cattle in range", "Boi gordo: R$ 320,00/@", 0},
		{"ice too high", "ICE KC: 650,00 ¢/lb", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateOn(tt.text, tuesday)
			if r.Stats.PricesOutOfRange != tt.want {
				t.Errorf("Expected %d out-of-range prices, got %d (%v)", tt.want, r.Stats.PricesOutOfRange, r.Warnings)
			}
		})
	}
}

func TestPriceWarningNamesIndicatorAndBounds(t *testing.T) {
	r := ValidateOn("Café CEPEA: R$ 500,00/saca (09/01/2026)", tuesday)
	want := "Café CEPEA: 500 R$/saca está fora da faixa esperada (1800 - 3200 R$/saca). Verifique a fonte."
	found := false
	for _, w := range r.Warnings {
		if w == want {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected warning %q, got %v", want, r.Warnings)
	}
}

func TestMissingCitations(t *testing.T) {
	r := ValidateOn("- CEPEA: R$ 2.225,39/saca\n- IPCA acumulado em 4,5% - Fonte: IBGE\n- Selic em 15% (10/12/2025)", tuesday)
	if r.Stats.MissingDates != 1 {
		t.Fatalf("Expected one uncited line, got %d: %v", r.Stats.MissingDates, r.Warnings)
	}
	if !strings.Contains(r.Warnings[len(r.Warnings)-1], "\"CEPEA: R$ 2.225,39/saca...\"") {
		t.Errorf("Unexpected citation warning %q", r.Warnings[len(r.Warnings)-1])
	}

	long := "CEPEA " + strings.Repeat("x", 200) + " R$ 1"
	r = ValidateOn(long, tuesday)
	if r.Stats.MissingDates != 1 || !strings.Contains(r.Warnings[0], strings.Repeat("x", 74)+"...") {
		t.Errorf("Expected an 80-character excerpt, got %v", r.Warnings)
	}
}

func TestParseBRNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2.200,00", 2200},
		{"2200,00", 2200},
		{"2,200.00", 2200},
		{"128.500", 128500},
		{"1.234.567", 1234567},
		{"5,45", 5.45},
		{"5.45", 5.45},
		{"245", 245},
		{"2.225,39", 2225.39},
	}
	for _, tt := range tests {
		got, err := ParseBRNumber(tt.in)
		if err != nil {
			t.Errorf("ParseBRNumber(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBRNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseBRNumber(".,"); err == nil {
		t.Error("Expected error for separators only")
	}
}

func TestApplyCorrections(t *testing.T) {
	corrections := map[string]string{"15/03/2099": "09/01/2026"}
	text := "Dado de 15/03/2099 e novamente 15/03/2099."

	once := ApplyCorrections(text, corrections)
	if once != "Dado de 09/01/2026 e novamente 09/01/2026." {
		t.Errorf("Expected every occurrence replaced, got %q", once)
	}
	if twice := ApplyCorrections(once, corrections); twice != once {
		t.Errorf("Expected second application to be a no-op, got %q", twice)
	}
}

func TestApplyCorrectionsLongestKeyFirst(t *testing.T) {
	got := ApplyCorrections("11/03/2099 e 1/03/2099", map[string]string{
		"1/03/2099":  "X",
		"11/03/2099": "Y",
	})
	if got != "Y e X" {
		t.Errorf("Expected overlapping keys resolved longest first, got %q", got)
	}
	if ApplyCorrections("texto", nil) != "texto" {
		t.Error("Expected nil map to leave text untouched")
	}
}

func TestValidatorUsesLocaleDate(t *testing.T) {
	loc, err := calendar.LoadLocale(calendar.DefaultTimezone)
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// 01:00 UTC on Monday is still Sunday evening in São Paulo.
	clock := calendar.FixedClock{T: time.Date(2026, time.January, 12, 1, 0, 0, 0, time.UTC)}
	r := New(loc, clock).Validate("fechamento de hoje e 12/01/2026")
	if r.Stats.WeekendMarketReferences != 1 {
		t.Errorf("Expected Sunday weekend scan, got %+v", r.Stats)
	}
	if r.Stats.FutureDates != 1 {
		t.Errorf("Expected Monday to be a future date on Sunday, got %+v", r.Stats)
	}
}

func TestReport(t *testing.T) {
	r := ValidateOn("Previsão 15/03/2099. O fechamento de hoje.", sunday)
	report := Report(r)
	for _, want := range []string{
		"RELATÓRIO DE VALIDAÇÃO",
		"Status: ❌ INVÁLIDO",
		"  - Datas futuras encontradas: 1",
		"  - Referências a mercados em fim de semana: 1",
		"ERROS (impedem validação):",
		"AVISOS (requerem atenção):",
		"  15/03/2099 → 09/01/2026",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Expected %q in report:\n%s", want, report)
		}
	}

	clean := Report(ValidateOn("Nada a declarar.", tuesday))
	if !strings.Contains(clean, "Status: ✅ VÁLIDO") || strings.Contains(clean, "ERROS") {
		t.Errorf("Unexpected clean report:\n%s", clean)
	}
}

func TestExpectedRanges(t *testing.T) {
	ranges := ExpectedRanges()
	if len(ranges) != 7 {
		t.Fatalf("Expected 7 ranges, got %d", len(ranges))
	}
	coffee, ok := RangeFor("coffee_cepea")
	if !ok || coffee.Min != 1800 || coffee.Max != 3200 {
		t.Errorf("Unexpected coffee range %+v", coffee)
	}
	if !coffee.Contains(1800) || !coffee.Contains(3200) || coffee.Contains(3200.01) {
		t.Error("Expected inclusive bounds")
	}
}
