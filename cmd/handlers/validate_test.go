package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"morningbrief/internal/validation"
)

const briefingWithFutureDate = `## MERCADO DE CAFÉ

CEPEA Arábica R$ 2.225,39/saca (fechamento 09/01/2026, Fonte: CEPEA).
Próxima colheita prevista para 15/03/2099.
`

func writeBriefing(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "briefing.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestValidateJSONReport(t *testing.T) {
	path := writeBriefing(t, briefingWithFutureDate)

	var out bytes.Buffer
	err := runValidate(&out, path, "json", "2026-01-12", false, "")
	if !errors.Is(err, errInvalidBriefing) {
		t.Fatalf("Expected errInvalidBriefing, got %v", err)
	}

	var result validation.Result
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("Expected JSON report, got %q: %v", out.String(), err)
	}
	if result.Valid || result.Stats.FutureDates != 1 {
		t.Errorf("Expected one future date, got %+v", result)
	}
}

func TestValidateYAMLReportForValidText(t *testing.T) {
	text := strings.Replace(briefingWithFutureDate, "Próxima colheita prevista para 15/03/2099.\n", "", 1)
	path := writeBriefing(t, text)

	var out bytes.Buffer
	if err := runValidate(&out, path, "yaml", "2026-01-12", false, ""); err != nil {
		t.Fatalf("Expected valid briefing, got %v", err)
	}

	var report map[string]interface{}
	if err := yaml.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Expected YAML report: %v", err)
	}
	if report["valid"] != true {
		t.Errorf("Expected valid: true, got %v", report["valid"])
	}
}

func TestValidateFixWritesCorrections(t *testing.T) {
	path := writeBriefing(t, briefingWithFutureDate)
	fixed := filepath.Join(t.TempDir(), "fixed.md")

	var out bytes.Buffer
	_ = runValidate(&out, path, "text", "2026-01-12", true, fixed)

	data, err := os.ReadFile(fixed)
	if err != nil {
		t.Fatalf("Expected corrected file: %v", err)
	}
	if strings.Contains(string(data), "15/03/2099") {
		t.Error("Expected the future date to be replaced")
	}
	if !strings.Contains(out.String(), "RELATÓRIO DE VALIDAÇÃO") {
		t.Error("Expected the text report")
	}
}

func TestValidateRejectsBadFlags(t *testing.T) {
	path := writeBriefing(t, briefingWithFutureDate)
	var out bytes.Buffer

	if err := runValidate(&out, path, "xml", "2026-01-12", false, ""); err == nil || errors.Is(err, errInvalidBriefing) {
		t.Errorf("Expected format error, got %v", err)
	}
	if err := runValidate(&out, path, "json", "12/01/2026", false, ""); err == nil {
		t.Error("Expected error for a malformed date")
	}
	if err := runValidate(&out, filepath.Join(t.TempDir(), "missing.md"), "json", "2026-01-12", false, ""); err == nil {
		t.Error("Expected error for a missing file")
	}
}
