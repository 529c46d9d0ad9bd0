package server

import (
	"encoding/json"
	"net/http"

	"morningbrief/internal/core"
)

// SettingsResponse wraps the farm settings
type SettingsResponse struct {
	Settings *core.Settings `json:"settings"`
}

// handleGetSettings handles GET /api/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Store.GetSettings(r.Context())
	if err != nil {
		s.respondFailure(w, r, err, "Erro ao buscar configurações")
		return
	}
	s.respondJSON(w, http.StatusOK, SettingsResponse{Settings: settings})
}

// handleSaveSettings handles POST /api/settings. The production cost is
// required; omitted logistics and tax fall back to the configured defaults.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req core.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}

	if req.ProductionCost == nil || *req.ProductionCost <= 0 {
		s.respondError(w, http.StatusBadRequest, "Custo de produção inválido")
		return
	}
	if req.LogisticsCost == nil || *req.LogisticsCost <= 0 {
		logistics := s.deps.Defaults.LogisticsCost
		req.LogisticsCost = &logistics
	}
	if req.TaxRate == nil || *req.TaxRate <= 0 {
		tax := s.deps.Defaults.TaxRate
		req.TaxRate = &tax
	}
	if *req.TaxRate >= 1 {
		s.respondError(w, http.StatusBadRequest, "Alíquota de imposto inválida")
		return
	}

	settings, err := s.deps.Store.SaveSettings(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err, "Erro ao salvar configurações")
		return
	}

	s.log.Info("Farm settings saved",
		"production_cost", *settings.ProductionCost,
		"logistics_cost", settings.LogisticsCost)
	s.respondJSON(w, http.StatusOK, SettingsResponse{Settings: settings})
}
