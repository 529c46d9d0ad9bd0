package server

import (
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"morningbrief/internal/core"
	"morningbrief/internal/sections"
	"morningbrief/internal/validation"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
	defaultDeleteDays   = 3
)

// GenerateResponse is returned after a briefing is generated
type GenerateResponse struct {
	Success    bool               `json:"success"`
	Briefing   *core.Briefing     `json:"briefing"`
	Validation *validation.Result `json:"validation,omitempty"`
}

// HistoryResponse lists past briefings, newest first
type HistoryResponse struct {
	Briefings []core.Briefing `json:"briefings"`
	Total     int             `json:"total"`
}

// SectionView is one section of a stored briefing
type SectionView struct {
	sections.Section
	Content            string   `json:"content"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
}

// DeleteResponse reports an administrative delete
type DeleteResponse struct {
	Success bool   `json:"success"`
	Deleted int    `json:"deleted"`
	Message string `json:"message,omitempty"`
}

// handleGenerate handles POST /api/briefing/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	b, result, err := s.deps.Briefings.Generate(r.Context())
	if err != nil {
		s.respondFailure(w, r, err, "Erro ao gerar briefing")
		return
	}

	s.respondJSON(w, http.StatusOK, GenerateResponse{
		Success:    true,
		Briefing:   b,
		Validation: result,
	})
}

// handleBriefingStatus handles GET /api/briefing/status
func (s *Server) handleBriefingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.deps.Briefings.Status(r.Context())
	if err != nil {
		s.respondFailure(w, r, err, "Erro ao verificar status")
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

// handleBriefingHistory handles GET /api/briefing/history
func (s *Server) handleBriefingHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "Parâmetro limit inválido")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	briefings, err := s.deps.Store.GetBriefingHistory(r.Context(), limit)
	if err != nil {
		s.respondFailure(w, r, err, "Erro ao buscar histórico")
		return
	}
	if briefings == nil {
		briefings = []core.Briefing{}
	}

	s.respondJSON(w, http.StatusOK, HistoryResponse{
		Briefings: briefings,
		Total:     len(briefings),
	})
}

// handleGetBriefing handles GET /api/briefing/{id}. ?format=html returns
// the rendered document instead of JSON.
func (s *Server) handleGetBriefing(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBriefing(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "<article>\n<h1>%s</h1>\n%s</article>\n", html.EscapeString(b.Title), sections.RenderHTML(b.Content))
		return
	}

	s.respondJSON(w, http.StatusOK, b)
}

// handleBriefingSections handles GET /api/briefing/{id}/sections
func (s *Server) handleBriefingSections(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBriefing(w, r)
	if !ok {
		return
	}

	found := sections.Extract(b.Content)
	views := make([]SectionView, 0, len(found))
	for _, sec := range found {
		content, _ := sections.Content(b.Content, sec.ID)
		views = append(views, SectionView{
			Section:            sec,
			Content:            content,
			SuggestedQuestions: sections.SuggestedQuestions(sec.ID),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"briefingId": b.ID,
		"sections":   views,
		"missing":    sections.Missing(b.Content),
	})
}

func (s *Server) loadBriefing(w http.ResponseWriter, r *http.Request) (*core.Briefing, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Briefing ID is required")
		return nil, false
	}

	b, err := s.deps.Store.GetBriefingByID(r.Context(), id)
	if err != nil {
		s.respondFailure(w, r, err, "Erro ao buscar briefing")
		return nil, false
	}
	return b, true
}

// handleClearBriefings handles POST /api/briefing/clear
func (s *Server) handleClearBriefings(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.deps.Store.DeleteAllBriefings(r.Context())
	if err != nil {
		s.respondFailure(w, r, err, "Failed to clear briefings")
		return
	}

	s.log.Info("Cleared briefings", "deleted", deleted)
	s.respondJSON(w, http.StatusOK, DeleteResponse{Success: true, Deleted: deleted})
}

// handleDeleteRecent handles POST /api/briefing/delete-recent. It removes
// briefings from the last ?days=N locale days, today included.
func (s *Server) handleDeleteRecent(w http.ResponseWriter, r *http.Request) {
	days := defaultDeleteDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "Parâmetro days inválido")
			return
		}
		days = n
	}

	since := s.deps.Briefings.Today().AddDays(-(days - 1))
	deleted, err := s.deps.Store.DeleteBriefingsSince(r.Context(), since)
	if err != nil {
		s.respondFailure(w, r, err, "Failed to delete briefings")
		return
	}

	s.log.Info("Deleted recent briefings", "since", since.String(), "deleted", deleted)
	s.respondJSON(w, http.StatusOK, DeleteResponse{
		Success: true,
		Deleted: deleted,
		Message: fmt.Sprintf("Deleted %d briefing(s)", deleted),
	})
}
