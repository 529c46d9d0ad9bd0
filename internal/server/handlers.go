package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"morningbrief/internal/chat"
	"morningbrief/internal/core"
	"morningbrief/internal/persistence"
)

// HealthResponse is returned by /health
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := s.deps.Store.Ping(r.Context()); err != nil {
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}

	checks["database"] = "ok"

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes {"error": {"status": ..., "message": ...}}
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"status":  status,
			"message": message,
		},
	})
}

// respondFailure maps a service error onto its HTTP status and user-facing
// message. Internal details are logged, never returned.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	message := core.UserMessage(err, fallback)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		message = "Briefing não encontrado"
	case errors.Is(err, chat.ErrInvalidRequest):
		message = "Requisição inválida"
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.log.Warn("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	s.respondError(w, status, message)
}

func statusFor(err error) int {
	var (
		cfgErr  *core.ConfigurationError
		rateErr *core.RateLimitError
		genErr  *core.GenerationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	case errors.Is(err, persistence.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
