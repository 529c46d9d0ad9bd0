package server

import (
	"encoding/json"
	"net/http"

	"morningbrief/internal/chat"
)

// handleChat handles POST /api/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}

	reply, err := s.deps.Chat.Reply(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err, "Erro ao processar a pergunta")
		return
	}

	s.respondJSON(w, http.StatusOK, reply)
}
