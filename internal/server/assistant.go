package server

import (
	"net/http"
)

type assistantInput struct {
	Prompt string `form:"prompt" json:"prompt"`
}

func (s *Service) handleAssistant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input assistantInput
	if err := s.decodeRequest(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	reply, err := s.assistant.Ask(ctx, input.Prompt)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
