package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

// POST /api/research/generate
func (h *Handler) ResearchGenerate(w http.ResponseWriter, r *http.Request) {
	var req ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	rep, err := h.research.Generate(r.Context(), req.Topic, req.World)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeErr(w, http.StatusBadRequest, "topic is required", nil)
		case errors.Is(err, domain.ErrUnknownWorld):
			writeErr(w, http.StatusBadRequest, "unknown world", nil)
		default:
			slog.Error("handler.ResearchGenerate:", slog.Any("err", err))
			writeErr(w, http.StatusBadGateway, "research generation failed", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, ResearchResponse{
		Success:   true,
		ID:        rep.ID,
		Topic:     rep.Topic,
		Research:  rep.Content,
		Model:     rep.Model,
		CreatedAt: rep.CreatedAt,
	})
}
