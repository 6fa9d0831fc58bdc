package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

// GET /api/rooms/{roomID}/messages?cursor=&limit=
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	after := r.URL.Query().Get("cursor")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeErr(w, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = n
	}

	msgs, next, err := h.chat.History(r.Context(), roomID, after, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeErr(w, http.StatusBadRequest, "invalid cursor", nil)
			return
		}
		slog.Error("handler.ChatHistory:", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	items := make([]ChatMessageItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, ChatMessageItem{
			ID:        m.ID,
			RoomID:    m.RoomID,
			UserID:    m.UserID,
			Username:  m.Username,
			Text:      m.Text,
			Realm:     m.Realm,
			Avatar:    m.Avatar,
			CreatedAt: m.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, ChatHistoryResponse{Items: items, NextCursor: next})
}
