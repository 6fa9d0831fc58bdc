package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

// POST /api/voice/join
func (h *Handler) VoiceJoin(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	adm, err := h.voice.Join(r.Context(), req.RoomID, req.UserID, req.Username, req.World)
	if err != nil {
		var full *domain.RoomFullError
		var dup *domain.AlreadyJoinedError
		switch {
		case errors.As(err, &full):
			writeErr(w, http.StatusForbidden, "room is full", map[string]any{
				"current_participant_count": full.Count,
				"max_participants":          full.Max,
			})
		case errors.As(err, &dup):
			writeErr(w, http.StatusConflict, "user already in room", map[string]any{
				"session_id": dup.SessionID,
			})
		case errors.Is(err, domain.ErrUserBanned):
			writeErr(w, http.StatusForbidden, "user is banned", nil)
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownWorld):
			writeErr(w, http.StatusBadRequest, err.Error(), nil)
		default:
			slog.Error("handler.VoiceJoin:", slog.Any("err", err))
			writeErr(w, http.StatusInternalServerError, "internal error", nil)
		}
		return
	}

	participants := make([]ParticipantItem, 0, len(adm.Peers))
	for _, p := range adm.Peers {
		participants = append(participants, ParticipantItem{
			UserID:   p.UserID,
			Username: p.Username,
			IsMuted:  p.IsMuted,
		})
	}

	writeJSON(w, http.StatusOK, JoinResponse{
		Success:         true,
		SessionID:       adm.SessionID,
		RoomID:          adm.RoomID,
		MaxParticipants: adm.Max,
		CurrentCount:    adm.Count,
		Participants:    participants,
		JoinedAt:        adm.JoinedAt,
	})
}

// POST /api/voice/leave
func (h *Handler) VoiceLeave(w http.ResponseWriter, r *http.Request) {
	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	sum, err := h.voice.Leave(r.Context(), req.SessionID)
	if err != nil {
		var ended *domain.SessionEndedError
		switch {
		case errors.As(err, &ended):
			writeErr(w, http.StatusConflict, "session already ended", map[string]any{
				"left_at": ended.LeftAt,
			})
		case errors.Is(err, domain.ErrSessionNotFound):
			writeErr(w, http.StatusNotFound, "session not found", nil)
		case errors.Is(err, domain.ErrInvalidInput):
			writeErr(w, http.StatusBadRequest, err.Error(), nil)
		default:
			slog.Error("handler.VoiceLeave:", slog.Any("err", err))
			writeErr(w, http.StatusInternalServerError, "internal error", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, LeaveResponse{
		Success:         true,
		SessionID:       sum.SessionID,
		RoomID:          sum.RoomID,
		UserID:          sum.UserID,
		DurationSeconds: sum.DurationSeconds,
		LeftAt:          sum.LeftAt,
	})
}

// GET /api/voice/rooms/{world}
func (h *Handler) VoiceRooms(w http.ResponseWriter, r *http.Request) {
	world := chi.URLParam(r, "world")

	rooms, err := h.voice.ActiveRooms(r.Context(), world)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownWorld) {
			writeErr(w, http.StatusBadRequest, "unknown world", nil)
			return
		}
		slog.Error("handler.VoiceRooms:", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	items := make([]ActiveRoomItem, 0, len(rooms))
	for _, rm := range rooms {
		items = append(items, ActiveRoomItem{
			RoomID:           rm.RoomID,
			ParticipantCount: rm.Count,
			MaxParticipants:  rm.Max,
			IsFull:           rm.IsFull,
			FirstJoinedAt:    rm.FirstJoinedAt,
		})
	}

	writeJSON(w, http.StatusOK, ActiveRoomsResponse{
		Success:          true,
		World:            world,
		Rooms:            items,
		TotalActiveRooms: len(items),
	})
}
