package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

// POST /api/admin/users/{userID}/ban
func (h *Handler) AdminBan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req RestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	res, err := h.admin.Ban(r.Context(), req.World, userID, req.AdminUserID, req.Reason, req.DurationHours)
	if err != nil {
		h.restrictionError(w, "AdminBan", err)
		return
	}
	writeJSON(w, http.StatusOK, RestrictionResponse{
		Success:   true,
		UserID:    res.UserID,
		Kind:      res.Kind,
		Reason:    res.Reason,
		ExpiresAt: res.ExpiresAt,
	})
}

// POST /api/admin/users/{userID}/mute
func (h *Handler) AdminMute(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req RestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	res, err := h.admin.Mute(r.Context(), req.World, userID, req.AdminUserID, req.Reason, req.DurationMinutes)
	if err != nil {
		h.restrictionError(w, "AdminMute", err)
		return
	}
	writeJSON(w, http.StatusOK, RestrictionResponse{
		Success:   true,
		UserID:    res.UserID,
		Kind:      res.Kind,
		Reason:    res.Reason,
		ExpiresAt: res.ExpiresAt,
	})
}

// POST /api/admin/users/{userID}/unban
func (h *Handler) AdminUnban(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req RestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	if err := h.admin.Unban(r.Context(), req.World, userID, req.AdminUserID); err != nil {
		h.restrictionError(w, "AdminUnban", err)
		return
	}
	writeJSON(w, http.StatusOK, RestrictionResponse{
		Success: true,
		UserID:  userID,
		Kind:    "unban",
	})
}

// GET /api/admin/users/{userID}/restrictions?world=
func (h *Handler) AdminRestrictions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	world := r.URL.Query().Get("world")

	ban, mute, err := h.admin.Status(r.Context(), world, userID)
	if err != nil {
		h.restrictionError(w, "AdminRestrictions", err)
		return
	}

	resp := RestrictionStatusResponse{Success: true, UserID: userID, World: world}
	if ban != nil {
		resp.Ban = &RestrictionItem{Reason: ban.Reason, ExpiresAt: ban.ExpiresAt}
	}
	if mute != nil {
		resp.Mute = &RestrictionItem{Reason: mute.Reason, ExpiresAt: mute.ExpiresAt}
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/admin/actions
func (h *Handler) AdminLogAction(w http.ResponseWriter, r *http.Request) {
	var req AdminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	a := &domain.AdminAction{
		ActionType:   req.ActionType,
		TargetUserID: req.TargetUserID,
		AdminUserID:  req.AdminUserID,
		World:        req.World,
		RoomID:       req.RoomID,
		Reason:       req.Reason,
	}
	if err := h.admin.LogAction(r.Context(), a); err != nil {
		slog.Error("handler.AdminLogAction:", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/admin/actions/{world}?limit=
func (h *Handler) AdminActions(w http.ResponseWriter, r *http.Request) {
	world := chi.URLParam(r, "world")

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	actions, err := h.admin.Actions(r.Context(), world, limit)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownWorld) {
			writeErr(w, http.StatusBadRequest, "unknown world", nil)
			return
		}
		slog.Error("handler.AdminActions:", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"world":   world,
		"actions": actions,
	})
}

// GET /api/admin/voice-calls/{world}
func (h *Handler) AdminVoiceCalls(w http.ResponseWriter, r *http.Request) {
	world := chi.URLParam(r, "world")

	calls, err := h.voice.ActiveCalls(r.Context(), world)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownWorld) {
			writeErr(w, http.StatusBadRequest, "unknown world", nil)
			return
		}
		slog.Error("handler.AdminVoiceCalls:", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	items := make([]ActiveCallItem, 0, len(calls))
	for _, c := range calls {
		items = append(items, ActiveCallItem{
			RoomID:           c.RoomID,
			ParticipantCount: c.Count,
			Participants:     c.Participants,
			StartedAt:        c.StartedAt,
			DurationSeconds:  c.DurationSeconds,
		})
	}

	writeJSON(w, http.StatusOK, ActiveCallsResponse{
		Success:          true,
		World:            world,
		Calls:            items,
		TotalActiveCalls: len(items),
	})
}

func (h *Handler) restrictionError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUnknownWorld) {
		writeErr(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	slog.Error("handler."+op+":", slog.Any("err", err))
	writeErr(w, http.StatusInternalServerError, "internal error", nil)
}
