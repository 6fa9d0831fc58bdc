package http

import (
	"context"
	"net/http"
	"time"

	"github.com/weltenbibliothek/community-service/internal/blob"
	"github.com/weltenbibliothek/community-service/internal/domain"
	"github.com/weltenbibliothek/community-service/internal/service"
	"github.com/weltenbibliothek/community-service/pkg/httputil"
)

type VoiceAPI interface {
	Join(ctx context.Context, roomID, userID, username, world string) (*domain.Admission, error)
	Leave(ctx context.Context, sessionID string) (*domain.LeaveSummary, error)
	ActiveRooms(ctx context.Context, world string) ([]domain.ActiveRoom, error)
	ActiveCalls(ctx context.Context, world string) ([]domain.ActiveCall, error)
}

type ChatAPI interface {
	History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error)
}

type AdminAPI interface {
	Ban(ctx context.Context, world, userID, adminID, reason string, hours int) (*domain.Restriction, error)
	Mute(ctx context.Context, world, userID, adminID, reason string, minutes int) (*domain.Restriction, error)
	Unban(ctx context.Context, world, userID, adminID string) error
	Status(ctx context.Context, world, userID string) (ban, mute *domain.Restriction, err error)
	LogAction(ctx context.Context, a *domain.AdminAction) error
	Actions(ctx context.Context, world string, limit int) ([]domain.AdminAction, error)
}

type ResearchAPI interface {
	Generate(ctx context.Context, topic, world string) (*domain.ResearchReport, error)
}

type MediaAPI interface {
	Upload(ctx context.Context, up service.MediaUpload) (*blob.ObjectInfo, error)
	Get(ctx context.Context, name string) ([]byte, *blob.ObjectInfo, error)
	Delete(ctx context.Context, name string) error
}

type Handler struct {
	voice    VoiceAPI
	chat     ChatAPI
	admin    AdminAPI
	research ResearchAPI
	media    MediaAPI

	startedAt time.Time
}

func NewHandler(voice VoiceAPI, chat ChatAPI, admin AdminAPI, research ResearchAPI, media MediaAPI) *Handler {
	return &Handler{
		voice:     voice,
		chat:      chat,
		admin:     admin,
		research:  research,
		media:     media,
		startedAt: time.Now(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	httputil.JSON(w, status, v)
}

func writeErr(w http.ResponseWriter, status int, msg string, meta map[string]any) {
	httputil.Error(w, status, msg, meta)
}

// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "community-service",
		"uptime":  time.Since(h.startedAt).String(),
	})
}
