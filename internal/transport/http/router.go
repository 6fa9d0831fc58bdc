package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	httpmw "github.com/weltenbibliothek/community-service/internal/transport/http/middleware"
	"github.com/weltenbibliothek/community-service/internal/transport/ws"
	"github.com/weltenbibliothek/community-service/pkg/httputil"
)

type RouterConfig struct {
	ServiceTokens  []string
	AllowedOrigins []string
}

func NewRouter(h *Handler, wsServer *ws.Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareLogging)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// WS endpoint: deadlines живут в самом протоколе, Timeout сюда не вешаем
	r.Get("/ws/rooms/{id}", wsServer.HandleWS)

	r.Get("/api/health", h.Health)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Timeout(60 * time.Second))

		pr.Route("/api/rooms", func(rm chi.Router) {
			rm.Get("/{roomID}/messages", h.ChatHistory)
		})

		pr.Route("/api/research", func(rs chi.Router) {
			rs.Post("/generate", h.ResearchGenerate)
		})

		pr.Route("/api/media", func(md chi.Router) {
			md.Post("/upload", h.MediaUpload)
			md.Get("/{world}/{username}/{file}", h.MediaGet)
			// удаление только сервисным токеном
			md.With(httpmw.ServiceAuth(cfg.ServiceTokens)).
				Delete("/{world}/{username}/{file}", h.MediaDelete)
		})

		// Сервисные маршруты: статический bearer allow-list
		pr.Group(func(sr chi.Router) {
			sr.Use(httpmw.ServiceAuth(cfg.ServiceTokens))

			sr.Route("/api/voice", func(vc chi.Router) {
				vc.Post("/join", h.VoiceJoin)
				vc.Post("/leave", h.VoiceLeave)
				vc.Get("/rooms/{world}", h.VoiceRooms)
			})

			sr.Route("/api/admin", func(ad chi.Router) {
				ad.Post("/users/{userID}/ban", h.AdminBan)
				ad.Post("/users/{userID}/mute", h.AdminMute)
				ad.Post("/users/{userID}/unban", h.AdminUnban)
				ad.Get("/users/{userID}/restrictions", h.AdminRestrictions)
				ad.Post("/actions", h.AdminLogAction)
				ad.Get("/actions/{world}", h.AdminActions)
				ad.Get("/voice-calls/{world}", h.AdminVoiceCalls)
			})
		})
	})

	// health для k8s-проб
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
