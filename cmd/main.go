package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weltenbibliothek/community-service/config"
	"github.com/weltenbibliothek/community-service/internal/ai"
	"github.com/weltenbibliothek/community-service/internal/blob"
	"github.com/weltenbibliothek/community-service/internal/postgres"
	redisstore "github.com/weltenbibliothek/community-service/internal/redis"
	"github.com/weltenbibliothek/community-service/internal/service"
	httpx "github.com/weltenbibliothek/community-service/internal/transport/http"
	"github.com/weltenbibliothek/community-service/internal/transport/ws"
	"github.com/weltenbibliothek/community-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting community-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// --- redis ---
	rdb := redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rdb.Close()
	restrictions := redisstore.NewRestrictionStore(rdb)

	// --- nats object store ---
	mediaStore, err := blob.NewJetStreamStore(cfg.Media.NatsURL, cfg.Media.Bucket)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer mediaStore.Close()
	if err := mediaStore.Init(ctx); err != nil {
		log.Fatalf("nats bucket: %v", err)
	}

	// --- repos ---
	sessionRepo := postgres.NewSessionRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	actionRepo := postgres.NewAdminActionRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)

	// --- services ---
	voiceSvc := service.NewVoiceService(sessionRepo, restrictions, cfg.Voice.MaxParticipants)
	chatSvc := service.NewChatService(messageRepo, cfg.Voice.HistoryLimit)
	adminSvc := service.NewAdminService(restrictions, actionRepo)
	researchSvc := service.NewResearchService(
		ai.NewClient(cfg.AI.BaseURL, cfg.AI.Token, cfg.AI.Model),
		reportRepo, cfg.AI.Model, cfg.AI.MaxTokens,
	)
	mediaSvc := service.NewMediaService(mediaStore, service.MediaLimits{
		MaxImageSize: cfg.Media.MaxImageSize,
		MaxVideoSize: cfg.Media.MaxVideoSize,
	})

	// --- WS registry & server ---
	registry := ws.NewRegistry(chatSvc, voiceSvc)
	wsServer := ws.NewServer(registry, cfg.Voice.HeartbeatInterval())

	// --- HTTP ---
	handler := httpx.NewHandler(voiceSvc, chatSvc, adminSvc, researchSvc, mediaSvc)
	router := httpx.NewRouter(handler, wsServer, httpx.RouterConfig{
		ServiceTokens:  cfg.Auth.ServiceTokens,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
