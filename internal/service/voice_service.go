package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

// SessionStore — durable-хранилище сессий. Admit обязан быть атомарным
// по комнате (check-then-insert внутри одной транзакции).
type SessionStore interface {
	Admit(ctx context.Context, roomID, userID, username, world string, max int) (*domain.Admission, error)
	Close(ctx context.Context, sessionID string) (*domain.LeaveSummary, error)
	ActiveRoomsByWorld(ctx context.Context, world string, max int) ([]domain.ActiveRoom, error)
	ActiveCallsByWorld(ctx context.Context, world string) ([]domain.ActiveCall, error)
}

// BanChecker — проверка действующего бана перед допуском.
type BanChecker interface {
	IsBanned(ctx context.Context, world, userID string) (*domain.Restriction, error)
}

type VoiceService struct {
	store SessionStore
	bans  BanChecker
	max   int
}

func NewVoiceService(store SessionStore, bans BanChecker, maxParticipants int) *VoiceService {
	if maxParticipants <= 0 {
		maxParticipants = 10
	}
	return &VoiceService{store: store, bans: bans, max: maxParticipants}
}

// Join — backend-first допуск: durable-сессия создаётся до открытия транспорта.
func (s *VoiceService) Join(ctx context.Context, roomID, userID, username, world string) (*domain.Admission, error) {
	roomID = strings.TrimSpace(roomID)
	userID = strings.TrimSpace(userID)
	username = strings.TrimSpace(username)
	world = strings.TrimSpace(world)
	if roomID == "" || userID == "" || username == "" || world == "" {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidWorld(world) {
		return nil, domain.ErrUnknownWorld
	}

	if s.bans != nil {
		banned, err := s.bans.IsBanned(ctx, world, userID)
		if err != nil {
			return nil, fmt.Errorf("check ban: %w", err)
		}
		if banned != nil {
			return nil, domain.ErrUserBanned
		}
	}

	adm, err := s.store.Admit(ctx, roomID, userID, username, world, s.max)
	if err != nil {
		return nil, err
	}
	return adm, nil
}

// Leave — идемпотентность обеспечивает store: повторное закрытие отдаёт
// SessionEndedError и не трогает duration_seconds.
func (s *VoiceService) Leave(ctx context.Context, sessionID string) (*domain.LeaveSummary, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.Close(ctx, sessionID)
}

func (s *VoiceService) ActiveRooms(ctx context.Context, world string) ([]domain.ActiveRoom, error) {
	if !domain.ValidWorld(world) {
		return nil, domain.ErrUnknownWorld
	}
	return s.store.ActiveRoomsByWorld(ctx, world, s.max)
}

func (s *VoiceService) ActiveCalls(ctx context.Context, world string) ([]domain.ActiveCall, error) {
	if !domain.ValidWorld(world) {
		return nil, domain.ErrUnknownWorld
	}
	return s.store.ActiveCallsByWorld(ctx, world)
}
