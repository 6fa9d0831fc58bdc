package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

type Restrictioner interface {
	Ban(ctx context.Context, world, userID, reason string, ttl time.Duration) (*domain.Restriction, error)
	Mute(ctx context.Context, world, userID, reason string, ttl time.Duration) (*domain.Restriction, error)
	Unban(ctx context.Context, world, userID string) error
	IsBanned(ctx context.Context, world, userID string) (*domain.Restriction, error)
	IsMuted(ctx context.Context, world, userID string) (*domain.Restriction, error)
}

type ActionLog interface {
	Log(ctx context.Context, a *domain.AdminAction) error
	ListByWorld(ctx context.Context, world string, limit int) ([]domain.AdminAction, error)
}

type AdminService struct {
	restrictions Restrictioner
	actions      ActionLog
}

func NewAdminService(restrictions Restrictioner, actions ActionLog) *AdminService {
	return &AdminService{restrictions: restrictions, actions: actions}
}

// Ban — ограничение с TTL; параллельно пишется строка журнала.
// Дефолт 24 часа — как в исходном дашборде.
func (s *AdminService) Ban(ctx context.Context, world, userID, adminID, reason string, hours int) (*domain.Restriction, error) {
	if strings.TrimSpace(userID) == "" || !domain.ValidWorld(world) {
		return nil, domain.ErrInvalidInput
	}
	if hours <= 0 {
		hours = 24
	}

	r, err := s.restrictions.Ban(ctx, world, userID, reason, time.Duration(hours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("ban: %w", err)
	}
	s.logAction(ctx, "ban", world, userID, adminID, "", reason)
	return r, nil
}

func (s *AdminService) Mute(ctx context.Context, world, userID, adminID, reason string, minutes int) (*domain.Restriction, error) {
	if strings.TrimSpace(userID) == "" || !domain.ValidWorld(world) {
		return nil, domain.ErrInvalidInput
	}
	if minutes <= 0 {
		minutes = 60
	}

	r, err := s.restrictions.Mute(ctx, world, userID, reason, time.Duration(minutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("mute: %w", err)
	}
	s.logAction(ctx, "mute", world, userID, adminID, "", reason)
	return r, nil
}

func (s *AdminService) Unban(ctx context.Context, world, userID, adminID string) error {
	if strings.TrimSpace(userID) == "" || !domain.ValidWorld(world) {
		return domain.ErrInvalidInput
	}
	if err := s.restrictions.Unban(ctx, world, userID); err != nil {
		return fmt.Errorf("unban: %w", err)
	}
	s.logAction(ctx, "unban", world, userID, adminID, "", "")
	return nil
}

// Status — действующие ограничения пользователя; nil означает отсутствие.
func (s *AdminService) Status(ctx context.Context, world, userID string) (ban, mute *domain.Restriction, err error) {
	if strings.TrimSpace(userID) == "" || !domain.ValidWorld(world) {
		return nil, nil, domain.ErrInvalidInput
	}
	if ban, err = s.restrictions.IsBanned(ctx, world, userID); err != nil {
		return nil, nil, fmt.Errorf("status ban: %w", err)
	}
	if mute, err = s.restrictions.IsMuted(ctx, world, userID); err != nil {
		return nil, nil, fmt.Errorf("status mute: %w", err)
	}
	return ban, mute, nil
}

// LogAction — произвольная запись журнала (kick, delete и т.п. со стороны клиента).
func (s *AdminService) LogAction(ctx context.Context, a *domain.AdminAction) error {
	if a.ActionType == "" {
		a.ActionType = "unknown"
	}
	return s.actions.Log(ctx, a)
}

func (s *AdminService) Actions(ctx context.Context, world string, limit int) ([]domain.AdminAction, error) {
	if !domain.ValidWorld(world) {
		return nil, domain.ErrUnknownWorld
	}
	return s.actions.ListByWorld(ctx, world, limit)
}

// журналирование ограничений — best-effort, ошибку не возвращаем
func (s *AdminService) logAction(ctx context.Context, action, world, target, admin, roomID, reason string) {
	_ = s.actions.Log(ctx, &domain.AdminAction{
		ActionType:   action,
		TargetUserID: target,
		AdminUserID:  admin,
		World:        world,
		RoomID:       roomID,
		Reason:       reason,
	})
}
