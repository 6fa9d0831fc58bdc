package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/weltenbibliothek/community-service/internal/domain"

	"github.com/go-redis/redis/v8"
)

// RestrictionStore — действующие баны/муты с TTL-экспирацией средствами redis.
// История модерации живёт в postgres (admin_actions); здесь только «сейчас».
type RestrictionStore struct {
	rdb *redis.Client
}

func NewRestrictionStore(rdb *redis.Client) *RestrictionStore {
	return &RestrictionStore{rdb: rdb}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type restrictionValue struct {
	Reason    string    `json:"reason"`
	ExpiresAt time.Time `json:"expires_at"`
}

func key(kind, world, userID string) string {
	return fmt.Sprintf("restriction:%s:%s:%s", kind, world, userID)
}

func (s *RestrictionStore) set(ctx context.Context, kind, world, userID, reason string, ttl time.Duration) (*domain.Restriction, error) {
	r := &domain.Restriction{
		Kind:      kind,
		UserID:    userID,
		Reason:    reason,
		ExpiresAt: time.Now().Add(ttl),
	}
	raw, err := json.Marshal(restrictionValue{Reason: reason, ExpiresAt: r.ExpiresAt})
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, key(kind, world, userID), raw, ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis set: %w", err)
	}
	return r, nil
}

func (s *RestrictionStore) Ban(ctx context.Context, world, userID, reason string, ttl time.Duration) (*domain.Restriction, error) {
	return s.set(ctx, "ban", world, userID, reason, ttl)
}

func (s *RestrictionStore) Mute(ctx context.Context, world, userID, reason string, ttl time.Duration) (*domain.Restriction, error) {
	return s.set(ctx, "mute", world, userID, reason, ttl)
}

func (s *RestrictionStore) Unban(ctx context.Context, world, userID string) error {
	if err := s.rdb.Del(ctx, key("ban", world, userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RestrictionStore) get(ctx context.Context, kind, world, userID string) (*domain.Restriction, error) {
	raw, err := s.rdb.Get(ctx, key(kind, world, userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var v restrictionValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &domain.Restriction{Kind: kind, UserID: userID, Reason: v.Reason, ExpiresAt: v.ExpiresAt}, nil
}

// IsBanned — nil, nil если ограничений нет (или TTL истёк).
func (s *RestrictionStore) IsBanned(ctx context.Context, world, userID string) (*domain.Restriction, error) {
	return s.get(ctx, "ban", world, userID)
}

func (s *RestrictionStore) IsMuted(ctx context.Context, world, userID string) (*domain.Restriction, error) {
	return s.get(ctx, "mute", world, userID)
}
