package service

import (
	"context"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

const maxMessageLen = 4000

type MessageStore interface {
	Save(ctx context.Context, m *domain.ChatMessage) error
	Recent(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)
	History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error)
}

type ChatService struct {
	messages     MessageStore
	historyLimit int
}

func NewChatService(messages MessageStore, historyLimit int) *ChatService {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &ChatService{messages: messages, historyLimit: historyLimit}
}

// Save — валидирует и досохраняет дефолты realm/avatar как клиентский fallback.
func (s *ChatService) Save(ctx context.Context, m *domain.ChatMessage) error {
	if m.Text == "" {
		return domain.ErrEmptyMessage
	}
	if len(m.Text) > maxMessageLen {
		return domain.ErrMessageTooLong
	}
	if m.Realm == "" {
		m.Realm = domain.WorldMaterie
	}
	if m.Avatar == "" {
		m.Avatar = "👤"
	}
	return s.messages.Save(ctx, m)
}

// Recent — replay при подключении: последние historyLimit, старые первыми.
func (s *ChatService) Recent(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	return s.messages.Recent(ctx, roomID, s.historyLimit)
}

func (s *ChatService) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	return s.messages.History(ctx, roomID, after, limit)
}
