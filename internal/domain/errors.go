package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownWorld    = errors.New("unknown world")
	ErrSessionNotFound = errors.New("session not found")
	ErrUserBanned      = errors.New("user is banned")
	ErrEmptyMessage    = errors.New("empty message")
	ErrMessageTooLong  = errors.New("message too long")
)

// AlreadyJoinedError — у пользователя уже есть открытая сессия в этой комнате.
// Несёт session_id, чтобы клиент мог восстановиться без повторного join.
type AlreadyJoinedError struct {
	SessionID string
}

func (e *AlreadyJoinedError) Error() string {
	return fmt.Sprintf("already in room (session %s)", e.SessionID)
}

// RoomFullError — комната заполнена; счётчики нужны клиенту для статуса.
type RoomFullError struct {
	Count int
	Max   int
}

func (e *RoomFullError) Error() string {
	return fmt.Sprintf("room is full (%d/%d)", e.Count, e.Max)
}

// SessionEndedError — повторный leave по уже закрытой сессии.
type SessionEndedError struct {
	LeftAt time.Time
}

func (e *SessionEndedError) Error() string {
	return fmt.Sprintf("session already ended at %s", e.LeftAt.Format(time.RFC3339))
}
