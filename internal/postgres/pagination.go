package postgres

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// MessageCursor — keyset-позиция в истории чата: (created_at, id) последнего
// отданного сообщения. Наружу уходит непрозрачной base64-строкой.
type MessageCursor struct {
	SentAt time.Time `json:"sent_at"`
	MsgID  string    `json:"msg_id"`
}

func (c MessageCursor) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeMessageCursor принимает пустую строку как отсутствие курсора.
func DecodeMessageCursor(s string) (*MessageCursor, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrInvalidCursor, err)
	}
	var c MessageCursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidCursor, err)
	}
	if c.SentAt.IsZero() || c.MsgID == "" {
		return nil, fmt.Errorf("%w: missing fields", ErrInvalidCursor)
	}
	return &c, nil
}
