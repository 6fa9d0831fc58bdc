package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

// Типы событий. Закрытое множество: неизвестный входящий type
// логируется и игнорируется, это не ошибка для отправителя.
const (
	// inbound
	TypeJoin         = "join"
	TypeMessage      = "message"
	TypeTyping       = "typing"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice_candidate"
	TypeMute         = "mute"
	TypeLeave        = "leave"
	TypePing         = "ping"

	// outbound
	TypeJoined     = "joined"
	TypeUserJoined = "user_joined"
	TypeUserLeft   = "user_left"
	TypeUserTyping = "user_typing"
	TypeUserMuted  = "user_muted"
	TypeNewMessage = "new_message"
	TypeHistory    = "history"
	TypePong       = "pong"
	TypeError      = "error"
)

// Коды error-событий
const (
	ErrKindInvalidMessage     = "invalid_message"
	ErrKindNotJoined          = "not_joined"
	ErrKindAlreadyJoined      = "already_joined"
	ErrKindPersistenceWarning = "persistence_warning"
)

var errMissingField = errors.New("missing required field")

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent — собирает исходящее событие; payload сериализуется сразу,
// чтобы broadcast не маршалил по разу на получателя.
func NewEvent(t string, payload any) Event {
	if payload == nil {
		return Event{Type: t}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		// payload-структуры свои, маршалятся всегда; сюда попадать некуда
		return Event{Type: t}
	}
	return Event{Type: t, Payload: raw}
}

func errorEvent(kind, msg string) Event {
	return NewEvent(TypeError, ErrorPayload{Kind: kind, Message: msg})
}

// --- inbound payloads ---

type JoinPayload struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id,omitempty"` // из backend-first join, опционально
}

func decodeJoin(raw json.RawMessage) (*JoinPayload, error) {
	var p JoinPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" || p.Username == "" {
		return nil, errMissingField
	}
	return &p, nil
}

type ChatPayload struct {
	Text   string `json:"text"`
	Realm  string `json:"realm,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

func decodeChat(raw json.RawMessage) (*ChatPayload, error) {
	var p ChatPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.Text == "" {
		return nil, errMissingField
	}
	return &p, nil
}

type TypingPayload struct {
	IsTyping bool `json:"is_typing"`
}

func decodeTyping(raw json.RawMessage) (*TypingPayload, error) {
	var p TypingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SignalPayload — offer/answer/ice_candidate. data — непрозрачный SDP/candidate
// blob, сервер его не интерпретирует.
type SignalPayload struct {
	TargetUserID string          `json:"target_user_id"`
	Data         json.RawMessage `json:"data"`
}

func decodeSignal(raw json.RawMessage) (*SignalPayload, error) {
	var p SignalPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.TargetUserID == "" || len(p.Data) == 0 {
		return nil, errMissingField
	}
	return &p, nil
}

type MutePayload struct {
	IsMuted bool `json:"is_muted"`
}

func decodeMute(raw json.RawMessage) (*MutePayload, error) {
	var p MutePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- outbound payloads ---

type PeerInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsMuted  bool   `json:"is_muted"`
}

type JoinedPayload struct {
	RoomID       string     `json:"room_id"`
	UserID       string     `json:"user_id"`
	Username     string     `json:"username"`
	Participants []PeerInfo `json:"participants"`
}

type UserJoinedPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type UserLeftPayload struct {
	UserID string `json:"user_id"`
}

type UserTypingPayload struct {
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

type UserMutedPayload struct {
	UserID  string `json:"user_id"`
	IsMuted bool   `json:"is_muted"`
}

type SignalForward struct {
	FromUserID string          `json:"from_user_id"`
	Data       json.RawMessage `json:"data"`
}

type MessageInfo struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Realm     string    `json:"realm"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageInfo(m domain.ChatMessage) MessageInfo {
	return MessageInfo{
		ID:        m.ID,
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		Username:  m.Username,
		Text:      m.Text,
		Realm:     m.Realm,
		Avatar:    m.Avatar,
		CreatedAt: m.CreatedAt,
	}
}

type NewMessagePayload struct {
	Message MessageInfo `json:"message"`
}

type HistoryPayload struct {
	Messages []MessageInfo `json:"messages"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type PongPayload struct {
	TSUnix int64 `json:"ts_unix"`
}
