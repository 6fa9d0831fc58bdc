package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/weltenbibliothek/community-service/internal/domain"

	"github.com/google/uuid"
)

// ChatLog — persistence чата, нужный комнате: append и replay при join.
type ChatLog interface {
	Save(ctx context.Context, m *domain.ChatMessage) error
	Recent(ctx context.Context, roomID string) ([]domain.ChatMessage, error)
}

// SessionCloser — закрытие durable-сессии при уходе участника.
type SessionCloser interface {
	Leave(ctx context.Context, sessionID string) (*domain.LeaveSummary, error)
}

type cmdKind int

const (
	cmdAttach cmdKind = iota
	cmdInbound
	cmdDetach
)

type command struct {
	kind cmdKind
	conn Conn
	data []byte
}

// client — состояние одного транспорта в комнате.
// До join известен только conn; после — идентичность участника.
type client struct {
	conn      Conn
	userID    string
	username  string
	sessionID string
	muted     bool
	joined    bool
}

// Room — актор: единственная горутина run() последовательно обрабатывает
// все события комнаты, поэтому broadcast-с-чисткой безопасен без локов.
type Room struct {
	id       string
	inbox    chan command
	done     chan struct{}
	registry *Registry
	chat     ChatLog
	sessions SessionCloser

	conns  map[Conn]*client   // все привязанные транспорты
	byUser map[string]*client // только joined
}

func newRoom(id string, reg *Registry) *Room {
	return &Room{
		id:       id,
		inbox:    make(chan command),
		done:     make(chan struct{}),
		registry: reg,
		chat:     reg.chat,
		sessions: reg.sessions,
		conns:    make(map[Conn]*client),
		byUser:   make(map[string]*client),
	}
}

func (r *Room) ID() string { return r.id }

// post — false, если комната уже завершилась; вызывающий берёт новую из registry.
func (r *Room) post(cmd command) bool {
	select {
	case r.inbox <- cmd:
		return true
	case <-r.done:
		return false
	}
}

// Inbound — сырой фрейм от транспорта.
func (r *Room) Inbound(c Conn, data []byte) {
	_ = r.post(command{kind: cmdInbound, conn: c, data: data})
}

// Detach — транспорт закрылся; no-op если комната уже умерла
// (значит участник был вычищен раньше, при сбое broadcast).
func (r *Room) Detach(c Conn) {
	_ = r.post(command{kind: cmdDetach, conn: c})
}

func (r *Room) run() {
	for cmd := range r.inbox {
		switch cmd.kind {
		case cmdAttach:
			r.conns[cmd.conn] = &client{conn: cmd.conn}
		case cmdInbound:
			if cl, ok := r.conns[cmd.conn]; ok {
				r.handleEvent(cl, cmd.data)
			}
		case cmdDetach:
			if cl, ok := r.conns[cmd.conn]; ok {
				r.drop(cl)
			}
		}

		if len(r.conns) == 0 {
			r.registry.remove(r)
			return
		}
	}
}

func (r *Room) handleEvent(cl *client, data []byte) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		r.sendTo(cl, errorEvent(ErrKindInvalidMessage, "invalid message format"))
		return
	}

	if ev.Type == TypeJoin {
		r.handleJoin(cl, ev.Payload)
		return
	}

	// всё, кроме join, требует зарегистрированного участника
	if !cl.joined {
		r.sendTo(cl, errorEvent(ErrKindNotJoined, "join first"))
		return
	}

	switch ev.Type {
	case TypeMessage:
		r.handleChat(cl, ev.Payload)
	case TypeTyping:
		r.handleTyping(cl, ev.Payload)
	case TypeOffer, TypeAnswer, TypeICECandidate:
		r.handleSignal(cl, ev.Type, ev.Payload)
	case TypeMute:
		r.handleMute(cl, ev.Payload)
	case TypePing:
		r.sendTo(cl, NewEvent(TypePong, PongPayload{TSUnix: time.Now().Unix()}))
	case TypeLeave:
		r.drop(cl)
		_ = cl.conn.Close()
	default:
		slog.Debug("ws unknown event type", "room", r.id, "type", ev.Type)
	}
}

func (r *Room) handleJoin(cl *client, raw json.RawMessage) {
	if cl.joined {
		r.sendTo(cl, errorEvent(ErrKindAlreadyJoined, "already joined"))
		return
	}
	p, err := decodeJoin(raw)
	if err != nil {
		r.sendTo(cl, errorEvent(ErrKindInvalidMessage, "invalid join payload"))
		return
	}
	// второй транспорт того же пользователя вытесняет первый.
	// reconnect с тем же session_id сессию не закрывает: она ещё живая
	if old, ok := r.byUser[p.UserID]; ok {
		if old.sessionID == p.SessionID {
			old.sessionID = ""
		}
		r.drop(old)
		_ = old.conn.Close()
	}

	cl.userID = p.UserID
	cl.username = p.Username
	cl.sessionID = p.SessionID
	cl.joined = true
	r.byUser[cl.userID] = cl

	r.broadcast(NewEvent(TypeUserJoined, UserJoinedPayload{
		UserID:   cl.userID,
		Username: cl.username,
	}), cl)

	r.sendTo(cl, NewEvent(TypeJoined, JoinedPayload{
		RoomID:       r.id,
		UserID:       cl.userID,
		Username:     cl.username,
		Participants: r.roster(),
	}))

	r.sendHistory(cl)
}

func (r *Room) handleChat(cl *client, raw json.RawMessage) {
	p, err := decodeChat(raw)
	if err != nil {
		r.sendTo(cl, errorEvent(ErrKindInvalidMessage, "invalid chat payload"))
		return
	}

	msg := &domain.ChatMessage{
		ID:       uuid.NewString(),
		RoomID:   r.id,
		UserID:   cl.userID,
		Username: cl.username,
		Text:     p.Text,
		Realm:    p.Realm,
		Avatar:   p.Avatar,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = r.chat.Save(ctx, msg)
	cancel()
	if err != nil {
		// невалидное сообщение не рассылаем: иначе живой чат разойдётся с историей
		if errors.Is(err, domain.ErrEmptyMessage) || errors.Is(err, domain.ErrMessageTooLong) {
			r.sendTo(cl, errorEvent(ErrKindInvalidMessage, err.Error()))
			return
		}
		// сбой хранилища broadcast не блокирует, но отправителя предупреждаем
		slog.Warn("ws chat save failed", "room", r.id, "user", cl.userID, "err", err)
		r.sendTo(cl, errorEvent(ErrKindPersistenceWarning, "message not persisted"))
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
	}

	// единый broadcast всем, включая отправителя: у всех одинаковые id и timestamp
	r.broadcast(NewEvent(TypeNewMessage, NewMessagePayload{Message: toMessageInfo(*msg)}), nil)
}

func (r *Room) handleTyping(cl *client, raw json.RawMessage) {
	p, err := decodeTyping(raw)
	if err != nil {
		r.sendTo(cl, errorEvent(ErrKindInvalidMessage, "invalid typing payload"))
		return
	}
	r.broadcast(NewEvent(TypeUserTyping, UserTypingPayload{
		UserID:   cl.userID,
		IsTyping: p.IsTyping,
	}), cl)
}

// handleSignal — unicast адресату. Отсутствующий target молча дропаем:
// сигналинг гоночный по природе, пир мог только что выйти.
func (r *Room) handleSignal(cl *client, evType string, raw json.RawMessage) {
	p, err := decodeSignal(raw)
	if err != nil {
		r.sendTo(cl, errorEvent(ErrKindInvalidMessage, "invalid signal payload"))
		return
	}
	target, ok := r.byUser[p.TargetUserID]
	if !ok {
		return
	}
	r.sendTo(target, NewEvent(evType, SignalForward{
		FromUserID: cl.userID,
		Data:       p.Data,
	}))
}

func (r *Room) handleMute(cl *client, raw json.RawMessage) {
	p, err := decodeMute(raw)
	if err != nil {
		r.sendTo(cl, errorEvent(ErrKindInvalidMessage, "invalid mute payload"))
		return
	}
	cl.muted = p.IsMuted
	r.broadcast(NewEvent(TypeUserMuted, UserMutedPayload{
		UserID:  cl.userID,
		IsMuted: p.IsMuted,
	}), cl)
}

func (r *Room) sendHistory(cl *client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := r.chat.Recent(ctx, r.id)
	if err != nil {
		slog.Warn("ws history load failed", "room", r.id, "err", err)
		return
	}
	if len(msgs) == 0 {
		return
	}
	items := make([]MessageInfo, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toMessageInfo(m))
	}
	r.sendTo(cl, NewEvent(TypeHistory, HistoryPayload{Messages: items}))
}

// broadcast — рассылка joined-участникам, кроме exclude. Упавший Send
// означает мёртвого пира: вычищаем его сразу, здесь же.
func (r *Room) broadcast(ev Event, exclude *client) {
	var failed []*client
	for _, cl := range r.byUser {
		if cl == exclude {
			continue
		}
		if err := cl.conn.Send(ev); err != nil {
			failed = append(failed, cl)
		}
	}
	for _, cl := range failed {
		r.drop(cl)
		_ = cl.conn.Close()
	}
}

// sendTo — прямая отправка; сбой чистит получателя так же, как в broadcast.
func (r *Room) sendTo(cl *client, ev Event) {
	if err := cl.conn.Send(ev); err != nil {
		r.drop(cl)
		_ = cl.conn.Close()
	}
}

// drop — идемпотентное удаление. user_left уходит остальным ровно один раз;
// durable-сессия закрывается асинхронно, комнату не блокируем.
func (r *Room) drop(cl *client) {
	if _, ok := r.conns[cl.conn]; !ok {
		return
	}
	delete(r.conns, cl.conn)

	if !cl.joined {
		return
	}
	cl.joined = false
	if r.byUser[cl.userID] == cl {
		delete(r.byUser, cl.userID)
	}

	r.broadcast(NewEvent(TypeUserLeft, UserLeftPayload{UserID: cl.userID}), nil)

	if cl.sessionID != "" && r.sessions != nil {
		go closeSession(r.sessions, r.id, cl.userID, cl.sessionID)
	}
}

func closeSession(closer SessionCloser, roomID, userID, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := closer.Leave(ctx, sessionID); err != nil {
		var ended *domain.SessionEndedError
		if errors.As(err, &ended) {
			return // клиент успел вызвать /voice/leave сам
		}
		slog.Warn("ws close session failed",
			"room", roomID, "user", userID, "session", sessionID, "err", err)
	}
}

func (r *Room) roster() []PeerInfo {
	out := make([]PeerInfo, 0, len(r.byUser))
	for _, cl := range r.byUser {
		out = append(out, PeerInfo{
			UserID:   cl.userID,
			Username: cl.username,
			IsMuted:  cl.muted,
		})
	}
	return out
}
