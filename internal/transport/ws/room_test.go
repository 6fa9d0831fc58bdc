package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/weltenbibliothek/community-service/internal/domain"
)

// fakeConn — транспорт в памяти для тестов комнаты.
type fakeConn struct {
	mu       sync.Mutex
	events   []Event
	closed   bool
	failSend bool
}

func (c *fakeConn) Send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("broken pipe")
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) count(evType string) int {
	n := 0
	for _, ev := range c.snapshot() {
		if ev.Type == evType {
			n++
		}
	}
	return n
}

func (c *fakeConn) last(evType string) (Event, bool) {
	evs := c.snapshot()
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type == evType {
			return evs[i], true
		}
	}
	return Event{}, false
}

type fakeChat struct {
	mu      sync.Mutex
	saved   []domain.ChatMessage
	recent  []domain.ChatMessage
	saveErr error
}

func (f *fakeChat) Save(_ context.Context, m *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	m.CreatedAt = time.Now()
	f.saved = append(f.saved, *m)
	return nil
}

func (f *fakeChat) Recent(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recent, nil
}

type fakeSessions struct {
	closed chan string
}

func (f *fakeSessions) Leave(_ context.Context, sessionID string) (*domain.LeaveSummary, error) {
	f.closed <- sessionID
	return &domain.LeaveSummary{SessionID: sessionID}, nil
}

func newTestRegistry() (*Registry, *fakeChat, *fakeSessions) {
	chat := &fakeChat{}
	sessions := &fakeSessions{closed: make(chan string, 8)}
	return NewRegistry(chat, sessions), chat, sessions
}

func send(t *testing.T, r *Room, c Conn, evType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := json.Marshal(Event{Type: evType, Payload: raw})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	r.Inbound(c, data)
}

// barrier — барьер: комната обрабатывает команды последовательно, поэтому
// полученный pong означает, что всё отправленное до ping уже обработано.
func barrier(t *testing.T, r *Room, c *fakeConn) {
	t.Helper()
	before := c.count(TypePong)
	send(t, r, c, TypePing, struct{}{})
	waitUntil(t, func() bool { return c.count(TypePong) > before })
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func join(t *testing.T, reg *Registry, roomID string, c *fakeConn, userID, username, sessionID string) *Room {
	t.Helper()
	r := reg.Attach(roomID, c)
	send(t, r, c, TypeJoin, JoinPayload{UserID: userID, Username: username, SessionID: sessionID})
	waitUntil(t, func() bool { return c.count(TypeJoined) > 0 })
	return r
}

func TestRoom_JoinAck(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a := &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")

	ev, ok := a.last(TypeJoined)
	if !ok {
		t.Fatal("no joined ack")
	}
	var p JoinedPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		t.Fatalf("decode joined: %v", err)
	}
	if p.RoomID != "room-1" || p.UserID != "u1" {
		t.Fatalf("unexpected ack: %+v", p)
	}
	if len(p.Participants) != 1 || p.Participants[0].UserID != "u1" {
		t.Fatalf("roster should contain self: %+v", p.Participants)
	}
	if r.ID() != "room-1" {
		t.Fatalf("room id = %q", r.ID())
	}
}

func TestRoom_UserJoinedExcludesSender(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	join(t, reg, "room-1", b, "u2", "bob", "")

	waitUntil(t, func() bool { return a.count(TypeUserJoined) == 1 })
	barrier(t, r, b)

	if b.count(TypeUserJoined) != 0 {
		t.Fatal("joiner must not receive own user_joined")
	}
	ev, _ := a.last(TypeUserJoined)
	var p UserJoinedPayload
	_ = json.Unmarshal(ev.Payload, &p)
	if p.UserID != "u2" || p.Username != "bob" {
		t.Fatalf("unexpected user_joined: %+v", p)
	}
}

func TestRoom_ChatBroadcastIncludesSender(t *testing.T) {
	reg, chat, _ := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	join(t, reg, "room-1", b, "u2", "bob", "")

	send(t, r, a, TypeMessage, ChatPayload{Text: "hallo"})
	waitUntil(t, func() bool {
		return a.count(TypeNewMessage) == 1 && b.count(TypeNewMessage) == 1
	})

	evA, _ := a.last(TypeNewMessage)
	evB, _ := b.last(TypeNewMessage)
	var pa, pb NewMessagePayload
	_ = json.Unmarshal(evA.Payload, &pa)
	_ = json.Unmarshal(evB.Payload, &pb)
	if pa.Message.ID == "" || pa.Message.ID != pb.Message.ID {
		t.Fatalf("message ids differ: %q vs %q", pa.Message.ID, pb.Message.ID)
	}
	if pa.Message.Text != "hallo" || pa.Message.UserID != "u1" {
		t.Fatalf("unexpected message: %+v", pa.Message)
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()
	if len(chat.saved) != 1 || chat.saved[0].Text != "hallo" {
		t.Fatalf("message not persisted: %+v", chat.saved)
	}
}

func TestRoom_ChatPersistFailureStillBroadcasts(t *testing.T) {
	reg, chat, _ := newTestRegistry()
	chat.saveErr = errors.New("db down")
	a, b := &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	join(t, reg, "room-1", b, "u2", "bob", "")

	send(t, r, a, TypeMessage, ChatPayload{Text: "hallo"})
	waitUntil(t, func() bool { return b.count(TypeNewMessage) == 1 })

	if a.count(TypeNewMessage) != 1 {
		t.Fatal("sender must still get the broadcast")
	}
	ev, ok := a.last(TypeError)
	if !ok {
		t.Fatal("sender must get persistence warning")
	}
	var p ErrorPayload
	_ = json.Unmarshal(ev.Payload, &p)
	if p.Kind != ErrKindPersistenceWarning {
		t.Fatalf("error kind = %q", p.Kind)
	}
	barrier(t, r, b)
	if b.count(TypeError) != 0 {
		t.Fatal("others must not see the warning")
	}
}

// Отклонённое валидацией сообщение не уходит ни пирам, ни в историю:
// отправитель получает invalid_message, и только он.
func TestRoom_ChatRejectedByValidationNotBroadcast(t *testing.T) {
	reg, chat, _ := newTestRegistry()
	chat.saveErr = domain.ErrMessageTooLong
	a, b := &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	join(t, reg, "room-1", b, "u2", "bob", "")

	send(t, r, a, TypeMessage, ChatPayload{Text: strings.Repeat("x", 5000)})
	waitUntil(t, func() bool { return a.count(TypeError) == 1 })

	ev, _ := a.last(TypeError)
	var p ErrorPayload
	_ = json.Unmarshal(ev.Payload, &p)
	if p.Kind != ErrKindInvalidMessage {
		t.Fatalf("error kind = %q", p.Kind)
	}

	barrier(t, r, a)
	barrier(t, r, b)
	if a.count(TypeNewMessage) != 0 || b.count(TypeNewMessage) != 0 {
		t.Fatal("rejected message must not be broadcast")
	}
	if len(chat.saved) != 0 {
		t.Fatal("rejected message must not be persisted")
	}
}

func TestRoom_SignalUnicast(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	join(t, reg, "room-1", b, "u2", "bob", "")
	join(t, reg, "room-1", c, "u3", "carol", "")

	send(t, r, a, TypeOffer, SignalPayload{
		TargetUserID: "u2",
		Data:         json.RawMessage(`{"sdp":"v=0"}`),
	})
	waitUntil(t, func() bool { return b.count(TypeOffer) == 1 })

	ev, _ := b.last(TypeOffer)
	var p SignalForward
	_ = json.Unmarshal(ev.Payload, &p)
	if p.FromUserID != "u1" {
		t.Fatalf("from_user_id = %q", p.FromUserID)
	}
	barrier(t, r, c)
	if c.count(TypeOffer) != 0 {
		t.Fatal("offer must be unicast")
	}
}

func TestRoom_SignalUnknownTargetDropped(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a := &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	send(t, r, a, TypeAnswer, SignalPayload{
		TargetUserID: "ghost",
		Data:         json.RawMessage(`{}`),
	})
	barrier(t, r, a)

	if a.count(TypeError) != 0 {
		t.Fatal("missing target is not an error for the sender")
	}
}

func TestRoom_NotJoinedError(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a := &fakeConn{}

	r := reg.Attach("room-1", a)
	send(t, r, a, TypeMessage, ChatPayload{Text: "hi"})
	waitUntil(t, func() bool { return a.count(TypeError) == 1 })

	ev, _ := a.last(TypeError)
	var p ErrorPayload
	_ = json.Unmarshal(ev.Payload, &p)
	if p.Kind != ErrKindNotJoined {
		t.Fatalf("error kind = %q", p.Kind)
	}
}

func TestRoom_InvalidFrame(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a := &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	r.Inbound(a, []byte("{not json"))
	waitUntil(t, func() bool { return a.count(TypeError) == 1 })

	ev, _ := a.last(TypeError)
	var p ErrorPayload
	_ = json.Unmarshal(ev.Payload, &p)
	if p.Kind != ErrKindInvalidMessage {
		t.Fatalf("error kind = %q", p.Kind)
	}
}

func TestRoom_UnknownTypeIgnored(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a := &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	send(t, r, a, "dance", struct{}{})
	barrier(t, r, a)

	if a.count(TypeError) != 0 {
		t.Fatal("unknown type must be ignored silently")
	}
}

func TestRoom_MuteBroadcast(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	join(t, reg, "room-1", b, "u2", "bob", "")

	send(t, r, a, TypeMute, MutePayload{IsMuted: true})
	waitUntil(t, func() bool { return b.count(TypeUserMuted) == 1 })

	ev, _ := b.last(TypeUserMuted)
	var p UserMutedPayload
	_ = json.Unmarshal(ev.Payload, &p)
	if p.UserID != "u1" || !p.IsMuted {
		t.Fatalf("unexpected user_muted: %+v", p)
	}
	barrier(t, r, a)
	if a.count(TypeUserMuted) != 0 {
		t.Fatal("mute echo to sender")
	}

	// новый участник видит muted в roster
	c := &fakeConn{}
	join(t, reg, "room-1", c, "u3", "carol", "")
	ev, _ = c.last(TypeJoined)
	var jp JoinedPayload
	_ = json.Unmarshal(ev.Payload, &jp)
	found := false
	for _, peer := range jp.Participants {
		if peer.UserID == "u1" && peer.IsMuted {
			found = true
		}
	}
	if !found {
		t.Fatalf("muted flag lost in roster: %+v", jp.Participants)
	}
}

func TestRoom_DuplicateUserDisplacesOldConn(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a1, a2, b := &fakeConn{}, &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a1, "u1", "alice", "")
	join(t, reg, "room-1", b, "u2", "bob", "")
	join(t, reg, "room-1", a2, "u1", "alice", "")

	waitUntil(t, func() bool { return a1.isClosed() })

	// старый транспорт вытеснен, новый работает
	send(t, r, a2, TypeMessage, ChatPayload{Text: "again"})
	waitUntil(t, func() bool { return b.count(TypeNewMessage) == 1 })
	if a2.count(TypeNewMessage) != 1 {
		t.Fatal("new conn must be live after displacement")
	}
}

// Reconnect с тем же session_id не закрывает durable-сессию: пользователь
// всё ещё в звонке, вытесняется только старый транспорт.
func TestRoom_ReconnectSameSessionKeepsItOpen(t *testing.T) {
	reg, _, sessions := newTestRegistry()
	a1, a2, b := &fakeConn{}, &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a1, "u1", "alice", "sess-7")
	join(t, reg, "room-1", b, "u2", "bob", "")
	join(t, reg, "room-1", a2, "u1", "alice", "sess-7")

	waitUntil(t, func() bool { return a1.isClosed() })
	barrier(t, r, a2)

	select {
	case id := <-sessions.closed:
		t.Fatalf("session %q closed during reconnect", id)
	case <-time.After(200 * time.Millisecond):
	}

	// новый транспорт с другим session_id закрывает вытесненную сессию
	a3 := &fakeConn{}
	join(t, reg, "room-1", a3, "u1", "alice", "sess-8")
	select {
	case id := <-sessions.closed:
		if id != "sess-7" {
			t.Fatalf("closed session %q, want sess-7", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("displaced session not closed")
	}
}

func TestRoom_LeaveClosesSession(t *testing.T) {
	reg, _, sessions := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "sess-42")
	join(t, reg, "room-1", b, "u2", "bob", "")

	send(t, r, a, TypeLeave, struct{}{})
	waitUntil(t, func() bool { return b.count(TypeUserLeft) == 1 })

	select {
	case id := <-sessions.closed:
		if id != "sess-42" {
			t.Fatalf("closed session %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session close not requested")
	}
	if !a.isClosed() {
		t.Fatal("leaving conn must be closed")
	}
}

func TestRoom_FailedSendDropsPeerOnce(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	join(t, reg, "room-1", b, "u2", "bob", "")
	join(t, reg, "room-1", c, "u3", "carol", "")

	b.mu.Lock()
	b.failSend = true
	b.mu.Unlock()

	// любой broadcast обнаруживает мёртвый транспорт
	send(t, r, a, TypeTyping, TypingPayload{IsTyping: true})
	waitUntil(t, func() bool { return a.count(TypeUserLeft) == 1 })

	// последующие события не порождают повторного user_left
	send(t, r, a, TypeTyping, TypingPayload{IsTyping: false})
	barrier(t, r, a)

	if got := a.count(TypeUserLeft); got != 1 {
		t.Fatalf("user_left sent %d times, want 1", got)
	}
	if got := c.count(TypeUserLeft); got != 1 {
		t.Fatalf("user_left to c sent %d times, want 1", got)
	}
	if !b.isClosed() {
		t.Fatal("dead conn must be closed")
	}
}

func TestRoom_HistoryReplayOnJoin(t *testing.T) {
	reg, chat, _ := newTestRegistry()
	chat.recent = []domain.ChatMessage{
		{ID: "m1", RoomID: "room-1", UserID: "u9", Text: "first"},
		{ID: "m2", RoomID: "room-1", UserID: "u9", Text: "second"},
	}
	a := &fakeConn{}

	r := join(t, reg, "room-1", a, "u1", "alice", "")
	waitUntil(t, func() bool { return a.count(TypeHistory) == 1 })

	ev, _ := a.last(TypeHistory)
	var p HistoryPayload
	_ = json.Unmarshal(ev.Payload, &p)
	if len(p.Messages) != 2 || p.Messages[0].ID != "m1" || p.Messages[1].ID != "m2" {
		t.Fatalf("history order broken: %+v", p.Messages)
	}
	_ = r
}

func TestRegistry_RoomLifecycle(t *testing.T) {
	reg, _, _ := newTestRegistry()
	a := &fakeConn{}

	r1 := reg.Attach("room-1", a)
	if reg.Len() != 1 {
		t.Fatalf("len = %d", reg.Len())
	}

	b := &fakeConn{}
	r2 := reg.Attach("room-1", b)
	if r1 != r2 {
		t.Fatal("same id must reuse the live room")
	}

	r1.Detach(a)
	r1.Detach(b)
	waitUntil(t, func() bool { return reg.Len() == 0 })

	// после смерти комнаты attach создаёт новую
	c := &fakeConn{}
	r3 := reg.Attach("room-1", c)
	if r3 == r1 {
		t.Fatal("attach after death must create a fresh room")
	}
	if reg.Len() != 1 {
		t.Fatalf("len = %d", reg.Len())
	}
}
