package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn — транспорт участника. Интерфейс узкий специально:
// hub и комната тестируются без реального websocket.
type Conn interface {
	Send(ev Event) error
	Close() error
}

type wsConn struct {
	conn      *websocket.Conn
	sendMu    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(ev Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(ev)
}

// Close срабатывает из нескольких горутин (read loop, ping loop, drop в комнате).
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.conn.Close()
}
