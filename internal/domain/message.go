package domain

import "time"

type ChatMessage struct {
	ID        string    `db:"id"`
	RoomID    string    `db:"room_id"`
	UserID    string    `db:"user_id"`
	Username  string    `db:"username"`
	Text      string    `db:"text"`
	Realm     string    `db:"realm"`
	Avatar    string    `db:"avatar"`
	CreatedAt time.Time `db:"created_at"`
}
