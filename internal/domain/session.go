package domain

import "time"

// Session — запись участия в голосовой комнате. Append-only история:
// закрывается один раз (left_at + duration_seconds), никогда не удаляется.
type Session struct {
	SessionID       string     `db:"session_id"`
	RoomID          string     `db:"room_id"`
	UserID          string     `db:"user_id"`
	Username        string     `db:"username"`
	World           string     `db:"world"`
	JoinedAt        time.Time  `db:"joined_at"`
	LeftAt          *time.Time `db:"left_at"`
	DurationSeconds *int64     `db:"duration_seconds"`
}

// Peer — участник комнаты в снапшоте roster-а.
type Peer struct {
	UserID   string
	Username string
	IsMuted  bool
}

// Admission — результат успешного backend-first join.
type Admission struct {
	SessionID string
	RoomID    string
	Count     int
	Max       int
	Peers     []Peer
	JoinedAt  time.Time
}

// LeaveSummary — итог закрытия сессии.
type LeaveSummary struct {
	SessionID       string
	RoomID          string
	UserID          string
	DurationSeconds int64
	LeftAt          time.Time
}
