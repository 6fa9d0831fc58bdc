package domain

import "time"

// AdminAction — журнал действий модераторов (kick, ban, mute, delete).
type AdminAction struct {
	ID           int64     `db:"id"`
	ActionType   string    `db:"action_type"`
	TargetUserID string    `db:"target_user_id"`
	AdminUserID  string    `db:"admin_user_id"`
	World        string    `db:"world"`
	RoomID       string    `db:"room_id"`
	Reason       string    `db:"reason"`
	CreatedAt    time.Time `db:"created_at"`
}

// Restriction — действующее ограничение пользователя (живёт в redis с TTL).
type Restriction struct {
	Kind      string // ban|mute
	UserID    string
	Reason    string
	ExpiresAt time.Time
}
