package http

import "time"

type JoinRequest struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	World    string `json:"world"`
}

type ParticipantItem struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsMuted  bool   `json:"is_muted"`
}

type JoinResponse struct {
	Success         bool              `json:"success"`
	SessionID       string            `json:"session_id"`
	RoomID          string            `json:"room_id"`
	MaxParticipants int               `json:"max_participants"`
	CurrentCount    int               `json:"current_participant_count"`
	Participants    []ParticipantItem `json:"participants"`
	JoinedAt        time.Time         `json:"joined_at"`
}

type LeaveRequest struct {
	SessionID string `json:"session_id"`
}

type LeaveResponse struct {
	Success         bool      `json:"success"`
	SessionID       string    `json:"session_id"`
	RoomID          string    `json:"room_id"`
	UserID          string    `json:"user_id"`
	DurationSeconds int64     `json:"duration_seconds"`
	LeftAt          time.Time `json:"left_at"`
}

type ActiveRoomItem struct {
	RoomID           string    `json:"room_id"`
	ParticipantCount int       `json:"participant_count"`
	MaxParticipants  int       `json:"max_participants"`
	IsFull           bool      `json:"is_full"`
	FirstJoinedAt    time.Time `json:"first_joined_at"`
}

type ActiveRoomsResponse struct {
	Success          bool             `json:"success"`
	World            string           `json:"world"`
	Rooms            []ActiveRoomItem `json:"rooms"`
	TotalActiveRooms int              `json:"total_active_rooms"`
}

type ActiveCallItem struct {
	RoomID           string    `json:"room_id"`
	ParticipantCount int       `json:"participant_count"`
	Participants     []string  `json:"participants"`
	StartedAt        time.Time `json:"started_at"`
	DurationSeconds  int64     `json:"duration_seconds"`
}

type ActiveCallsResponse struct {
	Success          bool             `json:"success"`
	World            string           `json:"world"`
	Calls            []ActiveCallItem `json:"calls"`
	TotalActiveCalls int              `json:"total_active_calls"`
}

type ChatMessageItem struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Realm     string    `json:"realm"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Items      []ChatMessageItem `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type RestrictionRequest struct {
	World           string `json:"world"`
	AdminUserID     string `json:"admin_user_id"`
	Reason          string `json:"reason"`
	DurationHours   int    `json:"duration_hours,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type RestrictionResponse struct {
	Success   bool      `json:"success"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type RestrictionItem struct {
	Reason    string    `json:"reason,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RestrictionStatusResponse struct {
	Success bool             `json:"success"`
	UserID  string           `json:"user_id"`
	World   string           `json:"world"`
	Ban     *RestrictionItem `json:"ban,omitempty"`
	Mute    *RestrictionItem `json:"mute,omitempty"`
}

type AdminActionRequest struct {
	ActionType   string `json:"action_type"`
	TargetUserID string `json:"target_user_id"`
	AdminUserID  string `json:"admin_user_id"`
	World        string `json:"world"`
	RoomID       string `json:"room_id"`
	Reason       string `json:"reason"`
}

type ResearchRequest struct {
	Topic string `json:"topic"`
	World string `json:"world,omitempty"`
}

type ResearchResponse struct {
	Success   bool      `json:"success"`
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Research  string    `json:"research"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

type MediaUploadResponse struct {
	Success     bool   `json:"success"`
	Name        string `json:"name"`
	Size        uint64 `json:"size"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
