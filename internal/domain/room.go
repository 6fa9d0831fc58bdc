package domain

import "time"

// Worlds — грубые неймспейсы комнат; других миров нет.
const (
	WorldMaterie = "materie"
	WorldEnergie = "energie"
)

func ValidWorld(w string) bool {
	return w == WorldMaterie || w == WorldEnergie
}

// ActiveRoom — агрегат по открытым сессиям одной комнаты.
// Комнаты не хранятся отдельной таблицей, это derived-представление.
type ActiveRoom struct {
	RoomID        string
	Count         int
	Max           int
	IsFull        bool
	FirstJoinedAt time.Time
}

// ActiveCall — отчёт для админ-дашборда по идущему звонку.
type ActiveCall struct {
	RoomID          string
	Count           int
	Participants    []string
	StartedAt       time.Time
	DurationSeconds int64
}
