package domain

import "time"

// ResearchReport — сгенерированный «Recherche»-отчёт.
type ResearchReport struct {
	ID        string    `db:"id"`
	Topic     string    `db:"topic"`
	World     string    `db:"world"`
	Model     string    `db:"model"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
