package postgres

import (
	"context"

	"github.com/weltenbibliothek/community-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Save(ctx context.Context, rep *domain.ResearchReport) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO research_reports (id, topic, world, model, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, rep.ID, rep.Topic, rep.World, rep.Model, rep.Content).Scan(&rep.CreatedAt)
}
