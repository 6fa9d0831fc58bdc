package postgres

import (
	"context"

	"github.com/weltenbibliothek/community-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminActionRepository struct {
	db *pgxpool.Pool
}

func NewAdminActionRepository(db *pgxpool.Pool) *AdminActionRepository {
	return &AdminActionRepository{db: db}
}

func (r *AdminActionRepository) Log(ctx context.Context, a *domain.AdminAction) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO admin_actions (action_type, target_user_id, admin_user_id, world, room_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, a.ActionType, a.TargetUserID, a.AdminUserID, a.World, a.RoomID, a.Reason).
		Scan(&a.ID, &a.CreatedAt)
}

func (r *AdminActionRepository) ListByWorld(ctx context.Context, world string, limit int) ([]domain.AdminAction, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, action_type, target_user_id, admin_user_id, world, room_id, reason, created_at
		FROM admin_actions
		WHERE world = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, world, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AdminAction
	for rows.Next() {
		var a domain.AdminAction
		if err := rows.Scan(&a.ID, &a.ActionType, &a.TargetUserID, &a.AdminUserID,
			&a.World, &a.RoomID, &a.Reason, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
