package postgres

import (
	"context"
	"time"

	"github.com/weltenbibliothek/community-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Admit — атомарный check-then-insert. Advisory-lock сериализует параллельные
// join по одной комнате: два конкурентных вызова не пробьют лимит. Ключ лока —
// room_id, как и в запросах на count: идентичность комнаты сквозная, без мира.
func (r *SessionRepository) Admit(ctx context.Context, roomID, userID, username, world string, max int) (*domain.Admission, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, roomID); err != nil {
		return nil, err
	}

	var existing string
	err = tx.QueryRow(ctx,
		`SELECT session_id FROM voice_sessions WHERE room_id=$1 AND user_id=$2 AND left_at IS NULL`,
		roomID, userID).Scan(&existing)
	if err == nil {
		return nil, &domain.AlreadyJoinedError{SessionID: existing}
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM voice_sessions WHERE room_id=$1 AND left_at IS NULL`,
		roomID).Scan(&count); err != nil {
		return nil, err
	}
	if count >= max {
		return nil, &domain.RoomFullError{Count: count, Max: max}
	}

	sessionID := uuid.NewString()
	var joinedAt time.Time
	if err := tx.QueryRow(ctx, `
		INSERT INTO voice_sessions (session_id, room_id, user_id, username, world, joined_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING joined_at
	`, sessionID, roomID, userID, username, world).Scan(&joinedAt); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx,
		`SELECT user_id, username FROM voice_sessions WHERE room_id=$1 AND left_at IS NULL ORDER BY joined_at ASC`,
		roomID)
	if err != nil {
		return nil, err
	}
	peers, err := scanPeers(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.Admission{
		SessionID: sessionID,
		RoomID:    roomID,
		Count:     count + 1,
		Max:       max,
		Peers:     peers,
		JoinedAt:  joinedAt,
	}, nil
}

// Close — закрывает сессию ровно один раз; повторный вызов получает
// SessionEndedError с исходным left_at.
func (r *SessionRepository) Close(ctx context.Context, sessionID string) (*domain.LeaveSummary, error) {
	var sum domain.LeaveSummary
	err := r.db.QueryRow(ctx, `
		UPDATE voice_sessions
		SET left_at = now(),
		    duration_seconds = CAST(EXTRACT(EPOCH FROM (now() - joined_at)) AS bigint)
		WHERE session_id = $1 AND left_at IS NULL
		RETURNING session_id, room_id, user_id, duration_seconds, left_at
	`, sessionID).Scan(&sum.SessionID, &sum.RoomID, &sum.UserID, &sum.DurationSeconds, &sum.LeftAt)
	if err == nil {
		return &sum, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	// либо сессии нет, либо она уже закрыта
	var leftAt *time.Time
	err = r.db.QueryRow(ctx,
		`SELECT left_at FROM voice_sessions WHERE session_id=$1`, sessionID).Scan(&leftAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if leftAt != nil {
		return nil, &domain.SessionEndedError{LeftAt: *leftAt}
	}
	return nil, domain.ErrSessionNotFound
}

func (r *SessionRepository) ActiveRoomsByWorld(ctx context.Context, world string, max int) ([]domain.ActiveRoom, error) {
	rows, err := r.db.Query(ctx, `
		SELECT room_id, COUNT(*), MIN(joined_at)
		FROM voice_sessions
		WHERE world=$1 AND left_at IS NULL
		GROUP BY room_id
		ORDER BY room_id
	`, world)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActiveRoom
	for rows.Next() {
		var ar domain.ActiveRoom
		if err := rows.Scan(&ar.RoomID, &ar.Count, &ar.FirstJoinedAt); err != nil {
			return nil, err
		}
		ar.Max = max
		ar.IsFull = ar.Count >= max
		out = append(out, ar)
	}
	return out, rows.Err()
}

// ActiveCallsByWorld — отчёт для админ-дашборда: кто сейчас в звонке и как долго.
func (r *SessionRepository) ActiveCallsByWorld(ctx context.Context, world string) ([]domain.ActiveCall, error) {
	rows, err := r.db.Query(ctx, `
		SELECT room_id,
		       COUNT(*),
		       array_agg(username ORDER BY joined_at),
		       MIN(joined_at),
		       CAST(EXTRACT(EPOCH FROM (now() - MIN(joined_at))) AS bigint)
		FROM voice_sessions
		WHERE world=$1 AND left_at IS NULL
		GROUP BY room_id
		ORDER BY room_id
	`, world)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActiveCall
	for rows.Next() {
		var c domain.ActiveCall
		if err := rows.Scan(&c.RoomID, &c.Count, &c.Participants, &c.StartedAt, &c.DurationSeconds); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanPeers(rows pgx.Rows) ([]domain.Peer, error) {
	defer rows.Close()

	peers := make([]domain.Peer, 0, 10)
	for rows.Next() {
		var p domain.Peer
		if err := rows.Scan(&p.UserID, &p.Username); err != nil {
			return nil, err
		}
		peers = append(peers, p)
	}
	return peers, rows.Err()
}
