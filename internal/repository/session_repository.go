package repository

import (
	"context"

	"github.com/fsegs/survex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, session_date, start_time, end_time,
	required_supervisors, enrolled_supervisors, created_at, updated_at`

// SessionRepository handles exam session data access.
type SessionRepository struct {
	db Querier
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *SessionRepository) WithTx(tx pgx.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

func scanSession(row pgx.Row) (*model.Session, error) {
	s := &model.Session{}
	err := row.Scan(&s.ID, &s.Date, &s.StartTime, &s.EndTime,
		&s.RequiredSupervisors, &s.EnrolledSupervisors, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session. Returns pgx.ErrNoRows if the id does not resolve.
func (r *SessionRepository) GetByID(ctx context.Context, id int) (*model.Session, error) {
	return scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a session holding a row-level exclusive lock.
// The allocation engine takes this lock so the saturation check and the
// counter increment happen as one serialized unit per session.
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, id int) (*model.Session, error) {
	return scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1 FOR UPDATE`, id))
}

// Create inserts a new session. Derived counters start at zero.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO sessions (session_date, start_time, end_time)
		 VALUES ($1, $2, $3)
		 RETURNING id, required_supervisors, enrolled_supervisors, created_at, updated_at`,
		s.Date, s.StartTime, s.EndTime,
	).Scan(&s.ID, &s.RequiredSupervisors, &s.EnrolledSupervisors, &s.CreatedAt, &s.UpdatedAt)
}

// List retrieves all sessions ordered chronologically.
func (r *SessionRepository) List(ctx context.Context) ([]model.Session, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY session_date ASC, start_time ASC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.Date, &s.StartTime, &s.EndTime,
			&s.RequiredSupervisors, &s.EnrolledSupervisors, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListIDs retrieves all session ids, used by batch need recomputation.
func (r *SessionRepository) ListIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM sessions ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateRequiredSupervisors writes the derived need back onto the session row.
func (r *SessionRepository) UpdateRequiredSupervisors(ctx context.Context, sessionID, required int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET required_supervisors = $1, updated_at = NOW() WHERE id = $2`,
		required, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IncrementEnrolled adds one to the session's enrolled supervisor counter.
func (r *SessionRepository) IncrementEnrolled(ctx context.Context, sessionID int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET enrolled_supervisors = enrolled_supervisors + 1, updated_at = NOW()
		 WHERE id = $1`, sessionID)
	return err
}

// DecrementEnrolled subtracts one from the counter, clamped at zero so a
// cancellation can never drive it negative.
func (r *SessionRepository) DecrementEnrolled(ctx context.Context, sessionID int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET enrolled_supervisors = GREATEST(enrolled_supervisors - 1, 0), updated_at = NOW()
		 WHERE id = $1`, sessionID)
	return err
}
