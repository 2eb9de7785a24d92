package repository

import (
	"context"
	"time"

	"github.com/fsegs/survex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRow is an assignment joined with teacher and session facts for
// listing endpoints.
type AssignmentRow struct {
	ID          int        `json:"id"`
	TeacherID   int        `json:"teacher_id"`
	TeacherName string     `json:"teacher_name"`
	SessionID   int        `json:"session_id"`
	SessionDate time.Time  `json:"session_date"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AssignmentRepository handles supervision assignment data access. The
// uniqueness of a (teacher, session) pair is enforced by the database unique
// constraint, not by this code.
type AssignmentRepository struct {
	db Querier
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AssignmentRepository) WithTx(tx pgx.Tx) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// Exists reports whether a live assignment exists for the pair.
func (r *AssignmentRepository) Exists(ctx context.Context, teacherID, sessionID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM assignments WHERE teacher_id = $1 AND session_id = $2)`,
		teacherID, sessionID,
	).Scan(&exists)
	return exists, err
}

// Create inserts an assignment. A concurrent duplicate surfaces as a unique
// violation (SQLSTATE 23505) which the caller translates into the
// already-assigned outcome.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO assignments (teacher_id, session_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		a.TeacherID, a.SessionID,
	).Scan(&a.ID, &a.CreatedAt)
}

// Delete removes the assignment for the pair. Returns false when no live
// assignment existed.
func (r *AssignmentRepository) Delete(ctx context.Context, teacherID, sessionID int) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM assignments WHERE teacher_id = $1 AND session_id = $2`,
		teacherID, sessionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountByTeacher counts the teacher's live assignments (the quota check input).
func (r *AssignmentRepository) CountByTeacher(ctx context.Context, teacherID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE teacher_id = $1`, teacherID,
	).Scan(&count)
	return count, err
}

// SlotsByTeacherOnDate returns the time windows of the teacher's other
// assigned sessions on the given date, feeding the time conflict check.
func (r *AssignmentRepository) SlotsByTeacherOnDate(ctx context.Context, teacherID int, date time.Time, excludeSessionID int) ([]model.TimeSlot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.start_time, s.end_time
		 FROM assignments a
		 JOIN sessions s ON s.id = a.session_id
		 WHERE a.teacher_id = $1 AND s.session_date = $2 AND s.id <> $3`,
		teacherID, date, excludeSessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		var slot model.TimeSlot
		if err := rows.Scan(&slot.Start, &slot.End); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// List retrieves all assignments with teacher and session facts.
func (r *AssignmentRepository) List(ctx context.Context) ([]AssignmentRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.teacher_id, t.full_name, a.session_id,
			s.session_date, s.start_time, s.end_time, a.created_at
		 FROM assignments a
		 JOIN teachers t ON t.id = a.teacher_id
		 JOIN sessions s ON s.id = a.session_id
		 ORDER BY s.session_date ASC, s.start_time ASC NULLS LAST, t.full_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAssignmentRows(rows)
}

// ListByTeacher retrieves the teacher's assignments with session facts,
// used to build the teacher profile.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID int) ([]AssignmentRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.teacher_id, t.full_name, a.session_id,
			s.session_date, s.start_time, s.end_time, a.created_at
		 FROM assignments a
		 JOIN teachers t ON t.id = a.teacher_id
		 JOIN sessions s ON s.id = a.session_id
		 WHERE a.teacher_id = $1
		 ORDER BY s.session_date ASC, s.start_time ASC NULLS LAST`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAssignmentRows(rows)
}

// CountBySession counts the live assignments referencing a session. Used by
// tests and consistency checks against the enrolled counter.
func (r *AssignmentRepository) CountBySession(ctx context.Context, sessionID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE session_id = $1`, sessionID,
	).Scan(&count)
	return count, err
}

func scanAssignmentRows(rows pgx.Rows) ([]AssignmentRow, error) {
	var out []AssignmentRow
	for rows.Next() {
		var a AssignmentRow
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.TeacherName, &a.SessionID,
			&a.SessionDate, &a.StartTime, &a.EndTime, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
