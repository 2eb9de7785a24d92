package repository

import (
	"context"
	"time"

	"github.com/fsegs/survex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WishRow is a wish joined with teacher and session facts for listings.
type WishRow struct {
	ID          int       `json:"id"`
	TeacherID   int       `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	SessionID   int       `json:"session_id"`
	SessionDate time.Time `json:"session_date"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// WishRepository handles wish data access.
type WishRepository struct {
	db Querier
}

// NewWishRepository creates a new WishRepository.
func NewWishRepository(pool *pgxpool.Pool) *WishRepository {
	return &WishRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *WishRepository) WithTx(tx pgx.Tx) *WishRepository {
	return &WishRepository{db: tx}
}

// Exists reports whether a live wish exists for the pair.
func (r *WishRepository) Exists(ctx context.Context, teacherID, sessionID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM wishes WHERE teacher_id = $1 AND session_id = $2)`,
		teacherID, sessionID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a wish timestamped at submission.
func (r *WishRepository) Create(ctx context.Context, w *model.Wish) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO wishes (teacher_id, session_id)
		 VALUES ($1, $2)
		 RETURNING id, submitted_at`,
		w.TeacherID, w.SessionID,
	).Scan(&w.ID, &w.SubmittedAt)
}

// Delete removes the wish for the pair. Returns false when no wish existed.
func (r *WishRepository) Delete(ctx context.Context, teacherID, sessionID int) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM wishes WHERE teacher_id = $1 AND session_id = $2`,
		teacherID, sessionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List retrieves all wishes with teacher and session facts, newest first.
func (r *WishRepository) List(ctx context.Context) ([]WishRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT w.id, w.teacher_id, t.full_name, w.session_id, s.session_date, w.submitted_at
		 FROM wishes w
		 JOIN teachers t ON t.id = w.teacher_id
		 JOIN sessions s ON s.id = w.session_id
		 ORDER BY w.submitted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wishes []WishRow
	for rows.Next() {
		var w WishRow
		if err := rows.Scan(&w.ID, &w.TeacherID, &w.TeacherName, &w.SessionID,
			&w.SessionDate, &w.SubmittedAt); err != nil {
			return nil, err
		}
		wishes = append(wishes, w)
	}
	return wishes, rows.Err()
}
