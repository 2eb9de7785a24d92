package repository

import (
	"context"

	"github.com/fsegs/survex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamOverview is an exam joined with its subject and batch count, as shown
// on the planning board.
type ExamOverview struct {
	ID          int    `json:"id"`
	SessionID   int    `json:"session_id"`
	SubjectID   int    `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Track       string `json:"track,omitempty"`
	ClassName   string `json:"class_name,omitempty"`
	BatchCount  int    `json:"batch_count"`
}

// ExamRepository handles exam and batch data access.
type ExamRepository struct {
	pool *pgxpool.Pool
	db   Querier
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool, db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ExamRepository) WithTx(tx pgx.Tx) *ExamRepository {
	return &ExamRepository{pool: r.pool, db: tx}
}

// CreateWithBatches inserts an exam and expands batchCount into Batch rows in
// one transaction. Batches never change the session's derived need directly;
// the need calculator reads them on its next run.
func (r *ExamRepository) CreateWithBatches(ctx context.Context, e *model.Exam, batchCount int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exams (session_id, subject_id, track, class_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.SessionID, e.SubjectID, e.Track, e.ClassName,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO batches (exam_id, subject_id)
		 SELECT $1, $2 FROM generate_series(1, $3)`,
		e.ID, e.SubjectID, batchCount); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListBySession retrieves the exams of a session with subject names and
// batch counts.
func (r *ExamRepository) ListBySession(ctx context.Context, sessionID int) ([]ExamOverview, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.session_id, e.subject_id, s.name, e.track, e.class_name,
			(SELECT COUNT(*) FROM batches b WHERE b.exam_id = e.id) AS batch_count
		 FROM exams e
		 JOIN subjects s ON s.id = e.subject_id
		 WHERE e.session_id = $1
		 ORDER BY s.name ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []ExamOverview
	for rows.Next() {
		var e ExamOverview
		if err := rows.Scan(&e.ID, &e.SessionID, &e.SubjectID, &e.SubjectName,
			&e.Track, &e.ClassName, &e.BatchCount); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// SubjectIDsBySession returns the distinct subject ids covered by a session,
// derived by following Session → Exam → Batch → Subject. The subject conflict
// check intersects this set with the teacher's subjects.
func (r *ExamRepository) SubjectIDsBySession(ctx context.Context, sessionID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT b.subject_id
		 FROM batches b
		 JOIN exams e ON e.id = b.exam_id
		 WHERE e.session_id = $1`, sessionID)
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

// CountBatchesBySession sums the batch count across every exam of the session.
// This total drives the need formula.
func (r *ExamRepository) CountBatchesBySession(ctx context.Context, sessionID int) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM batches b
		 JOIN exams e ON e.id = b.exam_id
		 WHERE e.session_id = $1`, sessionID,
	).Scan(&total)
	return total, err
}
