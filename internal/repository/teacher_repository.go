package repository

import (
	"context"

	"github.com/fsegs/survex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TeacherRepository handles teacher data access.
type TeacherRepository struct {
	pool *pgxpool.Pool
	db   Querier
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool, db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *TeacherRepository) WithTx(tx pgx.Tx) *TeacherRepository {
	return &TeacherRepository{pool: r.pool, db: tx}
}

// GetByID retrieves a teacher. Returns pgx.ErrNoRows if the id does not resolve.
func (r *TeacherRepository) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.db.QueryRow(ctx,
		`SELECT id, full_name, grade, teaching_load, supervision_quota, created_at, updated_at
		 FROM teachers WHERE id = $1`, id,
	).Scan(&t.ID, &t.FullName, &t.Grade, &t.TeachingLoad, &t.SupervisionQuota, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a teacher together with the links to the subjects they teach,
// in one transaction.
func (r *TeacherRepository) Create(ctx context.Context, t *model.Teacher, subjectIDs []int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO teachers (full_name, grade, teaching_load)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		t.FullName, t.Grade, t.TeachingLoad,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	for _, sid := range subjectIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, t.ID, sid); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// List retrieves all teachers ordered by name.
func (r *TeacherRepository) List(ctx context.Context) ([]model.Teacher, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, full_name, grade, teaching_load, supervision_quota, created_at, updated_at
		 FROM teachers ORDER BY full_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teachers []model.Teacher
	for rows.Next() {
		var t model.Teacher
		if err := rows.Scan(&t.ID, &t.FullName, &t.Grade, &t.TeachingLoad, &t.SupervisionQuota, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// ListIDs retrieves all teacher ids, used by batch quota recomputation.
func (r *TeacherRepository) ListIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM teachers ORDER BY id ASC`)
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

// SubjectIDs returns the ids of the subjects the teacher teaches.
func (r *TeacherRepository) SubjectIDs(ctx context.Context, teacherID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT subject_id FROM teacher_subjects WHERE teacher_id = $1`, teacherID)
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

// Subjects returns the subjects the teacher teaches.
func (r *TeacherRepository) Subjects(ctx context.Context, teacherID int) ([]model.Subject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.name, s.created_at, s.updated_at
		 FROM subjects s
		 JOIN teacher_subjects ts ON ts.subject_id = s.id
		 WHERE ts.teacher_id = $1
		 ORDER BY s.name ASC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// CountOwnSubjectSessions counts the distinct sessions containing at least one
// exam in any subject the teacher teaches. A session counts once even when it
// covers several of the teacher's subjects.
func (r *TeacherRepository) CountOwnSubjectSessions(ctx context.Context, teacherID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT e.session_id)
		 FROM exams e
		 JOIN teacher_subjects ts ON ts.subject_id = e.subject_id
		 WHERE ts.teacher_id = $1`, teacherID,
	).Scan(&count)
	return count, err
}

// UpdateSupervisionQuota writes the derived quota back onto the teacher row.
func (r *TeacherRepository) UpdateSupervisionQuota(ctx context.Context, teacherID int, quota float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE teachers SET supervision_quota = $1, updated_at = NOW() WHERE id = $2`,
		quota, teacherID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
