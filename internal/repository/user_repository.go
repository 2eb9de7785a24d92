package repository

import (
	"context"

	"github.com/fsegs/survex-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles login account data access.
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

// GetByLogin retrieves a user by login name. Returns pgx.ErrNoRows when the
// login is unknown.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, teacher_id, login, password_hash, role, created_at
		 FROM users WHERE login = $1`, login,
	).Scan(&u.ID, &u.TeacherID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, teacher_id, login, password_hash, role, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.TeacherID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a login account.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (teacher_id, login, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.TeacherID, u.Login, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
}
