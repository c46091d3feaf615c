package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/shareride-auth/internal/model"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// GetByEmail matches email exactly. Callers pass the normalized form, the same
// one Create stored.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT user_id, user_firstname, user_lastname, user_gender, user_email, user_password, created_at
			  FROM tbl_users WHERE user_email = $1 LIMIT 2`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	defer rows.Close()

	var (
		user  model.User
		found int
	)
	for rows.Next() {
		found++
		if found > 1 {
			return model.User{}, model.ErrAmbiguousEmail
		}
		if err := rows.Scan(
			&user.ID, &user.FirstName, &user.LastName, &user.Gender,
			&user.Email, &user.PasswordHash, &user.CreatedAt,
		); err != nil {
			return model.User{}, fmt.Errorf("failed to scan user: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if found == 0 {
		return model.User{}, model.ErrNotFound
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO tbl_users (user_id, user_firstname, user_lastname, user_gender, user_email, user_password)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.FirstName, user.LastName, string(user.Gender), user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
