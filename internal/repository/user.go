package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
)

// UserRepo represents user repository.
type UserRepo struct{ db *pgxpool.Pool }

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

// Get - returns user by its ID, or nil if there is none.
func (r *UserRepo) Get(ctx context.Context, id int64) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, rating FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Rating)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// Create - creates a new user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO users(name, email, password_hash, role, rating) VALUES($1, $2, $3, $4, $5) RETURNING id`,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.Rating).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}
