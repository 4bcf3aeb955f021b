package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, name, COALESCE(avatar_url, ''), created_at FROM users WHERE id = $1`
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.AvatarURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	u.CreatedAt = createdAt.Format(time.RFC3339)
	return u, nil
}
