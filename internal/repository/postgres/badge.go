package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository"

	"github.com/google/uuid"
)

type badgeRepository struct {
	db *sql.DB
}

func NewBadgeRepository(db *sql.DB) repository.BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) Get(ctx context.Context, groupID string, badgeType domain.BadgeType, periodStart string) (*domain.Badge, error) {
	b := &domain.Badge{}
	query := `SELECT b.id, b.group_id, b.user_id, b.badge_type, b.period_start::text, b.period_end::text, b.created_at, COALESCE(u.name, '')
	          FROM badges b
	          LEFT JOIN users u ON u.id = b.user_id
	          WHERE b.group_id = $1 AND b.badge_type = $2 AND b.period_start = $3`
	err := r.db.QueryRowContext(ctx, query, groupID, badgeType, periodStart).
		Scan(&b.ID, &b.GroupID, &b.UserID, &b.BadgeType, &b.PeriodStart, &b.PeriodEnd, &b.CreatedAt, &b.UserName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return b, nil
}

func (r *badgeRepository) CreateIfAbsent(ctx context.Context, b *domain.Badge) (bool, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now().UTC()
	query := `INSERT INTO badges (id, group_id, user_id, badge_type, period_start, period_end, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (group_id, badge_type, period_start) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, b.ID, b.GroupID, b.UserID, b.BadgeType, b.PeriodStart, b.PeriodEnd, b.CreatedAt)
	if err != nil {
		return false, storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr(err)
	}
	return n == 1, nil
}
