package postgres

import (
	"context"
	"database/sql"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"

	"github.com/google/uuid"
)

type locationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, l *domain.Location) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()
	query := `INSERT INTO gym_locations (id, group_id, name, lat, lng, radius_m, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, l.ID, l.GroupID, l.Name, l.Lat, l.Lng, l.RadiusM, l.CreatedAt)
	return storageErr(err)
}

func (r *locationRepository) Delete(ctx context.Context, groupID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gym_locations WHERE id = $1 AND group_id = $2`, id, groupID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("locationRepository.Delete", n, err, "locationID", id)
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return domain.NewError(domain.KindInvalidArgument, "location not found")
	}
	return nil
}

func (r *locationRepository) ListByGroup(ctx context.Context, groupID string) ([]domain.Location, error) {
	query := `SELECT id, group_id, name, lat, lng, radius_m, created_at FROM gym_locations WHERE group_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.GroupID, &l.Name, &l.Lat, &l.Lng, &l.RadiusM, &l.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		locs = append(locs, l)
	}
	return locs, storageErr(rows.Err())
}
