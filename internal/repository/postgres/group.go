package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"

	"github.com/google/uuid"
)

type groupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) repository.GroupRepository {
	return &groupRepository{db: db}
}

const groupColumns = `id, name, COALESCE(description, ''), timezone, routine_url, routine_content_type, created_by, created_at`

func scanGroup(row interface{ Scan(...any) error }, g *domain.Group) error {
	return row.Scan(&g.ID, &g.Name, &g.Description, &g.Timezone, &g.RoutinePath, &g.RoutineContentType, &g.CreatedBy, &g.CreatedAt)
}

func (r *groupRepository) Create(ctx context.Context, g *domain.Group, creator *domain.Membership) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	creator.GroupID = g.ID
	creator.JoinedAt = now

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO gym_groups (id, name, description, timezone, created_by, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			g.ID, g.Name, g.Description, g.Timezone, g.CreatedBy, g.CreatedAt)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
			creator.GroupID, creator.UserID, creator.Role, creator.JoinedAt)
		return err
	})
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	g := &domain.Group{}
	err := scanGroup(r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM gym_groups WHERE id = $1`, id), g)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return g, nil
}

func (r *groupRepository) Update(ctx context.Context, g *domain.Group) error {
	query := `UPDATE gym_groups SET name = $1, description = $2, timezone = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, g.Name, g.Description, g.Timezone, g.ID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("groupRepository.Update", n, err, "groupID", g.ID)
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *groupRepository) UpdateRoutine(ctx context.Context, groupID string, path, contentType *string) error {
	query := `UPDATE gym_groups SET routine_url = $1, routine_content_type = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, path, contentType, groupID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("groupRepository.UpdateRoutine", n, err, "groupID", groupID)
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *groupRepository) List(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM gym_groups ORDER BY created_at`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := scanGroup(rows, &g); err != nil {
			return nil, storageErr(err)
		}
		groups = append(groups, g)
	}
	return groups, storageErr(rows.Err())
}

func (r *groupRepository) ListByUser(ctx context.Context, userID string) ([]domain.Group, []domain.Membership, error) {
	query := `SELECT g.id, g.name, COALESCE(g.description, ''), g.timezone, g.routine_url, g.routine_content_type, g.created_by, g.created_at,
	                 m.role, m.joined_at
	          FROM group_members m
	          JOIN gym_groups g ON g.id = m.group_id
	          WHERE m.user_id = $1
	          ORDER BY m.joined_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	defer rows.Close()

	var groups []domain.Group
	var memberships []domain.Membership
	for rows.Next() {
		var g domain.Group
		m := domain.Membership{UserID: userID}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Timezone, &g.RoutinePath, &g.RoutineContentType, &g.CreatedBy, &g.CreatedAt, &m.Role, &m.JoinedAt); err != nil {
			return nil, nil, storageErr(err)
		}
		m.GroupID = g.ID
		groups = append(groups, g)
		memberships = append(memberships, m)
	}
	return groups, memberships, storageErr(rows.Err())
}
