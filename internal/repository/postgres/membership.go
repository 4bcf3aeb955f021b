package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository"
)

type membershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Get(ctx context.Context, groupID, userID string) (*domain.Membership, error) {
	m := &domain.Membership{}
	query := `SELECT group_id, user_id, role, joined_at FROM group_members WHERE group_id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return m, nil
}

func (r *membershipRepository) ListByGroup(ctx context.Context, groupID string) ([]domain.Member, error) {
	query := `SELECT m.group_id, m.user_id, m.role, m.joined_at, COALESCE(u.name, ''), COALESCE(u.avatar_url, '')
	          FROM group_members m
	          LEFT JOIN users u ON u.id = m.user_id
	          WHERE m.group_id = $1
	          ORDER BY m.role ASC, m.joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt, &m.Name, &m.AvatarURL); err != nil {
			return nil, storageErr(err)
		}
		if m.Name == "" {
			m.Name = m.UserID
		}
		members = append(members, m)
	}
	return members, storageErr(rows.Err())
}

// lockMembers takes the group row lock, which also blocks concurrent invite
// redemptions inserting into the group, then reads the current members.
func lockMembers(ctx context.Context, tx *sql.Tx, groupID string) ([]domain.Membership, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM gym_groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT group_id, user_id, role, joined_at FROM group_members WHERE group_id = $1 ORDER BY joined_at`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipRepository) Leave(ctx context.Context, groupID, userID string) (domain.LeaveAction, error) {
	var action domain.LeaveAction
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		members, err := lockMembers(ctx, tx, groupID)
		if err != nil {
			return err
		}
		action, err = domain.DecideLeave(members, userID)
		if err != nil {
			return err
		}
		if action == domain.LeaveDeleteGroup {
			_, err = tx.ExecContext(ctx, `DELETE FROM gym_groups WHERE id = $1`, groupID)
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
		return err
	})
	return action, err
}

func (r *membershipRepository) SetRole(ctx context.Context, groupID, targetID string, role domain.MemberRole) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		members, err := lockMembers(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := domain.CheckRoleChange(members, targetID, role); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE group_members SET role = $1 WHERE group_id = $2 AND user_id = $3`, role, groupID, targetID)
		return err
	})
}
