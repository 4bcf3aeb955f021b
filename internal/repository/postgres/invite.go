package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
)

type inviteRepository struct {
	db *sql.DB
}

func NewInviteRepository(db *sql.DB) repository.InviteRepository {
	return &inviteRepository{db: db}
}

const inviteColumns = `token, group_id, created_by, active, expires_at, max_uses, uses, created_at`

func scanInvite(row interface{ Scan(...any) error }, inv *domain.Invite) error {
	return row.Scan(&inv.Token, &inv.GroupID, &inv.CreatedBy, &inv.Active, &inv.ExpiresAt, &inv.MaxUses, &inv.Uses, &inv.CreatedAt)
}

func (r *inviteRepository) Create(ctx context.Context, inv *domain.Invite) error {
	inv.CreatedAt = time.Now().UTC()
	query := `INSERT INTO group_invites (token, group_id, created_by, active, expires_at, max_uses, uses, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, inv.Token, inv.GroupID, inv.CreatedBy, inv.Active, inv.ExpiresAt, inv.MaxUses, inv.Uses, inv.CreatedAt)
	return storageErr(err)
}

func (r *inviteRepository) ListByGroup(ctx context.Context, groupID string) ([]domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+inviteColumns+` FROM group_invites WHERE group_id = $1 ORDER BY created_at DESC`, groupID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var invites []domain.Invite
	for rows.Next() {
		var inv domain.Invite
		if err := scanInvite(rows, &inv); err != nil {
			return nil, storageErr(err)
		}
		invites = append(invites, inv)
	}
	return invites, storageErr(rows.Err())
}

func (r *inviteRepository) Deactivate(ctx context.Context, groupID, token string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE group_invites SET active = FALSE WHERE token = $1 AND group_id = $2`, token, groupID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("inviteRepository.Deactivate", n, err, "groupID", groupID)
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return domain.ErrInvalidOrExpiredToken
	}
	return nil
}

func (r *inviteRepository) Redeem(ctx context.Context, token, userID string, now time.Time) (*domain.Invite, error) {
	inv := &domain.Invite{}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := scanInvite(tx.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM group_invites WHERE token = $1 FOR UPDATE`, token), inv)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvalidOrExpiredToken
		}
		if err != nil {
			return err
		}
		if err := inv.CheckRedeemable(now); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
			inv.GroupID, userID, domain.MemberRoleMember, now)
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE group_invites SET uses = uses + 1 WHERE token = $1`, token)
		if err != nil {
			return err
		}
		inv.Uses++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}
