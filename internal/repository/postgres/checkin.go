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

type checkInRepository struct {
	db *sql.DB
}

func NewCheckInRepository(db *sql.DB) repository.CheckInRepository {
	return &checkInRepository{db: db}
}

const checkInColumns = `id, group_id, user_id, checkin_date::text, method, status, lat, lng, reject_reason, created_at`

func scanCheckIn(row interface{ Scan(...any) error }, c *domain.CheckIn) error {
	return row.Scan(&c.ID, &c.GroupID, &c.UserID, &c.CheckinDate, &c.Method, &c.Status, &c.Lat, &c.Lng, &c.RejectReason, &c.CreatedAt)
}

func (r *checkInRepository) Create(ctx context.Context, c *domain.CheckIn) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	query := `INSERT INTO check_ins (id, group_id, user_id, checkin_date, method, status, lat, lng, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.GroupID, c.UserID, c.CheckinDate, c.Method, c.Status, c.Lat, c.Lng, c.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateCheckIn
	}
	return storageErr(err)
}

func (r *checkInRepository) GetByID(ctx context.Context, groupID, id string) (*domain.CheckIn, error) {
	c := &domain.CheckIn{}
	query := `SELECT ` + checkInColumns + ` FROM check_ins WHERE id = $1 AND group_id = $2`
	err := scanCheckIn(r.db.QueryRowContext(ctx, query, id, groupID), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCheckInNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return c, nil
}

func (r *checkInRepository) GetByDate(ctx context.Context, groupID, userID, date string) (*domain.CheckIn, error) {
	c := &domain.CheckIn{}
	query := `SELECT ` + checkInColumns + ` FROM check_ins WHERE group_id = $1 AND user_id = $2 AND checkin_date = $3`
	err := scanCheckIn(r.db.QueryRowContext(ctx, query, groupID, userID, date), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return c, nil
}

// transition is the compare-and-swap both approve and reject rely on.
const transition = ` WHERE id = $1 AND group_id = $2 AND status = 'PENDING' AND method = 'MANUAL'`

func (r *checkInRepository) Approve(ctx context.Context, groupID, id, approverID string, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE check_ins SET status = 'APPROVED'`+transition, id, groupID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		logger.DatabaseResult("checkInRepository.Approve", n, err, "checkInID", id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotPendingManual
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO manual_approvals (id, check_in_id, approver_user_id, created_at) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), id, approverID, at)
		return err
	})
}

func (r *checkInRepository) Reject(ctx context.Context, groupID, id, reason string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE check_ins SET status = 'REJECTED', reject_reason = $3`+transition, id, groupID, reason)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("checkInRepository.Reject", n, err, "checkInID", id)
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return domain.ErrNotPendingManual
	}
	return nil
}

func (r *checkInRepository) ListPendingManual(ctx context.Context, groupID string) ([]domain.CheckIn, error) {
	query := `SELECT c.id, c.group_id, c.user_id, c.checkin_date::text, c.method, c.status, c.lat, c.lng, c.reject_reason, c.created_at,
	                 COALESCE(u.name, '')
	          FROM check_ins c
	          LEFT JOIN users u ON u.id = c.user_id
	          WHERE c.group_id = $1 AND c.method = 'MANUAL' AND c.status = 'PENDING'
	          ORDER BY c.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var out []domain.CheckIn
	for rows.Next() {
		var c domain.CheckIn
		if err := rows.Scan(&c.ID, &c.GroupID, &c.UserID, &c.CheckinDate, &c.Method, &c.Status, &c.Lat, &c.Lng, &c.RejectReason, &c.CreatedAt, &c.UserName); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, c)
	}
	return out, storageErr(rows.Err())
}

func (r *checkInRepository) CountApproved(ctx context.Context, groupID, start, end string) (map[string]int, error) {
	query := `SELECT user_id, COUNT(*) FROM check_ins
	          WHERE group_id = $1 AND status = 'APPROVED' AND checkin_date >= $2 AND checkin_date <= $3
	          GROUP BY user_id`
	rows, err := r.db.QueryContext(ctx, query, groupID, start, end)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var userID string
		var n int
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, storageErr(err)
		}
		counts[userID] = n
	}
	return counts, storageErr(rows.Err())
}

func (r *checkInRepository) ListApprovedDates(ctx context.Context, groupID, userID string, limit int) ([]string, error) {
	query := `SELECT checkin_date::text FROM check_ins
	          WHERE group_id = $1 AND user_id = $2 AND status = 'APPROVED'
	          ORDER BY checkin_date DESC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, groupID, userID, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, storageErr(err)
		}
		dates = append(dates, d)
	}
	return dates, storageErr(rows.Err())
}
