package postgres_test

import (
	"context"
	"testing"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkInCols = []string{"id", "group_id", "user_id", "checkin_date", "method", "status", "lat", "lng", "reject_reason", "created_at"}

func TestCheckInRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCheckInRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		c := domain.NewManualCheckIn("g1", "u1", "2024-03-05")
		mock.ExpectExec("INSERT INTO check_ins").
			WithArgs(sqlmock.AnyArg(), "g1", "u1", "2024-03-05", domain.CheckInMethodManual, domain.CheckInStatusPending, nil, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, c))
		assert.NotEmpty(t, c.ID)
	})

	t.Run("Duplicate", func(t *testing.T) {
		c := domain.NewGeoCheckIn("g1", "u1", "2024-03-05", 40.0, -73.0)
		mock.ExpectExec("INSERT INTO check_ins").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, c)
		assert.ErrorIs(t, err, domain.ErrDuplicateCheckIn)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		c := domain.NewManualCheckIn("g1", "u2", "2024-03-05")
		mock.ExpectExec("INSERT INTO check_ins").
			WillReturnError(assert.AnError)

		err := repo.Create(ctx, c)
		assert.Equal(t, domain.KindTransientUnavailable, domain.KindOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCheckInRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(checkInCols).
			AddRow("c1", "g1", "u1", "2024-03-05", "MANUAL", "PENDING", nil, nil, nil, time.Now())
		mock.ExpectQuery("SELECT (.+) FROM check_ins WHERE id = \\$1 AND group_id = \\$2").
			WithArgs("c1", "g1").
			WillReturnRows(rows)

		c, err := repo.GetByID(ctx, "g1", "c1")
		require.NoError(t, err)
		assert.True(t, c.IsPendingManual())
		assert.Nil(t, c.Lat)
	})

	t.Run("OtherGroup", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM check_ins WHERE id = \\$1 AND group_id = \\$2").
			WithArgs("c1", "g2").
			WillReturnRows(sqlmock.NewRows(checkInCols))

		c, err := repo.GetByID(ctx, "g2", "c1")
		assert.ErrorIs(t, err, domain.ErrCheckInNotFound)
		assert.Nil(t, c)
	})
}

func TestCheckInRepository_Approve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCheckInRepository(db)
	ctx := context.Background()
	at := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE check_ins SET status = 'APPROVED' WHERE id = \\$1 AND group_id = \\$2 AND status = 'PENDING' AND method = 'MANUAL'").
			WithArgs("c1", "g1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO manual_approvals").
			WithArgs(sqlmock.AnyArg(), "c1", "u2", at).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Approve(ctx, "g1", "c1", "u2", at))
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE check_ins SET status = 'APPROVED'").
			WithArgs("c1", "g1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Approve(ctx, "g1", "c1", "u3", at)
		assert.ErrorIs(t, err, domain.ErrNotPendingManual)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInRepository_Reject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCheckInRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE check_ins SET status = 'REJECTED', reject_reason = \\$3").
		WithArgs("c1", "g1", "not at the gym").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Reject(ctx, "g1", "c1", "not at the gym"))

	mock.ExpectExec("UPDATE check_ins SET status = 'REJECTED'").
		WithArgs("c1", "g1", "again").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Reject(ctx, "g1", "c1", "again"), domain.ErrNotPendingManual)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInRepository_CountApproved(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCheckInRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "count"}).
		AddRow("a", 2).
		AddRow("b", 3)
	mock.ExpectQuery("SELECT user_id, COUNT\\(\\*\\) FROM check_ins").
		WithArgs("g1", "2024-03-01", "2024-03-31").
		WillReturnRows(rows)

	counts, err := repo.CountApproved(context.Background(), "g1", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 3}, counts)
}

func TestCheckInRepository_ListApprovedDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewCheckInRepository(db)

	rows := sqlmock.NewRows([]string{"checkin_date"}).
		AddRow("2024-03-05").
		AddRow("2024-03-04")
	mock.ExpectQuery("SELECT checkin_date::text FROM check_ins").
		WithArgs("g1", "u1", 90).
		WillReturnRows(rows)

	dates, err := repo.ListApprovedDates(context.Background(), "g1", "u1", 90)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-05", "2024-03-04"}, dates)
}
