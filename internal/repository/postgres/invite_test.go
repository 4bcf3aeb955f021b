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

var inviteCols = []string{"token", "group_id", "created_by", "active", "expires_at", "max_uses", "uses", "created_at"}

func TestInviteRepository_Redeem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewInviteRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	selectInvite := "SELECT (.+) FROM group_invites WHERE token = \\$1 FOR UPDATE"

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(selectInvite).
			WithArgs("tok").
			WillReturnRows(sqlmock.NewRows(inviteCols).AddRow("tok", "g1", "admin", true, later, 2, 0, now))
		mock.ExpectExec("INSERT INTO group_members").
			WithArgs("g1", "u1", domain.MemberRoleMember, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE group_invites SET uses = uses \\+ 1").
			WithArgs("tok").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		inv, err := repo.Redeem(ctx, "tok", "u1", now)
		require.NoError(t, err)
		assert.Equal(t, "g1", inv.GroupID)
		assert.Equal(t, 1, inv.Uses)
	})

	t.Run("Exhausted", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(selectInvite).
			WithArgs("tok").
			WillReturnRows(sqlmock.NewRows(inviteCols).AddRow("tok", "g1", "admin", true, nil, 1, 1, now))
		mock.ExpectRollback()

		_, err := repo.Redeem(ctx, "tok", "u2", now)
		assert.Equal(t, domain.KindMaxUsesReached, domain.KindOf(err))
	})

	t.Run("Expired", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(selectInvite).
			WithArgs("tok").
			WillReturnRows(sqlmock.NewRows(inviteCols).AddRow("tok", "g1", "admin", true, now, 5, 0, now))
		mock.ExpectRollback()

		_, err := repo.Redeem(ctx, "tok", "u2", now)
		assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(selectInvite).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(inviteCols))
		mock.ExpectRollback()

		_, err := repo.Redeem(ctx, "nope", "u2", now)
		assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
	})

	t.Run("AlreadyMember", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(selectInvite).
			WithArgs("tok").
			WillReturnRows(sqlmock.NewRows(inviteCols).AddRow("tok", "g1", "admin", true, nil, 5, 0, now))
		mock.ExpectExec("INSERT INTO group_members").
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		_, err := repo.Redeem(ctx, "tok", "admin", now)
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBadgeRepository_CreateIfAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewBadgeRepository(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO badges (.+) ON CONFLICT \\(group_id, badge_type, period_start\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	created, err := repo.CreateIfAbsent(ctx, &domain.Badge{GroupID: "g1", UserID: "a", BadgeType: domain.BadgeTypeMonthWinner, PeriodStart: "2024-02-01", PeriodEnd: "2024-02-29"})
	require.NoError(t, err)
	assert.True(t, created)

	mock.ExpectExec("INSERT INTO badges").
		WillReturnResult(sqlmock.NewResult(0, 0))
	created, err = repo.CreateIfAbsent(ctx, &domain.Badge{GroupID: "g1", UserID: "b", BadgeType: domain.BadgeTypeMonthWinner, PeriodStart: "2024-02-01", PeriodEnd: "2024-02-29"})
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}
