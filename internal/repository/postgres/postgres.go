package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		UserRepository:       NewUserRepository(db),
		GroupRepository:      NewGroupRepository(db),
		MembershipRepository: NewMembershipRepository(db),
		LocationRepository:   NewLocationRepository(db),
		CheckInRepository:    NewCheckInRepository(db),
		InviteRepository:     NewInviteRepository(db),
		BadgeRepository:      NewBadgeRepository(db),
	}
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// storageErr passes domain errors through and marks everything else transient.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Transient(err)
}

// withTx runs fn in a transaction, committing only if fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return storageErr(err)
	}
	return storageErr(tx.Commit())
}
