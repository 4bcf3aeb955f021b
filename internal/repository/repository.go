package repository

import (
	"context"
	"time"

	"gymcrew-backend/internal/domain"
)

// Every implementation must make the marked operations atomic. Lookups that
// find nothing return (nil, nil) unless documented otherwise.

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type GroupRepository interface {
	// Create inserts the group and the creator's ADMIN membership together.
	Create(ctx context.Context, group *domain.Group, creator *domain.Membership) error
	// GetByID returns domain.ErrGroupNotFound when the id does not resolve.
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
	UpdateRoutine(ctx context.Context, groupID string, path, contentType *string) error
	List(ctx context.Context) ([]domain.Group, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Group, []domain.Membership, error)
}

type MembershipRepository interface {
	Get(ctx context.Context, groupID, userID string) (*domain.Membership, error)
	// ListByGroup orders admins first, then by join time.
	ListByGroup(ctx context.Context, groupID string) ([]domain.Member, error)
	// Leave applies domain.DecideLeave under a lock on the group and performs
	// the resulting delete.
	Leave(ctx context.Context, groupID, userID string) (domain.LeaveAction, error)
	// SetRole applies domain.CheckRoleChange under the same lock.
	SetRole(ctx context.Context, groupID, targetID string, role domain.MemberRole) error
}

type LocationRepository interface {
	Create(ctx context.Context, loc *domain.Location) error
	Delete(ctx context.Context, groupID, id string) error
	ListByGroup(ctx context.Context, groupID string) ([]domain.Location, error)
}

type CheckInRepository interface {
	// Create returns domain.ErrDuplicateCheckIn when (group, user, date) exists.
	Create(ctx context.Context, c *domain.CheckIn) error
	// GetByID returns domain.ErrCheckInNotFound unless id lives in groupID.
	GetByID(ctx context.Context, groupID, id string) (*domain.CheckIn, error)
	GetByDate(ctx context.Context, groupID, userID, date string) (*domain.CheckIn, error)
	// Approve moves a PENDING MANUAL row to APPROVED and appends the audit
	// record. Returns domain.ErrNotPendingManual if the row already moved.
	Approve(ctx context.Context, groupID, id, approverID string, at time.Time) error
	// Reject moves a PENDING MANUAL row to REJECTED with a reason.
	Reject(ctx context.Context, groupID, id, reason string) error
	ListPendingManual(ctx context.Context, groupID string) ([]domain.CheckIn, error)
	// CountApproved counts APPROVED rows per user with start <= date <= end.
	CountApproved(ctx context.Context, groupID, start, end string) (map[string]int, error)
	// ListApprovedDates returns the user's most recent APPROVED dates, newest first.
	ListApprovedDates(ctx context.Context, groupID, userID string, limit int) ([]string, error)
}

type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	ListByGroup(ctx context.Context, groupID string) ([]domain.Invite, error)
	Deactivate(ctx context.Context, groupID, token string) error
	// Redeem locks the invite, validates it at now, inserts the MEMBER
	// membership and increments uses as one unit.
	Redeem(ctx context.Context, token, userID string, now time.Time) (*domain.Invite, error)
}

type BadgeRepository interface {
	Get(ctx context.Context, groupID string, badgeType domain.BadgeType, periodStart string) (*domain.Badge, error)
	// CreateIfAbsent inserts unless a badge exists for (group, type, period start).
	CreateIfAbsent(ctx context.Context, badge *domain.Badge) (bool, error)
}

// Store groups the repositories one backend provides.
type Store struct {
	UserRepository
	GroupRepository
	MembershipRepository
	LocationRepository
	CheckInRepository
	InviteRepository
	BadgeRepository
}
