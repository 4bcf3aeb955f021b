package service

import (
	"context"
	"time"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/geo"
)

type CheckInService interface {
	RequestManualCheckIn(ctx context.Context, groupID, userID string) (*domain.CheckIn, error)
	// RequestGeoCheckIn validates point against the group's fences. A nil
	// point means the device could not produce a fix.
	RequestGeoCheckIn(ctx context.Context, groupID, userID string, point *geo.Point) (*domain.CheckIn, error)
	TodayStatus(ctx context.Context, groupID, userID string) (*domain.CheckIn, error)
}

type ApprovalService interface {
	Approve(ctx context.Context, groupID, checkInID, approverID string) error
	Reject(ctx context.Context, groupID, checkInID, adminID, reason string) error
	ListPending(ctx context.Context, groupID, viewerID string) ([]domain.CheckIn, error)
}

type MembershipService interface {
	CreateGroup(ctx context.Context, creatorID, name, description, timezone string) (*domain.Group, error)
	GetGroup(ctx context.Context, groupID, viewerID string) (*domain.Group, error)
	UpdateGroup(ctx context.Context, groupID, actorID, name, description, timezone string) (*domain.Group, error)
	LeaveGroup(ctx context.Context, groupID, userID string) (domain.LeaveAction, error)
	SetRole(ctx context.Context, groupID, actorID, targetID string, role domain.MemberRole) error
	ListMyGroups(ctx context.Context, userID string) ([]domain.GroupSummary, error)
	ListMembers(ctx context.Context, groupID, viewerID string) ([]domain.Member, error)
}

type InviteService interface {
	CreateInvite(ctx context.Context, groupID, creatorID string, expiresInHours *int, maxUses int) (*domain.Invite, error)
	// RedeemInvite returns the id of the group joined.
	RedeemInvite(ctx context.Context, token, userID string) (string, error)
	DeactivateInvite(ctx context.Context, groupID, adminID, token string) error
	ListInvites(ctx context.Context, groupID, adminID string) ([]domain.Invite, error)
}

type LocationService interface {
	AddLocation(ctx context.Context, groupID, adminID, name string, lat, lng, radiusM float64) (*domain.Location, error)
	DeleteLocation(ctx context.Context, groupID, adminID, locationID string) error
	ListLocations(ctx context.Context, groupID, viewerID string) ([]domain.Location, error)
}

type AggregationService interface {
	MonthlyLeaderboard(ctx context.Context, groupID string, period calendar.Range) ([]domain.LeaderboardEntry, error)
	// AwardMonthWinner is idempotent and safe to call concurrently. It
	// returns the period's badge, or nil when nobody checked in.
	AwardMonthWinner(ctx context.Context, groupID, periodStart string) (*domain.Badge, error)
	LastMonthWinner(ctx context.Context, groupID string) (*domain.Badge, error)
}

type DashboardService interface {
	Dashboard(ctx context.Context, groupID, viewerID string) (*Dashboard, error)
	// Wait blocks until background awards started by Dashboard have finished.
	Wait()
}

type RoutineService interface {
	UploadURL(ctx context.Context, groupID, adminID, contentType string) (*RoutineUpload, error)
	SetRoutine(ctx context.Context, groupID, adminID, key, contentType string) error
	ClearRoutine(ctx context.Context, groupID, adminID string) error
	// DownloadURL is empty when the group has no routine or storage is unavailable.
	DownloadURL(ctx context.Context, groupID, viewerID string) (string, error)
}

// Dashboard is everything the group home view needs in one response.
type Dashboard struct {
	Group           domain.Group              `json:"group"`
	Role            domain.MemberRole         `json:"role"`
	Today           string                    `json:"today"`
	Month           calendar.Range            `json:"month"`
	TodayCheckIn    *domain.CheckIn           `json:"today_checkin,omitempty"`
	Members         []domain.Member           `json:"members"`
	Locations       []domain.Location         `json:"locations"`
	Leaderboard     []domain.LeaderboardEntry `json:"leaderboard"`
	MyMonthCount    int                       `json:"my_month_count"`
	Streak          int                       `json:"streak"`
	Pending         []domain.CheckIn          `json:"pending"`
	LastMonthWinner *domain.Badge             `json:"last_month_winner,omitempty"`
	RoutineURL      string                    `json:"routine_url,omitempty"`
}

type RoutineUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
