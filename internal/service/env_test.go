package service_test

import (
	"context"
	"testing"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository/memory"
	"gymcrew-backend/internal/service"

	"github.com/stretchr/testify/require"
)

// fixedNow is mid-March so the previous month is February 2024 (leap year).
var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	store *memory.Store
	now   time.Time

	checkIns    service.CheckInService
	approvals   service.ApprovalService
	memberships service.MembershipService
	invites     service.InviteService
	locations   service.LocationService
	aggregation service.AggregationService
	dashboard   service.DashboardService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{store: memory.NewStore(), now: fixedNow}
	clock := func() time.Time { return e.now }
	s := &e.store.Store

	e.checkIns = service.NewCheckInService(s.GroupRepository, s.MembershipRepository, s.LocationRepository, s.CheckInRepository, clock)
	e.approvals = service.NewApprovalService(s.MembershipRepository, s.CheckInRepository, clock)
	e.memberships = service.NewMembershipService(s.GroupRepository, s.MembershipRepository, s.CheckInRepository, clock)
	e.invites = service.NewInviteService(s.MembershipRepository, s.InviteRepository, clock)
	e.locations = service.NewLocationService(s.MembershipRepository, s.LocationRepository)
	e.aggregation = service.NewAggregationService(s.GroupRepository, s.MembershipRepository, s.CheckInRepository, s.BadgeRepository, clock)
	e.dashboard = service.NewDashboardService(s, e.aggregation, nil, clock, time.Second)
	return e
}

// group creates a crew owned by admin with the given extra members joined in order.
func (e *env) group(t *testing.T, tz, admin string, members ...string) string {
	t.Helper()
	ctx := context.Background()
	g, err := e.memberships.CreateGroup(ctx, admin, "Crew", "", tz)
	require.NoError(t, err)
	if len(members) == 0 {
		return g.ID
	}
	inv, err := e.invites.CreateInvite(ctx, g.ID, admin, nil, len(members))
	require.NoError(t, err)
	for _, m := range members {
		_, err := e.invites.RedeemInvite(ctx, inv.Token, m)
		require.NoError(t, err)
	}
	return g.ID
}

// approved inserts an APPROVED check-in on date directly through the repository.
func (e *env) approved(t *testing.T, groupID, userID, date string) {
	t.Helper()
	require.NoError(t, e.store.CheckInRepository.Create(context.Background(), domain.NewGeoCheckIn(groupID, userID, date, 0, 0)))
}

func (e *env) fence(t *testing.T, groupID, admin, name string, lat, lng float64, radius float64) {
	t.Helper()
	_, err := e.locations.AddLocation(context.Background(), groupID, admin, name, lat, lng, radius)
	require.NoError(t, err)
}
