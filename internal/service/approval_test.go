package service_test

import (
	"context"
	"testing"

	"gymcrew-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalService_Approve(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gid := e.group(t, "UTC", "admin", "bob", "carol")
	other := e.group(t, "UTC", "zed")

	c, err := e.checkIns.RequestManualCheckIn(ctx, gid, "bob")
	require.NoError(t, err)

	assert.ErrorIs(t, e.approvals.Approve(ctx, gid, c.ID, "bob"), domain.ErrCannotSelfApprove)
	assert.ErrorIs(t, e.approvals.Approve(ctx, gid, c.ID, "zed"), domain.ErrNotAuthorized)
	assert.ErrorIs(t, e.approvals.Approve(ctx, other, c.ID, "zed"), domain.ErrCheckInNotFound, "ids from another group do not resolve")

	pending, err := e.approvals.ListPending(ctx, gid, "carol")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// any member may approve, not only admins
	require.NoError(t, e.approvals.Approve(ctx, gid, c.ID, "carol"))
	assert.ErrorIs(t, e.approvals.Approve(ctx, gid, c.ID, "admin"), domain.ErrNotPendingManual)

	audit := e.store.Approvals()
	require.Len(t, audit, 1)
	assert.Equal(t, "carol", audit[0].ApproverUserID)
	assert.Equal(t, c.ID, audit[0].CheckInID)

	pending, err = e.approvals.ListPending(ctx, gid, "carol")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApprovalService_GeoRowIsNotPendingManual(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gid := e.group(t, "UTC", "admin", "bob")
	c := domain.NewGeoCheckIn(gid, "bob", "2024-03-15", 1, 1)
	require.NoError(t, e.store.CheckInRepository.Create(ctx, c))

	assert.ErrorIs(t, e.approvals.Approve(ctx, gid, c.ID, "admin"), domain.ErrNotPendingManual)
	assert.ErrorIs(t, e.approvals.Reject(ctx, gid, c.ID, "admin", "no"), domain.ErrNotPendingManual)
}

func TestApprovalService_Reject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gid := e.group(t, "UTC", "admin", "bob", "carol")

	c, err := e.checkIns.RequestManualCheckIn(ctx, gid, "bob")
	require.NoError(t, err)

	assert.ErrorIs(t, e.approvals.Reject(ctx, gid, c.ID, "carol", "nope"), domain.ErrNotAuthorized)
	require.NoError(t, e.approvals.Reject(ctx, gid, c.ID, "admin", "  not at the gym "))

	got, err := e.store.CheckInRepository.GetByID(ctx, gid, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInStatusRejected, got.Status)
	require.NotNil(t, got.RejectReason)
	assert.Equal(t, "not at the gym", *got.RejectReason)

	assert.ErrorIs(t, e.approvals.Approve(ctx, gid, c.ID, "carol"), domain.ErrNotPendingManual)
}

func TestApprovalService_NonMemberCannotTellIDsApart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gid := e.group(t, "UTC", "admin", "bob")
	e.group(t, "UTC", "zed")

	c, err := e.checkIns.RequestManualCheckIn(ctx, gid, "bob")
	require.NoError(t, err)

	for _, id := range []string{c.ID, "00000000-0000-0000-0000-000000000000"} {
		assert.Equal(t, domain.KindNotAuthorized, domain.KindOf(e.approvals.Approve(ctx, gid, id, "zed")), "approve %s", id)
		assert.Equal(t, domain.KindNotAuthorized, domain.KindOf(e.approvals.Reject(ctx, gid, id, "zed", "")), "reject %s", id)
	}

	// A member who is not an admin gets the same answer from Reject either way.
	assert.Equal(t, domain.KindNotAuthorized, domain.KindOf(e.approvals.Reject(ctx, gid, "missing", "bob", "")))
	assert.Equal(t, domain.KindNotAuthorized, domain.KindOf(e.approvals.Reject(ctx, gid, c.ID, "bob", "")))

	// Members still see CheckInNotFound for ids outside the group.
	assert.ErrorIs(t, e.approvals.Approve(ctx, gid, "missing", "admin"), domain.ErrCheckInNotFound)
}
