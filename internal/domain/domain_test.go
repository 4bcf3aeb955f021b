package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func members(roles ...MemberRole) []Membership {
	out := make([]Membership, len(roles))
	for i, r := range roles {
		out[i] = Membership{GroupID: "g", UserID: fmt.Sprintf("u%d", i), Role: r}
	}
	return out
}

func TestDecideLeave(t *testing.T) {
	tests := []struct {
		name    string
		members []Membership
		user    string
		want    LeaveAction
		wantErr ErrorKind
	}{
		{"only member", members(MemberRoleAdmin), "u0", LeaveDeleteGroup, ""},
		{"sole admin with others", members(MemberRoleAdmin, MemberRoleMember, MemberRoleMember), "u0", 0, KindAdminMustTransferFirst},
		{"one of two admins", members(MemberRoleAdmin, MemberRoleAdmin, MemberRoleMember), "u0", LeaveRemoveMembership, ""},
		{"plain member", members(MemberRoleAdmin, MemberRoleMember), "u1", LeaveRemoveMembership, ""},
		{"not a member", members(MemberRoleAdmin), "x", 0, KindNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecideLeave(tt.members, tt.user)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, KindOf(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckRoleChange(t *testing.T) {
	ms := members(MemberRoleAdmin, MemberRoleMember)
	assert.NoError(t, CheckRoleChange(ms, "u1", MemberRoleAdmin))
	assert.NoError(t, CheckRoleChange(ms, "u0", MemberRoleAdmin), "no-op change is allowed")
	assert.ErrorIs(t, CheckRoleChange(ms, "u0", MemberRoleMember), ErrAdminMustTransferFirst)
	assert.Equal(t, KindNotAuthorized, KindOf(CheckRoleChange(ms, "x", MemberRoleAdmin)))
	assert.Equal(t, KindInvalidArgument, KindOf(CheckRoleChange(ms, "u1", "")))

	two := members(MemberRoleAdmin, MemberRoleAdmin)
	assert.NoError(t, CheckRoleChange(two, "u0", MemberRoleMember))
}

func TestCheckIn_Transitions(t *testing.T) {
	c := NewManualCheckIn("g", "u", "2024-01-01")
	assert.True(t, c.IsPendingManual())
	assert.True(t, c.CanTransition(CheckInStatusApproved))
	assert.True(t, c.CanTransition(CheckInStatusRejected))
	assert.False(t, c.CanTransition(CheckInStatusPending))

	for _, terminal := range []CheckInStatus{CheckInStatusApproved, CheckInStatusRejected} {
		c.Status = terminal
		assert.False(t, c.CanTransition(CheckInStatusApproved))
		assert.False(t, c.CanTransition(CheckInStatusRejected))
	}

	geo := NewGeoCheckIn("g", "u", "2024-01-01", 1, 2)
	assert.Equal(t, CheckInStatusApproved, geo.Status)
	assert.False(t, geo.IsPendingManual())
}

func TestInvite_CheckRedeemable(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Second), now.Add(time.Second)

	tests := []struct {
		name string
		inv  *Invite
		want ErrorKind
	}{
		{"nil", nil, KindInvalidOrExpiredToken},
		{"inactive", &Invite{Active: false, MaxUses: 1}, KindInvalidOrExpiredToken},
		{"expired", &Invite{Active: true, MaxUses: 1, ExpiresAt: &past}, KindInvalidOrExpiredToken},
		{"expires now", &Invite{Active: true, MaxUses: 1, ExpiresAt: &now}, KindInvalidOrExpiredToken},
		{"exhausted", &Invite{Active: true, MaxUses: 2, Uses: 2}, KindMaxUsesReached},
		{"ok", &Invite{Active: true, MaxUses: 2, Uses: 1, ExpiresAt: &future}, ""},
		{"no expiry", &Invite{Active: true, MaxUses: 1}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.inv.CheckRedeemable(now)))
		})
	}
}

func TestLocation_Validate(t *testing.T) {
	ok := Location{Name: "Gym", Lat: 10, Lng: 20, RadiusM: 500}
	assert.NoError(t, ok.Validate())

	noName := ok
	noName.Name = " "
	assert.Equal(t, KindInvalidArgument, KindOf(noName.Validate()))

	edge := Location{Name: "Pole", Lat: 90, Lng: -180, RadiusM: MaxRadiusM}
	assert.NoError(t, edge.Validate())

	bad := ok
	bad.RadiusM = 0
	assert.Equal(t, KindInvalidLocation, KindOf(bad.Validate()))
}

func TestErrors(t *testing.T) {
	wrapped := fmt.Errorf("creating check-in: %w", ErrDuplicateCheckIn)
	assert.ErrorIs(t, wrapped, ErrDuplicateCheckIn)
	assert.True(t, IsKind(wrapped, KindDuplicateCheckIn))
	assert.Equal(t, KindDuplicateCheckIn, KindOf(wrapped))

	assert.ErrorIs(t, NewError(KindNotAuthorized, "admin role required"), ErrNotAuthorized, "kinds match regardless of message")
	assert.Equal(t, KindTransientUnavailable, KindOf(errors.New("connection reset")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))

	tr := Transient(errors.New("dial tcp"))
	assert.False(t, tr.Expected())
	assert.True(t, ErrDuplicateCheckIn.Expected())
	assert.Contains(t, tr.Error(), "dial tcp")
}

func TestHumanMessage(t *testing.T) {
	assert.Equal(t, "Outside radius. Nearest: Downtown (850 m away).", HumanMessage(OutsideFence("Downtown", 849.6)))
	assert.Equal(t, "Admins cannot leave groups with other members. Transfer admin role first.", HumanMessage(ErrAdminMustTransferFirst))
	assert.Equal(t, "Network error. Please check your connection and try again.", HumanMessage(errors.New("boom")))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0 m", FormatDistance(0))
	assert.Equal(t, "999 m", FormatDistance(999.4))
	assert.Equal(t, "1.0 km", FormatDistance(1000))
	assert.Equal(t, "12.3 km", FormatDistance(12345))
}
