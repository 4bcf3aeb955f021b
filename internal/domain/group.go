package domain

import "time"

const DefaultTimezone = "UTC"

type Group struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Timezone           string    `json:"timezone"`
	RoutinePath        *string   `json:"routine_path,omitempty"`
	RoutineContentType *string   `json:"routine_content_type,omitempty"`
	CreatedBy          string    `json:"created_by"`
	CreatedAt          time.Time `json:"created_at"`
}

// Zone returns the group's IANA zone name, defaulting to UTC.
func (g *Group) Zone() string {
	if g.Timezone == "" {
		return DefaultTimezone
	}
	return g.Timezone
}

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

func (r MemberRole) Valid() bool {
	return r == MemberRoleAdmin || r == MemberRoleMember
}

type Membership struct {
	GroupID  string     `json:"group_id"`
	UserID   string     `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

func (m *Membership) IsAdmin() bool {
	return m != nil && m.Role == MemberRoleAdmin
}

// Member is a membership joined with the user's profile.
type Member struct {
	Membership
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// GroupSummary is one row of "my groups" with the caller's month-to-date count.
type GroupSummary struct {
	Group
	Role         MemberRole `json:"role"`
	MyMonthCount int        `json:"my_month_count"`
}

// LeaveAction is what happens to storage when a member leaves.
type LeaveAction int

const (
	LeaveRemoveMembership LeaveAction = iota
	LeaveDeleteGroup
)

// DecideLeave applies the leave rule to the group's current memberships.
// A sole admin cannot abandon co-members; the last member takes the group
// with them.
func DecideLeave(members []Membership, userID string) (LeaveAction, error) {
	var leaver *Membership
	admins := 0
	for i := range members {
		if members[i].UserID == userID {
			leaver = &members[i]
		}
		if members[i].Role == MemberRoleAdmin {
			admins++
		}
	}
	if leaver == nil {
		return 0, NewError(KindNotAuthorized, "not a member of this group")
	}
	if len(members) == 1 {
		return LeaveDeleteGroup, nil
	}
	if leaver.IsAdmin() && admins == 1 {
		return 0, NewError(KindAdminMustTransferFirst, "transfer the admin role before leaving")
	}
	return LeaveRemoveMembership, nil
}

// CheckRoleChange verifies that changing target's role keeps at least one admin.
func CheckRoleChange(members []Membership, targetID string, role MemberRole) error {
	if !role.Valid() {
		return NewError(KindInvalidArgument, "role must be ADMIN or MEMBER")
	}
	found := false
	admins := 0
	for _, m := range members {
		r := m.Role
		if m.UserID == targetID {
			found = true
			r = role
		}
		if r == MemberRoleAdmin {
			admins++
		}
	}
	if !found {
		return NewError(KindNotAuthorized, "target is not a member of this group")
	}
	if admins == 0 {
		return NewError(KindAdminMustTransferFirst, "group must keep at least one admin")
	}
	return nil
}
