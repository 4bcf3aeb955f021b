package grpc

import (
	"time"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/service"
)

type HealthRequest struct{}

type HealthResponse struct {
	Status string `json:"status"`
}

// Groups

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Timezone    string `json:"timezone"`
}

type GroupRequest struct {
	GroupID string `json:"group_id"`
}

type GroupResponse struct {
	Group *domain.Group `json:"group"`
}

type UpdateGroupRequest struct {
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Timezone    string `json:"timezone"`
}

type LeaveGroupResponse struct {
	GroupDeleted bool `json:"group_deleted"`
}

type SetRoleRequest struct {
	GroupID string            `json:"group_id"`
	UserID  string            `json:"user_id"`
	Role    domain.MemberRole `json:"role"`
}

type ListMyGroupsRequest struct{}

type ListMyGroupsResponse struct {
	Groups []domain.GroupSummary `json:"groups"`
}

type ListMembersResponse struct {
	Members []domain.Member `json:"members"`
}

// Invites

type CreateInviteRequest struct {
	GroupID        string `json:"group_id"`
	ExpiresInHours *int   `json:"expires_in_hours,omitempty"`
	MaxUses        int    `json:"max_uses"`
}

type InviteResponse struct {
	Invite *domain.Invite `json:"invite"`
}

type RedeemInviteRequest struct {
	Token string `json:"token"`
}

type RedeemInviteResponse struct {
	GroupID string `json:"group_id"`
}

type DeactivateInviteRequest struct {
	GroupID string `json:"group_id"`
	Token   string `json:"token"`
}

type ListInvitesResponse struct {
	Invites []domain.Invite `json:"invites"`
}

// Locations

type AddLocationRequest struct {
	GroupID string  `json:"group_id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	RadiusM float64 `json:"radius_m"`
}

type LocationResponse struct {
	Location *domain.Location `json:"location"`
}

type DeleteLocationRequest struct {
	GroupID    string `json:"group_id"`
	LocationID string `json:"location_id"`
}

type ListLocationsResponse struct {
	Locations []domain.Location `json:"locations"`
}

// Check-ins

type GeoCheckInRequest struct {
	GroupID string `json:"group_id"`
	// Omitted when the device could not get a fix.
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

type CheckInResponse struct {
	CheckIn *domain.CheckIn `json:"check_in,omitempty"`
}

type DecideRequest struct {
	GroupID   string `json:"group_id"`
	CheckInID string `json:"check_in_id"`
	Reason    string `json:"reason,omitempty"`
}

type ListPendingResponse struct {
	CheckIns []domain.CheckIn `json:"check_ins"`
}

// Aggregation

type LeaderboardRequest struct {
	GroupID string `json:"group_id"`
	// Month is "YYYY-MM"; empty means the current month in the group's zone.
	Month string `json:"month,omitempty"`
}

type LeaderboardResponse struct {
	Period  calendar.Range            `json:"period"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

type BadgeResponse struct {
	Badge *domain.Badge `json:"badge,omitempty"`
}

type DashboardResponse struct {
	Dashboard *service.Dashboard `json:"dashboard"`
}

// Routine documents

type RoutineUploadRequest struct {
	GroupID     string `json:"group_id"`
	ContentType string `json:"content_type"`
}

type RoutineUploadResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SetRoutineRequest struct {
	GroupID     string `json:"group_id"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
}

type RoutineDownloadResponse struct {
	URL string `json:"url"`
}

// Current group

type CurrentGroupRequest struct{}

type Empty struct{}
