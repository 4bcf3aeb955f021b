package grpc

import (
	"context"
	"time"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/geo"
	"gymcrew-backend/internal/preference"
	"gymcrew-backend/internal/service"
)

// Services are the collaborators behind CrewService.
type Services struct {
	CheckIns     service.CheckInService
	Approvals    service.ApprovalService
	Memberships  service.MembershipService
	Invites      service.InviteService
	Locations    service.LocationService
	Aggregation  service.AggregationService
	Dashboard    service.DashboardService
	Routines     service.RoutineService
	CurrentGroup *preference.CurrentGroup
}

type Server struct {
	svc   Services
	clock calendar.Clock
}

func NewServer(svc Services, clock calendar.Clock) *Server {
	if clock == nil {
		clock = time.Now
	}
	return &Server{svc: svc, clock: clock}
}

func (s *Server) Health(ctx context.Context, req *HealthRequest) (*HealthResponse, error) {
	return &HealthResponse{Status: "ok"}, nil
}

func (s *Server) CreateGroup(ctx context.Context, req *CreateGroupRequest) (*GroupResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.svc.Memberships.CreateGroup(ctx, userID, req.Name, req.Description, req.Timezone)
	if err != nil {
		return nil, err
	}
	return &GroupResponse{Group: g}, nil
}

func (s *Server) GetGroup(ctx context.Context, req *GroupRequest) (*GroupResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.svc.Memberships.GetGroup(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &GroupResponse{Group: g}, nil
}

func (s *Server) UpdateGroup(ctx context.Context, req *UpdateGroupRequest) (*GroupResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.svc.Memberships.UpdateGroup(ctx, req.GroupID, userID, req.Name, req.Description, req.Timezone)
	if err != nil {
		return nil, err
	}
	return &GroupResponse{Group: g}, nil
}

func (s *Server) LeaveGroup(ctx context.Context, req *GroupRequest) (*LeaveGroupResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	action, err := s.svc.Memberships.LeaveGroup(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &LeaveGroupResponse{GroupDeleted: action == domain.LeaveDeleteGroup}, nil
}

func (s *Server) SetRole(ctx context.Context, req *SetRoleRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Memberships.SetRole(ctx, req.GroupID, userID, req.UserID, req.Role); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) ListMyGroups(ctx context.Context, req *ListMyGroupsRequest) (*ListMyGroupsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.svc.Memberships.ListMyGroups(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListMyGroupsResponse{Groups: groups}, nil
}

func (s *Server) ListMembers(ctx context.Context, req *GroupRequest) (*ListMembersResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.svc.Memberships.ListMembers(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &ListMembersResponse{Members: members}, nil
}

func (s *Server) CreateInvite(ctx context.Context, req *CreateInviteRequest) (*InviteResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.svc.Invites.CreateInvite(ctx, req.GroupID, userID, req.ExpiresInHours, req.MaxUses)
	if err != nil {
		return nil, err
	}
	return &InviteResponse{Invite: inv}, nil
}

func (s *Server) RedeemInvite(ctx context.Context, req *RedeemInviteRequest) (*RedeemInviteResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	groupID, err := s.svc.Invites.RedeemInvite(ctx, req.Token, userID)
	if err != nil {
		return nil, err
	}
	return &RedeemInviteResponse{GroupID: groupID}, nil
}

func (s *Server) DeactivateInvite(ctx context.Context, req *DeactivateInviteRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Invites.DeactivateInvite(ctx, req.GroupID, userID, req.Token); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) ListInvites(ctx context.Context, req *GroupRequest) (*ListInvitesResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	invites, err := s.svc.Invites.ListInvites(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &ListInvitesResponse{Invites: invites}, nil
}

func (s *Server) AddLocation(ctx context.Context, req *AddLocationRequest) (*LocationResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := s.svc.Locations.AddLocation(ctx, req.GroupID, userID, req.Name, req.Lat, req.Lng, req.RadiusM)
	if err != nil {
		return nil, err
	}
	return &LocationResponse{Location: loc}, nil
}

func (s *Server) DeleteLocation(ctx context.Context, req *DeleteLocationRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Locations.DeleteLocation(ctx, req.GroupID, userID, req.LocationID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) ListLocations(ctx context.Context, req *GroupRequest) (*ListLocationsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	locs, err := s.svc.Locations.ListLocations(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &ListLocationsResponse{Locations: locs}, nil
}

func (s *Server) RequestManualCheckIn(ctx context.Context, req *GroupRequest) (*CheckInResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.CheckIns.RequestManualCheckIn(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &CheckInResponse{CheckIn: c}, nil
}

func (s *Server) RequestGeoCheckIn(ctx context.Context, req *GeoCheckInRequest) (*CheckInResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var point *geo.Point
	if req.Lat != nil && req.Lng != nil {
		point = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	c, err := s.svc.CheckIns.RequestGeoCheckIn(ctx, req.GroupID, userID, point)
	if err != nil {
		return nil, err
	}
	return &CheckInResponse{CheckIn: c}, nil
}

func (s *Server) TodayStatus(ctx context.Context, req *GroupRequest) (*CheckInResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.CheckIns.TodayStatus(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &CheckInResponse{CheckIn: c}, nil
}

func (s *Server) Approve(ctx context.Context, req *DecideRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Approvals.Approve(ctx, req.GroupID, req.CheckInID, userID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) Reject(ctx context.Context, req *DecideRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Approvals.Reject(ctx, req.GroupID, req.CheckInID, userID, req.Reason); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) ListPending(ctx context.Context, req *GroupRequest) (*ListPendingResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.svc.Approvals.ListPending(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &ListPendingResponse{CheckIns: pending}, nil
}

func (s *Server) MonthlyLeaderboard(ctx context.Context, req *LeaderboardRequest) (*LeaderboardResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.svc.Memberships.GetGroup(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}

	var period calendar.Range
	if req.Month == "" {
		period, err = calendar.MonthRange(g.Zone(), s.clock())
	} else {
		period, err = calendar.MonthRangeOf(req.Month + "-01")
	}
	if err != nil {
		return nil, err
	}

	entries, err := s.svc.Aggregation.MonthlyLeaderboard(ctx, g.ID, period)
	if err != nil {
		return nil, err
	}
	return &LeaderboardResponse{Period: period, Entries: entries}, nil
}

func (s *Server) LastMonthWinner(ctx context.Context, req *GroupRequest) (*BadgeResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.svc.Memberships.GetGroup(ctx, req.GroupID, userID); err != nil {
		return nil, err
	}
	b, err := s.svc.Aggregation.LastMonthWinner(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	return &BadgeResponse{Badge: b}, nil
}

func (s *Server) GetDashboard(ctx context.Context, req *GroupRequest) (*DashboardResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.svc.Dashboard.Dashboard(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &DashboardResponse{Dashboard: d}, nil
}

func (s *Server) RoutineUploadURL(ctx context.Context, req *RoutineUploadRequest) (*RoutineUploadResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	up, err := s.svc.Routines.UploadURL(ctx, req.GroupID, userID, req.ContentType)
	if err != nil {
		return nil, err
	}
	return &RoutineUploadResponse{Key: up.Key, URL: up.URL, ExpiresAt: up.ExpiresAt}, nil
}

func (s *Server) SetRoutine(ctx context.Context, req *SetRoutineRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Routines.SetRoutine(ctx, req.GroupID, userID, req.Key, req.ContentType); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) ClearRoutine(ctx context.Context, req *GroupRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Routines.ClearRoutine(ctx, req.GroupID, userID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) RoutineDownloadURL(ctx context.Context, req *GroupRequest) (*RoutineDownloadResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.svc.Routines.DownloadURL(ctx, req.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return &RoutineDownloadResponse{URL: url}, nil
}

func (s *Server) SetCurrentGroup(ctx context.Context, req *GroupRequest) (*Empty, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.CurrentGroup.Select(ctx, userID, req.GroupID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) GetCurrentGroup(ctx context.Context, req *CurrentGroupRequest) (*GroupResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.svc.CurrentGroup.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &GroupResponse{Group: g}, nil
}
