package grpc

import (
	"context"

	"google.golang.org/grpc"

	"gymcrew-backend/internal/config"
)

// CrewServiceServer is the server API for gymcrew.v1.CrewService.
type CrewServiceServer interface {
	Health(context.Context, *HealthRequest) (*HealthResponse, error)

	CreateGroup(context.Context, *CreateGroupRequest) (*GroupResponse, error)
	GetGroup(context.Context, *GroupRequest) (*GroupResponse, error)
	UpdateGroup(context.Context, *UpdateGroupRequest) (*GroupResponse, error)
	LeaveGroup(context.Context, *GroupRequest) (*LeaveGroupResponse, error)
	SetRole(context.Context, *SetRoleRequest) (*Empty, error)
	ListMyGroups(context.Context, *ListMyGroupsRequest) (*ListMyGroupsResponse, error)
	ListMembers(context.Context, *GroupRequest) (*ListMembersResponse, error)

	CreateInvite(context.Context, *CreateInviteRequest) (*InviteResponse, error)
	RedeemInvite(context.Context, *RedeemInviteRequest) (*RedeemInviteResponse, error)
	DeactivateInvite(context.Context, *DeactivateInviteRequest) (*Empty, error)
	ListInvites(context.Context, *GroupRequest) (*ListInvitesResponse, error)

	AddLocation(context.Context, *AddLocationRequest) (*LocationResponse, error)
	DeleteLocation(context.Context, *DeleteLocationRequest) (*Empty, error)
	ListLocations(context.Context, *GroupRequest) (*ListLocationsResponse, error)

	RequestManualCheckIn(context.Context, *GroupRequest) (*CheckInResponse, error)
	RequestGeoCheckIn(context.Context, *GeoCheckInRequest) (*CheckInResponse, error)
	TodayStatus(context.Context, *GroupRequest) (*CheckInResponse, error)

	Approve(context.Context, *DecideRequest) (*Empty, error)
	Reject(context.Context, *DecideRequest) (*Empty, error)
	ListPending(context.Context, *GroupRequest) (*ListPendingResponse, error)

	MonthlyLeaderboard(context.Context, *LeaderboardRequest) (*LeaderboardResponse, error)
	LastMonthWinner(context.Context, *GroupRequest) (*BadgeResponse, error)
	GetDashboard(context.Context, *GroupRequest) (*DashboardResponse, error)

	RoutineUploadURL(context.Context, *RoutineUploadRequest) (*RoutineUploadResponse, error)
	SetRoutine(context.Context, *SetRoutineRequest) (*Empty, error)
	ClearRoutine(context.Context, *GroupRequest) (*Empty, error)
	RoutineDownloadURL(context.Context, *GroupRequest) (*RoutineDownloadResponse, error)

	SetCurrentGroup(context.Context, *GroupRequest) (*Empty, error)
	GetCurrentGroup(context.Context, *CurrentGroupRequest) (*GroupResponse, error)
}

var _ CrewServiceServer = (*Server)(nil)

// unary adapts a typed handler to grpc.MethodDesc. Domain errors returned by
// fn are converted to status errors inside the interceptor chain.
func unary[Req, Resp any](name string, fn func(CrewServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := config.ServicePrefix + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				resp, err := fn(srv.(CrewServiceServer), ctx, req.(*Req))
				if err != nil {
					return nil, toStatus(ctx, fullMethod, err)
				}
				return resp, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CrewServiceDesc describes gymcrew.v1.CrewService. Messages are plain
// structs encoded with the json codec.
var CrewServiceDesc = grpc.ServiceDesc{
	ServiceName: "gymcrew.v1.CrewService",
	HandlerType: (*CrewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Health", CrewServiceServer.Health),

		unary("CreateGroup", CrewServiceServer.CreateGroup),
		unary("GetGroup", CrewServiceServer.GetGroup),
		unary("UpdateGroup", CrewServiceServer.UpdateGroup),
		unary("LeaveGroup", CrewServiceServer.LeaveGroup),
		unary("SetRole", CrewServiceServer.SetRole),
		unary("ListMyGroups", CrewServiceServer.ListMyGroups),
		unary("ListMembers", CrewServiceServer.ListMembers),

		unary("CreateInvite", CrewServiceServer.CreateInvite),
		unary("RedeemInvite", CrewServiceServer.RedeemInvite),
		unary("DeactivateInvite", CrewServiceServer.DeactivateInvite),
		unary("ListInvites", CrewServiceServer.ListInvites),

		unary("AddLocation", CrewServiceServer.AddLocation),
		unary("DeleteLocation", CrewServiceServer.DeleteLocation),
		unary("ListLocations", CrewServiceServer.ListLocations),

		unary("RequestManualCheckIn", CrewServiceServer.RequestManualCheckIn),
		unary("RequestGeoCheckIn", CrewServiceServer.RequestGeoCheckIn),
		unary("TodayStatus", CrewServiceServer.TodayStatus),

		unary("Approve", CrewServiceServer.Approve),
		unary("Reject", CrewServiceServer.Reject),
		unary("ListPending", CrewServiceServer.ListPending),

		unary("MonthlyLeaderboard", CrewServiceServer.MonthlyLeaderboard),
		unary("LastMonthWinner", CrewServiceServer.LastMonthWinner),
		unary("GetDashboard", CrewServiceServer.GetDashboard),

		unary("RoutineUploadURL", CrewServiceServer.RoutineUploadURL),
		unary("SetRoutine", CrewServiceServer.SetRoutine),
		unary("ClearRoutine", CrewServiceServer.ClearRoutine),
		unary("RoutineDownloadURL", CrewServiceServer.RoutineDownloadURL),

		unary("SetCurrentGroup", CrewServiceServer.SetCurrentGroup),
		unary("GetCurrentGroup", CrewServiceServer.GetCurrentGroup),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterCrewServiceServer registers srv on s.
func RegisterCrewServiceServer(s grpc.ServiceRegistrar, srv CrewServiceServer) {
	s.RegisterService(&CrewServiceDesc, srv)
}
