package service

import (
	"context"
	"strings"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
)

type membershipService struct {
	groupRepo   repository.GroupRepository
	memberRepo  repository.MembershipRepository
	checkInRepo repository.CheckInRepository
	clock       calendar.Clock
}

func NewMembershipService(
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	checkInRepo repository.CheckInRepository,
	clock calendar.Clock,
) MembershipService {
	return &membershipService{
		groupRepo:   groupRepo,
		memberRepo:  memberRepo,
		checkInRepo: checkInRepo,
		clock:       clock,
	}
}

// normalizeGroup trims the editable fields and validates the zone.
func normalizeGroup(name, description, timezone string) (string, string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", "", domain.NewError(domain.KindInvalidArgument, "group name is required")
	}
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		timezone = domain.DefaultTimezone
	}
	if _, err := calendar.LoadZone(timezone); err != nil {
		return "", "", "", err
	}
	return name, strings.TrimSpace(description), timezone, nil
}

func (s *membershipService) CreateGroup(ctx context.Context, creatorID, name, description, timezone string) (*domain.Group, error) {
	logger.EnterMethod("membershipService.CreateGroup", "creatorID", creatorID, "name", name)
	if creatorID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	name, description, timezone, err := normalizeGroup(name, description, timezone)
	if err != nil {
		logger.ExitMethodWithError("membershipService.CreateGroup", err)
		return nil, err
	}

	g := &domain.Group{
		Name:        name,
		Description: description,
		Timezone:    timezone,
		CreatedBy:   creatorID,
	}
	creator := &domain.Membership{UserID: creatorID, Role: domain.MemberRoleAdmin}
	if err := s.groupRepo.Create(ctx, g, creator); err != nil {
		logger.ExitMethodWithError("membershipService.CreateGroup", err)
		return nil, err
	}
	logger.ExitMethod("membershipService.CreateGroup", "groupID", g.ID)
	return g, nil
}

func (s *membershipService) GetGroup(ctx context.Context, groupID, viewerID string) (*domain.Group, error) {
	if _, err := requireMember(ctx, s.memberRepo, groupID, viewerID); err != nil {
		return nil, err
	}
	return s.groupRepo.GetByID(ctx, groupID)
}

func (s *membershipService) UpdateGroup(ctx context.Context, groupID, actorID, name, description, timezone string) (*domain.Group, error) {
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, actorID); err != nil {
		return nil, err
	}
	name, description, timezone, err := normalizeGroup(name, description, timezone)
	if err != nil {
		return nil, err
	}
	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	g.Name = name
	g.Description = description
	g.Timezone = timezone
	if err := s.groupRepo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *membershipService) LeaveGroup(ctx context.Context, groupID, userID string) (domain.LeaveAction, error) {
	logger.EnterMethod("membershipService.LeaveGroup", "groupID", groupID, "userID", userID)
	if userID == "" {
		return 0, domain.ErrNotAuthenticated
	}
	action, err := s.memberRepo.Leave(ctx, groupID, userID)
	if err != nil {
		logger.ExitMethodWithError("membershipService.LeaveGroup", err)
		return 0, err
	}
	if action == domain.LeaveDeleteGroup {
		logger.Info("Last member left, group deleted", "groupID", groupID, "userID", userID)
	}
	logger.ExitMethod("membershipService.LeaveGroup", "groupID", groupID)
	return action, nil
}

func (s *membershipService) SetRole(ctx context.Context, groupID, actorID, targetID string, role domain.MemberRole) error {
	logger.EnterMethod("membershipService.SetRole", "groupID", groupID, "actorID", actorID, "targetID", targetID, "role", role)
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, actorID); err != nil {
		logger.ExitMethodWithError("membershipService.SetRole", err)
		return err
	}
	if err := s.memberRepo.SetRole(ctx, groupID, targetID, role); err != nil {
		logger.ExitMethodWithError("membershipService.SetRole", err)
		return err
	}
	logger.ExitMethod("membershipService.SetRole", "groupID", groupID, "targetID", targetID)
	return nil
}

// ListMyGroups reports each group with the caller's approved count for the
// current month in that group's timezone.
func (s *membershipService) ListMyGroups(ctx context.Context, userID string) ([]domain.GroupSummary, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	groups, memberships, err := s.groupRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	out := make([]domain.GroupSummary, 0, len(groups))
	for i, g := range groups {
		month, err := calendar.MonthRange(g.Zone(), now)
		if err != nil {
			return nil, err
		}
		counts, err := s.checkInRepo.CountApproved(ctx, g.ID, month.Start, month.End)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.GroupSummary{
			Group:        g,
			Role:         memberships[i].Role,
			MyMonthCount: counts[userID],
		})
	}
	return out, nil
}

func (s *membershipService) ListMembers(ctx context.Context, groupID, viewerID string) ([]domain.Member, error) {
	if _, err := requireMember(ctx, s.memberRepo, groupID, viewerID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListByGroup(ctx, groupID)
}
