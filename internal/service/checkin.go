package service

import (
	"context"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/geo"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
)

type checkInService struct {
	groupRepo    repository.GroupRepository
	memberRepo   repository.MembershipRepository
	locationRepo repository.LocationRepository
	checkInRepo  repository.CheckInRepository
	clock        calendar.Clock
}

func NewCheckInService(
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	locationRepo repository.LocationRepository,
	checkInRepo repository.CheckInRepository,
	clock calendar.Clock,
) CheckInService {
	return &checkInService{
		groupRepo:    groupRepo,
		memberRepo:   memberRepo,
		locationRepo: locationRepo,
		checkInRepo:  checkInRepo,
		clock:        clock,
	}
}

// today resolves the group-local date. The client never supplies it.
func (s *checkInService) today(ctx context.Context, groupID string) (string, error) {
	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return "", err
	}
	return calendar.Today(g.Zone(), s.clock())
}

func (s *checkInService) RequestManualCheckIn(ctx context.Context, groupID, userID string) (*domain.CheckIn, error) {
	logger.EnterMethod("checkInService.RequestManualCheckIn", "groupID", groupID, "userID", userID)
	if _, err := requireMember(ctx, s.memberRepo, groupID, userID); err != nil {
		logger.ExitMethodWithError("checkInService.RequestManualCheckIn", err)
		return nil, err
	}
	date, err := s.today(ctx, groupID)
	if err != nil {
		logger.ExitMethodWithError("checkInService.RequestManualCheckIn", err)
		return nil, err
	}

	c := domain.NewManualCheckIn(groupID, userID, date)
	if err := s.checkInRepo.Create(ctx, c); err != nil {
		logger.ExitMethodWithError("checkInService.RequestManualCheckIn", err, "date", date)
		return nil, err
	}
	logger.ExitMethod("checkInService.RequestManualCheckIn", "checkInID", c.ID, "date", date)
	return c, nil
}

func (s *checkInService) RequestGeoCheckIn(ctx context.Context, groupID, userID string, point *geo.Point) (*domain.CheckIn, error) {
	logger.EnterMethod("checkInService.RequestGeoCheckIn", "groupID", groupID, "userID", userID)
	c, err := s.requestGeo(ctx, groupID, userID, point)
	if err != nil {
		logger.ExitMethodWithError("checkInService.RequestGeoCheckIn", err)
		return nil, err
	}
	logger.ExitMethod("checkInService.RequestGeoCheckIn", "checkInID", c.ID, "date", c.CheckinDate)
	return c, nil
}

func (s *checkInService) requestGeo(ctx context.Context, groupID, userID string, point *geo.Point) (*domain.CheckIn, error) {
	if _, err := requireMember(ctx, s.memberRepo, groupID, userID); err != nil {
		return nil, err
	}
	if point == nil {
		return nil, domain.NewError(domain.KindLocationUnavailable, "location unavailable")
	}
	if !point.Valid() {
		return nil, domain.NewError(domain.KindInvalidLocation, "coordinates out of range")
	}

	fences, err := s.locationRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	match, ok := geo.NearestFence(*point, fences)
	if !ok {
		return nil, domain.ErrNoFencesConfigured
	}
	if !match.Within() {
		return nil, domain.OutsideFence(match.Fence.Name, match.DistanceM)
	}

	date, err := s.today(ctx, groupID)
	if err != nil {
		return nil, err
	}
	c := domain.NewGeoCheckIn(groupID, userID, date, point.Lat, point.Lng)
	if err := s.checkInRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *checkInService) TodayStatus(ctx context.Context, groupID, userID string) (*domain.CheckIn, error) {
	if _, err := requireMember(ctx, s.memberRepo, groupID, userID); err != nil {
		return nil, err
	}
	date, err := s.today(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.checkInRepo.GetByDate(ctx, groupID, userID, date)
}
