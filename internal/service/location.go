package service

import (
	"context"
	"math"
	"strings"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository"
)

type locationService struct {
	memberRepo   repository.MembershipRepository
	locationRepo repository.LocationRepository
}

func NewLocationService(memberRepo repository.MembershipRepository, locationRepo repository.LocationRepository) LocationService {
	return &locationService{
		memberRepo:   memberRepo,
		locationRepo: locationRepo,
	}
}

func (s *locationService) AddLocation(ctx context.Context, groupID, adminID, name string, lat, lng, radiusM float64) (*domain.Location, error) {
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, adminID); err != nil {
		return nil, err
	}
	loc := &domain.Location{
		GroupID: groupID,
		Name:    strings.TrimSpace(name),
		Lat:     lat,
		Lng:     lng,
	}
	// Out-of-range radii stay zero so Validate reports them.
	if r := math.Floor(radiusM); r >= domain.MinRadiusM && r <= domain.MaxRadiusM {
		loc.RadiusM = int(r)
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if err := s.locationRepo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *locationService) DeleteLocation(ctx context.Context, groupID, adminID, locationID string) error {
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, adminID); err != nil {
		return err
	}
	return s.locationRepo.Delete(ctx, groupID, locationID)
}

func (s *locationService) ListLocations(ctx context.Context, groupID, viewerID string) ([]domain.Location, error) {
	if _, err := requireMember(ctx, s.memberRepo, groupID, viewerID); err != nil {
		return nil, err
	}
	return s.locationRepo.ListByGroup(ctx, groupID)
}
