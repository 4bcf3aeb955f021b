package service

import (
	"context"
	"sort"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
)

const LeaderboardSize = 10

type aggregationService struct {
	groupRepo   repository.GroupRepository
	memberRepo  repository.MembershipRepository
	checkInRepo repository.CheckInRepository
	badgeRepo   repository.BadgeRepository
	clock       calendar.Clock
}

func NewAggregationService(
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	checkInRepo repository.CheckInRepository,
	badgeRepo repository.BadgeRepository,
	clock calendar.Clock,
) AggregationService {
	return &aggregationService{
		groupRepo:   groupRepo,
		memberRepo:  memberRepo,
		checkInRepo: checkInRepo,
		badgeRepo:   badgeRepo,
		clock:       clock,
	}
}

// Rank orders current members by approved count, highest first. Ties keep
// membership order, which lists admins first and then by join time. Members
// without check-ins are included with zero.
func Rank(members []domain.Member, counts map[string]int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, len(members))
	for i, m := range members {
		entries[i] = domain.LeaderboardEntry{
			UserID: m.UserID,
			Name:   m.Name,
			Role:   m.Role,
			Count:  counts[m.UserID],
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return entries
}

// Top truncates a ranking to the leaderboard size.
func Top(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	if len(entries) > LeaderboardSize {
		return entries[:LeaderboardSize]
	}
	return entries
}

func (s *aggregationService) ranking(ctx context.Context, groupID string, period calendar.Range) ([]domain.LeaderboardEntry, error) {
	members, err := s.memberRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	counts, err := s.checkInRepo.CountApproved(ctx, groupID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	return Rank(members, counts), nil
}

func (s *aggregationService) MonthlyLeaderboard(ctx context.Context, groupID string, period calendar.Range) ([]domain.LeaderboardEntry, error) {
	entries, err := s.ranking(ctx, groupID, period)
	if err != nil {
		return nil, err
	}
	return Top(entries), nil
}

func (s *aggregationService) AwardMonthWinner(ctx context.Context, groupID, periodStart string) (*domain.Badge, error) {
	logger.EnterMethod("aggregationService.AwardMonthWinner", "groupID", groupID, "periodStart", periodStart)

	period, err := calendar.MonthRangeOf(periodStart)
	if err != nil {
		logger.ExitMethodWithError("aggregationService.AwardMonthWinner", err)
		return nil, err
	}
	existing, err := s.badgeRepo.Get(ctx, groupID, domain.BadgeTypeMonthWinner, period.Start)
	if err != nil {
		logger.ExitMethodWithError("aggregationService.AwardMonthWinner", err)
		return nil, err
	}
	if existing != nil {
		logger.ExitMethod("aggregationService.AwardMonthWinner", "winner", existing.UserID, "created", false)
		return existing, nil
	}

	ranked, err := s.ranking(ctx, groupID, period)
	if err != nil {
		logger.ExitMethodWithError("aggregationService.AwardMonthWinner", err)
		return nil, err
	}
	if len(ranked) == 0 || ranked[0].Count == 0 {
		logger.ExitMethod("aggregationService.AwardMonthWinner", "winner", nil)
		return nil, nil
	}

	badge := &domain.Badge{
		GroupID:     groupID,
		UserID:      ranked[0].UserID,
		BadgeType:   domain.BadgeTypeMonthWinner,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		UserName:    ranked[0].Name,
	}
	created, err := s.badgeRepo.CreateIfAbsent(ctx, badge)
	if err != nil {
		logger.ExitMethodWithError("aggregationService.AwardMonthWinner", err)
		return nil, err
	}
	if !created {
		// Lost the race to a concurrent award; report the row that won.
		badge, err = s.badgeRepo.Get(ctx, groupID, domain.BadgeTypeMonthWinner, period.Start)
		if err != nil {
			logger.ExitMethodWithError("aggregationService.AwardMonthWinner", err)
			return nil, err
		}
		if badge == nil {
			logger.ExitMethod("aggregationService.AwardMonthWinner", "winner", nil)
			return nil, nil
		}
	}
	logger.ExitMethod("aggregationService.AwardMonthWinner", "winner", badge.UserID, "created", created)
	return badge, nil
}

func (s *aggregationService) LastMonthWinner(ctx context.Context, groupID string) (*domain.Badge, error) {
	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	prev, err := calendar.PrevMonthStart(g.Zone(), s.clock())
	if err != nil {
		return nil, err
	}
	return s.badgeRepo.Get(ctx, groupID, domain.BadgeTypeMonthWinner, prev)
}
