package service

import (
	"context"
	"sync"
	"time"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
	"gymcrew-backend/internal/storage"

	"golang.org/x/sync/errgroup"
)

const (
	// streakWindow bounds how many approved dates feed the streak walk.
	streakWindow = 90

	DefaultAwardTimeout = 10 * time.Second
)

type dashboardService struct {
	groupRepo    repository.GroupRepository
	memberRepo   repository.MembershipRepository
	locationRepo repository.LocationRepository
	checkInRepo  repository.CheckInRepository
	badgeRepo    repository.BadgeRepository
	aggregation  AggregationService
	blobs        storage.BlobStore
	clock        calendar.Clock
	awardTimeout time.Duration

	wg sync.WaitGroup
}

func NewDashboardService(
	store *repository.Store,
	aggregation AggregationService,
	blobs storage.BlobStore,
	clock calendar.Clock,
	awardTimeout time.Duration,
) DashboardService {
	if awardTimeout <= 0 {
		awardTimeout = DefaultAwardTimeout
	}
	return &dashboardService{
		groupRepo:    store.GroupRepository,
		memberRepo:   store.MembershipRepository,
		locationRepo: store.LocationRepository,
		checkInRepo:  store.CheckInRepository,
		badgeRepo:    store.BadgeRepository,
		aggregation:  aggregation,
		blobs:        blobs,
		clock:        clock,
		awardTimeout: awardTimeout,
	}
}

func (s *dashboardService) Dashboard(ctx context.Context, groupID, viewerID string) (*Dashboard, error) {
	me, err := requireMember(ctx, s.memberRepo, groupID, viewerID)
	if err != nil {
		return nil, err
	}
	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	tz := g.Zone()
	today, err := calendar.Today(tz, now)
	if err != nil {
		return nil, err
	}
	month, err := calendar.MonthRange(tz, now)
	if err != nil {
		return nil, err
	}
	prevStart, err := calendar.PrevMonthStart(tz, now)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Group: *g, Role: me.Role, Today: today, Month: month}
	var counts map[string]int
	var myDates []string

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		d.Members, err = s.memberRepo.ListByGroup(egCtx, groupID)
		return err
	})
	eg.Go(func() (err error) {
		d.Locations, err = s.locationRepo.ListByGroup(egCtx, groupID)
		return err
	})
	eg.Go(func() (err error) {
		counts, err = s.checkInRepo.CountApproved(egCtx, groupID, month.Start, month.End)
		return err
	})
	eg.Go(func() (err error) {
		myDates, err = s.checkInRepo.ListApprovedDates(egCtx, groupID, viewerID, streakWindow)
		return err
	})
	eg.Go(func() (err error) {
		d.TodayCheckIn, err = s.checkInRepo.GetByDate(egCtx, groupID, viewerID, today)
		return err
	})
	eg.Go(func() (err error) {
		d.Pending, err = s.checkInRepo.ListPendingManual(egCtx, groupID)
		return err
	})
	eg.Go(func() (err error) {
		d.LastMonthWinner, err = s.badgeRepo.Get(egCtx, groupID, domain.BadgeTypeMonthWinner, prevStart)
		return err
	})
	eg.Go(func() error {
		d.RoutineURL = routineURL(egCtx, s.blobs, g)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	d.Leaderboard = Top(Rank(d.Members, counts))
	d.MyMonthCount = counts[viewerID]
	d.Streak = calendar.Streak(calendar.DateSet(myDates), today)

	s.awardInBackground(ctx, groupID, prevStart)
	return d, nil
}

// awardInBackground settles last month's badge without holding up the view.
func (s *dashboardService) awardInBackground(ctx context.Context, groupID, periodStart string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.awardTimeout)
		defer cancel()
		if _, err := s.aggregation.AwardMonthWinner(ctx, groupID, periodStart); err != nil {
			logger.Warn("Month winner award failed", "groupID", groupID, "periodStart", periodStart, "error", err)
		}
	}()
}

func (s *dashboardService) Wait() {
	s.wg.Wait()
}
