package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/config"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository/memory"
	"gymcrew-backend/internal/service"
)

// 2024-03-01 03:00 UTC is still February in Los Angeles.
var sweepNow = time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)

type MockAggregationService struct {
	mock.Mock
}

func (m *MockAggregationService) MonthlyLeaderboard(ctx context.Context, groupID string, period calendar.Range) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, groupID, period)
	return args.Get(0).([]domain.LeaderboardEntry), args.Error(1)
}

func (m *MockAggregationService) AwardMonthWinner(ctx context.Context, groupID, periodStart string) (*domain.Badge, error) {
	args := m.Called(ctx, groupID, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Badge), args.Error(1)
}

func (m *MockAggregationService) LastMonthWinner(ctx context.Context, groupID string) (*domain.Badge, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Badge), args.Error(1)
}

func createGroup(t *testing.T, store *memory.Store, id, tz string) {
	t.Helper()
	g := &domain.Group{ID: id, Name: id, Timezone: tz, CreatedBy: "admin"}
	require.NoError(t, store.GroupRepository.Create(context.Background(), g,
		&domain.Membership{UserID: "admin", Role: domain.MemberRoleAdmin}))
}

func TestSweepMonthWinners_PerGroupZone(t *testing.T) {
	store := memory.NewStore()
	createGroup(t, store, "utc", "UTC")
	createGroup(t, store, "la", "America/Los_Angeles")

	agg := new(MockAggregationService)
	agg.On("AwardMonthWinner", mock.Anything, "utc", "2024-02-01").Return(&domain.Badge{UserID: "admin"}, nil)
	agg.On("AwardMonthWinner", mock.Anything, "la", "2024-01-01").Return(nil, nil)

	jr := NewJobRunner(store.GroupRepository, agg, &config.Config{}, func() time.Time { return sweepNow })
	res := jr.SweepMonthWinners(context.Background())

	assert.Equal(t, AwardResult{Groups: 2, Awarded: 1, Empty: 1}, res)
	agg.AssertExpectations(t)
}

func TestSweepMonthWinners_FailureDoesNotStopOthers(t *testing.T) {
	store := memory.NewStore()
	createGroup(t, store, "a", "UTC")
	createGroup(t, store, "b", "UTC")

	agg := new(MockAggregationService)
	agg.On("AwardMonthWinner", mock.Anything, "a", "2024-02-01").Return(nil, domain.Transient(errors.New("db down")))
	agg.On("AwardMonthWinner", mock.Anything, "b", "2024-02-01").Return(&domain.Badge{UserID: "admin"}, nil)

	jr := NewJobRunner(store.GroupRepository, agg, &config.Config{}, func() time.Time { return sweepNow })
	res := jr.SweepMonthWinners(context.Background())

	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Awarded)
	agg.AssertExpectations(t)
}

func TestAwardMonthWinners_Idempotent(t *testing.T) {
	store := memory.NewStore()
	createGroup(t, store, "g", "UTC")
	s := &store.Store
	require.NoError(t, s.CheckInRepository.Create(context.Background(), domain.NewGeoCheckIn("g", "admin", "2024-02-10", 0, 0)))

	clock := func() time.Time { return sweepNow }
	agg := service.NewAggregationService(s.GroupRepository, s.MembershipRepository, s.CheckInRepository, s.BadgeRepository, clock)
	jr := NewJobRunner(s.GroupRepository, agg, &config.Config{}, clock)

	jr.AwardMonthWinners()
	jr.AwardMonthWinners()

	b, err := s.BadgeRepository.Get(context.Background(), "g", domain.BadgeTypeMonthWinner, "2024-02-01")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "admin", b.UserID)
	assert.Equal(t, "2024-02-29", b.PeriodEnd)
}

func TestRunWithRecovery_Panic(t *testing.T) {
	jr := NewJobRunner(nil, nil, &config.Config{}, nil)
	assert.NotPanics(t, func() {
		jr.runWithRecovery("boom", func(ctx context.Context) { panic("boom") })
	})
}
