package jobs

import (
	"context"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/logger"
)

// AwardMonthWinners settles the previous month's winner badge for every
// group, using each group's own time zone to decide which month that is.
// Awarding is idempotent, so repeated runs and dashboard-triggered awards
// never produce a second badge.
func (jr *JobRunner) AwardMonthWinners() {
	jr.runWithRecovery("AwardMonthWinners", jr.awardMonthWinners)
}

// AwardResult summarizes one sweep.
type AwardResult struct {
	Groups  int
	Awarded int
	Empty   int
	Failed  int
}

func (jr *JobRunner) awardMonthWinners(ctx context.Context) {
	res := jr.SweepMonthWinners(ctx)
	logger.Info("Month winner sweep finished",
		"groups", res.Groups,
		"awarded", res.Awarded,
		"no_checkins", res.Empty,
		"failed", res.Failed)
}

// SweepMonthWinners runs one award pass and reports what happened. A failure
// for one group does not stop the others.
func (jr *JobRunner) SweepMonthWinners(ctx context.Context) AwardResult {
	var res AwardResult

	groups, err := jr.groups.List(ctx)
	if err != nil {
		logger.Error("Failed to list groups", "error", err)
		res.Failed++
		return res
	}
	res.Groups = len(groups)

	now := jr.clock()
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			logger.Warn("Month winner sweep cut short", "error", err)
			res.Failed += res.Groups - res.Awarded - res.Empty - res.Failed
			return res
		}

		periodStart, err := calendar.PrevMonthStart(g.Zone(), now)
		if err != nil {
			logger.Error("Skipping group with bad timezone", "group_id", g.ID, "timezone", g.Timezone, "error", err)
			res.Failed++
			continue
		}

		badge, err := jr.aggregation.AwardMonthWinner(ctx, g.ID, periodStart)
		switch {
		case err != nil:
			logger.Error("Failed to award month winner", "group_id", g.ID, "period_start", periodStart, "error", err)
			res.Failed++
		case badge == nil:
			res.Empty++
		default:
			logger.Debug("Month winner settled", "group_id", g.ID, "period_start", periodStart, "user_id", badge.UserID)
			res.Awarded++
		}
	}
	return res
}
