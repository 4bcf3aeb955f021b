package jobs

import (
	"context"
	"time"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/config"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
	"gymcrew-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	groups      repository.GroupRepository
	aggregation service.AggregationService
	config      *config.Config
	clock       calendar.Clock
	timeout     time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(groups repository.GroupRepository, aggregation service.AggregationService, cfg *config.Config, clock calendar.Clock) *JobRunner {
	if clock == nil {
		clock = time.Now
	}
	return &JobRunner{
		groups:      groups,
		aggregation: aggregation,
		config:      cfg,
		clock:       clock,
		timeout:     5 * time.Minute,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := jr.clock()
	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName, "elapsed", jr.clock().Sub(start))
}
