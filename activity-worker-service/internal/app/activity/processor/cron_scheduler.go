package processor

import (
	"context"

	"auctionhouse/activity-worker-service/internal/app/activity/service"
	"auctionhouse/pkg/logger"

	"github.com/robfig/cron/v3"
)

type CronScheduler struct {
	cron        *cron.Cron
	activitySvc service.ActivityServiceInterface
}

func NewCronScheduler(activitySvc service.ActivityServiceInterface) *CronScheduler {
	cronLogger := logger.With().Str("component", "cron").Logger()
	printf := cron.PrintfLogger(&cronLogger)

	c := cron.New(
		cron.WithLogger(printf),
		cron.WithChain(cron.Recover(printf), cron.SkipIfStillRunning(printf)),
	)

	return &CronScheduler{
		cron:        c,
		activitySvc: activitySvc,
	}
}

// Start registers the retention job, starts the scheduler and runs one
// prune immediately. A failed initial prune is logged, not returned.
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	if _, err := s.cron.AddFunc(schedule, func() { s.prune(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	s.prune(ctx)
	return nil
}

func (s *CronScheduler) prune(ctx context.Context) {
	logger.Info().Msg("Cron job triggered: pruning activity feed")

	if _, err := s.activitySvc.Prune(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to prune activity feed")
		return
	}
	logger.Info().Msg("Cron job completed: activity feed pruned")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	<-s.cron.Stop().Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
