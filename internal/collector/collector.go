package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Collector is the capability a data source must provide: say whether the
// market is open at a given instant, and pull one round of data when asked.
type Collector interface {
	IsTradingTime(t time.Time) bool
	CollectData(ctx context.Context) error
}

// Scheduler drives a Collector from a cron expression. It holds no run flag;
// cancelling the context is the only way to stop it, and the clock is
// injectable so trading-hour gating is testable.
type Scheduler struct {
	log  *slog.Logger
	cron *cron.Cron
	col  Collector
	now  func() time.Time
}

func NewScheduler(log *slog.Logger, col Collector) *Scheduler {
	return &Scheduler{
		log:  log,
		cron: cron.New(),
		col:  col,
		now:  time.Now,
	}
}

// Run registers the collection task and blocks until ctx is cancelled, then
// waits for any in-flight run to finish.
func (s *Scheduler) Run(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.collect(ctx)
	})
	if err != nil {
		return fmt.Errorf("register collect task: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", "schedule", schedule)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

// CollectNow triggers one collection immediately, outside the schedule.
func (s *Scheduler) CollectNow(ctx context.Context) {
	s.collect(ctx)
}

func (s *Scheduler) collect(ctx context.Context) {
	if !s.col.IsTradingTime(s.now()) {
		s.log.Debug("skipping collection outside trading hours")
		return
	}

	if err := s.col.CollectData(ctx); err != nil {
		s.log.Error("collection failed", "error", err)
		return
	}

	s.log.Info("collection finished")
}
