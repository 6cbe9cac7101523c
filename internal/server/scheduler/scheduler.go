// Package scheduler runs the daily weather capture on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/logging"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/go-co-op/gocron"
)

// DailyWeatherSaver is the job the scheduler triggers.
type DailyWeatherSaver interface {
	SaveDailyWeather(ctx context.Context) (*models.WeatherSnapshot, error)
}

// Scheduler fires DailyWeatherSaver on a cron expression evaluated in a
// fixed timezone. A failed run is logged and retried only at the next tick.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       DailyWeatherSaver
	cron      string
	timeout   time.Duration
	logger    logging.Logger
}

func New(job DailyWeatherSaver, cron string, loc *time.Location, timeout time.Duration, l logging.Logger) *Scheduler {
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		job:       job,
		cron:      cron,
		timeout:   timeout,
		logger:    l.With("module", "scheduler"),
	}
}

// Start registers the job and starts the scheduler in the background.
func (s *Scheduler) Start() error {
	j, err := s.scheduler.Cron(s.cron).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cron, err)
	}

	s.scheduler.StartAsync()
	s.logger.Info(context.Background(), "scheduler started", "cron", s.cron, "next_run", j.NextRun())
	return nil
}

// RunOnce executes the job synchronously, bounded by the job timeout.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if deadline, ok := ctx.Deadline(); ok {
		s.logger.Debug(ctx, "job deadline", "deadline", deadline)
	}
	s.logger.Info(ctx, "running daily weather job")
	snap, err := s.job.SaveDailyWeather(ctx)
	if err != nil {
		s.logger.Error(ctx, "daily weather job failed", "error", err)
		return
	}
	s.logger.Info(ctx, "daily weather job complete", "id", snap.ID, "weather", snap.Condition)
}

// Stop cancels future runs. A run in progress is not interrupted.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
