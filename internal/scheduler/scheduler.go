package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

// Poller is the part of the air quality service driven by the scheduler.
type Poller interface {
	Poll(ctx context.Context) (airquality.CycleResult, error)
	RefreshWeather(ctx context.Context) error
	Close()
}

// Config controls job intervals.
type Config struct {
	PollInterval    time.Duration
	WeatherEnabled  bool
	WeatherInterval time.Duration
}

// Scheduler periodically polls live data and, optionally, refreshes weather.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Poller
	cfg       Config
	logger    zerolog.Logger
}

// New creates a new Scheduler.
func New(service Poller, cfg Config, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		cfg:       cfg,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules the jobs and starts the underlying scheduler. Every job
// runs once immediately, then on its fixed interval regardless of outcome.
func (s *Scheduler) Start() error {
	if s.cfg.PollInterval <= 0 {
		return errors.New("scheduler: poll interval must be positive")
	}
	if err := s.schedule("poll", s.cfg.PollInterval, func(ctx context.Context) error {
		_, err := s.service.Poll(ctx)
		return err
	}); err != nil {
		return err
	}

	if s.cfg.WeatherEnabled {
		if s.cfg.WeatherInterval <= 0 {
			return errors.New("scheduler: weather interval must be positive")
		}
		if err := s.schedule("weather", s.cfg.WeatherInterval, s.service.RefreshWeather); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	s.logger.Info().
		Dur("poll_interval", s.cfg.PollInterval).
		Bool("weather", s.cfg.WeatherEnabled).
		Msg("scheduler started")
	return nil
}

// schedule registers one job. Each run gets a context bounded by the
// interval so a hung run cannot outlive its slot.
func (s *Scheduler) schedule(name string, interval time.Duration, run func(context.Context) error) error {
	_, err := s.scheduler.Every(interval).Tag(name).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		if err := run(ctx); err != nil {
			if errors.Is(err, airquality.ErrServiceClosed) {
				return
			}
			s.logger.Warn().Err(err).Str("job", name).Msg("job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s job: %w", name, err)
	}
	return nil
}

// Stop cancels future runs and closes the service so results of runs still
// in flight are discarded.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.service.Close()
	s.logger.Info().Msg("scheduler stopped")
}
