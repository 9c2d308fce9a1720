package airquality

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/i474232898/air-quality-dashboard/internal/airquality"

var (
	// ErrServiceClosed is returned for cycles that finish after Close.
	ErrServiceClosed = errors.New("air quality service closed")
	// ErrNoWeatherSource is returned by RefreshWeather when none is configured.
	ErrNoWeatherSource = errors.New("no weather source configured")
)

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Source  Source
	Weather WeatherSource // optional
	Store   Store

	// Observer receives drop and cycle events (default: NopObserver).
	Observer Observer

	Logger zerolog.Logger

	// Clock returns the current time (default: time.Now).
	Clock func() time.Time

	// CycleTimeout bounds one shared poll cycle (default: 1 minute).
	CycleTimeout time.Duration
}

// DefaultCycleTimeout bounds a poll cycle when ServiceConfig leaves it unset.
const DefaultCycleTimeout = time.Minute

// Service runs poll cycles and exposes the published read model.
type Service struct {
	source   Source
	weather  WeatherSource
	store    Store
	observer Observer
	logger   zerolog.Logger
	clock    func() time.Time
	tracer   trace.Tracer
	timeout  time.Duration

	flight singleflight.Group

	// mu orders Close against publication.
	mu     sync.Mutex
	closed bool
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) *Service {
	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	timeout := cfg.CycleTimeout
	if timeout <= 0 {
		timeout = DefaultCycleTimeout
	}

	return &Service{
		source:   cfg.Source,
		weather:  cfg.Weather,
		store:    cfg.Store,
		observer: observer,
		logger:   cfg.Logger,
		clock:    clock,
		tracer:   otel.Tracer(tracerName),
		timeout:  timeout,
	}
}

// Poll runs one fetch-normalize-publish cycle. A call made while another
// cycle is running joins that cycle and shares its result. The shared cycle
// does not inherit any caller's cancellation; a caller whose ctx ends stops
// waiting while the cycle continues for the others.
// On failure the published state is left untouched.
func (s *Service) Poll(ctx context.Context) (CycleResult, error) {
	ch := s.flight.DoChan("poll", func() (interface{}, error) {
		cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.runCycle(cycleCtx)
	})

	select {
	case r := <-ch:
		if r.Shared {
			s.logger.Debug().Msg("poll joined an in-flight cycle")
		}
		res, _ := r.Val.(CycleResult)
		return res, r.Err
	case <-ctx.Done():
		return CycleResult{}, ctx.Err()
	}
}

func (s *Service) runCycle(ctx context.Context) (CycleResult, error) {
	res := CycleResult{
		CycleID:   uuid.NewString(),
		StartedAt: s.clock().UTC(),
	}
	log := s.logger.With().Str("cycle_id", res.CycleID).Str("source", s.source.Name()).Logger()

	ctx, span := s.tracer.Start(ctx, "airquality.poll",
		trace.WithAttributes(attribute.String("cycle.id", res.CycleID)))
	defer span.End()

	if s.isClosed() {
		return res, ErrServiceClosed
	}

	records, err := s.source.FetchLive(ctx)
	if err != nil {
		err = fmt.Errorf("fetch live data: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		s.observer.CycleFailed(ctx, err)
		log.Error().Err(err).Msg("poll cycle failed; keeping previous state")
		return res, err
	}
	if s.isClosed() {
		log.Debug().Msg("discarding cycle completed after shutdown")
		return res, ErrServiceClosed
	}

	stations, rejections := Normalize(records)
	for _, r := range rejections {
		s.observer.StationDropped(ctx, r)
		log.Debug().
			Int("index", r.Index).
			Str("uid", r.UID).
			Str("reason", string(r.Reason)).
			Msg("dropped station record")
	}

	now := s.clock().UTC()
	if avg, ok := AverageAQI(stations); ok {
		res.Sample = &HistorySample{Timestamp: now, AverageAQI: avg}
	}
	// Close may land while normalizing; the publish itself is checked.
	if !s.publish(func() { s.store.Publish(stations, res.Sample, now) }) {
		log.Debug().Msg("discarding cycle completed after shutdown")
		return res, ErrServiceClosed
	}

	res.Stations = len(stations)
	res.Dropped = len(rejections)
	res.Duration = s.clock().Sub(res.StartedAt)

	span.SetAttributes(
		attribute.Int("stations.published", res.Stations),
		attribute.Int("stations.dropped", res.Dropped),
	)
	s.observer.CycleSucceeded(ctx, res)

	evt := log.Info().
		Int("records", len(records)).
		Int("stations", res.Stations).
		Int("dropped", res.Dropped)
	if res.Sample != nil {
		evt = evt.Int("average_aqi", res.Sample.AverageAQI)
	}
	evt.Msg("poll cycle completed")

	return res, nil
}

// RefreshWeather fetches current weather and stores it. On failure the
// previous weather is kept.
func (s *Service) RefreshWeather(ctx context.Context) error {
	if s.weather == nil {
		return ErrNoWeatherSource
	}

	w, err := s.weather.FetchCurrent(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("source", s.weather.Name()).Msg("weather refresh failed; keeping previous weather")
		return fmt.Errorf("fetch weather: %w", err)
	}
	if !s.publish(func() { s.store.SaveWeather(w) }) {
		return ErrServiceClosed
	}
	s.logger.Debug().
		Float64("temperature_c", w.TemperatureC).
		Str("condition", string(w.Condition)).
		Msg("weather refreshed")
	return nil
}

// Close stops the service from publishing any further results. It waits
// for a publication already in progress.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// publish runs write under the close lock unless the service is closed.
func (s *Service) publish(write func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	write()
	return true
}

// Snapshot returns the current read model.
func (s *Service) Snapshot() Snapshot {
	return s.store.Snapshot()
}

// Stations returns the current station set.
func (s *Service) Stations() []Station {
	return s.store.Snapshot().Stations
}

// History returns the rolling average-AQI history, oldest first.
func (s *Service) History() []HistorySample {
	return s.store.Snapshot().History
}

// HistoryCapacity returns the maximum number of history samples kept.
func (s *Service) HistoryCapacity() int {
	return s.store.HistoryCapacity()
}

// Alerts partitions the current station set into alert buckets.
func (s *Service) Alerts() Alerts {
	return PartitionAlerts(s.Stations())
}

// Summary summarizes the current station set.
func (s *Service) Summary() Summary {
	return Summarize(s.Stations())
}

// Trend analyzes the current history.
func (s *Service) Trend() Trend {
	return AnalyzeTrend(s.History())
}

// HeatPoints returns heat-layer points for the current station set.
func (s *Service) HeatPoints() []HeatPoint {
	return HeatPoints(s.Stations())
}
