package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/airquality/providers"
)

// Metrics implements airquality.Observer on top of OpenTelemetry instruments.
type Metrics struct {
	cycles        metric.Int64Counter
	dropped       metric.Int64Counter
	stations      metric.Int64Gauge
	averageAQI    metric.Int64Gauge
	cycleDuration metric.Float64Histogram
}

var _ airquality.Observer = (*Metrics)(nil)

// NewMetrics creates the poll-cycle instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	cycles, err := meter.Int64Counter(
		"airquality.poll.cycles",
		metric.WithDescription("Poll cycles by outcome"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter(
		"airquality.stations.dropped",
		metric.WithDescription("Raw station records rejected by the normalizer"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	stations, err := meter.Int64Gauge(
		"airquality.stations.published",
		metric.WithDescription("Stations in the last published set"),
		metric.WithUnit("{station}"),
	)
	if err != nil {
		return nil, err
	}

	averageAQI, err := meter.Int64Gauge(
		"airquality.aqi.average",
		metric.WithDescription("Average AQI of the last history sample"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		"airquality.poll.duration",
		metric.WithDescription("Duration of successful poll cycles"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		cycles:        cycles,
		dropped:       dropped,
		stations:      stations,
		averageAQI:    averageAQI,
		cycleDuration: cycleDuration,
	}, nil
}

func (m *Metrics) StationDropped(ctx context.Context, r airquality.Rejection) {
	m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(r.Reason))))
}

func (m *Metrics) CycleSucceeded(ctx context.Context, res airquality.CycleResult) {
	m.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))
	m.stations.Record(ctx, int64(res.Stations))
	if res.Sample != nil {
		m.averageAQI.Record(ctx, int64(res.Sample.AverageAQI))
	}
	m.cycleDuration.Record(ctx, res.Duration.Seconds())
}

func (m *Metrics) CycleFailed(ctx context.Context, err error) {
	m.cycles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", "failure"),
		attribute.String("cause", failureCause(err)),
	))
}

func failureCause(err error) string {
	switch {
	case errors.Is(err, providers.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, providers.ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, providers.ErrMalformedPayload):
		return "payload"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "transport"
	}
}
