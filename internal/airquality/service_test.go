package airquality_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

// mockSource returns configurable records or an error.
type mockSource struct {
	mu      sync.Mutex
	records []json.RawMessage
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) FetchLive(ctx context.Context) ([]json.RawMessage, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockSource) set(records []json.RawMessage, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
	m.err = err
}

type mockWeather struct {
	weather airquality.Weather
	err     error
}

func (m *mockWeather) Name() string { return "mock-weather" }

func (m *mockWeather) FetchCurrent(context.Context) (airquality.Weather, error) {
	return m.weather, m.err
}

// recordingObserver captures observer events.
type recordingObserver struct {
	mu        sync.Mutex
	drops     []airquality.Rejection
	successes int
	failures  []error
}

func (o *recordingObserver) StationDropped(_ context.Context, r airquality.Rejection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drops = append(o.drops, r)
}

func (o *recordingObserver) CycleSucceeded(context.Context, airquality.CycleResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.successes++
}

func (o *recordingObserver) CycleFailed(_ context.Context, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

// stepClock advances one minute per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func station(uid string, aqi interface{}) json.RawMessage {
	b, _ := json.Marshal(map[string]interface{}{
		"uid":          uid,
		"station_name": "Station " + uid,
		"latitude":     28.6,
		"longitude":    77.2,
		"aqi":          aqi,
		"last_updated": "2026-01-10 08:00:00",
	})
	return b
}

type fixture struct {
	source   *mockSource
	weather  *mockWeather
	store    *store.MemoryStore
	observer *recordingObserver
	service  *airquality.Service
}

func newFixture() *fixture {
	f := &fixture{
		source:   &mockSource{},
		weather:  &mockWeather{},
		store:    store.NewMemoryStore(airquality.DefaultHistoryCapacity),
		observer: &recordingObserver{},
	}
	clock := &stepClock{now: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)}
	f.service = airquality.NewService(airquality.ServiceConfig{
		Source:   f.source,
		Weather:  f.weather,
		Store:    f.store,
		Observer: f.observer,
		Logger:   zerolog.New(io.Discard),
		Clock:    clock.Now,
	})
	return f
}

func TestService_Poll_PublishesStationsAndSample(t *testing.T) {
	f := newFixture()
	f.source.set([]json.RawMessage{station("a", 45), station("b", 120), station("c", 310)}, nil)

	res, err := f.service.Poll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, res.Stations)
	assert.Zero(t, res.Dropped)
	assert.NotEmpty(t, res.CycleID)
	require.NotNil(t, res.Sample)
	assert.Equal(t, 158, res.Sample.AverageAQI)

	history := f.service.History()
	require.Len(t, history, 1)
	assert.Equal(t, 158, history[0].AverageAQI)

	alerts := f.service.Alerts()
	require.Len(t, alerts.Hazardous, 1)
	assert.Equal(t, "c", alerts.Hazardous[0].UID)
	assert.Empty(t, alerts.VeryUnhealthy)
	assert.Empty(t, alerts.Unhealthy)
}

func TestService_Poll_DroppedRecord(t *testing.T) {
	f := newFixture()
	bad := json.RawMessage(`{"uid": "bad", "latitude": null, "longitude": 77.1, "aqi": 80}`)
	f.source.set([]json.RawMessage{bad, station("a", 100), station("b", 200)}, nil)

	res, err := f.service.Poll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Stations)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 150, res.Sample.AverageAQI)
	require.Len(t, f.observer.drops, 1)
	assert.Equal(t, airquality.ReasonMissingLatitude, f.observer.drops[0].Reason)
	assert.Equal(t, "bad", f.observer.drops[0].UID)
}

func TestService_Poll_FailureKeepsState(t *testing.T) {
	f := newFixture()
	f.source.set([]json.RawMessage{station("a", 45), station("b", 120)}, nil)
	_, err := f.service.Poll(context.Background())
	require.NoError(t, err)
	before := f.service.Snapshot()

	upstream := errors.New("unexpected status code: 503")
	f.source.set(nil, upstream)
	_, err = f.service.Poll(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, before, f.service.Snapshot())
	require.Len(t, f.observer.failures, 1)
	assert.Equal(t, 1, f.observer.successes)
}

func TestService_Poll_RollingWindow(t *testing.T) {
	f := newFixture()

	for cycle := 1; cycle <= 31; cycle++ {
		f.source.set([]json.RawMessage{station("s", cycle*10)}, nil)
		_, err := f.service.Poll(context.Background())
		require.NoError(t, err)
	}

	history := f.service.History()
	require.Len(t, history, 30)
	assert.Equal(t, 20, history[0].AverageAQI, "cycle 1 evicted, cycle 2 first")
	assert.Equal(t, 310, history[29].AverageAQI)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func TestService_Poll_EmptyValidSet(t *testing.T) {
	f := newFixture()
	f.source.set([]json.RawMessage{station("a", 80)}, nil)
	_, err := f.service.Poll(context.Background())
	require.NoError(t, err)

	f.source.set([]json.RawMessage{station("x", "-")}, nil)
	res, err := f.service.Poll(context.Background())

	require.NoError(t, err)
	assert.Nil(t, res.Sample)
	assert.Empty(t, f.service.Stations())
	assert.Len(t, f.service.History(), 1)
	assert.True(t, f.service.Alerts().Empty())
	assert.Zero(t, f.service.Summary().StationCount)
}

func TestService_Poll_OverlappingCallsShareOneCycle(t *testing.T) {
	f := newFixture()
	f.source.delay = 100 * time.Millisecond
	f.source.set([]json.RawMessage{station("a", 60)}, nil)

	var wg sync.WaitGroup
	results := make([]airquality.CycleResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.service.Poll(context.Background())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.source.calls.Load())
	for _, res := range results {
		assert.Equal(t, results[0].CycleID, res.CycleID)
	}
	assert.Len(t, f.service.History(), 1)
}

func TestService_Close_DiscardsLateResults(t *testing.T) {
	f := newFixture()
	f.source.delay = 50 * time.Millisecond
	f.source.set([]json.RawMessage{station("a", 60)}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Poll(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return f.source.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	f.service.Close()

	err := <-done
	assert.ErrorIs(t, err, airquality.ErrServiceClosed)
	assert.Empty(t, f.service.Stations())
	assert.Empty(t, f.service.History())

	_, err = f.service.Poll(context.Background())
	assert.ErrorIs(t, err, airquality.ErrServiceClosed)
	assert.Equal(t, int32(1), f.source.calls.Load())
}

func TestService_RefreshWeather(t *testing.T) {
	f := newFixture()
	f.weather.weather = airquality.Weather{TemperatureC: 18, Condition: airquality.ConditionFog}

	require.NoError(t, f.service.RefreshWeather(context.Background()))
	require.NotNil(t, f.service.Snapshot().Weather)
	assert.Equal(t, 18.0, f.service.Snapshot().Weather.TemperatureC)

	f.weather.err = fmt.Errorf("boom")
	assert.Error(t, f.service.RefreshWeather(context.Background()))
	assert.Equal(t, 18.0, f.service.Snapshot().Weather.TemperatureC)
}

func TestService_RefreshWeather_NoSource(t *testing.T) {
	svc := airquality.NewService(airquality.ServiceConfig{
		Source: &mockSource{},
		Store:  store.NewMemoryStore(0),
		Logger: zerolog.Nop(),
	})
	assert.ErrorIs(t, svc.RefreshWeather(context.Background()), airquality.ErrNoWeatherSource)
}

func TestService_ReadModel(t *testing.T) {
	f := newFixture()
	f.source.set([]json.RawMessage{station("a", 100), station("b", 160)}, nil)
	_, err := f.service.Poll(context.Background())
	require.NoError(t, err)
	f.source.set([]json.RawMessage{station("a", 220), station("b", 240)}, nil)
	_, err = f.service.Poll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, airquality.TrendWorsening, f.service.Trend().Direction)
	assert.Equal(t, 230.0, f.service.Summary().AverageAQI)
	assert.Len(t, f.service.HeatPoints(), 2)
	assert.Equal(t, 30, f.service.HistoryCapacity())
	assert.Equal(t, uint64(2), f.service.Snapshot().Cycles)
}

func TestService_Close_DuringPublishDiscardsCycle(t *testing.T) {
	src := &mockSource{}
	src.set([]json.RawMessage{station("a", 60)}, nil)
	st := store.NewMemoryStore(airquality.DefaultHistoryCapacity)

	// The second clock read happens after the post-fetch closed check and
	// right before publication.
	var svc *airquality.Service
	var reads atomic.Int32
	svc = airquality.NewService(airquality.ServiceConfig{
		Source: src,
		Store:  st,
		Logger: zerolog.Nop(),
		Clock: func() time.Time {
			if reads.Add(1) == 2 {
				svc.Close()
			}
			return time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
		},
	})

	_, err := svc.Poll(context.Background())

	assert.ErrorIs(t, err, airquality.ErrServiceClosed)
	assert.Empty(t, st.Snapshot().Stations)
	assert.Empty(t, st.Snapshot().History)
}

func TestService_Poll_JoinerIgnoresFirstCallerCancellation(t *testing.T) {
	f := newFixture()
	f.source.delay = 100 * time.Millisecond
	f.source.set([]json.RawMessage{station("a", 60)}, nil)

	firstCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.service.Poll(firstCtx)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return f.source.calls.Load() == 1 }, time.Second, 2*time.Millisecond)

	res, err := f.service.Poll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Stations)
	assert.ErrorIs(t, <-firstErr, context.DeadlineExceeded)
	assert.Equal(t, int32(1), f.source.calls.Load())
	assert.Len(t, f.service.History(), 1)
}

func TestService_Poll_CycleTimeout(t *testing.T) {
	src := &mockSource{delay: time.Second}
	svc := airquality.NewService(airquality.ServiceConfig{
		Source:       src,
		Store:        store.NewMemoryStore(airquality.DefaultHistoryCapacity),
		Logger:       zerolog.Nop(),
		CycleTimeout: 20 * time.Millisecond,
	})

	_, err := svc.Poll(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, svc.History())
}
