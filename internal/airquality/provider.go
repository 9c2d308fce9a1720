package airquality

import (
	"context"
	"encoding/json"
	"time"
)

// Source abstracts the remote live-data API.
type Source interface {
	Name() string
	// FetchLive returns the raw live_data records. A transport failure,
	// non-2xx status or malformed top-level payload is an error.
	FetchLive(ctx context.Context) ([]json.RawMessage, error)
}

// WeatherSource abstracts a current-weather provider (e.g. Open-Meteo).
type WeatherSource interface {
	Name() string
	FetchCurrent(ctx context.Context) (Weather, error)
}

// Store is the contract the in-memory store must satisfy.
type Store interface {
	// Publish replaces the station set and, when sample is non-nil, appends
	// it to the history. Readers never observe a partial update.
	Publish(stations []Station, sample *HistorySample, at time.Time)
	SaveWeather(w Weather)
	Snapshot() Snapshot
	HistoryCapacity() int
}

// CycleResult describes one successful poll cycle.
type CycleResult struct {
	CycleID   string         `json:"cycleId"`
	Stations  int            `json:"stations"`
	Dropped   int            `json:"dropped"`
	Sample    *HistorySample `json:"sample,omitempty"`
	StartedAt time.Time      `json:"startedAt"`
	Duration  time.Duration  `json:"duration"`
}

// Observer receives poll-cycle events for metrics.
type Observer interface {
	StationDropped(ctx context.Context, r Rejection)
	CycleSucceeded(ctx context.Context, res CycleResult)
	CycleFailed(ctx context.Context, err error)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) StationDropped(context.Context, Rejection)   {}
func (NopObserver) CycleSucceeded(context.Context, CycleResult) {}
func (NopObserver) CycleFailed(context.Context, error)          {}
