package store

import (
	"sync"
	"time"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

// MemoryStore is a concurrency-safe in-memory holder of the published
// station set, the rolling history and the latest weather.
type MemoryStore struct {
	mu sync.RWMutex

	stations  []airquality.Station
	history   *airquality.History
	weather   *airquality.Weather
	updatedAt time.Time
	cycles    uint64
}

// NewMemoryStore creates a new MemoryStore whose history keeps at most
// historyCapacity samples. If historyCapacity is <= 0, the default of 30
// is used.
func NewMemoryStore(historyCapacity int) *MemoryStore {
	return &MemoryStore{
		stations: []airquality.Station{},
		history:  airquality.NewHistory(historyCapacity),
	}
}

// Publish replaces the station set and appends sample (if any) under one
// lock so readers see either the previous or the next snapshot.
func (s *MemoryStore) Publish(stations []airquality.Station, sample *airquality.HistorySample, at time.Time) {
	next := make([]airquality.Station, len(stations))
	copy(next, stations)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stations = next
	if sample != nil {
		s.history.Append(*sample)
	}
	s.updatedAt = at
	s.cycles++
}

// SaveWeather replaces the latest weather.
func (s *MemoryStore) SaveWeather(w airquality.Weather) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather = &w
}

// Snapshot returns a copy of the current state.
func (s *MemoryStore) Snapshot() airquality.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stations := make([]airquality.Station, len(s.stations))
	copy(stations, s.stations)

	snap := airquality.Snapshot{
		Stations:  stations,
		History:   s.history.Samples(),
		UpdatedAt: s.updatedAt,
		Cycles:    s.cycles,
	}
	if s.weather != nil {
		w := *s.weather
		snap.Weather = &w
	}
	return snap
}

// HistoryCapacity returns the configured history capacity.
func (s *MemoryStore) HistoryCapacity() int {
	return s.history.Capacity()
}
