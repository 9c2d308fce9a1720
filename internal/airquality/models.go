package airquality

import (
	"encoding/json"
	"time"
)

// Station is one monitoring station's current, validated reading.
type Station struct {
	UID         string  `json:"uid"`
	Name        string  `json:"stationName"`
	Lat         float64 `json:"latitude"`
	Lon         float64 `json:"longitude"`
	AQI         float64 `json:"aqi"`
	LastUpdated string  `json:"lastUpdated"` // passed through as received
}

// HistorySample is one point of the rolling average-AQI trend.
type HistorySample struct {
	Timestamp  time.Time `json:"timestamp"` // always UTC
	AverageAQI int       `json:"averageAqi"`
}

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionFog     Condition = "fog"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// Weather is the current weather at the dashboard centre.
type Weather struct {
	TemperatureC float64   `json:"temperatureC"`
	HumidityPct  float64   `json:"humidityPercent"`
	WindSpeedKph float64   `json:"windSpeedKph"`
	Code         int       `json:"weatherCode"`
	Description  string    `json:"description"`
	Condition    Condition `json:"condition"`
	ObservedAt   time.Time `json:"observedAt"`
}

// Snapshot is the complete read model published after each cycle.
type Snapshot struct {
	Stations  []Station       `json:"stations"`
	History   []HistorySample `json:"history"`
	Weather   *Weather        `json:"weather,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Cycles    uint64          `json:"cycles"`
}

// HeatPoint is a weighted geographic point for the heat-layer renderer.
// It serializes as a [lat, lon, intensity] triple.
type HeatPoint struct {
	Lat       float64
	Lon       float64
	Intensity float64
}

func (p HeatPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.Lat, p.Lon, p.Intensity})
}

// HeatPoints converts stations to heat-layer points, preserving order.
func HeatPoints(stations []Station) []HeatPoint {
	points := make([]HeatPoint, 0, len(stations))
	for _, s := range stations {
		points = append(points, HeatPoint{Lat: s.Lat, Lon: s.Lon, Intensity: s.AQI})
	}
	return points
}
