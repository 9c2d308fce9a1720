package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

// OpenMeteoProvider implements the airquality.WeatherSource interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	lat     float64
	lon     float64
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider for the current weather at lat/lon.
// An empty baseURL uses the public Open-Meteo forecast endpoint.
func NewOpenMeteoProvider(client *http.Client, baseURL string, lat, lon float64, breaker BreakerConfig) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		lat:     lat,
		lon:     lon,
		client:  client,
		circuit: newCircuitBreaker("openmeteo", breaker),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context) (airquality.Weather, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", p.lat))
	values.Set("longitude", fmt.Sprintf("%f", p.lon))
	values.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m")
	values.Set("timezone", "UTC")

	resp, err := doRequest(ctx, p.client, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	if err != nil {
		return airquality.Weather{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current *struct {
			Time        string  `json:"time"`
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return airquality.Weather{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.Current == nil {
		return airquality.Weather{}, fmt.Errorf("%w: current block missing", ErrMalformedPayload)
	}
	cur := payload.Current

	// Open-Meteo returns ISO8601 without seconds or zone, e.g. 2026-01-10T08:15.
	ts, err := time.Parse("2006-01-02T15:04", cur.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return airquality.Weather{
		TemperatureC: cur.Temperature,
		HumidityPct:  cur.Humidity,
		WindSpeedKph: cur.WindSpeed,
		Code:         cur.WeatherCode,
		Description:  describeWeatherCode(cur.WeatherCode),
		Condition:    mapOpenMeteoCondition(cur.WeatherCode),
		ObservedAt:   ts.UTC(),
	}, nil
}

func mapOpenMeteoCondition(code int) airquality.Condition {
	// Mapping based on WMO weather codes (simplified).
	switch {
	case code == 0:
		return airquality.ConditionClear
	case code >= 1 && code <= 3:
		return airquality.ConditionCloudy
	case code == 45 || code == 48:
		return airquality.ConditionFog
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return airquality.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return airquality.ConditionSnow
	case code >= 95:
		return airquality.ConditionStorm
	default:
		return airquality.ConditionUnknown
	}
}

var weatherDescriptions = map[int]string{
	0: "Clear sky", 1: "Mainly clear", 2: "Partly cloudy", 3: "Overcast",
	45: "Fog", 48: "Depositing rime fog",
	51: "Light drizzle", 53: "Moderate drizzle", 55: "Dense drizzle",
	61: "Slight rain", 63: "Moderate rain", 65: "Heavy rain",
	80: "Slight rain showers", 81: "Moderate rain showers", 82: "Violent rain showers",
	95: "Thunderstorm", 96: "Thunderstorm, slight hail", 99: "Thunderstorm, heavy hail",
}

func describeWeatherCode(code int) string {
	if d, ok := weatherDescriptions[code]; ok {
		return d
	}
	return "Unknown"
}
