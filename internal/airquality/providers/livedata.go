package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
)

const liveDataPath = "/api/live-data"

// LiveDataProvider implements the airquality.Source interface for the
// dashboard backend's live-data endpoint.
type LiveDataProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewLiveDataProvider creates a provider for GET {baseURL}/api/live-data.
func NewLiveDataProvider(client *http.Client, baseURL string, breaker BreakerConfig) *LiveDataProvider {
	return &LiveDataProvider{
		name:    "live-data",
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker("live-data", breaker),
	}
}

func (p *LiveDataProvider) Name() string {
	return p.name
}

// FetchLive returns the records of the top-level live_data array, each left
// as raw JSON for the normalizer. A missing or non-array live_data is
// ErrMalformedPayload.
func (p *LiveDataProvider) FetchLive(ctx context.Context) ([]json.RawMessage, error) {
	resp, err := doRequest(ctx, p.client, p.circuit, p.baseURL+liveDataPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		LiveData json.RawMessage `json:"live_data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	trimmed := strings.TrimSpace(string(payload.LiveData))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: live_data is missing or not a list", ErrMalformedPayload)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(payload.LiveData, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return records, nil
}
