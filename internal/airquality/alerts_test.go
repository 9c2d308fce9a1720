package airquality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stationsWithAQI(aqis ...float64) []Station {
	out := make([]Station, len(aqis))
	for i, a := range aqis {
		out[i] = Station{UID: string(rune('a' + i)), AQI: a}
	}
	return out
}

func TestPartitionAlerts_MixedStations(t *testing.T) {
	alerts := PartitionAlerts(stationsWithAQI(45, 120, 310))

	require.Len(t, alerts.Hazardous, 1)
	assert.Equal(t, 310.0, alerts.Hazardous[0].AQI)
	assert.Empty(t, alerts.VeryUnhealthy)
	assert.Empty(t, alerts.Unhealthy)
	assert.False(t, alerts.Empty())
}

func TestPartitionAlerts_Boundaries(t *testing.T) {
	alerts := PartitionAlerts(stationsWithAQI(150, 150.5, 200, 200.5, 300, 300.5))

	assert.Equal(t, []float64{150.5, 200}, aqis(alerts.Unhealthy))
	assert.Equal(t, []float64{200.5, 300}, aqis(alerts.VeryUnhealthy))
	assert.Equal(t, []float64{300.5}, aqis(alerts.Hazardous))
}

func TestPartitionAlerts_DisjointAndPredicates(t *testing.T) {
	in := stationsWithAQI(12, 155, 420, 230, 199, 301, 88, 260, 151, 500)
	alerts := PartitionAlerts(in)

	seen := map[string]int{}
	for _, s := range alerts.Hazardous {
		assert.Greater(t, s.AQI, 300.0)
		seen[s.UID]++
	}
	for _, s := range alerts.VeryUnhealthy {
		assert.True(t, s.AQI > 200 && s.AQI <= 300, "aqi %v", s.AQI)
		seen[s.UID]++
	}
	for _, s := range alerts.Unhealthy {
		assert.True(t, s.AQI > 150 && s.AQI <= 200, "aqi %v", s.AQI)
		seen[s.UID]++
	}
	for uid, n := range seen {
		assert.Equal(t, 1, n, "station %s in more than one bucket", uid)
	}

	// Order within a bucket follows input order.
	assert.Equal(t, []float64{420, 301, 500}, aqis(alerts.Hazardous))
	assert.Equal(t, []float64{230, 260}, aqis(alerts.VeryUnhealthy))
	assert.Equal(t, []float64{155, 199, 151}, aqis(alerts.Unhealthy))
}

func TestPartitionAlerts_NoActiveAlerts(t *testing.T) {
	alerts := PartitionAlerts(stationsWithAQI(10, 75, 150))
	assert.True(t, alerts.Empty())
	assert.NotNil(t, alerts.Hazardous)

	assert.True(t, PartitionAlerts(nil).Empty())
}

func TestWorstAdvice(t *testing.T) {
	assert.Equal(t, "", WorstAdvice(nil))
	assert.Equal(t, Classify(310).Advice, WorstAdvice(stationsWithAQI(45, 310, 120)))
}

func aqis(stations []Station) []float64 {
	out := make([]float64, len(stations))
	for i, s := range stations {
		out[i] = s.AQI
	}
	return out
}
