package airquality

// Alerts partitions stations into the actionable severity buckets.
// Stations at or below 150 belong to none of them.
type Alerts struct {
	Hazardous     []Station `json:"hazardous"`
	VeryUnhealthy []Station `json:"veryUnhealthy"`
	Unhealthy     []Station `json:"unhealthy"`
}

// Empty reports whether no station is in any alert bucket.
func (a Alerts) Empty() bool {
	return len(a.Hazardous) == 0 && len(a.VeryUnhealthy) == 0 && len(a.Unhealthy) == 0
}

// PartitionAlerts splits stations into disjoint buckets:
// hazardous (aqi > 300), very unhealthy (200 < aqi <= 300) and
// unhealthy (150 < aqi <= 200). Input order is kept within each bucket.
func PartitionAlerts(stations []Station) Alerts {
	alerts := Alerts{
		Hazardous:     []Station{},
		VeryUnhealthy: []Station{},
		Unhealthy:     []Station{},
	}

	for _, s := range stations {
		switch {
		case s.AQI > 300:
			alerts.Hazardous = append(alerts.Hazardous, s)
		case s.AQI > 200:
			alerts.VeryUnhealthy = append(alerts.VeryUnhealthy, s)
		case s.AQI > 150:
			alerts.Unhealthy = append(alerts.Unhealthy, s)
		}
	}

	return alerts
}

// WorstAdvice returns the tier advice for the highest AQI among the
// stations, or "" when there are none.
func WorstAdvice(stations []Station) string {
	if len(stations) == 0 {
		return ""
	}
	worst := stations[0].AQI
	for _, s := range stations[1:] {
		if s.AQI > worst {
			worst = s.AQI
		}
	}
	return Classify(worst).Advice
}
