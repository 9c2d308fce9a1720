package airquality

import "fmt"

// StationExtreme names the station holding a min or max AQI.
type StationExtreme struct {
	UID  string  `json:"uid"`
	Name string  `json:"stationName"`
	AQI  float64 `json:"aqi"`
}

// Summary holds the headline figures for the current station set.
type Summary struct {
	StationCount int             `json:"stationCount"`
	AverageAQI   float64         `json:"averageAqi"`
	Category     *Tier           `json:"category,omitempty"`
	Min          *StationExtreme `json:"min,omitempty"`
	Max          *StationExtreme `json:"max,omitempty"`
}

// Summarize computes count, mean (one decimal), mean category and the
// min/max stations. The first station wins ties.
func Summarize(stations []Station) Summary {
	if len(stations) == 0 {
		return Summary{}
	}

	minS, maxS := stations[0], stations[0]
	for _, s := range stations[1:] {
		if s.AQI < minS.AQI {
			minS = s
		}
		if s.AQI > maxS.AQI {
			maxS = s
		}
	}

	mean, _ := meanAQI(stations).Round(1).Float64()
	tier := Classify(mean)

	return Summary{
		StationCount: len(stations),
		AverageAQI:   mean,
		Category:     &tier,
		Min:          &StationExtreme{UID: minS.UID, Name: minS.Name, AQI: minS.AQI},
		Max:          &StationExtreme{UID: maxS.UID, Name: maxS.Name, AQI: maxS.AQI},
	}
}

// TrendDirection is the movement of the average AQI over the window.
type TrendDirection string

const (
	TrendUnknown   TrendDirection = "unknown"
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendWorsening TrendDirection = "worsening"
)

// TrendThreshold is the AQI delta beyond which the trend is not stable.
const TrendThreshold = 30

// Trend describes how the latest sample compares with the earlier window.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Current   int            `json:"current"`
	Baseline  float64        `json:"baseline"`
	Min       int            `json:"min"`
	Max       int            `json:"max"`
	Samples   int            `json:"samples"`
	Advice    string         `json:"advice"`
}

// AnalyzeTrend compares the newest sample against the mean of the samples
// before it. Fewer than two samples yield TrendUnknown.
func AnalyzeTrend(history []HistorySample) Trend {
	if len(history) < 2 {
		t := Trend{Direction: TrendUnknown, Samples: len(history), Advice: "Not enough data to determine a trend."}
		if len(history) == 1 {
			t.Current = history[0].AverageAQI
			t.Min, t.Max = t.Current, t.Current
		}
		return t
	}

	current := history[len(history)-1].AverageAQI
	minV, maxV := current, current
	sum := 0
	for _, s := range history[:len(history)-1] {
		sum += s.AverageAQI
		if s.AverageAQI < minV {
			minV = s.AverageAQI
		}
		if s.AverageAQI > maxV {
			maxV = s.AverageAQI
		}
	}
	baseline := float64(sum) / float64(len(history)-1)

	t := Trend{
		Current:  current,
		Baseline: baseline,
		Min:      minV,
		Max:      maxV,
		Samples:  len(history),
	}

	switch delta := float64(current) - baseline; {
	case delta > TrendThreshold:
		t.Direction = TrendWorsening
		t.Advice = fmt.Sprintf("Air quality is worsening. Peak AQI in the window reached %d.", maxV)
	case delta < -TrendThreshold:
		t.Direction = TrendImproving
		t.Advice = fmt.Sprintf("Air quality is improving. Lowest AQI in the window was %d.", minV)
	default:
		t.Direction = TrendStable
		t.Advice = fmt.Sprintf("Air quality is stable around %.0f.", baseline)
	}

	return t
}
