package airquality

import "math"

// Level identifies a severity tier.
type Level string

const (
	LevelGood          Level = "good"
	LevelModerate      Level = "moderate"
	LevelSensitive     Level = "sensitive"
	LevelUnhealthy     Level = "unhealthy"
	LevelVeryUnhealthy Level = "very_unhealthy"
	LevelHazardous     Level = "hazardous"
)

// Tier is one of the fixed AQI severity bands. Max is the inclusive upper
// bound of the band.
type Tier struct {
	Level  Level   `json:"level"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Max    float64 `json:"-"`
	Advice string  `json:"advice"`
}

var tiers = [...]Tier{
	{LevelGood, "Good", "#00e400", 50, "Enjoy outdoor activities."},
	{LevelModerate, "Moderate", "#ffff00", 100, "Unusually sensitive people should consider reducing prolonged or heavy exertion."},
	{LevelSensitive, "Unhealthy for Sensitive", "#ff7e00", 150, "Sensitive groups should reduce prolonged or heavy exertion."},
	{LevelUnhealthy, "Unhealthy", "#ff0000", 200, "Everyone may begin to experience health effects."},
	{LevelVeryUnhealthy, "Very Unhealthy", "#8f3f97", 300, "Health alert: everyone may experience more serious health effects."},
	{LevelHazardous, "Hazardous", "#7e0023", math.Inf(1), "Health warnings of emergency conditions. The entire population is more likely to be affected."},
}

// Classify maps an AQI value to its severity tier. Bounds are checked in
// ascending order and the first inclusive upper bound that holds wins.
func Classify(aqi float64) Tier {
	for _, t := range tiers[:len(tiers)-1] {
		if aqi <= t.Max {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// Tiers returns the tier table in ascending order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers[:])
	return out
}
