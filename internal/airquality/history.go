package airquality

import (
	"github.com/shopspring/decimal"
)

// DefaultHistoryCapacity is the number of samples kept in the rolling trend.
const DefaultHistoryCapacity = 30

// History is a bounded, time-ordered sequence of average-AQI samples.
// It is not safe for concurrent use; the store guards it.
type History struct {
	capacity int
	samples  []HistorySample
}

// NewHistory creates a History holding at most capacity samples.
// If capacity is <= 0, DefaultHistoryCapacity is used.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		samples:  make([]HistorySample, 0, capacity),
	}
}

// Append adds a sample at the end, evicting the oldest samples first so the
// length never exceeds the capacity. A timestamp older than the newest stored
// sample is clamped to it to keep the sequence non-decreasing.
func (h *History) Append(sample HistorySample) {
	if n := len(h.samples); n > 0 {
		if last := h.samples[n-1].Timestamp; sample.Timestamp.Before(last) {
			sample.Timestamp = last
		}
	}

	if len(h.samples) >= h.capacity {
		over := len(h.samples) - h.capacity + 1
		copy(h.samples, h.samples[over:])
		h.samples = h.samples[:len(h.samples)-over]
	}
	h.samples = append(h.samples, sample)
}

// Samples returns a copy of the stored samples, oldest first.
func (h *History) Samples() []HistorySample {
	out := make([]HistorySample, len(h.samples))
	copy(out, h.samples)
	return out
}

func (h *History) Len() int { return len(h.samples) }

func (h *History) Capacity() int { return h.capacity }

// AverageAQI returns the mean AQI of the stations rounded to the nearest
// integer, halves rounding up. ok is false when there are no stations.
func AverageAQI(stations []Station) (avg int, ok bool) {
	if len(stations) == 0 {
		return 0, false
	}
	mean := meanAQI(stations)
	return int(mean.Round(0).IntPart()), true
}

// meanAQI is computed in decimal so that exact halves are not lost to
// binary floating point before rounding.
func meanAQI(stations []Station) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range stations {
		sum = sum.Add(decimal.NewFromFloat(s.AQI))
	}
	return sum.Div(decimal.NewFromInt(int64(len(stations))))
}
