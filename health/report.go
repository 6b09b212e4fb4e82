package health

import (
	"encoding/json"
	"math"
	"time"
)

// SlowCheckThreshold is the duration above which a check counts as slow.
const SlowCheckThreshold = time.Second

// Report is the outcome of one aggregated run.
type Report struct {
	// Status is StatusHealthy or StatusUnhealthy. Degraded probes never
	// escalate the report.
	Status Status

	// Timestamp is when the report was generated.
	Timestamp time.Time

	// Duration is the wall-clock time of the run. Near zero when the
	// results were served from the cache.
	Duration time.Duration

	// Checks holds the probe results in registration order.
	Checks []Result

	// Statistics summarizes Checks.
	Statistics Statistics

	// Cached is true when Checks came from the cache.
	Cached bool
}

// Healthy reports whether the report status is healthy.
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// SlowestCheck identifies the result with the longest duration.
type SlowestCheck struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
}

// Statistics is a summary of a result sequence.
type Statistics struct {
	TotalChecks     int           `json:"total_checks"`
	SlowChecks      int           `json:"slow_checks"`
	AverageDuration float64       `json:"average_duration"`
	SlowestCheck    *SlowestCheck `json:"slowest_check"`
}

// ComputeStatistics summarizes results. Durations are expressed in seconds
// rounded to three decimals. Ties for the slowest check go to the first
// result encountered.
func ComputeStatistics(results []Result) Statistics {
	stats := Statistics{TotalChecks: len(results)}
	if len(results) == 0 {
		return stats
	}

	var total time.Duration
	slowest := 0
	for i, r := range results {
		total += r.Duration
		if r.Duration > SlowCheckThreshold {
			stats.SlowChecks++
		}
		if r.Duration > results[slowest].Duration {
			slowest = i
		}
	}

	stats.AverageDuration = Round3(total.Seconds() / float64(len(results)))
	stats.SlowestCheck = &SlowestCheck{
		Name:     results[slowest].Name,
		Duration: Seconds(results[slowest].Duration),
	}
	return stats
}

// Round3 rounds v to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Seconds converts d to seconds rounded to three decimals.
func Seconds(d time.Duration) float64 {
	return Round3(d.Seconds())
}

type reportJSON struct {
	Status     Status     `json:"status"`
	Timestamp  string     `json:"timestamp"`
	Duration   float64    `json:"duration"`
	Checks     []Result   `json:"checks"`
	Statistics Statistics `json:"statistics"`
}

// MarshalJSON encodes the report in the wire shape served by the health
// endpoints.
func (r Report) MarshalJSON() ([]byte, error) {
	checks := r.Checks
	if checks == nil {
		checks = []Result{}
	}
	return json.Marshal(reportJSON{
		Status:     r.Status,
		Timestamp:  r.Timestamp.Format(time.RFC3339),
		Duration:   Seconds(r.Duration),
		Checks:     checks,
		Statistics: r.Statistics,
	})
}

// UnmarshalJSON decodes a report produced by MarshalJSON.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339, raw.Timestamp)
	if err != nil {
		return err
	}
	*r = Report{
		Status:     raw.Status,
		Timestamp:  ts,
		Duration:   time.Duration(raw.Duration * float64(time.Second)),
		Checks:     raw.Checks,
		Statistics: raw.Statistics,
	}
	return nil
}
