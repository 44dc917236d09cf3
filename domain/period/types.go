package period

// StablePeriod is a contiguous sub-window of a series with low internal
// variability, usable as a measurement window for comparison.
type StablePeriod struct {
	StartIndex      int     `json:"start_index"`
	EndIndex        int     `json:"end_index"` // exclusive
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"std_dev"`
	DurationMinutes float64 `json:"duration_minutes"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Length returns the number of samples in the period
func (p StablePeriod) Length() int {
	return p.EndIndex - p.StartIndex
}

// Config carries the segmentation knobs
type Config struct {
	Penalty              float64 `json:"penalty"`                // change-point penalty; higher means coarser segments
	MinSegmentLength     int     `json:"min_segment_length"`     // samples
	MinDurationMinutes   float64 `json:"min_duration_minutes"`   // from timestamps
	MinActivityThreshold float64 `json:"min_activity_threshold"` // segment mean floor
	StabilityThreshold   float64 `json:"stability_threshold"`    // CV ceiling is 1-stability
}

// DefaultConfig returns the standard segmentation configuration
func DefaultConfig() Config {
	return Config{
		Penalty:              10,
		MinSegmentLength:     50,
		MinDurationMinutes:   30,
		MinActivityThreshold: 0.1,
		StabilityThreshold:   0.8,
	}
}
