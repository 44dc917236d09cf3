// Package heuristic provides a model-free anomaly detector used when the
// trained scoring model is unavailable. It flags rolling z-score
// excursions and maps their density onto the [0,1] score the workflow
// expects, so the pipeline runs end-to-end without the external model.
package heuristic

import (
	"context"
	"fmt"
	"math"
	"time"

	"perfgate/domain/workflow"
)

// Detector scores a series by rolling z-score excursions
type Detector struct {
	Window    int     // rolling window size in samples
	Threshold float64 // |z| above which a point is anomalous
}

// NewDetector creates a detector with standard settings
func NewDetector() *Detector {
	return &Detector{Window: 50, Threshold: 3.0}
}

// Detect implements ports.AnomalyDetector
func (d *Detector) Detect(ctx context.Context, series []float64, timestamps []time.Time) (workflow.AnomalyResult, error) {
	if err := ctx.Err(); err != nil {
		return workflow.AnomalyResult{}, err
	}
	if len(series) == 0 {
		return workflow.AnomalyResult{}, fmt.Errorf("empty series")
	}

	window := d.Window
	if window < 2 {
		window = 2
	}

	var anomalies []workflow.Anomaly
	maxZ := 0.0

	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		start := i - window
		if start < 0 {
			start = 0
		}
		m, sd := meanStd(series[start:i])
		if sd == 0 {
			continue
		}

		z := math.Abs(v-m) / sd
		if z > maxZ {
			maxZ = z
		}
		if z > d.Threshold {
			anomalies = append(anomalies, workflow.Anomaly{
				Index:       i,
				Value:       v,
				Score:       saturate(z / (2 * d.Threshold)),
				Description: fmt.Sprintf("rolling z-score %.2f exceeds %.2f", z, d.Threshold),
			})
		}
	}

	// Score blends the worst excursion with how widespread excursions are.
	density := float64(len(anomalies)) / float64(len(series))
	score := saturate(0.7*saturate(maxZ/(2*d.Threshold)) + 0.3*saturate(density*10))

	var recs []string
	if len(anomalies) > 0 {
		recs = append(recs, fmt.Sprintf("%d anomalous points detected by rolling z-score; review before comparing periods", len(anomalies)))
	}

	return workflow.AnomalyResult{
		Score:           score,
		Anomalies:       anomalies,
		Recommendations: recs,
	}, nil
}

func meanStd(values []float64) (float64, float64) {
	n := 0
	sum := 0.0
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sum += v
			n++
		}
	}
	if n < 2 {
		return 0, 0
	}
	m := sum / float64(n)

	sumSq := 0.0
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sumSq += (v - m) * (v - m)
		}
	}
	return m, math.Sqrt(sumSq / float64(n-1))
}

func saturate(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
