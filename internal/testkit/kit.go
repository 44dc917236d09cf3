// Package testkit generates synthetic measurement series for tests and the
// CLI demo path. All generators take an explicit seed so fixtures are
// reproducible.
package testkit

import (
	"math"
	"math/rand"
	"time"

	"perfgate/domain/workflow"
)

// StableSeries produces n points around mean with the given noise standard
// deviation.
func StableSeries(seed int64, n int, mean, noise float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + rng.NormFloat64()*noise
	}
	return out
}

// ShiftedSeries produces a series whose level steps from baseMean to
// baseMean+shift at the changepoint index.
func ShiftedSeries(seed int64, n, changepoint int, baseMean, shift, noise float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		level := baseMean
		if i >= changepoint {
			level += shift
		}
		out[i] = level + rng.NormFloat64()*noise
	}
	return out
}

// SpikedSeries injects spikes of the given magnitude every interval points
// into an otherwise stable series.
func SpikedSeries(seed int64, n int, mean, noise, spike float64, interval int) []float64 {
	out := StableSeries(seed, n, mean, noise)
	for i := interval; i < n; i += interval {
		out[i] += spike
	}
	return out
}

// WithMissing replaces a fraction of points with NaN
func WithMissing(seed int64, series []float64, ratio float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := append([]float64(nil), series...)
	for i := range out {
		if rng.Float64() < ratio {
			out[i] = math.NaN()
		}
	}
	return out
}

// TwoPeriodSet builds an ordered N-1/N period set from two series
func TwoPeriodSet(baseline, current []float64) *workflow.PeriodSet {
	ps := workflow.NewPeriodSet()
	ps.Add("N-1", baseline)
	ps.Add("N", current)
	return ps
}

// MinuteTimestamps produces n timestamps spaced one minute apart starting
// from a fixed epoch.
func MinuteTimestamps(n int) []time.Time {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Minute)
	}
	return out
}
