package segment

import (
	"math"
	"sort"
	"time"

	"perfgate/domain/period"
)

// Segmenter partitions a raw numeric series into stable sub-windows using
// an exact change-point search under an L2 cost model with PELT-style
// pruning. Stateless and safe to share across goroutines.
type Segmenter struct{}

// NewSegmenter creates a segmenter
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// fallbackConfidence is assigned to the single whole-series segment
// returned for inputs too short to search.
const fallbackConfidence = 0.8

// Segment finds stable measurement windows in the series. Timestamps are
// optional; without them samples are assumed one minute apart for the
// duration gate. Never returns an error: empty or all-NaN input yields an
// empty list.
func (s *Segmenter) Segment(series []float64, timestamps []time.Time, cfg period.Config) []period.StablePeriod {
	values, index := compact(series)
	if len(values) == 0 {
		return nil
	}

	if cfg.MinSegmentLength < 2 {
		cfg.MinSegmentLength = 2
	}

	// Inputs shorter than two minimum segments cannot be split; return the
	// whole series as one window instead of running the search.
	if len(values) < 2*cfg.MinSegmentLength {
		p := describe(values, index, timestamps, 0, len(values))
		p.ConfidenceScore = fallbackConfidence
		return []period.StablePeriod{p}
	}

	boundaries := s.changePoints(values, cfg.Penalty, cfg.MinSegmentLength)

	var out []period.StablePeriod
	start := 0
	for _, end := range boundaries {
		p := describe(values, index, timestamps, start, end)
		if s.keep(p, cfg) {
			p.ConfidenceScore = confidence(p)
			out = append(out, p)
		}
		start = end
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ConfidenceScore > out[j].ConfidenceScore
	})
	return out
}

// changePoints runs the pruned exact search and returns segment end
// offsets (exclusive, in compacted coordinates), including the final n.
func (s *Segmenter) changePoints(values []float64, penalty float64, minLen int) []int {
	n := len(values)

	// Prefix sums make any segment cost O(1):
	// cost(i,j) = sum x^2 - (sum x)^2 / len.
	sum := make([]float64, n+1)
	sumSq := make([]float64, n+1)
	for i, v := range values {
		sum[i+1] = sum[i] + v
		sumSq[i+1] = sumSq[i] + v*v
	}
	segCost := func(i, j int) float64 {
		length := float64(j - i)
		d := sum[j] - sum[i]
		return sumSq[j] - sumSq[i] - d*d/length
	}

	optimal := make([]float64, n+1)
	prev := make([]int, n+1)
	for i := range optimal {
		optimal[i] = math.Inf(1)
	}
	optimal[0] = -penalty

	// Candidate last-change-point positions. A prefix whose minimal cost
	// already exceeds a later candidate's can never start an optimal
	// segment, so it is pruned; this keeps the search near-linear.
	candidates := []int{0}
	for t := minLen; t <= n; t++ {
		best := math.Inf(1)
		bestStart := 0
		for _, c := range candidates {
			if t-c < minLen {
				continue
			}
			total := optimal[c] + segCost(c, t) + penalty
			if total < best {
				best = total
				bestStart = c
			}
		}
		optimal[t] = best
		prev[t] = bestStart

		kept := candidates[:0]
		for _, c := range candidates {
			if t-c < minLen || optimal[c]+segCost(c, t) <= optimal[t] {
				kept = append(kept, c)
			}
		}
		candidates = append(kept, t)
	}

	var boundaries []int
	for t := n; t > 0; t = prev[t] {
		boundaries = append(boundaries, t)
	}
	sort.Ints(boundaries)
	return boundaries
}

// keep applies the three AND-combined retention gates
func (s *Segmenter) keep(p period.StablePeriod, cfg period.Config) bool {
	if p.DurationMinutes < cfg.MinDurationMinutes {
		return false
	}
	if p.Mean < cfg.MinActivityThreshold {
		return false
	}

	cv := math.Inf(1)
	if p.Mean != 0 {
		cv = p.StdDev / math.Abs(p.Mean)
	} else if p.StdDev == 0 {
		cv = 0
	}
	return cv <= 1-cfg.StabilityThreshold
}

// confidence blends segment length (saturating at 100 samples) with
// relative spread.
func confidence(p period.StablePeriod) float64 {
	lengthScore := math.Min(float64(p.Length())/100.0, 1.0)
	spreadScore := 1 - p.StdDev/math.Max(math.Abs(p.Mean), 1e-6)
	spreadScore = math.Max(0, math.Min(spreadScore, 1))
	return (lengthScore + spreadScore) / 2
}

// describe computes segment statistics over compacted offsets [start, end)
// and maps them back to original series indices.
func describe(values []float64, index []int, timestamps []time.Time, start, end int) period.StablePeriod {
	n := float64(end - start)
	sum, sumSq := 0.0, 0.0
	for _, v := range values[start:end] {
		sum += v
		sumSq += v * v
	}
	m := sum / n
	variance := math.Max(sumSq/n-m*m, 0)

	origStart := index[start]
	origEnd := index[end-1] + 1

	duration := float64(origEnd-origStart-1) // minutes, at assumed 1/min spacing
	if len(timestamps) >= origEnd && origEnd-origStart > 1 {
		duration = timestamps[origEnd-1].Sub(timestamps[origStart]).Minutes()
	}

	return period.StablePeriod{
		StartIndex:      origStart,
		EndIndex:        origEnd,
		Mean:            m,
		StdDev:          math.Sqrt(variance),
		DurationMinutes: duration,
	}
}

// compact drops non-finite values, keeping the original index of each
// retained sample.
func compact(series []float64) ([]float64, []int) {
	values := make([]float64, 0, len(series))
	index := make([]int, 0, len(series))
	for i, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
			index = append(index, i)
		}
	}
	return values, index
}
