package compare

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// cleanSample drops NaN/Inf entries, returning the valid points and the
// ratio of dropped entries.
func cleanSample(data []float64) (valid []float64, missingRatio float64) {
	if len(data) == 0 {
		return nil, 0
	}

	valid = make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			valid = append(valid, v)
		}
	}

	missingRatio = float64(len(data)-len(valid)) / float64(len(data))
	return valid, missingRatio
}

func mean(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

// sampleVariance is the unbiased (n-1) variance
func sampleVariance(data []float64) float64 {
	v, err := stats.SampleVariance(data)
	if err != nil {
		return 0
	}
	return v
}

func sampleStdDev(data []float64) float64 {
	return math.Sqrt(sampleVariance(data))
}

func minMax(data []float64) (float64, float64) {
	lo, err := stats.Min(data)
	if err != nil {
		return 0, 0
	}
	hi, _ := stats.Max(data)
	return lo, hi
}

// rankAll assigns average ranks (1-based, ties share the mean rank) to the
// concatenation of all groups and returns the per-group rank slices.
func rankAll(groups ...[]float64) [][]float64 {
	type tagged struct {
		value float64
		group int
		pos   int
	}

	total := 0
	for _, g := range groups {
		total += len(g)
	}

	all := make([]tagged, 0, total)
	for gi, g := range groups {
		for pi, v := range g {
			all = append(all, tagged{value: v, group: gi, pos: pi})
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].value < all[j].value })

	ranks := make([]float64, total)
	for i := 0; i < total; {
		j := i
		for j < total && all[j].value == all[i].value {
			j++
		}
		// Average rank over the tie run [i, j)
		avg := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		i = j
	}

	out := make([][]float64, len(groups))
	for gi, g := range groups {
		out[gi] = make([]float64, len(g))
	}
	for i, t := range all {
		out[t.group][t.pos] = ranks[i]
	}
	return out
}

// tieCorrection computes the rank tie-correction factor used by
// Kruskal-Wallis: 1 - sum(t^3 - t)/(n^3 - n).
func tieCorrection(groups ...[]float64) float64 {
	counts := make(map[float64]int)
	n := 0
	for _, g := range groups {
		for _, v := range g {
			counts[v]++
			n++
		}
	}
	if n < 2 {
		return 1
	}

	sum := 0.0
	for _, t := range counts {
		if t > 1 {
			tf := float64(t)
			sum += tf*tf*tf - tf
		}
	}

	nf := float64(n)
	correction := 1 - sum/(nf*nf*nf-nf)
	if correction <= 0 {
		return 1
	}
	return correction
}
