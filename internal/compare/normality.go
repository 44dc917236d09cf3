package compare

import (
	"math"
)

// Shapiro-Wilk-style testing is only meaningful in this sample range;
// outside it the sample is treated as non-normal and the engine falls back
// to non-parametric tests.
const (
	normalityMinN = 3
	normalityMaxN = 5000
)

// NormalityResult is the outcome of a per-sample distribution check
type NormalityResult struct {
	IsNormal bool
	PValue   float64
}

// testNormality performs a Shapiro-Wilk-style normality check built on the
// joint skewness/kurtosis statistic. Samples outside [3, 5000] points are
// reported non-normal with p = 0.
func (e *Engine) testNormality(data []float64, threshold float64) NormalityResult {
	if len(data) < normalityMinN || len(data) > normalityMaxN {
		return NormalityResult{IsNormal: false, PValue: 0}
	}

	m := mean(data)
	sd := sampleStdDev(data)
	if sd == 0 {
		// A constant sample is degenerate but trivially symmetric; treat as
		// normal so the parametric path handles the zero-variance case.
		return NormalityResult{IsNormal: true, PValue: 1.0}
	}

	skewness := calculateSkewness(data, m, sd)
	kurtosis := calculateKurtosis(data, m, sd)

	// Combined skewness/kurtosis statistic against a chi-square null.
	testStat := math.Abs(skewness) + math.Abs(kurtosis-3)/2
	pValue := e.dist.ChiSquarePValue(testStat*testStat, 2)

	return NormalityResult{IsNormal: pValue > threshold, PValue: pValue}
}

// calculateSkewness computes sample skewness using the adjusted
// Fisher-Pearson coefficient.
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubed := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
	}

	skewness := sumCubed / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// calculateKurtosis computes sample kurtosis (not excess)
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 3
	}

	n := float64(len(data))
	sumFourth := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumFourth += d * d * d * d
	}

	kurtosis := sumFourth / n
	excess := kurtosis - 3

	if n > 3 {
		correction := (n - 1) / ((n - 2) * (n - 3))
		excess = excess*correction + 6/(n+1)
	}

	return excess + 3
}

// HomogeneityResult is the outcome of a Levene-style equal-variance check
type HomogeneityResult struct {
	EqualVariance bool
	Statistic     float64
	PValue        float64
}

// testHomogeneity runs Levene's test on absolute deviations from group
// means. Only consulted when both samples pass the normality check.
func (e *Engine) testHomogeneity(a, b []float64, threshold float64) HomogeneityResult {
	if len(a) < 2 || len(b) < 2 {
		return HomogeneityResult{EqualVariance: true, PValue: 1.0}
	}

	za := absDeviations(a, mean(a))
	zb := absDeviations(b, mean(b))

	na, nb := float64(len(za)), float64(len(zb))
	n := na + nb
	const k = 2

	meanZA, meanZB := mean(za), mean(zb)
	grand := (na*meanZA + nb*meanZB) / n

	between := na*(meanZA-grand)*(meanZA-grand) + nb*(meanZB-grand)*(meanZB-grand)

	within := 0.0
	for _, z := range za {
		within += (z - meanZA) * (z - meanZA)
	}
	for _, z := range zb {
		within += (z - meanZB) * (z - meanZB)
	}

	if within == 0 {
		// No spread in the deviations at all; variances are as equal as
		// they can be.
		return HomogeneityResult{EqualVariance: true, PValue: 1.0}
	}

	w := ((n - k) / (k - 1)) * (between / within)
	p := e.dist.FTestPValue(w, k-1, int(n)-k)

	return HomogeneityResult{EqualVariance: p > threshold, Statistic: w, PValue: p}
}

func absDeviations(data []float64, center float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = math.Abs(v - center)
	}
	return out
}
