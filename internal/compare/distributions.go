package compare

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the sampling distributions used
// by the comparison engine, so p-value calculation is not fragmented across
// individual tests.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue computes the two-tailed p-value for a t-statistic using
// Student's t-distribution.
func (d *Distributions) TTestPValue(tStatistic, degreesOfFreedom float64) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}
	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// TCritical returns the t quantile for the given degrees of freedom and
// cumulative probability (e.g. 1-alpha/2 for a two-sided interval).
func (d *Distributions) TCritical(degreesOfFreedom, p float64) float64 {
	if degreesOfFreedom <= 0 {
		return distuv.UnitNormal.Quantile(p)
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}.Quantile(p)
}

// FTestPValue computes the upper-tail p-value for an F-statistic
// (Levene, one-way ANOVA).
func (d *Distributions) FTestPValue(fStatistic float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(fStatistic) {
		return 1.0
	}

	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}
	return 1 - fDist.CDF(fStatistic)
}

// ChiSquarePValue computes the upper-tail p-value for a chi-square statistic
func (d *Distributions) ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return 1 - chiDist.CDF(chiSquare)
}

// NormalCDF computes the cumulative distribution function of the standard normal
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the standard normal quantile (inverse CDF)
func (d *Distributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// MannWhitneyPValue computes the two-tailed p-value for a Mann-Whitney U
// statistic via the normal approximation.
func (d *Distributions) MannWhitneyPValue(uStatistic float64, n1, n2 int) float64 {
	if n1 <= 0 || n2 <= 0 {
		return 1.0
	}

	meanU := float64(n1*n2) / 2.0
	stdU := math.Sqrt(float64(n1*n2*(n1+n2+1)) / 12.0)
	if stdU == 0 {
		return 1.0
	}

	z := (uStatistic - meanU) / stdU
	p := 2 * (1 - d.NormalCDF(math.Abs(z)))
	return math.Min(p, 1.0)
}

// KruskalWallisPValue computes the p-value for a Kruskal-Wallis H statistic
// using the chi-square approximation with k-1 degrees of freedom.
func (d *Distributions) KruskalWallisPValue(hStatistic float64, k, n int) float64 {
	if k < 2 || n < k {
		return 1.0
	}
	return d.ChiSquarePValue(hStatistic, k-1)
}

// WilcoxonSignedRankPValue computes the two-tailed p-value for a Wilcoxon
// signed-rank W+ statistic. Uses the normal approximation for n > 10 and
// the exact null distribution for small n.
func (d *Distributions) WilcoxonSignedRankPValue(wStatistic float64, n int) float64 {
	if n <= 0 {
		return 1.0
	}

	if n > 10 {
		meanW := float64(n*(n+1)) / 4.0
		stdW := math.Sqrt(float64(n*(n+1)*(2*n+1)) / 24.0)
		if stdW == 0 {
			return 1.0
		}

		z := (wStatistic - meanW) / stdW
		p := 2 * (1 - d.NormalCDF(math.Abs(z)))
		return math.Min(p, 1.0)
	}

	return d.wilcoxonExactTwoSidedPValue(wStatistic, n)
}

func (d *Distributions) wilcoxonExactTwoSidedPValue(wStatistic float64, n int) float64 {
	// W+ is integer-valued when there are no ties/zeros (caller preprocessed).
	wObs := int(math.Round(wStatistic))
	if wObs < 0 {
		wObs = 0
	}

	totalRankSum := n * (n + 1) / 2
	if wObs > totalRankSum {
		wObs = totalRankSum
	}

	// Two-sided p-value uses symmetry: P(W+ <= w) at w = min(W+, total-W+), doubled.
	w := wObs
	if totalRankSum-wObs < w {
		w = totalRankSum - wObs
	}

	// Dynamic programming for subset sums of ranks 1..n:
	// dp[s] = number of sign assignments producing W+ = s.
	dp := make([]uint64, totalRankSum+1)
	dp[0] = 1
	for r := 1; r <= n; r++ {
		for s := totalRankSum; s >= r; s-- {
			dp[s] += dp[s-r]
		}
	}

	totalOutcomes := uint64(1) << uint(n)
	var cum uint64
	for s := 0; s <= w; s++ {
		cum += dp[s]
	}

	pTwoSide := 2 * float64(cum) / float64(totalOutcomes)
	return math.Min(pTwoSide, 1.0)
}

// KolmogorovSmirnovPValue computes the asymptotic two-sample p-value for a
// KS D statistic via the Kolmogorov distribution series.
func (d *Distributions) KolmogorovSmirnovPValue(dStatistic float64, n1, n2 int) float64 {
	if n1 <= 0 || n2 <= 0 || dStatistic <= 0 {
		return 1.0
	}

	ne := float64(n1*n2) / float64(n1+n2)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * dStatistic

	// Q_KS(lambda) = 2 * sum_{k=1..inf} (-1)^{k-1} exp(-2 k^2 lambda^2)
	sum := 0.0
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(-2*float64(k*k)*lambda*lambda)
		sum += term
		sign = -sign
		if math.Abs(term) < 1e-10 {
			break
		}
	}

	p := 2 * sum
	return math.Max(0, math.Min(p, 1.0))
}
