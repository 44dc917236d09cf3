package compare

import (
	"math"
	"sort"

	"perfgate/domain/compare"
)

// TestOutcome is the raw result of one hypothesis test
type TestOutcome struct {
	Test      compare.TestType `json:"test"`
	Statistic float64          `json:"statistic"`
	PValue    float64          `json:"p_value"`
	DF        float64          `json:"degrees_of_freedom,omitempty"`
}

// studentTTest runs the two-sample t-test assuming equal variances
func (e *Engine) studentTTest(a, b []float64) TestOutcome {
	n1, n2 := float64(len(a)), float64(len(b))
	df := n1 + n2 - 2

	pooled := math.Sqrt(((n1-1)*sampleVariance(a) + (n2-1)*sampleVariance(b)) / df)
	se := pooled * math.Sqrt(1/n1+1/n2)
	diff := mean(b) - mean(a)

	if se == 0 {
		return degenerateOutcome(compare.TestStudentT, diff, df)
	}

	t := diff / se
	return TestOutcome{
		Test:      compare.TestStudentT,
		Statistic: t,
		PValue:    e.dist.TTestPValue(t, df),
		DF:        df,
	}
}

// welchTTest runs the two-sample t-test without the equal-variance
// assumption, with Welch-Satterthwaite degrees of freedom.
func (e *Engine) welchTTest(a, b []float64) TestOutcome {
	n1, n2 := float64(len(a)), float64(len(b))
	v1, v2 := sampleVariance(a), sampleVariance(b)

	se := math.Sqrt(v1/n1 + v2/n2)
	diff := mean(b) - mean(a)

	if se == 0 {
		return degenerateOutcome(compare.TestWelchT, diff, n1+n2-2)
	}

	t := diff / se
	df := math.Pow(v1/n1+v2/n2, 2) /
		(math.Pow(v1/n1, 2)/(n1-1) + math.Pow(v2/n2, 2)/(n2-1))

	return TestOutcome{
		Test:      compare.TestWelchT,
		Statistic: t,
		PValue:    e.dist.TTestPValue(t, df),
		DF:        df,
	}
}

// mannWhitneyU runs the rank-sum test. The reported statistic is the
// smaller of the two U values.
func (e *Engine) mannWhitneyU(a, b []float64) TestOutcome {
	ranks := rankAll(a, b)

	sumA := 0.0
	for _, r := range ranks[0] {
		sumA += r
	}

	n1, n2 := float64(len(a)), float64(len(b))
	uA := sumA - n1*(n1+1)/2
	uB := n1*n2 - uA
	u := math.Min(uA, uB)

	return TestOutcome{
		Test:      compare.TestMannWhitney,
		Statistic: u,
		PValue:    e.dist.MannWhitneyPValue(u, len(a), len(b)),
	}
}

// pairedTTest runs the dependent-samples t-test on per-index differences.
// Samples must be equal length; the caller validates.
func (e *Engine) pairedTTest(a, b []float64) TestOutcome {
	n := len(a)
	diffs := make([]float64, n)
	for i := range a {
		diffs[i] = b[i] - a[i]
	}

	df := float64(n - 1)
	sd := sampleStdDev(diffs)
	if sd == 0 {
		return degenerateOutcome(compare.TestPairedT, mean(diffs), df)
	}

	t := mean(diffs) / (sd / math.Sqrt(float64(n)))
	return TestOutcome{
		Test:      compare.TestPairedT,
		Statistic: t,
		PValue:    e.dist.TTestPValue(t, df),
		DF:        df,
	}
}

// wilcoxonSignedRank runs the paired nonparametric test on per-index
// differences; zero differences are discarded before ranking.
func (e *Engine) wilcoxonSignedRank(a, b []float64) TestOutcome {
	var diffs []float64
	for i := range a {
		if d := b[i] - a[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}

	if len(diffs) == 0 {
		return TestOutcome{Test: compare.TestWilcoxon, Statistic: 0, PValue: 1.0}
	}

	abs := make([]float64, len(diffs))
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks := rankAll(abs)[0]

	wPlus := 0.0
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		}
	}

	return TestOutcome{
		Test:      compare.TestWilcoxon,
		Statistic: wPlus,
		PValue:    e.dist.WilcoxonSignedRankPValue(wPlus, len(diffs)),
	}
}

// kruskalWallis runs the k-group rank test with tie correction
func (e *Engine) kruskalWallis(groups ...[]float64) TestOutcome {
	ranks := rankAll(groups...)

	n := 0
	for _, g := range groups {
		n += len(g)
	}
	if n < 2 {
		return TestOutcome{Test: compare.TestKruskalWallis, PValue: 1.0}
	}

	h := 0.0
	for gi, g := range groups {
		if len(g) == 0 {
			continue
		}
		sum := 0.0
		for _, r := range ranks[gi] {
			sum += r
		}
		h += sum * sum / float64(len(g))
	}

	nf := float64(n)
	h = 12.0/(nf*(nf+1))*h - 3*(nf+1)
	h /= tieCorrection(groups...)

	return TestOutcome{
		Test:      compare.TestKruskalWallis,
		Statistic: h,
		PValue:    e.dist.KruskalWallisPValue(h, len(groups), n),
		DF:        float64(len(groups) - 1),
	}
}

// oneWayANOVA runs the k-group F-test on means
func (e *Engine) oneWayANOVA(groups ...[]float64) TestOutcome {
	k := len(groups)
	n := 0
	grandSum := 0.0
	for _, g := range groups {
		n += len(g)
		for _, v := range g {
			grandSum += v
		}
	}
	if k < 2 || n <= k {
		return TestOutcome{Test: compare.TestOneWayANOVA, PValue: 1.0}
	}

	grandMean := grandSum / float64(n)

	ssBetween, ssWithin := 0.0, 0.0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		gm := mean(g)
		ssBetween += float64(len(g)) * (gm - grandMean) * (gm - grandMean)
		for _, v := range g {
			ssWithin += (v - gm) * (v - gm)
		}
	}

	if ssWithin == 0 {
		if ssBetween == 0 {
			return TestOutcome{Test: compare.TestOneWayANOVA, Statistic: 0, PValue: 1.0, DF: float64(k - 1)}
		}
		return TestOutcome{Test: compare.TestOneWayANOVA, Statistic: math.Inf(1), PValue: 0, DF: float64(k - 1)}
	}

	f := (ssBetween / float64(k-1)) / (ssWithin / float64(n-k))
	return TestOutcome{
		Test:      compare.TestOneWayANOVA,
		Statistic: f,
		PValue:    e.dist.FTestPValue(f, k-1, n-k),
		DF:        float64(k - 1),
	}
}

// kolmogorovSmirnov runs the two-sample KS test on empirical CDFs
func (e *Engine) kolmogorovSmirnov(a, b []float64) TestOutcome {
	sa := append([]float64(nil), a...)
	sb := append([]float64(nil), b...)
	sort.Float64s(sa)
	sort.Float64s(sb)

	n1, n2 := len(sa), len(sb)
	d := 0.0
	i, j := 0, 0
	for i < n1 && j < n2 {
		v := math.Min(sa[i], sb[j])
		for i < n1 && sa[i] <= v {
			i++
		}
		for j < n2 && sb[j] <= v {
			j++
		}
		gap := math.Abs(float64(i)/float64(n1) - float64(j)/float64(n2))
		if gap > d {
			d = gap
		}
	}

	return TestOutcome{
		Test:      compare.TestKolmogorovSmirnov,
		Statistic: d,
		PValue:    e.dist.KolmogorovSmirnovPValue(d, n1, n2),
	}
}

// degenerateOutcome handles zero-variance samples: identical means are a
// trivially non-significant comparison, diverging means a certain one.
func degenerateOutcome(test compare.TestType, meanDiff, df float64) TestOutcome {
	if meanDiff == 0 {
		return TestOutcome{Test: test, Statistic: 0, PValue: 1.0, DF: df}
	}
	return TestOutcome{Test: test, Statistic: math.Inf(int(math.Copysign(1, meanDiff))), PValue: 0, DF: df}
}
