package compare

import (
	"fmt"
	"math"

	"perfgate/domain/compare"
)

// computeEffectSizes produces all three effect-size estimates for the
// baseline (N-1) vs current (N) samples, regardless of which hypothesis
// test was run.
func (e *Engine) computeEffectSizes(baseline, current []float64, cfg compare.Config) map[compare.EffectSizeKind]compare.EffectSize {
	n1 := len(baseline)
	n2 := len(current)

	d := cohensD(baseline, current)
	df := float64(n1 + n2 - 2)

	// Hedges' small-sample bias correction shrinks d toward zero.
	correction := 1.0
	if 4*df-1 > 0 {
		correction = 1.0 - 3.0/(4.0*df-1.0)
	}
	g := d * correction

	seD := effectStandardError(d, n1, n2)
	seG := seD * correction
	tCrit := e.dist.TCritical(df, 1.0-cfg.Alpha/2.0)

	delta := cliffsDelta(baseline, current)
	deltaSE := cliffsDeltaStandardError(delta, n1, n2)
	zCrit := e.dist.NormalQuantile(1.0 - cfg.Alpha/2.0)

	out := map[compare.EffectSizeKind]compare.EffectSize{
		compare.EffectCohenD: {
			Kind:      compare.EffectCohenD,
			Value:     d,
			Magnitude: standardizedMagnitude(d, cfg.Cutoffs),
			CILower:   d - tCrit*seD,
			CIUpper:   d + tCrit*seD,
		},
		compare.EffectHedgesG: {
			Kind:      compare.EffectHedgesG,
			Value:     g,
			Magnitude: standardizedMagnitude(g, cfg.Cutoffs),
			CILower:   g - tCrit*seG,
			CIUpper:   g + tCrit*seG,
		},
		compare.EffectCliffsDelta: {
			Kind:      compare.EffectCliffsDelta,
			Value:     delta,
			Magnitude: cliffsMagnitude(delta),
			CILower:   math.Max(-1, delta-zCrit*deltaSE),
			CIUpper:   math.Min(1, delta+zCrit*deltaSE),
		},
	}

	for kind, es := range out {
		es.Interpretation = interpretEffect(es)
		out[kind] = es
	}
	return out
}

// cohensD computes the standardized mean difference current-baseline over
// the pooled standard deviation from both samples' unbiased variances.
func cohensD(baseline, current []float64) float64 {
	n1 := float64(len(baseline))
	n2 := float64(len(current))
	if n1 < 2 || n2 < 2 {
		return 0
	}

	pooled := math.Sqrt(((n1-1)*sampleVariance(baseline) + (n2-1)*sampleVariance(current)) / (n1 + n2 - 2))
	if pooled == 0 {
		return 0
	}

	return (mean(current) - mean(baseline)) / pooled
}

// effectStandardError is the asymptotic standard error of a standardized
// mean difference.
func effectStandardError(effect float64, n1, n2 int) float64 {
	if n1 == 0 || n2 == 0 {
		return 0
	}
	fn1, fn2 := float64(n1), float64(n2)
	return math.Sqrt((fn1+fn2)/(fn1*fn2) + effect*effect/(2*(fn1+fn2)))
}

// cliffsDelta computes (wins - losses) / (n1*n2) over all pairwise
// comparisons; ties contribute to neither count.
func cliffsDelta(baseline, current []float64) float64 {
	if len(baseline) == 0 || len(current) == 0 {
		return 0
	}

	wins, losses := 0, 0
	for _, c := range current {
		for _, b := range baseline {
			switch {
			case c > b:
				wins++
			case c < b:
				losses++
			}
		}
	}

	return float64(wins-losses) / float64(len(baseline)*len(current))
}

// cliffsDeltaStandardError uses Cliff's conservative asymptotic variance
// estimate for the delta statistic.
func cliffsDeltaStandardError(delta float64, n1, n2 int) float64 {
	if n1 == 0 || n2 == 0 {
		return 0
	}
	return math.Sqrt((1 - delta*delta) * float64(n1+n2+1) / (3.0 * float64(n1) * float64(n2)))
}

// standardizedMagnitude buckets |d| or |g| by the configured cutoffs
func standardizedMagnitude(value float64, cutoffs compare.EffectSizeCutoffs) compare.Magnitude {
	abs := math.Abs(value)
	switch {
	case abs < cutoffs.Small:
		return compare.MagnitudeNegligible
	case abs < cutoffs.Medium:
		return compare.MagnitudeSmall
	case abs < cutoffs.Large:
		return compare.MagnitudeMedium
	default:
		return compare.MagnitudeLarge
	}
}

// cliffsMagnitude uses the conventional Cliff's Delta thresholds
func cliffsMagnitude(delta float64) compare.Magnitude {
	abs := math.Abs(delta)
	switch {
	case abs < 0.147:
		return compare.MagnitudeSmall
	case abs < 0.33:
		return compare.MagnitudeMedium
	default:
		return compare.MagnitudeLarge
	}
}

func interpretEffect(es compare.EffectSize) string {
	direction := "increase"
	if es.Value < 0 {
		direction = "decrease"
	} else if es.Value == 0 {
		return fmt.Sprintf("no %s effect (%.3f)", es.Kind, es.Value)
	}
	return fmt.Sprintf("%s %s from N-1 to N (%s=%.3f)", es.Magnitude, direction, es.Kind, es.Value)
}
