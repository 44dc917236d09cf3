package compare

import (
	"fmt"
	"math"

	"perfgate/domain/compare"
	"perfgate/domain/core"
	"perfgate/internal/errors"
)

// Engine compares two numeric samples for one metric: distributional
// assumption checks drive test choice, all three effect sizes are always
// computed, and a clinical-significance judgment interprets the result.
// Engines are stateless and safe to share across goroutines.
type Engine struct {
	dist *Distributions
}

// NewEngine creates a comparison engine
func NewEngine() *Engine {
	return &Engine{dist: NewDistributions()}
}

// Compare runs the automatic comparison path between the N-1 (baseline) and
// N (current) samples. Returns a DATA_QUALITY error when either sample has
// fewer than cfg.MinSampleSize valid points or a missing-value ratio above
// cfg.MaxMissingRatio; that error is recoverable and the caller decides
// whether to skip the metric or abort.
func (e *Engine) Compare(metric core.MetricKey, baseline, current []float64, cfg compare.Config) (compare.MetricComparisonResult, error) {
	cleanBase, err := e.validateSample(metric, "N-1", baseline, cfg)
	if err != nil {
		return compare.MetricComparisonResult{}, err
	}
	cleanCur, err := e.validateSample(metric, "N", current, cfg)
	if err != nil {
		return compare.MetricComparisonResult{}, err
	}

	normBase := e.testNormality(cleanBase, cfg.NormalityThreshold)
	normCur := e.testNormality(cleanCur, cfg.NormalityThreshold)

	var outcome TestOutcome
	if normBase.IsNormal && normCur.IsNormal {
		homogeneity := e.testHomogeneity(cleanBase, cleanCur, cfg.HomogeneityThreshold)
		if homogeneity.EqualVariance {
			outcome = e.studentTTest(cleanBase, cleanCur)
		} else {
			outcome = e.welchTTest(cleanBase, cleanCur)
		}
	} else {
		outcome = e.mannWhitneyU(cleanBase, cleanCur)
	}

	effects := e.computeEffectSizes(cleanBase, cleanCur, cfg)
	isSignificant := outcome.PValue < cfg.Alpha
	clinical := e.assessClinicalSignificance(cleanBase, cleanCur, isSignificant, outcome.PValue, effects)

	result := compare.MetricComparisonResult{
		Metric:        metric,
		Test:          outcome.Test,
		Statistic:     outcome.Statistic,
		PValue:        outcome.PValue,
		IsSignificant: isSignificant,
		Alpha:         cfg.Alpha,
		BaselineN:     len(cleanBase),
		CurrentN:      len(cleanCur),
		BaselineMean:  mean(cleanBase),
		CurrentMean:   mean(cleanCur),
		EffectSizes:   effects,
		Clinical:      clinical,
	}
	result.Summary = summarize(result)

	return result, nil
}

func (e *Engine) validateSample(metric core.MetricKey, periodLabel string, sample []float64, cfg compare.Config) ([]float64, error) {
	clean, missing := cleanSample(sample)

	if missing > cfg.MaxMissingRatio {
		return nil, errors.Newf(errors.CodeDataQuality,
			"metric %s period %s: missing-value ratio %.2f exceeds %.2f",
			metric, periodLabel, missing, cfg.MaxMissingRatio)
	}
	if len(clean) < cfg.MinSampleSize {
		return nil, errors.Newf(errors.CodeDataQuality,
			"metric %s period %s: %d valid points, need at least %d",
			metric, periodLabel, len(clean), cfg.MinSampleSize)
	}

	return clean, nil
}

// assessClinicalSignificance computes the rich practical-meaning judgment:
// practical importance from the raw mean shift, an aggregate confidence
// blending significance, effect magnitude and practical importance, and a
// bucketed risk level.
func (e *Engine) assessClinicalSignificance(baseline, current []float64, isSignificant bool, pValue float64, effects map[compare.EffectSizeKind]compare.EffectSize) compare.ClinicalAssessment {
	meanDiff := math.Abs(mean(current) - mean(baseline))

	loB, hiB := minMax(baseline)
	loC, hiC := minMax(current)
	combinedRange := math.Max(hiB, hiC) - math.Min(loB, loC)

	rangeComponent := 0.0
	if combinedRange > 0 {
		rangeComponent = meanDiff / combinedRange
	}

	n1, n2 := float64(len(baseline)), float64(len(current))
	pooled := 0.0
	if n1+n2 > 2 {
		pooled = math.Sqrt(((n1-1)*sampleVariance(baseline) + (n2-1)*sampleVariance(current)) / (n1 + n2 - 2))
	}
	sdComponent := 0.0
	if pooled > 0 {
		sdComponent = math.Min(meanDiff/pooled/2.0, 1.0)
	}

	practical := 0.4*rangeComponent + 0.6*sdComponent

	avgMagnitude := 0.0
	if len(effects) > 0 {
		for _, es := range effects {
			avgMagnitude += es.Magnitude.Score()
		}
		avgMagnitude /= float64(len(effects))
	}

	sigComponent := 0.0
	if isSignificant {
		sigComponent = 1.0
	}
	confidence := 0.3*sigComponent + 0.4*avgMagnitude + 0.3*practical

	return compare.ClinicalAssessment{
		IsClinicallySignificant: confidence >= 0.6,
		PracticalImportance:     practical,
		Confidence:              confidence,
		RiskLevel:               riskLevel(pValue, avgMagnitude),
	}
}

// riskLevel buckets the operational risk from the p-value and the average
// effect magnitude score.
func riskLevel(pValue, avgMagnitude float64) compare.RiskLevel {
	switch {
	case pValue < 0.01 && avgMagnitude >= 2.0/3.0:
		return compare.RiskHigh
	case pValue < 0.05 && avgMagnitude >= 1.0/3.0:
		return compare.RiskMedium
	default:
		return compare.RiskLow
	}
}

func summarize(r compare.MetricComparisonResult) string {
	d := r.EffectSizes[compare.EffectCohenD]
	if !r.IsSignificant {
		return fmt.Sprintf("%s: no significant change between N-1 and N (%s, p=%.3f, d=%.3f, n=%d/%d)",
			r.Metric, r.Test, r.PValue, d.Value, r.BaselineN, r.CurrentN)
	}

	direction := "increased"
	if r.CurrentMean < r.BaselineMean {
		direction = "decreased"
	}
	clinical := "not clinically significant"
	if r.Clinical.IsClinicallySignificant {
		clinical = "clinically significant"
	}
	return fmt.Sprintf("%s: %s %s change, mean %s %.3f -> %.3f (%s, p=%.3f, d=%.3f, risk=%s)",
		r.Metric, d.Magnitude, clinical, direction, r.BaselineMean, r.CurrentMean,
		r.Test, r.PValue, d.Value, r.Clinical.RiskLevel)
}

// MetricSamples pairs one metric's N-1 and N samples for batch comparison
type MetricSamples struct {
	Metric   core.MetricKey
	Baseline []float64
	Current  []float64
}

// CompareAll folds per-metric comparisons into one aggregate result.
// Metrics failing data-quality checks are skipped and recorded, not fatal.
func (e *Engine) CompareAll(items []MetricSamples, cfg compare.Config) compare.ComprehensiveAnalysisResult {
	agg := compare.ComprehensiveAnalysisResult{TotalMetrics: len(items)}

	confidenceSum := 0.0
	for _, item := range items {
		result, err := e.Compare(item.Metric, item.Baseline, item.Current, cfg)
		if err != nil {
			agg.SkippedMetrics = append(agg.SkippedMetrics, item.Metric.String())
			continue
		}

		agg.Results = append(agg.Results, result)
		confidenceSum += result.Clinical.Confidence
		if result.IsSignificant {
			agg.SignificantCount++
		}
		if result.Clinical.IsClinicallySignificant {
			agg.ClinicalCount++
		}
	}

	if len(agg.Results) > 0 {
		agg.AggregateConfidence = confidenceSum / float64(len(agg.Results))
	}
	agg.OverallAssessment = assessOverall(agg)

	return agg
}

func assessOverall(agg compare.ComprehensiveAnalysisResult) string {
	analyzed := len(agg.Results)
	if analyzed == 0 {
		return "no metrics could be analyzed"
	}

	switch {
	case agg.ClinicalCount > 0:
		return fmt.Sprintf("%d of %d metrics show clinically significant change (%d statistically significant)",
			agg.ClinicalCount, analyzed, agg.SignificantCount)
	case agg.SignificantCount > 0:
		return fmt.Sprintf("%d of %d metrics show statistically significant change of limited practical magnitude",
			agg.SignificantCount, analyzed)
	default:
		return fmt.Sprintf("no significant change across %d analyzed metrics", analyzed)
	}
}
