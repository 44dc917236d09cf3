package decision

import (
	"math"

	"perfgate/domain/compare"
	"perfgate/domain/verdict"
	"perfgate/domain/workflow"
)

// EvaluationContext holds the scalar features derived once per evaluation
// call. Missing optional inputs become neutral/zero values, never errors.
type EvaluationContext struct {
	RSD          float64 `json:"rsd"`
	ZScore       float64 `json:"z_score"`
	AnomalyScore float64 `json:"anomaly_score"`
	PValue       float64 `json:"p_value"`
	EffectSize   float64 `json:"effect_size"`
}

// extractors maps each threshold type onto its feature. The closed table
// replaces string dispatch scattered across call sites: a rule's feature is
// resolved here and nowhere else.
var extractors = map[verdict.ThresholdType]func(EvaluationContext) float64{
	verdict.ThresholdRSD:          func(c EvaluationContext) float64 { return c.RSD },
	verdict.ThresholdZScore:       func(c EvaluationContext) float64 { return c.ZScore },
	verdict.ThresholdAnomalyScore: func(c EvaluationContext) float64 { return c.AnomalyScore },
	verdict.ThresholdPValue:       func(c EvaluationContext) float64 { return c.PValue },
	verdict.ThresholdEffectSize:   func(c EvaluationContext) float64 { return c.EffectSize },
}

// KnownThreshold reports whether t has an extractor
func KnownThreshold(t verdict.ThresholdType) bool {
	_, ok := extractors[t]
	return ok
}

// BuildContext derives the evaluation features from the statistical
// results, the anomaly collaborator output and the raw period data. Any of
// the three may be nil/empty.
func BuildContext(statistical *compare.ComprehensiveAnalysisResult, anomaly *workflow.AnomalyResult, raw *workflow.PeriodSet) EvaluationContext {
	ctx := EvaluationContext{PValue: 1.0}

	if raw != nil {
		// Missing values are legal in raw periods (blank cells arrive as
		// NaN); drop them here or a single NaN poisons both features and
		// their rules never trigger.
		pooled := finiteValues(raw.Pooled())
		ctx.RSD = relativeStdDev(pooled)
		ctx.ZScore = lastPointZScore(pooled)
	}
	if anomaly != nil {
		ctx.AnomalyScore = anomaly.Score
	}
	if statistical != nil {
		ctx.PValue = statistical.MinPValue()
		ctx.EffectSize = statistical.MaxAbsEffect()
	}

	return ctx
}

// finiteValues drops NaN/Inf entries
func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// relativeStdDev is std/|mean| over the pooled values, 0 for fewer than 2
// points or a zero mean.
func relativeStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m, sd := meanStd(values)
	if m == 0 {
		return 0
	}
	return sd / math.Abs(m)
}

// lastPointZScore measures how far the latest pooled value sits from the
// pooled mean, 0 when the spread is zero.
func lastPointZScore(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m, sd := meanStd(values)
	if sd == 0 {
		return 0
	}
	return (values[len(values)-1] - m) / sd
}

func meanStd(values []float64) (float64, float64) {
	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := sum / n

	sumSq := 0.0
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return m, math.Sqrt(sumSq / (n - 1))
}
