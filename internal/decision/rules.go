package decision

import (
	"perfgate/domain/verdict"
)

// Default rule names. Recommendations key off these.
const (
	RuleHighZScore   = "High Z-Score"
	RuleHighRSD      = "High RSD"
	RuleAnomalyScore = "Anomaly Score"
	RuleSignificance = "Statistical Significance"
	RuleEffectSize   = "Effect Size"
)

// BuildDefaultRules derives the default rule set from a threshold config.
// Pure function: same config always yields the same rules, and the engine
// recomputes them wholesale on config change instead of mutating in place.
//
// The Statistical Significance rule intentionally flags any significant
// change as failure-contributing evidence, independent of direction or
// magnitude: an unexplained shift is penalized even when the z-score and
// effect-size rules stay quiet.
func BuildDefaultRules(cfg verdict.ThresholdConfig) []verdict.Rule {
	return []verdict.Rule{
		{
			Name:      RuleHighZScore,
			Feature:   verdict.ThresholdZScore,
			Op:        verdict.OpGreaterThan,
			Threshold: cfg.ZScore,
			Weight:    1.0,
			Enabled:   true,
		},
		{
			Name:      RuleHighRSD,
			Feature:   verdict.ThresholdRSD,
			Op:        verdict.OpGreaterThan,
			Threshold: cfg.RSD,
			Weight:    1.0,
			Enabled:   true,
		},
		{
			Name:      RuleAnomalyScore,
			Feature:   verdict.ThresholdAnomalyScore,
			Op:        verdict.OpGreaterThan,
			Threshold: cfg.AnomalyScore,
			Weight:    1.5,
			Enabled:   true,
		},
		{
			Name:      RuleSignificance,
			Feature:   verdict.ThresholdPValue,
			Op:        verdict.OpLessThan,
			Threshold: cfg.Significance,
			Weight:    0.8,
			Enabled:   true,
		},
		{
			Name:      RuleEffectSize,
			Feature:   verdict.ThresholdEffectSize,
			Op:        verdict.OpGreaterThan,
			Threshold: cfg.EffectSize,
			Weight:    0.7,
			Enabled:   true,
		},
	}
}

// evaluateRule applies the rule's operator to the extracted feature
func evaluateRule(rule verdict.Rule, ctx EvaluationContext) bool {
	value := extractors[rule.Feature](ctx)
	switch rule.Op {
	case verdict.OpGreaterThan:
		return value > rule.Threshold
	case verdict.OpLessThan:
		return value < rule.Threshold
	case verdict.OpGreaterEqual:
		return value >= rule.Threshold
	case verdict.OpLessEqual:
		return value <= rule.Threshold
	default:
		// Operators are validated at registration; unreachable for
		// registered rules.
		return false
	}
}
