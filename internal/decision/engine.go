package decision

import (
	"perfgate/domain/compare"
	"perfgate/domain/verdict"
	"perfgate/domain/workflow"
	"perfgate/internal/errors"
)

// Engine turns heterogeneous evidence (statistical results, the external
// anomaly score, raw period data) into one verdict via weighted rules.
// Default rules are a pure function of the threshold config; custom rules
// live in a separate explicit ordered list owned by the instance.
type Engine struct {
	cfg          verdict.ThresholdConfig
	defaultRules []verdict.Rule
	customRules  []verdict.Rule
}

// NewEngine creates a decision engine with the default rule set derived
// from cfg.
func NewEngine(cfg verdict.ThresholdConfig) *Engine {
	return &Engine{
		cfg:          cfg,
		defaultRules: BuildDefaultRules(cfg),
	}
}

// Rules returns the ordered rule list: defaults first, then custom rules
// in registration order.
func (e *Engine) Rules() []verdict.Rule {
	out := make([]verdict.Rule, 0, len(e.defaultRules)+len(e.customRules))
	out = append(out, e.defaultRules...)
	out = append(out, e.customRules...)
	return out
}

// AddRule registers a custom rule. Unknown operators or threshold types
// surface an INVALID_ARGUMENT error at registration time, not at
// evaluation time.
func (e *Engine) AddRule(rule verdict.Rule) error {
	if rule.Name == "" {
		return errors.New(errors.CodeInvalidArgument, "rule name cannot be empty")
	}
	if !rule.Op.Valid() {
		return errors.Newf(errors.CodeInvalidArgument, "rule %s: unknown operator %q", rule.Name, rule.Op)
	}
	if !KnownThreshold(rule.Feature) {
		return errors.Newf(errors.CodeInvalidArgument, "rule %s: unknown threshold type %q", rule.Name, rule.Feature)
	}

	e.customRules = append(e.customRules, rule)
	return nil
}

// RemoveRule deletes the first rule with the given name, custom rules
// first. Removed default rules come back on the next UpdateConfig, since
// defaults are always rebuilt wholesale from the config.
func (e *Engine) RemoveRule(name string) bool {
	for i, r := range e.customRules {
		if r.Name == name {
			e.customRules = append(e.customRules[:i], e.customRules[i+1:]...)
			return true
		}
	}
	for i, r := range e.defaultRules {
		if r.Name == name {
			e.defaultRules = append(e.defaultRules[:i], e.defaultRules[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateConfig swaps the threshold config and rebuilds the default rules
// from it. Custom rules are preserved untouched.
func (e *Engine) UpdateConfig(cfg verdict.ThresholdConfig) {
	e.cfg = cfg
	e.defaultRules = BuildDefaultRules(cfg)
}

// Evaluate derives the scalar features once, applies every enabled rule in
// order, and maps the weighted fraction of triggered rules onto the final
// verdict. Missing optional inputs are neutral, never fatal.
func (e *Engine) Evaluate(statistical *compare.ComprehensiveAnalysisResult, anomaly *workflow.AnomalyResult, raw *workflow.PeriodSet) verdict.DecisionResult {
	ctx := BuildContext(statistical, anomaly, raw)
	rules := e.Rules()

	var (
		triggered       []string
		untriggered     []string
		triggeredWeight float64
		enabledWeight   float64
		evaluated       int
	)

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		evaluated++
		enabledWeight += rule.Weight

		if evaluateRule(rule, ctx) {
			triggered = append(triggered, rule.Name)
			triggeredWeight += rule.Weight
		} else {
			untriggered = append(untriggered, rule.Name)
		}
	}

	failScore := 0.0
	if enabledWeight > 0 {
		failScore = triggeredWeight / enabledWeight
	}

	confidence := 0.0
	if len(rules) > 0 {
		confidence = float64(evaluated) / float64(len(rules))
	}

	status := verdict.StatusForScore(failScore)

	return verdict.DecisionResult{
		Status:           status,
		FailScore:        failScore,
		Confidence:       confidence,
		TriggeredRules:   triggered,
		UntriggeredRules: untriggered,
		Recommendations:  recommend(status, triggered),
	}
}
