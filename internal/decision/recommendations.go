package decision

import (
	"perfgate/domain/verdict"
)

// statusAdvice is the per-verdict headline recommendation
var statusAdvice = map[verdict.Status]string{
	verdict.StatusFail:         "Block the rollout: multiple failure criteria triggered; investigate before promoting period N",
	verdict.StatusWarning:      "Proceed with caution: review the triggered criteria before promoting period N",
	verdict.StatusInconclusive: "Evidence is weak; collect more samples or rerun the comparison before deciding",
	verdict.StatusPass:         "No failure criteria triggered; period N is consistent with period N-1",
}

// ruleAdvice maps a triggered rule onto its remediation hint
var ruleAdvice = map[string]string{
	RuleHighZScore:   "Latest measurement deviates strongly from the pooled mean; check for a step change at the period boundary",
	RuleHighRSD:      "Relative standard deviation is high; the metric is too noisy for a tight comparison, consider longer stable windows",
	RuleAnomalyScore: "Anomaly model flagged this series; inspect the flagged regions before trusting aggregate statistics",
	RuleSignificance: "A statistically significant shift was detected between periods; confirm whether the change is expected",
	RuleEffectSize:   "Effect size exceeds the practical threshold; the shift is large enough to matter operationally",
}

// recommend produces the deterministic recommendation list for a verdict:
// the status headline first, then one hint per triggered named rule, in
// trigger order.
func recommend(status verdict.Status, triggered []string) []string {
	recs := []string{statusAdvice[status]}
	for _, name := range triggered {
		if advice, ok := ruleAdvice[name]; ok {
			recs = append(recs, advice)
		}
	}
	return recs
}
