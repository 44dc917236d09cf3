package verdict

// Status represents the final gate verdict for an analysis run
type Status string

const (
	StatusPass         Status = "PASS"
	StatusFail         Status = "FAIL"
	StatusWarning      Status = "WARNING"
	StatusInconclusive Status = "INCONCLUSIVE"
)

// Fail-score bands. First match wins, checked high to low.
const (
	FailBand         = 0.7
	WarningBand      = 0.4
	InconclusiveBand = 0.1
)

// StatusForScore maps a fail score onto its verdict band. Pure function:
// the invariant status == StatusForScore(failScore) always holds.
func StatusForScore(failScore float64) Status {
	switch {
	case failScore >= FailBand:
		return StatusFail
	case failScore >= WarningBand:
		return StatusWarning
	case failScore >= InconclusiveBand:
		return StatusInconclusive
	default:
		return StatusPass
	}
}

// ThresholdType is the closed set of scalar features a rule can inspect
type ThresholdType string

const (
	ThresholdZScore       ThresholdType = "z_score"
	ThresholdRSD          ThresholdType = "rsd"
	ThresholdAnomalyScore ThresholdType = "anomaly_score"
	ThresholdPValue       ThresholdType = "p_value"
	ThresholdEffectSize   ThresholdType = "effect_size"
)

// Operator is the closed set of rule comparison operators
type Operator string

const (
	OpGreaterThan  Operator = "gt"
	OpLessThan     Operator = "lt"
	OpGreaterEqual Operator = "ge"
	OpLessEqual    Operator = "le"
)

// Valid reports whether the operator is a known comparison
func (op Operator) Valid() bool {
	switch op {
	case OpGreaterThan, OpLessThan, OpGreaterEqual, OpLessEqual:
		return true
	}
	return false
}

// Rule is one weighted criterion of the decision engine. Rules are value
// objects: the engine never mutates a registered rule in place.
type Rule struct {
	Name      string        `json:"name"`
	Feature   ThresholdType `json:"feature"`
	Op        Operator      `json:"operator"`
	Threshold float64       `json:"threshold"`
	Weight    float64       `json:"weight"`
	Enabled   bool          `json:"enabled"`
}

// ThresholdConfig carries the tunable knobs of the decision engine
type ThresholdConfig struct {
	ZScore          float64 `json:"z_score_threshold"`
	RSD             float64 `json:"rsd_threshold"`
	AnomalyScore    float64 `json:"anomaly_score_threshold"`
	Significance    float64 `json:"significance_threshold"`
	EffectSize      float64 `json:"effect_size_threshold"`
	MinSampleSize   int     `json:"min_sample_size"`
	MaxMissingRatio float64 `json:"max_missing_ratio"`
}

// DefaultThresholdConfig returns the standard gate thresholds
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		ZScore:          2.0,
		RSD:             0.15,
		AnomalyScore:    0.8,
		Significance:    0.05,
		EffectSize:      0.5,
		MinSampleSize:   10,
		MaxMissingRatio: 0.3,
	}
}

// DecisionResult is the final verdict produced by one evaluation call
type DecisionResult struct {
	Status           Status   `json:"status"`
	FailScore        float64  `json:"fail_score"` // in [0,1]
	Confidence       float64  `json:"confidence"` // rule coverage, in [0,1]
	TriggeredRules   []string `json:"triggered_rules"`
	UntriggeredRules []string `json:"untriggered_rules"`
	Recommendations  []string `json:"recommendations"`
}
