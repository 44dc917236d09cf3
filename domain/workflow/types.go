package workflow

import (
	"time"

	"perfgate/domain/compare"
	"perfgate/domain/core"
	"perfgate/domain/period"
	"perfgate/domain/verdict"
)

// StepName identifies one of the six ordered pipeline stages
type StepName string

const (
	StepValidate            StepName = "validate"
	StepIdentifyPeriods     StepName = "identify_periods"
	StepStatisticalAnalysis StepName = "statistical_analysis"
	StepAnomalyDetection    StepName = "anomaly_detection"
	StepPassFailEvaluation  StepName = "pass_fail_evaluation"
	StepIntegrate           StepName = "integrate"
)

// StepOrder is the fixed execution order of the pipeline
var StepOrder = []StepName{
	StepValidate,
	StepIdentifyPeriods,
	StepStatisticalAnalysis,
	StepAnomalyDetection,
	StepPassFailEvaluation,
	StepIntegrate,
}

// StepStatus is the lifecycle state of one stage
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Step tracks the execution state of one pipeline stage. Owned exclusively
// by one orchestrator invocation.
type Step struct {
	Name      StepName       `json:"name"`
	Status    StepStatus     `json:"status"`
	StartedAt core.Timestamp `json:"started_at,omitempty"`
	EndedAt   core.Timestamp `json:"ended_at,omitempty"`
	Duration  time.Duration  `json:"duration_ns,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Progress is a snapshot of whole-pipeline execution state
type Progress struct {
	RunID       core.RunID `json:"run_id"`
	Steps       []Step     `json:"steps"`
	CurrentStep StepName   `json:"current_step"`
	Fraction    float64    `json:"fraction"` // (current step index + 1) / 6
}

// PeriodSet is an insertion-ordered collection of named numeric series.
// Go maps are unordered; the pipeline's behavior depends on the order in
// which periods were supplied, so the order is carried explicitly.
type PeriodSet struct {
	names  []string
	values map[string][]float64
}

// NewPeriodSet creates an empty period set
func NewPeriodSet() *PeriodSet {
	return &PeriodSet{values: make(map[string][]float64)}
}

// Add appends a named period, replacing values if the name already exists
// without changing its position.
func (ps *PeriodSet) Add(name string, values []float64) {
	if _, ok := ps.values[name]; !ok {
		ps.names = append(ps.names, name)
	}
	ps.values[name] = values
}

// Names returns period names in insertion order
func (ps *PeriodSet) Names() []string {
	out := make([]string, len(ps.names))
	copy(out, ps.names)
	return out
}

// Get returns the values for a named period
func (ps *PeriodSet) Get(name string) ([]float64, bool) {
	v, ok := ps.values[name]
	return v, ok
}

// Len returns the number of periods
func (ps *PeriodSet) Len() int {
	return len(ps.names)
}

// Pooled concatenates all period values in insertion order
func (ps *PeriodSet) Pooled() []float64 {
	var pooled []float64
	for _, name := range ps.names {
		pooled = append(pooled, ps.values[name]...)
	}
	return pooled
}

// Anomaly is one flagged excursion reported by the anomaly collaborator
type Anomaly struct {
	Index       int     `json:"index"`
	Value       float64 `json:"value"`
	Score       float64 `json:"score"`
	Description string  `json:"description,omitempty"`
}

// AnomalyResult is the advisory output of the anomaly collaborator.
// Score is a scalar in [0,1]; anything outside that contract is treated
// as a collaborator error, not a core defect.
type AnomalyResult struct {
	Score           float64   `json:"anomaly_score"`
	Anomalies       []Anomaly `json:"anomalies"`
	Recommendations []string  `json:"recommendations,omitempty"`
}

// NeutralAnomalyResult is substituted when the collaborator fails;
// anomaly scoring is advisory so the run degrades instead of aborting.
func NeutralAnomalyResult() AnomalyResult {
	return AnomalyResult{Score: 0.5, Anomalies: []Anomaly{}}
}

// Config carries the workflow-level knobs plus sub-configs for the engines
type Config struct {
	MinPeriodLength int                     `json:"min_period_length"`
	ConfidenceLevel float64                 `json:"confidence_level"`
	Compare         compare.Config          `json:"statistics"`
	Segment         period.Config           `json:"segmentation"`
	PassFail        verdict.ThresholdConfig `json:"pass_fail"`
}

// DefaultConfig returns the standard workflow configuration
func DefaultConfig() Config {
	return Config{
		MinPeriodLength: 10,
		ConfidenceLevel: 0.95,
		Compare:         compare.DefaultConfig(),
		Segment:         period.DefaultConfig(),
		PassFail:        verdict.DefaultThresholdConfig(),
	}
}

// IntegratedAnalysisResult merges all step outputs of one run. The
// Pass/Fail decision is authoritative for Status, FailScore and Confidence.
type IntegratedAnalysisResult struct {
	RunID           core.RunID                          `json:"run_id"`
	Status          verdict.Status                      `json:"status"`
	FailScore       float64                             `json:"fail_score"`
	Confidence      float64                             `json:"confidence"`
	Statistical     compare.ComprehensiveAnalysisResult `json:"statistical"`
	StablePeriods   []period.StablePeriod               `json:"stable_periods"`
	Anomaly         AnomalyResult                       `json:"anomaly"`
	Decision        verdict.DecisionResult              `json:"decision"`
	Recommendations []string                            `json:"recommendations"`
	Progress        Progress                            `json:"progress"`
	StartedAt       core.Timestamp                      `json:"started_at"`
	CompletedAt     core.Timestamp                      `json:"completed_at"`
	Elapsed         time.Duration                       `json:"elapsed_ns"`
}
