package workflow

import (
	"context"
	"fmt"
	"math"
	"time"

	"perfgate/domain/compare"
	"perfgate/domain/core"
	"perfgate/domain/period"
	"perfgate/domain/verdict"
	"perfgate/domain/workflow"
	"perfgate/internal"
	ccompare "perfgate/internal/compare"
	"perfgate/internal/decision"
	"perfgate/internal/errors"
	"perfgate/internal/segment"
	"perfgate/ports"
)

// Orchestrator sequences the six-stage analysis pipeline with
// fail-fast/fail-soft semantics. An instance owns mutable step and
// progress state scoped to exactly one invocation: construct one
// orchestrator per concurrent analysis request. The engines it drives are
// stateless and shared safely.
type Orchestrator struct {
	cfg       workflow.Config
	comparer  *ccompare.Engine
	segmenter *segment.Segmenter
	decider   *decision.Engine
	detector  ports.AnomalyDetector
	log       *internal.Logger

	runID      core.RunID
	steps      []workflow.Step
	currentIdx int
}

// NewOrchestrator creates an orchestrator. The anomaly detector is
// injected per invocation scope; nil means no collaborator is available
// and the neutral default is used.
func NewOrchestrator(cfg workflow.Config, detector ports.AnomalyDetector, logger *internal.Logger) *Orchestrator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Orchestrator{
		cfg:       cfg,
		comparer:  ccompare.NewEngine(),
		segmenter: segment.NewSegmenter(),
		decider:   decision.NewEngine(cfg.PassFail),
		detector:  detector,
		log:       logger,
	}
}

// Progress returns a snapshot of the pipeline state, valid both during a
// run and after a failure for post-mortem inspection.
func (o *Orchestrator) Progress() workflow.Progress {
	steps := make([]workflow.Step, len(o.steps))
	copy(steps, o.steps)

	p := workflow.Progress{RunID: o.runID, Steps: steps}
	if len(o.steps) > 0 {
		p.CurrentStep = o.steps[o.currentIdx].Name
		p.Fraction = float64(o.currentIdx+1) / float64(len(workflow.StepOrder))
	}
	return p
}

// Run executes Validate -> IdentifyPeriods -> StatisticalAnalysis ->
// AnomalyDetection -> PassFailEvaluation -> Integrate. Timestamps are
// optional and align with the pooled series. Every step except
// AnomalyDetection is fail-fast: its error marks the step failed, leaves
// later steps pending, and is returned wrapped with the step name.
func (o *Orchestrator) Run(ctx context.Context, periods *workflow.PeriodSet, metrics []string, timestamps []time.Time) (workflow.IntegratedAnalysisResult, error) {
	o.reset()
	startedAt := core.Now()

	var (
		stablePeriods []period.StablePeriod
		statistical   compare.ComprehensiveAnalysisResult
		anomaly       workflow.AnomalyResult
		result        workflow.IntegratedAnalysisResult
	)

	err := o.runStep(workflow.StepValidate, func() error {
		return o.validate(periods)
	})
	if err != nil {
		return result, err
	}

	err = o.runStep(workflow.StepIdentifyPeriods, func() error {
		pooled := periods.Pooled()
		if !hasFiniteSample(pooled) {
			return fmt.Errorf("no usable samples in %d supplied periods", periods.Len())
		}
		stablePeriods = o.segmenter.Segment(pooled, timestamps, o.cfg.Segment)
		return nil
	})
	if err != nil {
		return result, err
	}

	err = o.runStep(workflow.StepStatisticalAnalysis, func() error {
		statistical = o.analyze(periods, metrics)
		return nil
	})
	if err != nil {
		return result, err
	}

	// The one fail-soft stage: anomaly scoring is advisory, so collaborator
	// failures degrade to the neutral default instead of aborting.
	_ = o.runStep(workflow.StepAnomalyDetection, func() error {
		anomaly = o.detectAnomalies(ctx, periods.Pooled(), timestamps)
		return nil
	})

	var decided verdict.DecisionResult
	err = o.runStep(workflow.StepPassFailEvaluation, func() error {
		decided = o.decider.Evaluate(&statistical, &anomaly, periods)
		return nil
	})
	if err != nil {
		return result, err
	}

	// Integrate merges all step outputs; the Pass/Fail decision is
	// authoritative for status, score and confidence.
	err = o.runStep(workflow.StepIntegrate, func() error {
		completedAt := core.Now()
		result = workflow.IntegratedAnalysisResult{
			RunID:           o.runID,
			Status:          decided.Status,
			FailScore:       decided.FailScore,
			Confidence:      decided.Confidence,
			Statistical:     statistical,
			StablePeriods:   stablePeriods,
			Anomaly:         anomaly,
			Decision:        decided,
			Recommendations: dedupe(decided.Recommendations, anomaly.Recommendations),
			StartedAt:       startedAt,
			CompletedAt:     completedAt,
			Elapsed:         completedAt.Sub(startedAt),
		}
		return nil
	})
	if err != nil {
		return workflow.IntegratedAnalysisResult{}, err
	}

	result.Progress = o.Progress()
	return result, nil
}

// reset prepares the step table for a fresh invocation
func (o *Orchestrator) reset() {
	o.runID = core.RunID(core.NewID())
	o.currentIdx = 0
	o.steps = make([]workflow.Step, len(workflow.StepOrder))
	for i, name := range workflow.StepOrder {
		o.steps[i] = workflow.Step{Name: name, Status: workflow.StepPending}
	}
}

// runStep drives one stage through pending -> running -> completed/failed,
// recomputing global progress after every transition.
func (o *Orchestrator) runStep(name workflow.StepName, fn func() error) error {
	idx := stepIndex(name)
	o.currentIdx = idx

	step := &o.steps[idx]
	step.Status = workflow.StepRunning
	step.StartedAt = core.Now()
	o.log.Debug("workflow step %s started (%.0f%%)", name, o.Progress().Fraction*100)

	err := fn()
	step.EndedAt = core.Now()
	step.Duration = step.EndedAt.Sub(step.StartedAt)

	if err != nil {
		step.Status = workflow.StepFailed
		step.Error = err.Error()
		o.log.Error("workflow step %s failed: %v", name, err)
		return errors.WithCode(err, errors.CodeWorkflowStep, fmt.Sprintf("step %s failed", name))
	}

	step.Status = workflow.StepCompleted
	o.log.Debug("workflow step %s completed in %s", name, step.Duration)
	return nil
}

// validate enforces period preconditions: at least two periods to compare,
// and every supplied period at or above the minimum length. The first
// violation aborts the whole run.
func (o *Orchestrator) validate(periods *workflow.PeriodSet) error {
	if periods == nil {
		return fmt.Errorf("no period data supplied")
	}
	if periods.Len() < 2 {
		return fmt.Errorf("need at least 2 periods to compare, got %d", periods.Len())
	}

	for _, name := range periods.Names() {
		values, _ := periods.Get(name)
		if len(values) < o.cfg.MinPeriodLength {
			return fmt.Errorf("period %q has %d points, need at least %d", name, len(values), o.cfg.MinPeriodLength)
		}
	}
	return nil
}

// analyze compares the first two supplied periods (the comparison groups)
// for each requested metric. Additional periods participate in validation
// and segmentation but are not compared pairwise. Metrics failing data
// quality are skipped, not fatal.
func (o *Orchestrator) analyze(periods *workflow.PeriodSet, metrics []string) compare.ComprehensiveAnalysisResult {
	names := periods.Names()
	baseline, _ := periods.Get(names[0])
	current, _ := periods.Get(names[1])

	items := make([]ccompare.MetricSamples, 0, len(metrics))
	for _, metric := range metrics {
		items = append(items, ccompare.MetricSamples{
			Metric:   core.MetricKey(metric),
			Baseline: baseline,
			Current:  current,
		})
	}

	return o.comparer.CompareAll(items, o.cfg.Compare)
}

// detectAnomalies calls the collaborator and enforces its contract. Any
// error or out-of-range score is a collaborator problem: log a warning,
// substitute the neutral default, continue.
func (o *Orchestrator) detectAnomalies(ctx context.Context, pooled []float64, timestamps []time.Time) workflow.AnomalyResult {
	if o.detector == nil {
		return workflow.NeutralAnomalyResult()
	}

	res, err := o.detector.Detect(ctx, pooled, timestamps)
	if err != nil {
		o.log.Warn("anomaly collaborator failed, using neutral default: %v",
			errors.WithCode(err, errors.CodeAnomalyCollaborator, "anomaly detection degraded"))
		return workflow.NeutralAnomalyResult()
	}
	if res.Score < 0 || res.Score > 1 {
		o.log.Warn("anomaly collaborator returned score %.3f outside [0,1], using neutral default", res.Score)
		return workflow.NeutralAnomalyResult()
	}

	return res
}

func hasFiniteSample(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func stepIndex(name workflow.StepName) int {
	for i, n := range workflow.StepOrder {
		if n == name {
			return i
		}
	}
	return 0
}

// dedupe merges recommendation lists, dropping duplicates while
// preserving first-seen order.
func dedupe(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, rec := range list {
			if _, ok := seen[rec]; ok {
				continue
			}
			seen[rec] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}
