package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"perfgate/domain/verdict"
	"perfgate/domain/workflow"
	"perfgate/internal/errors"
	"perfgate/internal/testkit"
)

// stubDetector returns a fixed result or error, recording whether it was
// called.
type stubDetector struct {
	result workflow.AnomalyResult
	err    error
	called bool
}

func (d *stubDetector) Detect(_ context.Context, _ []float64, _ []time.Time) (workflow.AnomalyResult, error) {
	d.called = true
	return d.result, d.err
}

func constantSet(n int, value float64) *workflow.PeriodSet {
	series := make([]float64, n)
	for i := range series {
		series[i] = value
	}
	return testkit.TwoPeriodSet(series, series)
}

func TestRun_HappyPath(t *testing.T) {
	o := NewOrchestrator(workflow.DefaultConfig(), nil, nil)

	res, err := o.Run(context.Background(), constantSet(100, 100), []string{"throughput"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Status != verdict.StatusPass {
		t.Errorf("Expected PASS for identical stable periods, got %s", res.Status)
	}
	if res.RunID == "" {
		t.Error("Expected a run ID")
	}
	if res.Statistical.TotalMetrics != 1 {
		t.Errorf("Expected 1 analyzed metric, got %d", res.Statistical.TotalMetrics)
	}
	if res.Anomaly.Score != 0.5 {
		t.Errorf("Expected neutral anomaly score without a detector, got %f", res.Anomaly.Score)
	}
	if res.Elapsed < 0 {
		t.Errorf("Expected non-negative elapsed time, got %s", res.Elapsed)
	}

	for _, step := range res.Progress.Steps {
		if step.Status != workflow.StepCompleted {
			t.Errorf("Step %s not completed: %s", step.Name, step.Status)
		}
	}
	if res.Progress.Fraction != 1.0 {
		t.Errorf("Expected progress fraction 1.0, got %f", res.Progress.Fraction)
	}
}

// TestRun_ValidationFailure verifies the fail-fast path: the first step
// fails, the rest stay pending, and the error carries the step code.
func TestRun_ValidationFailure(t *testing.T) {
	o := NewOrchestrator(workflow.DefaultConfig(), nil, nil)

	_, err := o.Run(context.Background(), constantSet(3, 100), []string{"throughput"}, nil)
	if err == nil {
		t.Fatal("Expected validation failure for 3-point periods")
	}
	if !errors.IsWorkflowStep(err) {
		t.Errorf("Expected WORKFLOW_STEP error, got %v", err)
	}

	progress := o.Progress()
	if progress.Steps[0].Status != workflow.StepFailed {
		t.Errorf("Expected validate step failed, got %s", progress.Steps[0].Status)
	}
	if progress.Steps[0].Error == "" {
		t.Error("Expected failed step to record its error")
	}
	for _, step := range progress.Steps[1:] {
		if step.Status != workflow.StepPending {
			t.Errorf("Step %s should stay pending after early failure, got %s", step.Name, step.Status)
		}
	}
}

func TestRun_RejectsNilAndSinglePeriod(t *testing.T) {
	o := NewOrchestrator(workflow.DefaultConfig(), nil, nil)

	if _, err := o.Run(context.Background(), nil, nil, nil); err == nil {
		t.Error("Expected failure for nil period set")
	}

	single := workflow.NewPeriodSet()
	single.Add("N", testkit.StableSeries(1, 50, 100, 1))
	if _, err := o.Run(context.Background(), single, nil, nil); err == nil {
		t.Error("Expected failure for a single period")
	}
}

// TestRun_DetectorFailureDegrades verifies a failing collaborator does not
// abort the run and the neutral score is substituted.
func TestRun_DetectorFailureDegrades(t *testing.T) {
	detector := &stubDetector{err: fmt.Errorf("model endpoint unreachable")}
	o := NewOrchestrator(workflow.DefaultConfig(), detector, nil)

	res, err := o.Run(context.Background(), constantSet(100, 100), []string{"throughput"}, nil)
	if err != nil {
		t.Fatalf("Run should survive detector failure: %v", err)
	}
	if !detector.called {
		t.Error("Expected the detector to be invoked")
	}
	if res.Anomaly.Score != 0.5 {
		t.Errorf("Expected neutral anomaly score 0.5, got %f", res.Anomaly.Score)
	}

	for _, step := range res.Progress.Steps {
		if step.Status != workflow.StepCompleted {
			t.Errorf("Step %s should complete despite detector failure, got %s", step.Name, step.Status)
		}
	}
}

// TestRun_OutOfRangeScoreDegrades verifies scores outside [0,1] are treated
// as collaborator errors.
func TestRun_OutOfRangeScoreDegrades(t *testing.T) {
	for _, bad := range []float64{-0.1, 1.5} {
		detector := &stubDetector{result: workflow.AnomalyResult{Score: bad}}
		o := NewOrchestrator(workflow.DefaultConfig(), detector, nil)

		res, err := o.Run(context.Background(), constantSet(100, 100), []string{"throughput"}, nil)
		if err != nil {
			t.Fatalf("Run should survive score %f: %v", bad, err)
		}
		if res.Anomaly.Score != 0.5 {
			t.Errorf("Score %f should degrade to neutral 0.5, got %f", bad, res.Anomaly.Score)
		}
	}
}

// TestRun_DetectorResultFlowsIntoDecision verifies a valid high anomaly
// score reaches the decision engine.
func TestRun_DetectorResultFlowsIntoDecision(t *testing.T) {
	detector := &stubDetector{result: workflow.AnomalyResult{
		Score:           0.9,
		Anomalies:       []workflow.Anomaly{{Index: 42, Value: 180, Score: 0.9}},
		Recommendations: []string{"Inspect the flagged excursion window"},
	}}
	o := NewOrchestrator(workflow.DefaultConfig(), detector, nil)

	res, err := o.Run(context.Background(), constantSet(100, 100), []string{"throughput"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Anomaly.Score != 0.9 {
		t.Errorf("Expected detector score 0.9, got %f", res.Anomaly.Score)
	}
	if res.Status != verdict.StatusInconclusive {
		t.Errorf("Expected INCONCLUSIVE from the lone anomaly signal, got %s", res.Status)
	}

	found := false
	for _, rec := range res.Recommendations {
		if rec == "Inspect the flagged excursion window" {
			found = true
		}
	}
	if !found {
		t.Errorf("Detector recommendations missing from merged list: %v", res.Recommendations)
	}
}

// TestRun_RecommendationsDeduplicated verifies the merged recommendation
// list carries no duplicates.
func TestRun_RecommendationsDeduplicated(t *testing.T) {
	detector := &stubDetector{result: workflow.AnomalyResult{
		Score:           0.9,
		Recommendations: []string{"Check recent changes", "Check recent changes"},
	}}
	o := NewOrchestrator(workflow.DefaultConfig(), detector, nil)

	res, err := o.Run(context.Background(), constantSet(100, 100), []string{"throughput"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	seen := make(map[string]int)
	for _, rec := range res.Recommendations {
		seen[rec]++
	}
	for rec, count := range seen {
		if count > 1 {
			t.Errorf("Recommendation %q appears %d times", rec, count)
		}
	}
}

// TestRun_AllNaNInputFails verifies a period set with no finite sample
// aborts at period identification.
func TestRun_AllNaNInputFails(t *testing.T) {
	series := testkit.WithMissing(7, testkit.StableSeries(7, 50, 100, 1), 1.1)
	o := NewOrchestrator(workflow.DefaultConfig(), nil, nil)

	_, err := o.Run(context.Background(), testkit.TwoPeriodSet(series, series), []string{"throughput"}, nil)
	if err == nil {
		t.Fatal("Expected failure for all-NaN input")
	}

	progress := o.Progress()
	if progress.Steps[1].Status != workflow.StepFailed {
		t.Errorf("Expected identify_periods step failed, got %s", progress.Steps[1].Status)
	}
}

func TestRun_FreshRunIDPerInvocation(t *testing.T) {
	o := NewOrchestrator(workflow.DefaultConfig(), nil, nil)
	set := constantSet(100, 100)

	a, err := o.Run(context.Background(), set, []string{"throughput"}, nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := o.Run(context.Background(), set, []string{"throughput"}, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if a.RunID == b.RunID {
		t.Errorf("Expected distinct run IDs, both %s", a.RunID)
	}
}
