package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	dworkflow "perfgate/domain/workflow"
	"perfgate/internal"
	"perfgate/internal/workflow"
	"perfgate/ports"
)

// AnalysisRequest is one comparison run: named periods (insertion order
// decides the comparison groups), the metrics to compare, and optional
// timestamps aligned with the pooled series.
type AnalysisRequest struct {
	Periods    *dworkflow.PeriodSet
	Metrics    []string
	Timestamps []time.Time
}

// AnalysisService runs comparison workflows. Orchestrators own per-run
// mutable state, so the service constructs a fresh one per request; the
// underlying engines are stateless and shared implicitly.
type AnalysisService struct {
	cfg      dworkflow.Config
	detector ports.AnomalyDetector
	log      *internal.Logger
}

// NewAnalysisService creates an analysis service. The detector may be nil,
// in which case anomaly scoring degrades to the neutral default.
func NewAnalysisService(cfg dworkflow.Config, detector ports.AnomalyDetector, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{cfg: cfg, detector: detector, log: logger}
}

// Run executes one analysis workflow
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (dworkflow.IntegratedAnalysisResult, error) {
	orch := workflow.NewOrchestrator(s.cfg, s.detector, s.log)
	return orch.Run(ctx, req.Periods, req.Metrics, req.Timestamps)
}

// RunBatch executes independent analysis requests concurrently, each with
// its own orchestrator, bounded by maxParallel. Results keep request
// order; the first error cancels outstanding work.
func (s *AnalysisService) RunBatch(ctx context.Context, reqs []AnalysisRequest, maxParallel int) ([]dworkflow.IntegratedAnalysisResult, error) {
	if maxParallel < 1 {
		maxParallel = 1
	}

	results := make([]dworkflow.IntegratedAnalysisResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := s.Run(gctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
