package ports

import (
	"context"
	"time"

	"perfgate/domain/workflow"
)

// AnomalyDetector is the boundary to the external anomaly-scoring model
// (LSTM/Transformer/ensemble), consumed as a black box. Implementations
// receive the pooled series and return a scalar score in [0,1] plus
// advisory anomalies and recommendations. Detectors are injected per
// workflow invocation; the core never holds one as shared mutable state.
type AnomalyDetector interface {
	Detect(ctx context.Context, series []float64, timestamps []time.Time) (workflow.AnomalyResult, error)
}
