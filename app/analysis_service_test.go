package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfgate/domain/verdict"
	dworkflow "perfgate/domain/workflow"
	"perfgate/internal/testkit"
)

func flatRequest(mean float64) AnalysisRequest {
	series := make([]float64, 100)
	for i := range series {
		series[i] = mean
	}
	return AnalysisRequest{
		Periods: testkit.TwoPeriodSet(series, series),
		Metrics: []string{"throughput"},
	}
}

func TestRun_SingleRequest(t *testing.T) {
	svc := NewAnalysisService(dworkflow.DefaultConfig(), nil, nil)

	res, err := svc.Run(context.Background(), flatRequest(100))
	require.NoError(t, err)

	assert.Equal(t, verdict.StatusPass, res.Status)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, res.Statistical.TotalMetrics)
}

func TestRunBatch_PreservesRequestOrder(t *testing.T) {
	svc := NewAnalysisService(dworkflow.DefaultConfig(), nil, nil)

	means := []float64{50, 100, 200, 400}
	reqs := make([]AnalysisRequest, len(means))
	for i, m := range means {
		reqs[i] = flatRequest(m)
	}

	results, err := svc.RunBatch(context.Background(), reqs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))

	// Slot i must hold the result of request i; the baseline mean of the
	// analyzed metric identifies which request produced the result.
	for i, res := range results {
		require.Len(t, res.Statistical.Results, 1)
		assert.InDelta(t, means[i], res.Statistical.Results[0].BaselineMean, 1.0,
			"result %d does not belong to request %d", i, i)
	}
}

func TestRunBatch_FirstErrorCancels(t *testing.T) {
	svc := NewAnalysisService(dworkflow.DefaultConfig(), nil, nil)

	bad := AnalysisRequest{
		Periods: testkit.TwoPeriodSet([]float64{1, 2}, []float64{3, 4}),
		Metrics: []string{"throughput"},
	}

	results, err := svc.RunBatch(context.Background(), []AnalysisRequest{flatRequest(100), bad}, 2)
	require.Error(t, err)
	assert.Nil(t, results)
}

func TestRunBatch_Empty(t *testing.T) {
	svc := NewAnalysisService(dworkflow.DefaultConfig(), nil, nil)

	results, err := svc.RunBatch(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunBatch_DistinctRunIDs(t *testing.T) {
	svc := NewAnalysisService(dworkflow.DefaultConfig(), nil, nil)

	reqs := []AnalysisRequest{flatRequest(100), flatRequest(100), flatRequest(100)}
	results, err := svc.RunBatch(context.Background(), reqs, 3)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, res := range results {
		id := string(res.RunID)
		assert.False(t, seen[id], "duplicate run ID %s", id)
		seen[id] = true
	}
}
