package compare

import (
	"math"
	"testing"

	"perfgate/domain/compare"
	"perfgate/internal/errors"
	"perfgate/internal/testkit"
)

func repeat(values []float64, times int) []float64 {
	out := make([]float64, 0, len(values)*times)
	for i := 0; i < times; i++ {
		out = append(out, values...)
	}
	return out
}

// TestCompare_IdenticalSamples verifies that identical constant samples
// yield a trivially non-significant comparison with zero effect sizes.
func TestCompare_IdenticalSamples(t *testing.T) {
	engine := NewEngine()
	sample := repeat([]float64{100}, 10)

	result, err := engine.Compare("latency_p99", sample, sample, compare.DefaultConfig())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.PValue < 0.99 {
		t.Errorf("Expected p-value near 1.0, got %f", result.PValue)
	}
	if result.IsSignificant {
		t.Error("Identical samples must not be significant")
	}
	for kind, es := range result.EffectSizes {
		if math.Abs(es.Value) > 1e-9 {
			t.Errorf("Effect size %s should be 0, got %f", kind, es.Value)
		}
	}
	if result.Clinical.IsClinicallySignificant {
		t.Error("Identical samples must not be clinically significant")
	}
}

// TestCompare_LargeShift verifies a clearly shifted sample is flagged as
// significant with a large positive effect and clinical significance.
func TestCompare_LargeShift(t *testing.T) {
	engine := NewEngine()
	baseline := repeat([]float64{10, 12, 11, 13, 10}, 2)
	current := repeat([]float64{15, 18, 16, 17, 19}, 2)

	result, err := engine.Compare("throughput", baseline, current, compare.DefaultConfig())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.Test != compare.TestStudentT && result.Test != compare.TestWelchT {
		t.Errorf("Expected a t-test for normal-ish samples, got %s", result.Test)
	}
	if result.PValue >= 0.05 {
		t.Errorf("Expected p < 0.05, got %f", result.PValue)
	}
	if !result.IsSignificant {
		t.Error("Expected significant result")
	}

	d := result.EffectSizes[compare.EffectCohenD]
	if d.Value <= 0 {
		t.Errorf("Expected positive Cohen's d, got %f", d.Value)
	}
	if d.Magnitude != compare.MagnitudeLarge {
		t.Errorf("Expected large magnitude, got %s", d.Magnitude)
	}
	if !result.Clinical.IsClinicallySignificant {
		t.Error("Expected clinically significant change")
	}
}

// TestCompare_SignificanceInvariant checks is_significant == (p < alpha)
// across a spread of sample pairs.
func TestCompare_SignificanceInvariant(t *testing.T) {
	engine := NewEngine()
	cfg := compare.DefaultConfig()

	cases := [][2][]float64{
		{testkit.StableSeries(1, 40, 100, 5), testkit.StableSeries(2, 40, 100, 5)},
		{testkit.StableSeries(3, 40, 100, 5), testkit.StableSeries(4, 40, 130, 5)},
		{testkit.StableSeries(5, 15, 50, 1), testkit.StableSeries(6, 25, 51, 1)},
		{testkit.SpikedSeries(7, 60, 10, 1, 40, 9), testkit.StableSeries(8, 60, 10, 1)},
	}

	for i, c := range cases {
		result, err := engine.Compare("m", c[0], c[1], cfg)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if result.IsSignificant != (result.PValue < result.Alpha) {
			t.Errorf("case %d: is_significant=%v but p=%f alpha=%f",
				i, result.IsSignificant, result.PValue, result.Alpha)
		}
	}
}

// TestCompare_HedgesShrinksCohen verifies |g| <= |d| with matching sign
func TestCompare_HedgesShrinksCohen(t *testing.T) {
	engine := NewEngine()
	cfg := compare.DefaultConfig()

	pairs := [][2][]float64{
		{testkit.StableSeries(10, 12, 100, 3), testkit.StableSeries(11, 12, 110, 3)},
		{testkit.StableSeries(12, 30, 100, 3), testkit.StableSeries(13, 30, 90, 3)},
		{testkit.StableSeries(14, 50, 5, 2), testkit.StableSeries(15, 50, 5.5, 2)},
	}

	for i, p := range pairs {
		result, err := engine.Compare("m", p[0], p[1], cfg)
		if err != nil {
			t.Fatalf("pair %d: %v", i, err)
		}

		d := result.EffectSizes[compare.EffectCohenD].Value
		g := result.EffectSizes[compare.EffectHedgesG].Value

		if math.Abs(g) > math.Abs(d) {
			t.Errorf("pair %d: |g|=%f exceeds |d|=%f", i, math.Abs(g), math.Abs(d))
		}
		if d != 0 && math.Signbit(g) != math.Signbit(d) {
			t.Errorf("pair %d: g=%f and d=%f differ in sign", i, g, d)
		}
	}
}

// TestCompare_DataQuality verifies small and mostly-missing samples are
// rejected with a recoverable DATA_QUALITY error.
func TestCompare_DataQuality(t *testing.T) {
	engine := NewEngine()
	cfg := compare.DefaultConfig()
	healthy := testkit.StableSeries(20, 40, 100, 2)

	_, err := engine.Compare("m", []float64{1, 2, 3}, healthy, cfg)
	if err == nil || !errors.IsDataQuality(err) {
		t.Errorf("Expected DATA_QUALITY for tiny sample, got %v", err)
	}

	mostlyMissing := testkit.WithMissing(21, healthy, 0.6)
	_, err = engine.Compare("m", healthy, mostlyMissing, cfg)
	if err == nil || !errors.IsDataQuality(err) {
		t.Errorf("Expected DATA_QUALITY for missing-heavy sample, got %v", err)
	}
}

// TestCompareAll_SkipsBadMetrics verifies data-quality failures skip the
// metric without failing the aggregate.
func TestCompareAll_SkipsBadMetrics(t *testing.T) {
	engine := NewEngine()
	cfg := compare.DefaultConfig()

	items := []MetricSamples{
		{Metric: "good", Baseline: testkit.StableSeries(30, 40, 100, 2), Current: testkit.StableSeries(31, 40, 100, 2)},
		{Metric: "bad", Baseline: []float64{1, 2}, Current: testkit.StableSeries(32, 40, 100, 2)},
	}

	agg := engine.CompareAll(items, cfg)

	if agg.TotalMetrics != 2 {
		t.Errorf("Expected 2 total metrics, got %d", agg.TotalMetrics)
	}
	if len(agg.Results) != 1 {
		t.Fatalf("Expected 1 analyzed result, got %d", len(agg.Results))
	}
	if len(agg.SkippedMetrics) != 1 || agg.SkippedMetrics[0] != "bad" {
		t.Errorf("Expected metric 'bad' skipped, got %v", agg.SkippedMetrics)
	}
	if agg.OverallAssessment == "" {
		t.Error("Overall assessment should not be empty")
	}
}
