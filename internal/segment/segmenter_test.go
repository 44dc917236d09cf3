package segment

import (
	"math"
	"testing"

	"perfgate/domain/period"
	"perfgate/internal/testkit"
)

func constantSeries(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestSegment_EmptyAndAllNaN(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig()

	if got := s.Segment(nil, nil, cfg); len(got) != 0 {
		t.Errorf("Expected empty result for nil input, got %d segments", len(got))
	}

	allNaN := []float64{math.NaN(), math.NaN(), math.NaN()}
	if got := s.Segment(allNaN, nil, cfg); len(got) != 0 {
		t.Errorf("Expected empty result for all-NaN input, got %d segments", len(got))
	}
}

// TestSegment_ConstantSeries verifies a perfectly constant series yields a
// single high-confidence segment with no spurious change points.
func TestSegment_ConstantSeries(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig()

	got := s.Segment(constantSeries(200, 100), nil, cfg)
	if len(got) != 1 {
		t.Fatalf("Expected 1 segment for constant series, got %d", len(got))
	}

	seg := got[0]
	if seg.StartIndex != 0 || seg.EndIndex != 200 {
		t.Errorf("Expected whole-series segment [0,200), got [%d,%d)", seg.StartIndex, seg.EndIndex)
	}
	if seg.ConfidenceScore < 0.95 {
		t.Errorf("Expected confidence near 1.0, got %f", seg.ConfidenceScore)
	}
	if seg.StdDev != 0 {
		t.Errorf("Expected zero spread, got %f", seg.StdDev)
	}
}

// TestSegment_ShortInputFallback verifies inputs shorter than two minimum
// segments come back whole with the fixed 0.8 confidence.
func TestSegment_ShortInputFallback(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig() // min segment 50, so anything < 100 falls back

	got := s.Segment(constantSeries(60, 5), nil, cfg)
	if len(got) != 1 {
		t.Fatalf("Expected single fallback segment, got %d", len(got))
	}
	if got[0].ConfidenceScore != 0.8 {
		t.Errorf("Expected fixed fallback confidence 0.8, got %f", got[0].ConfidenceScore)
	}
	if got[0].Length() != 60 {
		t.Errorf("Expected whole input as one segment, got length %d", got[0].Length())
	}
}

// TestSegment_DetectsLevelShift verifies a clean step change splits the
// series at the boundary.
func TestSegment_DetectsLevelShift(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig()

	series := append(constantSeries(100, 10), constantSeries(100, 50)...)
	got := s.Segment(series, nil, cfg)

	if len(got) != 2 {
		t.Fatalf("Expected 2 segments around the step, got %d", len(got))
	}

	// Sorted by confidence, so locate by start index
	starts := map[int]int{}
	for _, seg := range got {
		starts[seg.StartIndex] = seg.EndIndex
	}
	if end, ok := starts[0]; !ok || end != 100 {
		t.Errorf("Expected segment [0,100), got %v", starts)
	}
	if end, ok := starts[100]; !ok || end != 200 {
		t.Errorf("Expected segment [100,200), got %v", starts)
	}
}

// TestSegment_MinLengthInvariant verifies every retained segment respects
// the minimum segment length on noisy data.
func TestSegment_MinLengthInvariant(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig()

	series := testkit.ShiftedSeries(77, 400, 180, 50, 30, 2)
	got := s.Segment(series, nil, cfg)

	if len(got) == 0 {
		t.Fatal("Expected at least one stable segment")
	}
	for _, seg := range got {
		if seg.Length() < cfg.MinSegmentLength {
			t.Errorf("Segment [%d,%d) shorter than %d", seg.StartIndex, seg.EndIndex, cfg.MinSegmentLength)
		}
	}
}

// TestSegment_GatesFilterLowActivity verifies the activity gate drops
// segments whose mean sits below the floor.
func TestSegment_GatesFilterLowActivity(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig()

	got := s.Segment(constantSeries(200, 0.01), nil, cfg)
	if len(got) != 0 {
		t.Errorf("Expected low-activity series filtered out, got %d segments", len(got))
	}
}

// TestSegment_GatesFilterUnstable verifies the stability gate drops
// segments with a high coefficient of variation.
func TestSegment_GatesFilterUnstable(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig()

	// CV = 5/10 = 0.5, well above the 0.2 ceiling
	got := s.Segment(testkit.StableSeries(88, 200, 10, 5), nil, cfg)
	for _, seg := range got {
		cv := seg.StdDev / math.Abs(seg.Mean)
		if cv > 1-cfg.StabilityThreshold {
			t.Errorf("Segment [%d,%d) with CV %f should have been filtered",
				seg.StartIndex, seg.EndIndex, cv)
		}
	}
}

// TestSegment_SortedByConfidence verifies descending confidence order
func TestSegment_SortedByConfidence(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig()

	series := append(constantSeries(150, 20), testkit.StableSeries(99, 150, 40, 1)...)
	got := s.Segment(series, nil, cfg)

	for i := 1; i < len(got); i++ {
		if got[i].ConfidenceScore > got[i-1].ConfidenceScore {
			t.Errorf("Segments not sorted by confidence: %f before %f",
				got[i-1].ConfidenceScore, got[i].ConfidenceScore)
		}
	}
}

// TestSegment_DurationFromTimestamps verifies the duration gate uses real
// timestamps when supplied.
func TestSegment_DurationFromTimestamps(t *testing.T) {
	s := NewSegmenter()
	cfg := period.DefaultConfig()

	series := constantSeries(200, 100)
	ts := testkit.MinuteTimestamps(200)

	got := s.Segment(series, ts, cfg)
	if len(got) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(got))
	}
	if math.Abs(got[0].DurationMinutes-199) > 1e-9 {
		t.Errorf("Expected 199 minutes from timestamps, got %f", got[0].DurationMinutes)
	}
}
