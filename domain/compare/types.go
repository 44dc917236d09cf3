package compare

import (
	"perfgate/domain/core"
)

// TestType identifies a hypothesis test
type TestType string

const (
	TestStudentT          TestType = "student_ttest"
	TestWelchT            TestType = "welch_ttest"
	TestMannWhitney       TestType = "mann_whitney_u"
	TestPairedT           TestType = "paired_ttest"
	TestWilcoxon          TestType = "wilcoxon_signed_rank"
	TestKruskalWallis     TestType = "kruskal_wallis"
	TestOneWayANOVA       TestType = "one_way_anova"
	TestKolmogorovSmirnov TestType = "kolmogorov_smirnov"
)

// EffectSizeKind identifies an effect-size estimator
type EffectSizeKind string

const (
	EffectCohenD      EffectSizeKind = "cohen_d"
	EffectHedgesG     EffectSizeKind = "hedges_g"
	EffectCliffsDelta EffectSizeKind = "cliffs_delta"
)

// Magnitude buckets an absolute effect size
type Magnitude string

const (
	MagnitudeNegligible Magnitude = "negligible"
	MagnitudeSmall      Magnitude = "small"
	MagnitudeMedium     Magnitude = "medium"
	MagnitudeLarge      Magnitude = "large"
)

// Score maps a magnitude onto [0,1] for aggregate confidence scoring.
func (m Magnitude) Score() float64 {
	switch m {
	case MagnitudeSmall:
		return 1.0 / 3.0
	case MagnitudeMedium:
		return 2.0 / 3.0
	case MagnitudeLarge:
		return 1.0
	default:
		return 0.0
	}
}

// EffectSize is one quantified, interpreted effect-size estimate
type EffectSize struct {
	Kind           EffectSizeKind `json:"kind"`
	Value          float64        `json:"value"`
	Magnitude      Magnitude      `json:"magnitude"`
	Interpretation string         `json:"interpretation"`
	CILower        float64        `json:"ci_lower"`
	CIUpper        float64        `json:"ci_upper"`
}

// RiskLevel buckets the operational risk of a detected change
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ClinicalAssessment judges whether a change is practically meaningful,
// as distinct from merely statistically significant.
type ClinicalAssessment struct {
	IsClinicallySignificant bool      `json:"is_clinically_significant"`
	PracticalImportance     float64   `json:"practical_importance"` // 0-1
	Confidence              float64   `json:"confidence"`           // 0-1 aggregate
	RiskLevel               RiskLevel `json:"risk_level"`
}

// EffectSizeCutoffs are the absolute-value boundaries between magnitude
// buckets for standardized mean differences (Cohen's d, Hedges' g).
type EffectSizeCutoffs struct {
	Small  float64 `json:"small"`
	Medium float64 `json:"medium"`
	Large  float64 `json:"large"`
}

// Config carries the tunable knobs of the comparison engine
type Config struct {
	Alpha                float64           `json:"alpha"`
	NormalityThreshold   float64           `json:"normality_threshold"`
	HomogeneityThreshold float64           `json:"homogeneity_threshold"`
	Cutoffs              EffectSizeCutoffs `json:"effect_size_cutoffs"`
	MinSampleSize        int               `json:"min_sample_size"`
	MaxMissingRatio      float64           `json:"max_missing_ratio"`
}

// DefaultConfig returns the standard engine configuration
func DefaultConfig() Config {
	return Config{
		Alpha:                0.05,
		NormalityThreshold:   0.05,
		HomogeneityThreshold: 0.05,
		Cutoffs:              EffectSizeCutoffs{Small: 0.2, Medium: 0.5, Large: 0.8},
		MinSampleSize:        10,
		MaxMissingRatio:      0.3,
	}
}

// MetricComparisonResult is the outcome of comparing one metric across the
// N-1 and N measurement windows. Immutable once produced.
type MetricComparisonResult struct {
	Metric        core.MetricKey                `json:"metric"`
	Test          TestType                      `json:"test"`
	Statistic     float64                       `json:"statistic"`
	PValue        float64                       `json:"p_value"`
	IsSignificant bool                          `json:"is_significant"` // invariant: PValue < Alpha
	Alpha         float64                       `json:"alpha"`
	BaselineN     int                           `json:"baseline_n"`
	CurrentN      int                           `json:"current_n"`
	BaselineMean  float64                       `json:"baseline_mean"`
	CurrentMean   float64                       `json:"current_mean"`
	EffectSizes   map[EffectSizeKind]EffectSize `json:"effect_sizes"`
	Clinical      ClinicalAssessment            `json:"clinical_significance"`
	Summary       string                        `json:"summary"`
}

// MaxAbsEffect returns the largest absolute effect-size value, 0 when none.
func (r MetricComparisonResult) MaxAbsEffect() float64 {
	max := 0.0
	for _, es := range r.EffectSizes {
		v := es.Value
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

// ComprehensiveAnalysisResult aggregates all metric comparisons of one run
type ComprehensiveAnalysisResult struct {
	Results             []MetricComparisonResult `json:"results"`
	TotalMetrics        int                      `json:"total_metrics"`
	SignificantCount    int                      `json:"significant_count"`
	ClinicalCount       int                      `json:"clinically_significant_count"`
	SkippedMetrics      []string                 `json:"skipped_metrics,omitempty"`
	OverallAssessment   string                   `json:"overall_assessment"`
	AggregateConfidence float64                  `json:"aggregate_confidence"`
}

// MinPValue returns the smallest p-value across results, 1.0 when empty.
func (c ComprehensiveAnalysisResult) MinPValue() float64 {
	min := 1.0
	for _, r := range c.Results {
		if r.PValue < min {
			min = r.PValue
		}
	}
	return min
}

// MaxAbsEffect returns the largest absolute effect value across results.
func (c ComprehensiveAnalysisResult) MaxAbsEffect() float64 {
	max := 0.0
	for _, r := range c.Results {
		if v := r.MaxAbsEffect(); v > max {
			max = v
		}
	}
	return max
}
