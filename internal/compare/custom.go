package compare

import (
	"perfgate/domain/compare"
	"perfgate/internal/errors"
)

// PerformTest runs one explicitly selected hypothesis test on the cleaned
// samples. This path exists for advisory/recommendation use outside the
// automatic selection of Compare; paired tests require equal-length samples.
// Unknown test kinds surface an INVALID_ARGUMENT error.
func (e *Engine) PerformTest(test compare.TestType, baseline, current []float64) (TestOutcome, error) {
	cleanBase, _ := cleanSample(baseline)
	cleanCur, _ := cleanSample(current)

	if len(cleanBase) < 2 || len(cleanCur) < 2 {
		return TestOutcome{}, errors.Newf(errors.CodeDataQuality,
			"test %s: need at least 2 valid points per sample (got %d and %d)",
			test, len(cleanBase), len(cleanCur))
	}

	switch test {
	case compare.TestStudentT:
		return e.studentTTest(cleanBase, cleanCur), nil
	case compare.TestWelchT:
		return e.welchTTest(cleanBase, cleanCur), nil
	case compare.TestMannWhitney:
		return e.mannWhitneyU(cleanBase, cleanCur), nil
	case compare.TestPairedT:
		if len(cleanBase) != len(cleanCur) {
			return TestOutcome{}, errors.Newf(errors.CodeInvalidArgument,
				"paired t-test requires equal-length samples (got %d and %d)",
				len(cleanBase), len(cleanCur))
		}
		return e.pairedTTest(cleanBase, cleanCur), nil
	case compare.TestWilcoxon:
		if len(cleanBase) != len(cleanCur) {
			return TestOutcome{}, errors.Newf(errors.CodeInvalidArgument,
				"wilcoxon signed-rank requires equal-length samples (got %d and %d)",
				len(cleanBase), len(cleanCur))
		}
		return e.wilcoxonSignedRank(cleanBase, cleanCur), nil
	case compare.TestKruskalWallis:
		return e.kruskalWallis(cleanBase, cleanCur), nil
	case compare.TestOneWayANOVA:
		return e.oneWayANOVA(cleanBase, cleanCur), nil
	case compare.TestKolmogorovSmirnov:
		return e.kolmogorovSmirnov(cleanBase, cleanCur), nil
	default:
		return TestOutcome{}, errors.Newf(errors.CodeInvalidArgument, "unknown test type %q", test)
	}
}

// smallSampleLimit restricts recommendations to non-parametric tests when
// either side has fewer points than this.
const smallSampleLimit = 10

// RecommendedTests returns the applicable tests for the two samples using
// the same decision table as Compare, plus the small-sample rule.
func (e *Engine) RecommendedTests(baseline, current []float64, cfg compare.Config) []compare.TestType {
	cleanBase, _ := cleanSample(baseline)
	cleanCur, _ := cleanSample(current)
	if len(cleanBase) < 2 || len(cleanCur) < 2 {
		return nil
	}

	equalLength := len(cleanBase) == len(cleanCur)
	smallSample := len(cleanBase) < smallSampleLimit || len(cleanCur) < smallSampleLimit

	if smallSample {
		recs := []compare.TestType{compare.TestMannWhitney, compare.TestKruskalWallis, compare.TestKolmogorovSmirnov}
		if equalLength {
			recs = append(recs, compare.TestWilcoxon)
		}
		return recs
	}

	normBase := e.testNormality(cleanBase, cfg.NormalityThreshold)
	normCur := e.testNormality(cleanCur, cfg.NormalityThreshold)

	var recs []compare.TestType
	if normBase.IsNormal && normCur.IsNormal {
		homogeneity := e.testHomogeneity(cleanBase, cleanCur, cfg.HomogeneityThreshold)
		if homogeneity.EqualVariance {
			recs = append(recs, compare.TestStudentT)
		} else {
			recs = append(recs, compare.TestWelchT)
		}
		recs = append(recs, compare.TestOneWayANOVA)
		if equalLength {
			recs = append(recs, compare.TestPairedT)
		}
	} else {
		recs = append(recs, compare.TestMannWhitney, compare.TestKruskalWallis)
		if equalLength {
			recs = append(recs, compare.TestWilcoxon)
		}
	}

	return append(recs, compare.TestKolmogorovSmirnov)
}
