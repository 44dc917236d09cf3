package config

import (
	"os"
	"strconv"

	"perfgate/domain/compare"
	"perfgate/domain/period"
	"perfgate/domain/verdict"
	"perfgate/domain/workflow"
	"perfgate/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Workflow workflow.Config
	Data     DataConfig
}

// DataConfig holds data-source settings for the CLI
type DataConfig struct {
	InputFile     string
	BaselineSheet string
	CurrentSheet  string
}

// Load reads configuration from environment variables, starting from the
// built-in defaults. Every numeric knob can be overridden via env.
func Load() (*Config, error) {
	cfg := &Config{
		Workflow: workflow.DefaultConfig(),
		Data: DataConfig{
			InputFile:     os.Getenv("PERFGATE_INPUT_FILE"),
			BaselineSheet: getEnv("PERFGATE_BASELINE_SHEET", "N-1"),
			CurrentSheet:  getEnv("PERFGATE_CURRENT_SHEET", "N"),
		},
	}

	var err error
	if cfg.Workflow.MinPeriodLength, err = getEnvInt("PERFGATE_MIN_PERIOD_LENGTH", cfg.Workflow.MinPeriodLength); err != nil {
		return nil, err
	}
	if cfg.Workflow.ConfidenceLevel, err = getEnvFloat("PERFGATE_CONFIDENCE_LEVEL", cfg.Workflow.ConfidenceLevel); err != nil {
		return nil, err
	}

	if err := loadCompareConfig(&cfg.Workflow.Compare); err != nil {
		return nil, errors.Wrap(err, "failed to load statistics configuration")
	}
	if err := loadSegmentConfig(&cfg.Workflow.Segment); err != nil {
		return nil, errors.Wrap(err, "failed to load segmentation configuration")
	}
	if err := loadThresholdConfig(&cfg.Workflow.PassFail); err != nil {
		return nil, errors.Wrap(err, "failed to load pass/fail configuration")
	}

	return cfg, nil
}

func loadCompareConfig(c *compare.Config) error {
	var err error
	if c.Alpha, err = getEnvFloat("PERFGATE_ALPHA", c.Alpha); err != nil {
		return err
	}
	if c.NormalityThreshold, err = getEnvFloat("PERFGATE_NORMALITY_THRESHOLD", c.NormalityThreshold); err != nil {
		return err
	}
	if c.HomogeneityThreshold, err = getEnvFloat("PERFGATE_HOMOGENEITY_THRESHOLD", c.HomogeneityThreshold); err != nil {
		return err
	}
	if c.MinSampleSize, err = getEnvInt("PERFGATE_MIN_SAMPLE_SIZE", c.MinSampleSize); err != nil {
		return err
	}
	if c.MaxMissingRatio, err = getEnvFloat("PERFGATE_MAX_MISSING_RATIO", c.MaxMissingRatio); err != nil {
		return err
	}
	return nil
}

func loadSegmentConfig(c *period.Config) error {
	var err error
	if c.Penalty, err = getEnvFloat("PERFGATE_SEGMENT_PENALTY", c.Penalty); err != nil {
		return err
	}
	if c.MinSegmentLength, err = getEnvInt("PERFGATE_MIN_SEGMENT_LENGTH", c.MinSegmentLength); err != nil {
		return err
	}
	if c.MinDurationMinutes, err = getEnvFloat("PERFGATE_MIN_DURATION_MINUTES", c.MinDurationMinutes); err != nil {
		return err
	}
	if c.MinActivityThreshold, err = getEnvFloat("PERFGATE_MIN_ACTIVITY_THRESHOLD", c.MinActivityThreshold); err != nil {
		return err
	}
	if c.StabilityThreshold, err = getEnvFloat("PERFGATE_STABILITY_THRESHOLD", c.StabilityThreshold); err != nil {
		return err
	}
	return nil
}

func loadThresholdConfig(c *verdict.ThresholdConfig) error {
	var err error
	if c.ZScore, err = getEnvFloat("PERFGATE_ZSCORE_THRESHOLD", c.ZScore); err != nil {
		return err
	}
	if c.RSD, err = getEnvFloat("PERFGATE_RSD_THRESHOLD", c.RSD); err != nil {
		return err
	}
	if c.AnomalyScore, err = getEnvFloat("PERFGATE_ANOMALY_THRESHOLD", c.AnomalyScore); err != nil {
		return err
	}
	if c.Significance, err = getEnvFloat("PERFGATE_SIGNIFICANCE_THRESHOLD", c.Significance); err != nil {
		return err
	}
	if c.EffectSize, err = getEnvFloat("PERFGATE_EFFECT_SIZE_THRESHOLD", c.EffectSize); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer for %s: %q", key, v)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid float for %s: %q", key, v)
	}
	return parsed, nil
}
