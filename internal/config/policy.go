package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ScoringPolicy holds the classification thresholds. Defaults are the
// production policy; a YAML file may override individual fields.
type ScoringPolicy struct {
	StrongYesMin  int `yaml:"strong_yes_min"`
	YesMin        int `yaml:"yes_min"`
	BorderlineMin int `yaml:"borderline_min"`
	NoMin         int `yaml:"no_min"`

	// Triggers only force borderline for scores in [TriggerBandMin, TriggerBandMax).
	TriggerBandMin int `yaml:"trigger_band_min"`
	TriggerBandMax int `yaml:"trigger_band_max"`

	VarianceTrigger         float64 `yaml:"variance_trigger"`
	YesHighConfidenceMaxVar float64 `yaml:"yes_high_confidence_max_variance"`
	CriticalWeight          int     `yaml:"critical_weight"`
	CriticalMinScore        int     `yaml:"critical_min_score"`
	DefaultScore            int     `yaml:"default_score"`
	ScreeningSummarySeconds float64 `yaml:"screening_summary_seconds"`
	WordsPerSecond          float64 `yaml:"words_per_second"`
	PositiveEvidenceLimit   int     `yaml:"positive_evidence_limit"`
	BorderlineEvidenceLimit int     `yaml:"borderline_evidence_limit"`
	NegativeEvidenceLimit   int     `yaml:"negative_evidence_limit"`
}

// DefaultScoringPolicy returns the standard thresholds.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		StrongYesMin:            80,
		YesMin:                  65,
		BorderlineMin:           50,
		NoMin:                   35,
		TriggerBandMin:          40,
		TriggerBandMax:          75,
		VarianceTrigger:         1.5,
		YesHighConfidenceMaxVar: 1.0,
		CriticalWeight:          3,
		CriticalMinScore:        2,
		DefaultScore:            2,
		ScreeningSummarySeconds: 8,
		WordsPerSecond:          2,
		PositiveEvidenceLimit:   5,
		BorderlineEvidenceLimit: 4,
		NegativeEvidenceLimit:   5,
	}
}

// Validate checks the thresholds are ordered and in range.
func (p ScoringPolicy) Validate() error {
	if !(p.StrongYesMin > p.YesMin && p.YesMin > p.BorderlineMin && p.BorderlineMin > p.NoMin && p.NoMin >= 0 && p.StrongYesMin <= 100) {
		return fmt.Errorf("tier thresholds must be strictly descending within [0,100]")
	}
	if p.TriggerBandMin >= p.TriggerBandMax {
		return fmt.Errorf("trigger band is empty")
	}
	if p.DefaultScore < 1 || p.DefaultScore > 4 {
		return fmt.Errorf("default score %d out of [1,4]", p.DefaultScore)
	}
	if p.WordsPerSecond <= 0 {
		return fmt.Errorf("words per second must be positive")
	}
	if p.PositiveEvidenceLimit <= 0 || p.BorderlineEvidenceLimit <= 0 || p.NegativeEvidenceLimit <= 0 {
		return fmt.Errorf("evidence limits must be positive")
	}
	return nil
}

// LoadScoringPolicy reads overrides from path on top of the defaults.
// An empty path returns the defaults.
func LoadScoringPolicy(path string) (ScoringPolicy, error) {
	p := DefaultScoringPolicy()
	if path == "" {
		return p, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return p, fmt.Errorf("op=config.LoadScoringPolicy: %w", err)
	}
	// #nosec G304 -- operator supplied configuration path
	content, err := os.ReadFile(absPath)
	if err != nil {
		return p, fmt.Errorf("op=config.LoadScoringPolicy: %w", err)
	}
	if err := yaml.Unmarshal(content, &p); err != nil {
		return p, fmt.Errorf("op=config.LoadScoringPolicy: parse %s: %w", absPath, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("op=config.LoadScoringPolicy: %w", err)
	}
	return p, nil
}
