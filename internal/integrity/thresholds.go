package integrity

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"datacheck/domain/tabular"
)

// Interval is a closed acceptance range. Values on either endpoint pass.
type Interval struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Contains reports whether v lies inside the bound. NaN is never outside:
// comparisons against missing statistics must not raise findings.
func (iv Interval) Contains(v float64) bool {
	return !(v < iv.Low || v > iv.High)
}

// String renders the bound the way audit lines show it
func (iv Interval) String() string {
	return fmt.Sprintf("[%v, %v]", iv.Low, iv.High)
}

// UnmarshalYAML accepts the compact two-element list form, e.g. [0.1, 0.2],
// as well as the explicit low/high mapping
func (iv *Interval) UnmarshalYAML(value *yaml.Node) error {
	var pair []float64
	if err := value.Decode(&pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("interval needs exactly two values, got %d", len(pair))
		}
		iv.Low, iv.High = pair[0], pair[1]
		return nil
	}

	var obj struct {
		Low  float64 `yaml:"low"`
		High float64 `yaml:"high"`
	}
	if err := value.Decode(&obj); err != nil {
		return err
	}
	iv.Low, iv.High = obj.Low, obj.High
	return nil
}

// Thresholds carries every acceptance bound the checks compare against.
// The defaults encode the reference distribution the audited datasets were
// built from; deviations from them are findings, not errors.
type Thresholds struct {
	// Expected number of distinct eras per region. The key set doubles as
	// the expected region set for the regions check.
	ErasPerRegion map[tabular.Region]int `yaml:"eras_per_region" json:"eras_per_region"`

	// Feature redundancy bounds over the absolute upper-triangle Pearson
	// correlations
	MeanAbsCorr Interval `yaml:"mean_abs_corr" json:"mean_abs_corr"`
	MaxAbsCorr  Interval `yaml:"max_abs_corr" json:"max_abs_corr"`

	// Per era and feature distribution bounds
	FeatureRange    Interval `yaml:"feature_range" json:"feature_range"`
	FeatureMean     Interval `yaml:"feature_mean" json:"feature_mean"`
	FeatureStd      Interval `yaml:"feature_std" json:"feature_std"`
	FeatureSkewness Interval `yaml:"feature_skewness" json:"feature_skewness"`
	FeatureKurtosis Interval `yaml:"feature_kurtosis" json:"feature_kurtosis"`

	// Label bounds. LiveEraSize applies to the single placeholder era that
	// aggregates unresolved live rows; every other era uses EraSize.
	LabelMean          Interval `yaml:"label_mean" json:"label_mean"`
	EraSize            Interval `yaml:"era_size" json:"era_size"`
	LiveEraSize        Interval `yaml:"live_era_size" json:"live_era_size"`
	LivePlaceholderEra string   `yaml:"live_placeholder_era" json:"live_placeholder_era"`
	LabelBias          Interval `yaml:"label_bias" json:"label_bias"`

	// Prediction consistency bounds, shared by the train and validation
	// regions
	LogLoss     Interval `yaml:"logloss" json:"logloss"`
	Consistency Interval `yaml:"consistency" json:"consistency"`

	// PredictionMargin widens the train prediction range by this fraction
	// before test and live predictions are checked against it
	PredictionMargin float64 `yaml:"prediction_margin" json:"prediction_margin"`
}

// DefaultThresholds returns the reference bounds
func DefaultThresholds() Thresholds {
	return Thresholds{
		ErasPerRegion: map[tabular.Region]int{
			tabular.RegionTrain:      85,
			tabular.RegionValidation: 12,
			tabular.RegionTest:       1,
			tabular.RegionLive:       1,
		},
		MeanAbsCorr:        Interval{0.1, 0.2},
		MaxAbsCorr:         Interval{0.6, 0.7},
		FeatureRange:       Interval{0, 1},
		FeatureMean:        Interval{0.4545, 0.5505},
		FeatureStd:         Interval{0.09, 0.14},
		FeatureSkewness:    Interval{-0.4, 0.4},
		FeatureKurtosis:    Interval{2.5, 3.5},
		LabelMean:          Interval{0.499, 0.501},
		EraSize:            Interval{5940, 6750},
		LiveEraSize:        Interval{270000, 280000},
		LivePlaceholderEra: "eraX",
		LabelBias:          Interval{0.4, 0.6},
		LogLoss:            Interval{0.68, 0.688},
		Consistency:        Interval{0.57, 0.84},
		PredictionMargin:   0.01,
	}
}

// Validate rejects bounds that cannot accept any value
func (t Thresholds) Validate() error {
	intervals := map[string]Interval{
		"mean_abs_corr":    t.MeanAbsCorr,
		"max_abs_corr":     t.MaxAbsCorr,
		"feature_range":    t.FeatureRange,
		"feature_mean":     t.FeatureMean,
		"feature_std":      t.FeatureStd,
		"feature_skewness": t.FeatureSkewness,
		"feature_kurtosis": t.FeatureKurtosis,
		"label_mean":       t.LabelMean,
		"era_size":         t.EraSize,
		"live_era_size":    t.LiveEraSize,
		"label_bias":       t.LabelBias,
		"logloss":          t.LogLoss,
		"consistency":      t.Consistency,
	}
	for name, iv := range intervals {
		if iv.Low > iv.High {
			return fmt.Errorf("threshold %s is empty: %s", name, iv)
		}
	}
	if len(t.ErasPerRegion) == 0 {
		return fmt.Errorf("threshold eras_per_region must name at least one region")
	}
	if t.LivePlaceholderEra == "" {
		return fmt.Errorf("threshold live_placeholder_era must not be empty")
	}
	if t.PredictionMargin < 0 {
		return fmt.Errorf("threshold prediction_margin must not be negative")
	}
	return nil
}

// regionOrder returns the expected regions in deterministic order: the
// canonical four first, then any extra configured regions alphabetically
func (t Thresholds) regionOrder() []tabular.Region {
	var order []tabular.Region
	seen := make(map[tabular.Region]bool)
	for _, region := range tabular.CanonicalRegions() {
		if _, ok := t.ErasPerRegion[region]; ok {
			order = append(order, region)
			seen[region] = true
		}
	}
	var extras []tabular.Region
	for region := range t.ErasPerRegion {
		if !seen[region] {
			extras = append(extras, region)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return append(order, extras...)
}
