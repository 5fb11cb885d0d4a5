package music

import (
	"fmt"
	"math"
)

type Configuration struct {
	Verbosity        int                 `json:"verbosity" yaml:"verbosity"`
	FileIn           string              `json:"file_in" yaml:"file_in"`
	FileOut          string              `json:"file_out" yaml:"file_out"`
	RunNumber        int                 `json:"run_number" yaml:"run_number"`
	NStrips          int                 `json:"n_strips" yaml:"n_strips"`
	NumWorkers       int                 `json:"num_workers" yaml:"num_workers"`
	Parallel         bool                `json:"parallel" yaml:"parallel"`
	CompressionLevel int                 `json:"compression_level" yaml:"compression_level"`
	Normalization    NormalizationConfig `json:"normalization" yaml:"normalization"`
	Selection        []SelectionRule     `json:"selection" yaml:"selection"`
	WriteDB          bool                `json:"write_db" yaml:"write_db"`
	Host             string              `json:"host" yaml:"host"`
	User             string              `json:"user" yaml:"user"`
	Passwd           string              `json:"pass" yaml:"pass"`
	DBName           string              `json:"dbname" yaml:"dbname"`
}

// NormalizationConfig holds the numeric policy of the gain calibration.
type NormalizationConfig struct {
	Target          float64 `json:"target" yaml:"target"`
	BeamBins        int     `json:"beam_bins" yaml:"beam_bins"`
	ShortBins       int     `json:"short_bins" yaml:"short_bins"`
	ShortRange      Range   `json:"short_range" yaml:"short_range"`
	BeamSigma       float64 `json:"beam_sigma" yaml:"beam_sigma"`
	StandaloneSigma float64 `json:"standalone_sigma" yaml:"standalone_sigma"`
	ReferenceSigma  float64 `json:"reference_sigma" yaml:"reference_sigma"`
	ReferenceBins   int     `json:"reference_bins" yaml:"reference_bins"`
	MaxIterations   int     `json:"max_iterations" yaml:"max_iterations"`
	Tolerance       float64 `json:"tolerance" yaml:"tolerance"`
}

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultNormalizationConfig() NormalizationConfig {
	return NormalizationConfig{
		Target:          500,
		BeamBins:        200,
		ShortBins:       100,
		ShortRange:      Range{Low: 0, High: 500},
		BeamSigma:       10,
		StandaloneSigma: 10,
		ReferenceSigma:  25,
		ReferenceBins:   100,
		MaxIterations:   200,
		Tolerance:       1e-8,
	}
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Verbosity:        0,
		NStrips:          16,
		NumWorkers:       1,
		Parallel:         false,
		CompressionLevel: 4,
		Normalization:    DefaultNormalizationConfig(),
		WriteDB:          false,
		Host:             "localhost",
		User:             "musicwriter",
		Passwd:           "",
		DBName:           "MUSIC",
	}
}

// FitSettings returns the optimizer settings of this configuration.
func (c NormalizationConfig) FitSettings() FitSettings {
	return FitSettings{MaxIterations: c.MaxIterations, Tolerance: c.Tolerance}
}

func (c NormalizationConfig) Validate() error {
	checks := []struct {
		field string
		bad   bool
		msg   string
	}{
		{"target", !positive(c.Target), "must be a positive number"},
		{"beam_bins", c.BeamBins <= 0, "must be greater than zero"},
		{"short_bins", c.ShortBins <= 0, "must be greater than zero"},
		{"reference_bins", c.ReferenceBins <= 0, "must be greater than zero"},
		{"beam_sigma", !positive(c.BeamSigma), "must be a positive number"},
		{"standalone_sigma", !positive(c.StandaloneSigma), "must be a positive number"},
		{"reference_sigma", !positive(c.ReferenceSigma), "must be a positive number"},
		{"max_iterations", c.MaxIterations <= 0, "must be greater than zero"},
		{"tolerance", !positive(c.Tolerance), "must be a positive number"},
	}
	for _, check := range checks {
		if check.bad {
			return &ErrConfiguration{Field: check.field, Reason: check.msg}
		}
	}
	if err := c.ShortRange.Validate(); err != nil {
		return &ErrConfiguration{Field: "short_range", Reason: err.Error()}
	}
	return nil
}

func (c Configuration) Validate() error {
	if c.NStrips <= 0 {
		return &ErrConfiguration{Field: "n_strips", Reason: "must be greater than zero"}
	}
	if c.NumWorkers <= 0 {
		return &ErrConfiguration{Field: "num_workers", Reason: "must be greater than zero"}
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		return &ErrConfiguration{Field: "compression_level", Reason: "must be between 0 and 9"}
	}
	for i, rule := range c.Selection {
		if err := rule.Validate(); err != nil {
			return &ErrConfiguration{Field: fmt.Sprintf("selection[%d]", i), Reason: err.Error()}
		}
	}
	return c.Normalization.Validate()
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
