package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	music "github.com/next-exp/music_go/pkg"
	"gopkg.in/yaml.v3"
)

// LoadConfiguration reads a JSON or YAML (.yaml, .yml) file on top of the
// default values. An empty filename returns the defaults.
func LoadConfiguration(filename string) (music.Configuration, error) {
	config := music.DefaultConfiguration()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	return config, nil
}

func printConfiguration(config music.Configuration, logger Logger) {
	norm := config.Normalization
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Strips: %d", config.NStrips), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Normalization target: %g", norm.Target), "config")
	logger.Info(fmt.Sprintf("Beam bins: %d", norm.BeamBins), "config")
	logger.Info(fmt.Sprintf("Short bins: %d", norm.ShortBins), "config")
	logger.Info(fmt.Sprintf("Short range: [%g, %g)", norm.ShortRange.Low, norm.ShortRange.High), "config")
	logger.Info(fmt.Sprintf("Beam sigma: %g", norm.BeamSigma), "config")
	logger.Info(fmt.Sprintf("Standalone sigma: %g", norm.StandaloneSigma), "config")
	logger.Info(fmt.Sprintf("Reference sigma: %g", norm.ReferenceSigma), "config")
	logger.Info(fmt.Sprintf("Reference bins: %d", norm.ReferenceBins), "config")
	logger.Info(fmt.Sprintf("Max iterations: %d", norm.MaxIterations), "config")
	logger.Info(fmt.Sprintf("Tolerance: %g", norm.Tolerance), "config")
	logger.Info(fmt.Sprintf("Selection rules: %d", len(config.Selection)), "config")
	logger.Info(fmt.Sprintf("Write DB: %t", config.WriteDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
}
